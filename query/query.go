package query

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"

	"github.com/revelaction/syncomp/render"
	sent "github.com/revelaction/syncomp/sentence"
	"github.com/revelaction/syncomp/stat"
	"github.com/revelaction/syncomp/storage"
)

const defaultLimit = 10

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

type command struct {
	name  string
	usage string
	help  string
}

var commands = []command{
	{"summary", "summary", "summary statistics of the records"},
	{"dist", "dist", "sentences per token length"},
	{"doc", "doc <id>", "show one record"},
	{"type", "type <type> [n]", "first n records of a document type"},
	{"top", "top [n]", "n records with the highest t_units per word"},
	{"help", "help", "this help"},
	{"quit", "quit", "leave"},
}

type Handler struct {
	Records  storage.RecordReader
	Renderer *render.Renderer

	// loaded on first use
	records []sent.Record
}

func NewHandler(rr storage.RecordReader, r *render.Renderer) *Handler {
	return &Handler{
		Records:  rr,
		Renderer: r,
	}
}

func (h *Handler) Run() error {
	fmt.Fprintln(h.Renderer.W, "🔑 Ctrl+X: toggle color, help, 🔧 quit")

	// initialize prompt history
	history := []string{}

	for {
		in := prompt.Input("      📊 ", h.completer,
			prompt.OptionTitle("syncomp query"),
			prompt.OptionPrefixTextColor(prompt.Yellow),
			prompt.OptionPreviewSuggestionTextColor(prompt.Blue),
			prompt.OptionSelectedSuggestionBGColor(prompt.LightGray),
			prompt.OptionMaxSuggestion(12),
			prompt.OptionSuggestionBGColor(prompt.DarkGray),
			prompt.OptionHistory(history),
			prompt.OptionAddKeyBind(prompt.KeyBind{
				Key: prompt.ControlX,
				Fn: func(buf *prompt.Buffer) {
					h.Renderer.HasColor = !h.Renderer.HasColor
					fmt.Fprintf(h.Renderer.W, "Color set to %t\n", h.Renderer.HasColor)
				}}),
		)

		history = append(history, in)
		err := h.Exec(in)
		if errors.Is(err, ErrQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(h.Renderer.W, "Error: %v\n", err)
		}
	}
}

// Exec runs one command line.
func (h *Handler) Exec(in string) error {
	tokens := strings.Fields(in)
	if len(tokens) == 0 {
		return nil
	}

	switch tokens[0] {
	case "quit", "exit":
		return ErrQuit
	case "help":
		for _, c := range commands {
			fmt.Fprintf(h.Renderer.W, "%-18s %s\n", c.usage, c.help)
		}
		return nil
	case "doc":
		if len(tokens) != 2 {
			return errors.New("usage: doc <id>")
		}
		id, err := strconv.Atoi(tokens[1])
		if err != nil {
			return fmt.Errorf("invalid doc id %q", tokens[1])
		}
		rec, err := h.Records.Record(id)
		if err != nil {
			return err
		}
		h.Renderer.Record(rec)
		return nil
	}

	records, err := h.load()
	if err != nil {
		return err
	}

	switch tokens[0] {
	case "summary":
		hdl := stat.NewHandler()
		hdl.Aggregate(records)
		return h.Renderer.Summary(hdl.Get())
	case "dist":
		hdl := stat.NewHandler()
		hdl.Aggregate(records)
		h.Renderer.Distribution(hdl.Get())
		return nil
	case "type":
		if len(tokens) < 2 || len(tokens) > 3 {
			return errors.New("usage: type <type> [n]")
		}
		docType, err := sent.ParseDocType(tokens[1])
		if err != nil {
			return err
		}
		n, err := limit(tokens[2:])
		if err != nil {
			return err
		}
		var selected []sent.Record
		for _, r := range records {
			if r.Type == docType {
				selected = append(selected, r)
			}
			if len(selected) == n {
				break
			}
		}
		return h.Renderer.Records(selected)
	case "top":
		if len(tokens) > 2 {
			return errors.New("usage: top [n]")
		}
		n, err := limit(tokens[1:])
		if err != nil {
			return err
		}
		return h.Renderer.Records(top(records, n))
	}

	return fmt.Errorf("unknown command %q, try help", tokens[0])
}

func (h *Handler) load() ([]sent.Record, error) {
	if h.records != nil {
		return h.records, nil
	}
	records, err := h.Records.Records()
	if err != nil {
		return nil, err
	}
	h.records = records
	return records, nil
}

func (h *Handler) completer(in prompt.Document) []prompt.Suggest {
	return suggest(in.TextBeforeCursor())
}

func suggest(befCursor string) []prompt.Suggest {
	s := []prompt.Suggest{}
	if befCursor == "" {
		return s
	}

	tokens := strings.Split(befCursor, " ")
	if len(tokens) == 1 {
		for _, c := range commands {
			if strings.HasPrefix(c.name, tokens[0]) {
				s = append(s, prompt.Suggest{Text: c.name, Description: c.help})
			}
		}
		return s
	}

	if tokens[0] == "type" && len(tokens) == 2 {
		for _, t := range sent.DocTypes() {
			if strings.HasPrefix(string(t), tokens[1]) {
				s = append(s, prompt.Suggest{Text: string(t)})
			}
		}
	}
	return s
}

// top returns the n records with the highest t_units per word, ties by doc
// id.
func top(records []sent.Record, n int) []sent.Record {
	sorted := make([]sent.Record, 0, len(records))
	for _, r := range records {
		if r.WordLen > 0 {
			sorted = append(sorted, r)
		}
	}

	ratio := func(r sent.Record) float64 { return float64(r.TUnits) / float64(r.WordLen) }
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := ratio(sorted[i]), ratio(sorted[j])
		if ri != rj {
			return ri > rj
		}
		return sorted[i].DocId < sorted[j].DocId
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func limit(args []string) (int, error) {
	if len(args) == 0 {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid count %q", args[0])
	}
	return n, nil
}
