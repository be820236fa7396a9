package annotate

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/revelaction/syncomp/corpus"
	sent "github.com/revelaction/syncomp/sentence"
)

// Command runs an external dependency parser once per call.
//
// The parser reads on stdin, per document, a "# newdoc id = N" line, the
// document text on one line and an empty line. It writes CoNLL-U on stdout,
// repeating the newdoc comments.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration

	// Stderr receives the parser's diagnostics, discarded when nil.
	Stderr io.Writer
}

// NewCommand builds a Command from an argv, e.g. from configuration.
func NewCommand(argv []string, timeout time.Duration) (*Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("empty annotator command")
	}
	return &Command{Name: argv[0], Args: argv[1:], Timeout: timeout}, nil
}

func (c *Command) Annotate(ctx context.Context, docs []corpus.Document) ([]sent.Row, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var in bytes.Buffer
	if err := writeInput(&in, docs); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = &in
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, c.Stderr)
	}

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("annotator %s: %w: %s", c.Name, err, lastLine(msg))
		}
		return nil, fmt.Errorf("annotator %s: %w", c.Name, err)
	}

	rows, err := ReadConll(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("annotator %s output: %w", c.Name, err)
	}
	return rows, nil
}

func writeInput(w io.Writer, docs []corpus.Document) error {
	bw := bufio.NewWriter(w)
	for _, d := range docs {
		// the text must stay on one line
		text := strings.Join(strings.Fields(d.Text), " ")
		if _, err := fmt.Fprintf(bw, "# newdoc id = %d\n%s\n\n", d.Id, text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
