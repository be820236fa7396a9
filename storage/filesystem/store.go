package filesystem

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/revelaction/syncomp/infer"
	sent "github.com/revelaction/syncomp/sentence"
	"github.com/revelaction/syncomp/storage"
)

const (
	RecordsFile = "records.csv"
	FitsDir     = "fits"
)

var (
	lineHeader   = []string{"session_id", "speaker_id", "state", "session_seq", "text", "type"}
	recordHeader = []string{"doc_id", "type", "t_units", "word_len", "text"}
)

// Store keeps the pipeline tables as CSV files and fit results as JSON
// files under one directory.
type Store struct {
	dir string
}

var _ storage.Store = (*Store)(nil)

// NewStore creates dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, FitsDir), 0755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Close() error {
	return nil
}

// LinesFile is the file name of the lines of a subset.
func LinesFile(docType sent.DocType) string {
	return "lines_" + string(docType) + ".csv"
}

func (s *Store) Lines(docType sent.DocType) ([]sent.Line, error) {
	rows, err := readCSV(filepath.Join(s.dir, LinesFile(docType)), lineHeader)
	if err != nil {
		return nil, err
	}

	lines := make([]sent.Line, len(rows))
	for i, r := range rows {
		t, err := sent.ParseDocType(r[5])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", LinesFile(docType), i+2, err)
		}
		lines[i] = sent.Line{SessionId: r[0], SpeakerId: r[1], State: r[2], SessionSeq: r[3], Text: r[4], Type: t}
	}
	return lines, nil
}

func (s *Store) WriteLines(docType sent.DocType, lines []sent.Line) error {
	rows := make([][]string, len(lines))
	for i, l := range lines {
		rows[i] = []string{l.SessionId, l.SpeakerId, l.State, l.SessionSeq, l.Text, string(l.Type)}
	}
	return writeCSV(filepath.Join(s.dir, LinesFile(docType)), lineHeader, rows)
}

func (s *Store) Records() ([]sent.Record, error) {
	rows, err := readCSV(filepath.Join(s.dir, RecordsFile), recordHeader)
	if err != nil {
		return nil, err
	}

	records := make([]sent.Record, len(rows))
	for i, r := range rows {
		rec, err := parseRecord(r)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", RecordsFile, i+2, err)
		}
		records[i] = rec
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].DocId < records[j].DocId })
	return records, nil
}

func (s *Store) Record(docId int) (sent.Record, error) {
	records, err := s.Records()
	if err != nil {
		return sent.Record{}, err
	}

	i := sort.Search(len(records), func(i int) bool { return records[i].DocId >= docId })
	if i == len(records) || records[i].DocId != docId {
		return sent.Record{}, fmt.Errorf("record %d: %w", docId, storage.ErrNotFound)
	}
	return records[i], nil
}

func (s *Store) WriteRecords(records []sent.Record) error {
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			strconv.Itoa(r.DocId),
			string(r.Type),
			strconv.Itoa(r.TUnits),
			strconv.Itoa(r.WordLen),
			r.Text,
		}
	}
	return writeCSV(filepath.Join(s.dir, RecordsFile), recordHeader, rows)
}

func (s *Store) Fits() ([]*infer.Result, error) {
	files, err := os.ReadDir(filepath.Join(s.dir, FitsDir))
	if err != nil {
		return nil, err
	}

	var fits []*infer.Result
	for _, file := range files {
		if filepath.Ext(file.Name()) != ".json" {
			continue
		}
		res, err := ReadFit(filepath.Join(s.dir, FitsDir, file.Name()))
		if err != nil {
			return nil, err
		}
		fits = append(fits, res)
	}

	sort.Slice(fits, func(i, j int) bool { return fits[i].CreatedAt.After(fits[j].CreatedAt) })
	return fits, nil
}

func (s *Store) Fit(runId string) (*infer.Result, error) {
	if strings.ContainsAny(runId, `/\`) || runId == "" {
		return nil, fmt.Errorf("fit %q: %w", runId, storage.ErrNotFound)
	}

	res, err := ReadFit(filepath.Join(s.dir, FitsDir, runId+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("fit %s: %w", runId, storage.ErrNotFound)
	}
	return res, err
}

func (s *Store) WriteFit(res *infer.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.dir, FitsDir, res.RunId+".json"), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// ReadFit reads a fit result JSON from the given path and unmarshals it.
func ReadFit(path string) (*infer.Result, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("IO error: %w", err)
	}

	var res infer.Result
	err = json.Unmarshal(f, &res)
	if err != nil {
		return nil, fmt.Errorf("JSON decoding error: %w", err)
	}

	return &res, nil
}

func parseRecord(r []string) (sent.Record, error) {
	docId, err := strconv.Atoi(r[0])
	if err != nil {
		return sent.Record{}, fmt.Errorf("doc_id: %w", err)
	}
	t, err := sent.ParseDocType(r[1])
	if err != nil {
		return sent.Record{}, err
	}
	tUnits, err := strconv.Atoi(r[2])
	if err != nil {
		return sent.Record{}, fmt.Errorf("t_units: %w", err)
	}
	wordLen, err := strconv.Atoi(r[3])
	if err != nil {
		return sent.Record{}, fmt.Errorf("word_len: %w", err)
	}
	return sent.Record{DocId: docId, Type: t, TUnits: tUnits, WordLen: wordLen, Text: r[4]}, nil
}

func readCSV(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), storage.ErrNotFound)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: missing header", filepath.Base(path))
	}
	for i, h := range header {
		if rows[0][i] != h {
			return nil, fmt.Errorf("%s: column %d is %q, want %q", filepath.Base(path), i+1, rows[0][i], h)
		}
	}
	return rows[1:], nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	})
}

// writeAtomic writes to a temporary file renamed over path, so that a
// failed write leaves no partial table.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
