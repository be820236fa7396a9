package zombiezen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/revelaction/syncomp/infer"
	sent "github.com/revelaction/syncomp/sentence"
	"github.com/revelaction/syncomp/storage"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Store keeps the pipeline tables in one SQLite database.
type Store struct {
	pool *sqlitex.Pool
}

var _ storage.Store = (*Store)(nil)

func NewStore(pool *sqlitex.Pool) *Store {
	return &Store{pool: pool}
}

// Open creates the pool for dbPath and the tables if missing.
func Open(dbPath string) (*Store, error) {
	pool, err := NewPool(dbPath)
	if err != nil {
		return nil, err
	}
	if err := CreateSchemas(pool, Schemas...); err != nil {
		pool.Close()
		return nil, err
	}
	return NewStore(pool), nil
}

func (s *Store) Close() error {
	return s.pool.Close()
}

func (s *Store) Lines(docType sent.DocType) ([]sent.Line, error) {
	conn, err := s.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var lines []sent.Line
	err = sqlitex.Execute(conn, "SELECT session_id, speaker_id, state, session_seq, text FROM lines WHERE type = ? ORDER BY id", &sqlitex.ExecOptions{
		Args: []interface{}{string(docType)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			lines = append(lines, sent.Line{
				SessionId:  stmt.ColumnText(0),
				SpeakerId:  stmt.ColumnText(1),
				State:      stmt.ColumnText(2),
				SessionSeq: stmt.ColumnText(3),
				Text:       stmt.ColumnText(4),
				Type:       docType,
			})
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		ok, err := written(conn, linesTable(docType))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("lines %s: %w", docType, storage.ErrNotFound)
		}
		return []sent.Line{}, nil
	}
	return lines, nil
}

// WriteLines replaces the lines of docType.
func (s *Store) WriteLines(docType sent.DocType, lines []sent.Line) (err error) {
	conn, err := s.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	defer sqlitex.Save(conn)(&err)

	err = sqlitex.Execute(conn, "DELETE FROM lines WHERE type = ?", &sqlitex.ExecOptions{
		Args: []interface{}{string(docType)},
	})
	if err != nil {
		return fmt.Errorf("failed to delete lines: %w", err)
	}

	for _, l := range lines {
		err = sqlitex.Execute(conn, "INSERT INTO lines (type, session_id, speaker_id, state, session_seq, text) VALUES (?, ?, ?, ?, ?, ?)", &sqlitex.ExecOptions{
			Args: []interface{}{string(docType), l.SessionId, l.SpeakerId, l.State, l.SessionSeq, l.Text},
		})
		if err != nil {
			return fmt.Errorf("failed to insert line: %w", err)
		}
	}

	return markWritten(conn, linesTable(docType))
}

const recordColumns = "doc_id, type, sentence_id, source_doc_id, t_units, word_len, text"

func (s *Store) Records() ([]sent.Record, error) {
	conn, err := s.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var records []sent.Record
	err = sqlitex.Execute(conn, "SELECT "+recordColumns+" FROM records ORDER BY doc_id", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			r, err := scanRecord(stmt)
			if err != nil {
				return err
			}
			records = append(records, r)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		ok, err := written(conn, "records")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("records: %w", storage.ErrNotFound)
		}
		return []sent.Record{}, nil
	}
	return records, nil
}

func (s *Store) Record(docId int) (sent.Record, error) {
	conn, err := s.pool.Take(context.TODO())
	if err != nil {
		return sent.Record{}, err
	}
	defer s.pool.Put(conn)

	var rec sent.Record
	found := false
	err = sqlitex.Execute(conn, "SELECT "+recordColumns+" FROM records WHERE doc_id = ?", &sqlitex.ExecOptions{
		Args: []interface{}{docId},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			rec, err = scanRecord(stmt)
			return err
		},
	})
	if err != nil {
		return sent.Record{}, err
	}
	if !found {
		return sent.Record{}, fmt.Errorf("record %d: %w", docId, storage.ErrNotFound)
	}
	return rec, nil
}

// WriteRecords replaces the records table.
func (s *Store) WriteRecords(records []sent.Record) (err error) {
	conn, err := s.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	defer sqlitex.Save(conn)(&err)

	if err = sqlitex.Execute(conn, "DELETE FROM records", nil); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	for _, r := range records {
		err = sqlitex.Execute(conn, "INSERT INTO records ("+recordColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)", &sqlitex.ExecOptions{
			Args: []interface{}{r.DocId, string(r.Type), r.SentenceId, r.SourceDocId, r.TUnits, r.WordLen, r.Text},
		})
		if err != nil {
			return fmt.Errorf("failed to insert record %d: %w", r.DocId, err)
		}
	}

	return markWritten(conn, "records")
}

func (s *Store) Fits() ([]*infer.Result, error) {
	conn, err := s.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var fits []*infer.Result
	err = sqlitex.Execute(conn, "SELECT data FROM fits ORDER BY created DESC", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var res infer.Result
			if err := json.Unmarshal([]byte(stmt.ColumnText(0)), &res); err != nil {
				return err
			}
			fits = append(fits, &res)
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return fits, nil
}

func (s *Store) Fit(runId string) (*infer.Result, error) {
	conn, err := s.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var res *infer.Result
	err = sqlitex.Execute(conn, "SELECT data FROM fits WHERE run_id = ?", &sqlitex.ExecOptions{
		Args: []interface{}{runId},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			res = &infer.Result{}
			return json.Unmarshal([]byte(stmt.ColumnText(0)), res)
		},
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("fit %s: %w", runId, storage.ErrNotFound)
	}
	return res, nil
}

func (s *Store) WriteFit(res *infer.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}

	conn, err := s.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	return sqlitex.Execute(conn, "INSERT OR REPLACE INTO fits (run_id, created, data) VALUES (?, ?, ?)", &sqlitex.ExecOptions{
		Args: []interface{}{res.RunId, res.CreatedAt.UnixNano(), string(data)},
	})
}

func scanRecord(stmt *sqlite.Stmt) (sent.Record, error) {
	t, err := sent.ParseDocType(stmt.ColumnText(1))
	if err != nil {
		return sent.Record{}, err
	}
	return sent.Record{
		DocId:       stmt.ColumnInt(0),
		Type:        t,
		SentenceId:  stmt.ColumnInt(2),
		SourceDocId: stmt.ColumnInt(3),
		TUnits:      stmt.ColumnInt(4),
		WordLen:     stmt.ColumnInt(5),
		Text:        stmt.ColumnText(6),
	}, nil
}

func linesTable(docType sent.DocType) string {
	return "lines_" + string(docType)
}

// markWritten records that a table was written, so that an empty table reads
// as empty instead of missing.
func markWritten(conn *sqlite.Conn, name string) error {
	err := sqlitex.Execute(conn, "INSERT OR IGNORE INTO written (name) VALUES (?)", &sqlitex.ExecOptions{
		Args: []interface{}{name},
	})
	if err != nil {
		return fmt.Errorf("failed to mark %s written: %w", name, err)
	}
	return nil
}

func written(conn *sqlite.Conn, name string) (bool, error) {
	found := false
	err := sqlitex.Execute(conn, "SELECT 1 FROM written WHERE name = ?", &sqlitex.ExecOptions{
		Args: []interface{}{name},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			return nil
		},
	})
	return found, err
}
