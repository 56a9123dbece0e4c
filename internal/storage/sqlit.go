package storage

import (
	"database/sql"
	"time"

	// Register sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

type DB interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	Close() error
}

// Run is one manifest entry: what a pipeline run read and wrote.
type Run struct {
	ID         string
	StartedAt  time.Time
	InputDir   string
	RawSamples int
	Samples    int
	Positive   int
	Negative   int
	Output     string
}

type Store struct{ db DB }

func OpenSQLite(dsn string) (DB, error) {
	return sql.Open("sqlite3", dsn)
}

func InitSchema(db DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs(
		id TEXT PRIMARY KEY, started_at INTEGER, input_dir TEXT,
		raw_samples INTEGER, samples INTEGER,
		positive_types INTEGER, negative_types INTEGER, output TEXT
	)`)
	return err
}

func NewStore(db DB) *Store { return &Store{db: db} }

func (s *Store) SaveRun(r Run) error {
	_, err := s.db.Exec(`INSERT INTO runs(id,started_at,input_dir,raw_samples,samples,positive_types,negative_types,output)
		VALUES(?,?,?,?,?,?,?,?)`,
		r.ID, r.StartedAt.UnixMilli(), r.InputDir, r.RawSamples, r.Samples, r.Positive, r.Negative, r.Output)
	return err
}

// FetchRuns returns runs started at or after since, oldest first.
func (s *Store) FetchRuns(since time.Time) ([]Run, error) {
	rows, err := s.db.Query(`SELECT id,started_at,input_dir,raw_samples,samples,positive_types,negative_types,output
		FROM runs WHERE started_at>=? ORDER BY started_at ASC`, since.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		var ts int64
		if err := rows.Scan(&r.ID, &ts, &r.InputDir, &r.RawSamples, &r.Samples, &r.Positive, &r.Negative, &r.Output); err != nil {
			return nil, err
		}
		r.StartedAt = time.UnixMilli(ts)
		out = append(out, r)
	}
	return out, rows.Err()
}
