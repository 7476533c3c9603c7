// Package report records check runs and their issues in a SQLite database.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lionweb-community/lionweb-dev-tools/internal/validator"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TEXT    NOT NULL,
	model      TEXT    NOT NULL,
	languages  TEXT    NOT NULL,
	errors     INTEGER NOT NULL,
	warnings   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS issues (
	run_id   INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq      INTEGER NOT NULL,
	kind     TEXT    NOT NULL,
	severity TEXT    NOT NULL,
	code     TEXT    NOT NULL,
	path     TEXT    NOT NULL,
	message  TEXT    NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

type Store struct {
	db *sql.DB
}

type Run struct {
	ID        int64
	Time      time.Time
	Model     string
	Languages []string
	Errors    int
	Warnings  int
}

// Issue is a stored issue. Kind and severity are kept as their text form.
type Issue struct {
	Kind     string
	Severity string
	Code     string
	Path     string
	Message  string
}

func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("[%s] %s", i.Kind, i.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", i.Kind, i.Path, i.Message)
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening report database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating report schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores one run with all of its issues and returns the run id.
func (s *Store) RecordRun(ctx context.Context, model string, languages []string, issues []validator.Issue) (int64, error) {
	if languages == nil {
		languages = []string{}
	}
	langs, err := json.Marshal(languages)
	if err != nil {
		return 0, err
	}
	errorCount, warningCount := 0, 0
	for _, i := range issues {
		if i.Severity == validator.LevelWarning {
			warningCount++
		} else {
			errorCount++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (created_at, model, languages, errors, warnings) VALUES (?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), model, string(langs), errorCount, warningCount)
	if err != nil {
		return 0, fmt.Errorf("recording run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO issues (run_id, seq, kind, severity, code, path, message) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for seq, i := range issues {
		if _, err := stmt.ExecContext(ctx, id, seq, i.Kind.String(), i.Severity.String(), i.Code, i.Path.String(), i.Message); err != nil {
			return 0, fmt.Errorf("recording issue: %w", err)
		}
	}
	return id, tx.Commit()
}

// Runs returns the most recent runs first. A limit of zero returns all runs.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, created_at, model, languages, errors, warnings FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created, langs string
		if err := rows.Scan(&r.ID, &created, &r.Model, &langs, &r.Errors, &r.Warnings); err != nil {
			return nil, err
		}
		if r.Time, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %d: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(langs), &r.Languages); err != nil {
			return nil, fmt.Errorf("run %d: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Issues returns the issues of one run in their original order.
func (s *Store) Issues(ctx context.Context, runID int64) ([]Issue, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, severity, code, path, message FROM issues WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []Issue
	for rows.Next() {
		var i Issue
		if err := rows.Scan(&i.Kind, &i.Severity, &i.Code, &i.Path, &i.Message); err != nil {
			return nil, err
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

// Prune deletes all but the most recent keep runs and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (SELECT id FROM runs ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
