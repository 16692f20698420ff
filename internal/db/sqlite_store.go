package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/psylab-id/smds27/internal/models"
	"github.com/psylab-id/smds27/internal/services"
)

const schema = `
CREATE TABLE IF NOT EXISTS assessments (
	id          TEXT PRIMARY KEY,
	created_at  TEXT NOT NULL,
	alias       TEXT NOT NULL,
	age         INTEGER NOT NULL,
	gender      TEXT NOT NULL,
	occupation  TEXT NOT NULL,
	responses   TEXT NOT NULL,
	total_score INTEGER NOT NULL,
	category    TEXT NOT NULL,
	report      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at);
`

// SQLiteStore durably keeps completed assessment records. It implements
// services.RecordStore.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Open opens (creating if needed) the sqlite database at path.
func Open(path string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	store, err := NewSQLiteStore(sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) AddRecord(rec *models.AssessmentRecord, reportText string) error {
	raw, err := json.Marshal(rec.Responses)
	if err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO assessments (id, created_at, alias, age, gender, occupation, responses, total_score, category, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.Profile.Alias,
		rec.Profile.Age,
		rec.Profile.Gender,
		rec.Profile.Occupation,
		string(raw),
		rec.TotalScore,
		rec.Severity.Label,
		reportText,
	)
	if err != nil {
		return fmt.Errorf("insert assessment %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteStore) ListRecords() ([]*models.AssessmentRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, created_at, alias, age, gender, occupation, responses, total_score, category
		 FROM assessments ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var out []*models.AssessmentRecord
	for rows.Next() {
		var (
			rec       models.AssessmentRecord
			createdAt string
			rawResp   string
			category  string
		)
		if err := rows.Scan(&rec.ID, &createdAt, &rec.Profile.Alias, &rec.Profile.Age,
			&rec.Profile.Gender, &rec.Profile.Occupation, &rawResp, &rec.TotalScore, &category); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			rec.CreatedAt = t
		}
		if err := json.Unmarshal([]byte(rawResp), &rec.Responses); err != nil {
			return nil, fmt.Errorf("decode responses for %s: %w", rec.ID, err)
		}
		rec.Severity = bandByLabel(category)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func bandByLabel(label string) models.SeverityBand {
	for _, b := range services.DefaultSeverityBands() {
		if b.Label == label {
			return b
		}
	}
	return models.SeverityBand{Label: label}
}
