package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"codeintel/internal/metrics"
)

func init() {
	sqlite_vec.Auto()
}

// ErrNotFound is returned when an analysis ID does not exist.
var ErrNotFound = errors.New("analysis not found")

// Store persists analysis history and answers feature-similarity queries.
type Store interface {
	// SaveAnalysis records an analysis and returns its ID. CreatedAt is set
	// to the current time when zero.
	SaveAnalysis(a Analysis) (int64, error)
	// ListHistory returns the newest analyses first. limit <= 0 returns all.
	ListHistory(limit int) ([]Analysis, error)
	// GetAnalysis returns one analysis or ErrNotFound.
	GetAnalysis(id int64) (Analysis, error)
	// Similar returns the k stored analyses whose features are closest to fv.
	Similar(fv metrics.FeatureVector, k int) ([]Match, error)
	// ClearHistory removes every analysis.
	ClearHistory() error
	// GetMeta returns a metadata value by key, or "" if not set.
	GetMeta(key string) (string, error)
	// SetMeta sets a metadata key-value pair.
	SetMeta(key, value string) error
	// Close closes the underlying database.
	Close() error
}

// SQLiteStore implements Store backed by SQLite + sqlite-vec.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path, creating its
// directory, and initializes the schema.
func Open(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Init(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.checkVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) checkVersion() error {
	v, err := s.GetMeta("schema_version")
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch v {
	case "":
		return s.SetMeta("schema_version", SchemaVersion)
	case SchemaVersion:
		return nil
	default:
		return fmt.Errorf("history database has schema version %s, want %s", v, SchemaVersion)
	}
}

func (s *SQLiteStore) SaveAnalysis(a Analysis) (int64, error) {
	features, err := json.Marshal(a.Features)
	if err != nil {
		return 0, fmt.Errorf("encode features: %w", err)
	}
	blob, err := sqlite_vec.SerializeFloat32(toFloat32(a.Features.Numeric()))
	if err != nil {
		return 0, fmt.Errorf("serialize features: %w", err)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO history (created_at, mode, path, filename, language, cluster, label, score, grade, features)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.CreatedAt, string(a.Mode), a.Path, a.Features.Filename, string(a.Features.Language),
		a.Cluster, a.Label, a.Score, a.Grade, string(features),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec("INSERT INTO vec_history (analysis_id, features) VALUES (?, ?)", id, blob); err != nil {
		return 0, fmt.Errorf("insert feature vector: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

const selectHistory = `SELECT id, created_at, mode, path, cluster, label, score, grade, features FROM history`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(r rowScanner) (Analysis, error) {
	var (
		a        Analysis
		mode     string
		features string
	)
	if err := r.Scan(&a.ID, &a.CreatedAt, &mode, &a.Path, &a.Cluster, &a.Label, &a.Score, &a.Grade, &features); err != nil {
		return Analysis{}, err
	}
	a.Mode = Mode(mode)
	if err := json.Unmarshal([]byte(features), &a.Features); err != nil {
		return Analysis{}, fmt.Errorf("decode features of analysis %d: %w", a.ID, err)
	}
	return a, nil
}

func (s *SQLiteStore) ListHistory(limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(selectHistory+" ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetAnalysis(id int64) (Analysis, error) {
	a, err := scanAnalysis(s.db.QueryRow(selectHistory+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, fmt.Errorf("analysis %d: %w", id, ErrNotFound)
	}
	return a, err
}

func (s *SQLiteStore) Similar(fv metrics.FeatureVector, k int) ([]Match, error) {
	if k <= 0 {
		return nil, nil
	}
	blob, err := sqlite_vec.SerializeFloat32(toFloat32(fv.Numeric()))
	if err != nil {
		return nil, fmt.Errorf("serialize query features: %w", err)
	}
	rows, err := s.db.Query(`
		SELECT v.analysis_id, v.distance
		FROM vec_history v
		WHERE v.features MATCH ?
		ORDER BY v.distance
		LIMIT ?
	`, blob, k)
	if err != nil {
		return nil, err
	}
	type hit struct {
		id       int64
		distance float64
	}
	var hits []hit
	for rows.Next() {
		var h hit
		if err := rows.Scan(&h.id, &h.distance); err != nil {
			rows.Close()
			return nil, err
		}
		hits = append(hits, h)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(hits))
	for _, h := range hits {
		a, err := s.GetAnalysis(h.id)
		if err != nil {
			return nil, err
		}
		matches = append(matches, Match{Analysis: a, Distance: h.distance})
	}
	return matches, nil
}

func (s *SQLiteStore) ClearHistory() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM vec_history"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM history"); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (s *SQLiteStore) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
