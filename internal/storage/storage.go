// Package storage persists scored artifacts in SQLite. The store doubles as
// the artifact index the lineage metric queries for parent net scores.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ZanzyTHEbar/model-o-meter/internal/apperrors"
	"github.com/ZanzyTHEbar/model-o-meter/internal/encoding"
	"github.com/ZanzyTHEbar/model-o-meter/internal/types"
)

// Store wraps the SQLite handle with prepared statements.
type Store struct {
	*sql.DB
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// NewStore opens (or creates) the artifact database under dataDir with WAL
// journaling and a busy timeout so concurrent scoring batches don't trip
// over each other.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "model_o_meter.db")
	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &Store{
		DB:       db,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := store.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Artifact store initialized", "path", dbPath)

	return store, nil
}

func (s *Store) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS artifacts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			url TEXT NOT NULL,
			net_score REAL NOT NULL,
			net_score_latency INTEGER NOT NULL,
			record TEXT NOT NULL, -- full scoring record as JSON
			created_at DATETIME NOT NULL,
			UNIQUE(name, category)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_artifacts_name ON artifacts(name)`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_category ON artifacts(category)`,
		`CREATE INDEX IF NOT EXISTS idx_artifacts_net_score ON artifacts(net_score DESC)`,
	}

	for _, query := range queries {
		if _, err := s.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

func (s *Store) initPreparedStatements() error {
	statements := map[string]string{
		"insert_artifact": `INSERT INTO artifacts (id, name, category, url, net_score, net_score_latency, record, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(name, category) DO UPDATE SET
			url = excluded.url,
			net_score = excluded.net_score,
			net_score_latency = excluded.net_score_latency,
			record = excluded.record,
			created_at = excluded.created_at`,

		"get_artifact": `SELECT id, name, category, url, net_score, net_score_latency, record, created_at
			FROM artifacts WHERE id = ?`,

		"list_by_category": `SELECT id, name, url, net_score
			FROM artifacts WHERE category = ? ORDER BY net_score DESC`,

		"list_artifacts": `SELECT id, name, category, url, net_score, net_score_latency, record, created_at
			FROM artifacts ORDER BY net_score DESC LIMIT ?`,
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for name, query := range statements {
		stmt, err := s.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		s.prepared[name] = stmt
	}

	return nil
}

func (s *Store) stmt(name string) (*sql.Stmt, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	stmt, exists := s.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}
	return stmt, nil
}

// Artifact is a stored scoring outcome.
type Artifact struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Category        types.Category  `json:"category"`
	URL             string          `json:"url"`
	NetScore        float64         `json:"net_score"`
	NetScoreLatency int64           `json:"net_score_latency"`
	Record          encoding.Record `json:"record"`
	CreatedAt       time.Time       `json:"created_at"`
}

// SaveRecord upserts one scoring record keyed by (name, category) and
// returns the stored artifact id.
func (s *Store) SaveRecord(ctx context.Context, url string, rec encoding.Record) (string, error) {
	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return "", apperrors.NewInternalError("failed to serialize scoring record", err)
	}

	stmt, err := s.stmt("insert_artifact")
	if err != nil {
		return "", apperrors.NewInternalError("artifact insert unavailable", err)
	}

	id := uuid.New().String()
	_, err = stmt.ExecContext(ctx,
		id, rec.Name, string(rec.Category), url,
		rec.NetScore, rec.NetScoreLatency, string(recordJSON), time.Now().UTC())
	if err != nil {
		return "", apperrors.NewInternalError(fmt.Sprintf("failed to store artifact %s", rec.Name), err)
	}

	return id, nil
}

// GetArtifact fetches one stored artifact by id.
func (s *Store) GetArtifact(ctx context.Context, id string) (*Artifact, error) {
	stmt, err := s.stmt("get_artifact")
	if err != nil {
		return nil, apperrors.NewInternalError("artifact lookup unavailable", err)
	}

	var (
		a          Artifact
		category   string
		recordJSON string
	)
	row := stmt.QueryRowContext(ctx, id)
	if err := row.Scan(&a.ID, &a.Name, &category, &a.URL, &a.NetScore, &a.NetScoreLatency, &recordJSON, &a.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("artifact %s not found", id))
		}
		return nil, apperrors.NewInternalError("failed to read artifact", err)
	}
	a.Category = types.Category(category)
	if err := json.Unmarshal([]byte(recordJSON), &a.Record); err != nil {
		return nil, apperrors.NewInternalError("stored record is corrupt", err)
	}

	return &a, nil
}

// ListArtifacts returns up to limit stored artifacts ordered by net score.
func (s *Store) ListArtifacts(ctx context.Context, limit int) ([]Artifact, error) {
	if limit <= 0 {
		limit = 100
	}

	stmt, err := s.stmt("list_artifacts")
	if err != nil {
		return nil, apperrors.NewInternalError("artifact listing unavailable", err)
	}

	rows, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list artifacts", err)
	}
	defer rows.Close()

	var out []Artifact
	for rows.Next() {
		var (
			a          Artifact
			category   string
			recordJSON string
		)
		if err := rows.Scan(&a.ID, &a.Name, &category, &a.URL, &a.NetScore, &a.NetScoreLatency, &recordJSON, &a.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan artifact row", err)
		}
		a.Category = types.Category(category)
		if err := json.Unmarshal([]byte(recordJSON), &a.Record); err != nil {
			slog.Warn("Skipping corrupt artifact record", "id", a.ID, "error", err)
			continue
		}
		out = append(out, a)
	}

	return out, rows.Err()
}

// FindByName returns stored model artifacts whose name matches the given
// regular expression, best net score first. This is the lineage metric's
// parent lookup. Patterns match the stored short name or the "org/name"
// repo id from the stored URL, so lineage references in either form
// resolve.
func (s *Store) FindByName(ctx context.Context, pattern string) ([]types.ArtifactScore, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid name pattern %q: %v", pattern, err))
	}

	stmt, err := s.stmt("list_by_category")
	if err != nil {
		return nil, apperrors.NewInternalError("artifact search unavailable", err)
	}

	rows, err := stmt.QueryContext(ctx, string(types.CategoryModel))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to search artifacts", err)
	}
	defer rows.Close()

	var matches []types.ArtifactScore
	for rows.Next() {
		var (
			score types.ArtifactScore
			url   string
		)
		if err := rows.Scan(&score.ID, &score.Name, &url, &score.NetScore); err != nil {
			return nil, apperrors.NewInternalError("failed to scan artifact row", err)
		}
		if re.MatchString(score.Name) || re.MatchString(types.RepoID(url)) {
			matches = append(matches, score)
		}
	}

	return matches, rows.Err()
}

// Close releases prepared statements and the database handle.
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for name, stmt := range s.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}
	s.prepared = make(map[string]*sql.Stmt)

	return s.DB.Close()
}
