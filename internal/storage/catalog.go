// Package storage keeps a SQLite catalog of simulation runs and a cache of
// generated reaction networks.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/san-kum/mapksim/internal/rules"
)

const FileName = "catalog.db"

// Fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    cell_line TEXT NOT NULL,
    meki REAL NOT NULL,
    egf REAL NOT NULL,
    rafi REAL NOT NULL,
    output TEXT NOT NULL,
    plot_output TEXT,
    kind TEXT NOT NULL,
    integrator TEXT,
    species INTEGER NOT NULL,
    time_points INTEGER NOT NULL,
    cells INTEGER DEFAULT 0,
    fingerprint TEXT,
    metrics TEXT  -- JSON
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS networks (
    fingerprint TEXT NOT NULL,
    cell_line TEXT NOT NULL,
    payload TEXT NOT NULL,  -- JSON
    created_at TEXT NOT NULL,
    PRIMARY KEY (fingerprint, cell_line)
);
`

var ErrRunNotFound = errors.New("storage: run not found")

// Run is one catalog row.
type Run struct {
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	CellLine    string             `json:"cell_line"`
	MEKi        float64            `json:"meki"`
	EGF         float64            `json:"egf"`
	RAFi        float64            `json:"rafi"`
	Output      string             `json:"output"`
	PlotOutput  string             `json:"plot_output"`
	Kind        string             `json:"kind"`
	Integrator  string             `json:"integrator"`
	Species     int                `json:"species"`
	TimePoints  int                `json:"time_points"`
	Cells       int                `json:"cells"`
	Fingerprint string             `json:"fingerprint"`
	Metrics     map[string]float64 `json:"metrics"`
}

type Catalog struct {
	db   *sql.DB
	path string
}

// Open creates dataDir if needed and opens the catalog inside it.
func Open(dataDir string) (*Catalog, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	path := filepath.Join(dataDir, FileName)

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Catalog{db: db, path: path}, nil
}

func (c *Catalog) Path() string { return c.path }

func (c *Catalog) Close() error { return c.db.Close() }

// RecordRun inserts r, filling in ID and CreatedAt when they are unset, and
// returns the stored ID.
func (c *Catalog) RecordRun(ctx context.Context, r *Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	metrics, err := json.Marshal(finite(r.Metrics))
	if err != nil {
		return "", fmt.Errorf("failed to encode metrics: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, cell_line, meki, egf, rafi, output, plot_output,
			kind, integrator, species, time_points, cells, fingerprint, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt.UTC().Format(timeLayout), r.CellLine, r.MEKi, r.EGF, r.RAFi,
		r.Output, r.PlotOutput, r.Kind, r.Integrator, r.Species, r.TimePoints, r.Cells,
		r.Fingerprint, string(metrics))
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return r.ID, nil
}

// finite drops values JSON cannot encode.
func finite(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

const runColumns = `id, created_at, cell_line, meki, egf, rafi, output, plot_output,
	kind, integrator, species, time_points, cells, fingerprint, metrics`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		r                    Run
		created              string
		plot, integrator, fp sql.NullString
		metrics              sql.NullString
	)
	err := s.Scan(&r.ID, &created, &r.CellLine, &r.MEKi, &r.EGF, &r.RAFi, &r.Output, &plot,
		&r.Kind, &integrator, &r.Species, &r.TimePoints, &r.Cells, &fp, &metrics)
	if err != nil {
		return nil, err
	}
	r.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", created, err)
	}
	r.PlotOutput = plot.String
	r.Integrator = integrator.String
	r.Fingerprint = fp.String
	if metrics.Valid && metrics.String != "" && metrics.String != "null" {
		if err := json.Unmarshal([]byte(metrics.String), &r.Metrics); err != nil {
			return nil, fmt.Errorf("bad metrics for run %s: %w", r.ID, err)
		}
	}
	return &r, nil
}

// ListRuns returns the most recent runs first. limit <= 0 means all of them.
func (c *Catalog) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	q := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*Run, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun looks a run up by ID. A unique prefix of the ID also matches.
func (c *Catalog) GetRun(ctx context.Context, id string) (*Run, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? LIMIT 2`, id, id+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, r := range found {
		if r.ID == id {
			return r, nil
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("storage: run prefix %q is ambiguous", id)
	}
}

// SaveNetwork caches n under its fingerprint and the cell line.
func (c *Catalog) SaveNetwork(ctx context.Context, cellLine string, n *rules.Network) error {
	payload, err := n.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode network: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO networks (fingerprint, cell_line, payload, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(fingerprint, cell_line) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at`,
		n.Fingerprint, cellLine, string(payload), time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to save network: %w", err)
	}
	return nil
}

// LoadNetwork returns the cached network, or nil with no error on a miss.
func (c *Catalog) LoadNetwork(ctx context.Context, fingerprint, cellLine string) (*rules.Network, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM networks WHERE fingerprint = ? AND cell_line = ?`,
		fingerprint, cellLine).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load network: %w", err)
	}
	n := &rules.Network{}
	if err := n.UnmarshalBinary([]byte(payload)); err != nil {
		return nil, fmt.Errorf("failed to decode network: %w", err)
	}
	return n, nil
}
