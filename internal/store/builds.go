package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/apigraph/internal/graph"
	"github.com/roach88/apigraph/internal/ir"
)

// ErrNotFound is returned when a build does not exist.
var ErrNotFound = errors.New("build not found")

// Build is a stored unfiltered compile and its reference graph.
type Build struct {
	ID      string
	APIName string
	Seq     int64
	IR      *ir.IntermediateRepresentation
	Graph   graph.Snapshot
}

// BuildSummary is a Build without its payload.
type BuildSummary struct {
	ID      string `json:"id"`
	APIName string `json:"api_name"`
	Seq     int64  `json:"seq"`
}

// Run records one compile of a build for a set of audiences.
type Run struct {
	ID          string   `json:"id"`
	BuildID     string   `json:"build_id"`
	Audiences   []string `json:"audiences"`
	Fingerprint string   `json:"fingerprint"`
	Warnings    int      `json:"warnings"`
	Seq         int64    `json:"seq"`
}

// WriteBuild stores an unfiltered document and its graph snapshot.
// The id is the document's fingerprint; writing the same document again
// returns the existing id and inserted=false.
func (s *Store) WriteBuild(ctx context.Context, doc *ir.IntermediateRepresentation, snapshot graph.Snapshot) (id string, inserted bool, err error) {
	id, err = ir.Fingerprint(doc)
	if err != nil {
		return "", false, fmt.Errorf("write build: %w", err)
	}
	irJSON, err := json.Marshal(doc)
	if err != nil {
		return "", false, fmt.Errorf("write build: marshal ir: %w", err)
	}
	graphJSON, err := json.Marshal(snapshot)
	if err != nil {
		return "", false, fmt.Errorf("write build: marshal graph: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("write build: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// The WHERE clause keeps SQLite from parsing ON CONFLICT as a join.
	result, err := tx.ExecContext(ctx, `
		INSERT INTO builds (id, api_name, ir, graph, seq)
		SELECT ?, ?, ?, ?, COALESCE(MAX(seq), 0) + 1 FROM builds WHERE true
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		doc.APIName.OriginalName,
		string(irJSON),
		string(graphJSON),
	)
	if err != nil {
		return "", false, fmt.Errorf("write build: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return "", false, fmt.Errorf("write build: rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("write build: commit: %w", err)
	}
	return id, n > 0, nil
}

// ReadBuild loads the build with id.
func (s *Store) ReadBuild(ctx context.Context, id string) (*Build, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, api_name, ir, graph, seq
		FROM builds
		WHERE id = ?
	`, id)
	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return b, err
}

// LatestBuild loads the most recently written build of apiName.
func (s *Store) LatestBuild(ctx context.Context, apiName string) (*Build, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, api_name, ir, graph, seq
		FROM builds
		WHERE api_name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, apiName)
	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no build of %q", ErrNotFound, apiName)
	}
	return b, err
}

// ListBuilds returns every build in write order.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListBuilds(ctx context.Context) ([]BuildSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, api_name, seq
		FROM builds
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	builds := []BuildSummary{}
	for rows.Next() {
		var b BuildSummary
		if err := rows.Scan(&b.ID, &b.APIName, &b.Seq); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return builds, nil
}

// WriteRun records a compile of an existing build. The run's token and
// seq are assigned here and returned.
func (s *Store) WriteRun(ctx context.Context, run Run) (Run, error) {
	audiences := slices.Clone(run.Audiences)
	slices.Sort(audiences)
	audiences = slices.Compact(audiences)
	if audiences == nil {
		audiences = []string{}
	}
	audiencesJSON, err := json.Marshal(audiences)
	if err != nil {
		return Run{}, fmt.Errorf("write run: marshal audiences: %w", err)
	}

	run.ID = s.tokens.Generate()
	run.Audiences = audiences
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO runs (id, build_id, audiences, fingerprint, warnings, seq)
		SELECT ?, ?, ?, ?, ?, COALESCE(MAX(seq), 0) + 1 FROM runs
		RETURNING seq
	`,
		run.ID,
		run.BuildID,
		string(audiencesJSON),
		run.Fingerprint,
		run.Warnings,
	).Scan(&run.Seq)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}
	return run, nil
}

// ReadRuns returns the runs of buildID in write order.
// Returns an empty slice (not nil) if the build has none.
func (s *Store) ReadRuns(ctx context.Context, buildID string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, build_id, audiences, fingerprint, warnings, seq
		FROM runs
		WHERE build_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, buildID)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r             Run
			audiencesJSON string
		)
		if err := rows.Scan(&r.ID, &r.BuildID, &audiencesJSON, &r.Fingerprint, &r.Warnings, &r.Seq); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(audiencesJSON), &r.Audiences); err != nil {
			return nil, fmt.Errorf("unmarshal audiences of run %s: %w", r.ID, err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanBuild(row *sql.Row) (*Build, error) {
	var (
		b                 Build
		irJSON, graphJSON string
	)
	if err := row.Scan(&b.ID, &b.APIName, &irJSON, &graphJSON, &b.Seq); err != nil {
		return nil, err
	}
	b.IR = &ir.IntermediateRepresentation{}
	if err := json.Unmarshal([]byte(irJSON), b.IR); err != nil {
		return nil, fmt.Errorf("unmarshal ir of build %s: %w", b.ID, err)
	}
	if err := json.Unmarshal([]byte(graphJSON), &b.Graph); err != nil {
		return nil, fmt.Errorf("unmarshal graph of build %s: %w", b.ID, err)
	}
	return &b, nil
}
