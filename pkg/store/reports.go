package store

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xhad/docsim/pkg/report"
)

type ReportStoreConfig struct {
	ConnString string
	TableName  string
}

// ReportStore is a report sink that keeps every run in PostgreSQL: one row
// in <table>_runs per run and one row in <table> per compared pair.
type ReportStore struct {
	config ReportStoreConfig
	pool   *pgxpool.Pool

	mu      sync.Mutex
	lastRun int64
}

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,57}$`)

func NewWithConfig(ctx context.Context, config ReportStoreConfig) (*ReportStore, error) {
	if config.TableName == "" {
		config.TableName = "similarity_results"
	}
	if !tableNameRe.MatchString(config.TableName) {
		return nil, fmt.Errorf("invalid table name %q", config.TableName)
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rs := &ReportStore{
		config: config,
		pool:   pool,
	}

	if err := rs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return rs, nil
}

func (rs *ReportStore) runsTable() string {
	return rs.config.TableName + "_runs"
}

func (rs *ReportStore) initialize(ctx context.Context) error {
	createRuns := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			ours_dir TEXT NOT NULL,
			theirs_dir TEXT NOT NULL,
			total INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`, rs.runsTable())

	if _, err := rs.pool.Exec(ctx, createRuns); err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	createResults := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			run_id BIGINT NOT NULL REFERENCES %s (id) ON DELETE CASCADE,
			rank INTEGER,
			our_document TEXT NOT NULL,
			their_document TEXT NOT NULL,
			similarity DOUBLE PRECISION,
			stage TEXT,
			error TEXT
		)`, rs.config.TableName, rs.runsTable())

	if _, err := rs.pool.Exec(ctx, createResults); err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_run_rank_idx
		ON %s (run_id, rank)`,
		rs.config.TableName, rs.config.TableName)

	if _, err := rs.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// Write stores r in a single transaction, so a failed write leaves no trace of the run.
func (rs *ReportStore) Write(ctx context.Context, r *report.Report) error {
	if err := rs.write(ctx, r); err != nil {
		return &report.SinkError{Target: "postgres table " + rs.config.TableName, Err: err}
	}
	return nil
}

func (rs *ReportStore) write(ctx context.Context, r *report.Report) error {
	tx, err := rs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	insertRun := fmt.Sprintf(`
		INSERT INTO %s (created_at, ours_dir, theirs_dir, total, failed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`, rs.runsTable())

	err = tx.QueryRow(ctx, insertRun,
		time.Now().UTC(),
		sanitizeUTF8(r.OursDir),
		sanitizeUTF8(r.TheirsDir),
		r.Total,
		len(r.Failures),
	).Scan(&runID)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	rows := make([][]interface{}, 0, len(r.Results)+len(r.Failures))
	for i, res := range r.Results {
		rows = append(rows, []interface{}{
			runID, i + 1, sanitizeUTF8(res.LeftName), sanitizeUTF8(res.RightName), res.Similarity, nil, nil,
		})
	}
	for _, f := range r.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		rows = append(rows, []interface{}{
			runID, nil, sanitizeUTF8(f.LeftName), sanitizeUTF8(f.RightName), nil, string(f.Stage), sanitizeUTF8(msg),
		})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{rs.config.TableName},
		[]string{"run_id", "rank", "our_document", "their_document", "similarity", "stage", "error"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to insert results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	rs.mu.Lock()
	rs.lastRun = runID
	rs.mu.Unlock()

	return nil
}

// Discard deletes the run stored by the last successful Write together with
// its results.
func (rs *ReportStore) Discard(ctx context.Context) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.lastRun == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, rs.runsTable())
	if _, err := rs.pool.Exec(ctx, query, rs.lastRun); err != nil {
		return fmt.Errorf("failed to delete run %d: %w", rs.lastRun, err)
	}
	rs.lastRun = 0
	return nil
}

// Ranked returns the stored results of a run, best match first.
func (rs *ReportStore) Ranked(ctx context.Context, runID int64, limit int) ([]StoredResult, error) {
	query := fmt.Sprintf(`
		SELECT rank, our_document, their_document, similarity
		FROM %s
		WHERE run_id = $1 AND rank IS NOT NULL
		ORDER BY rank
		LIMIT $2`,
		rs.config.TableName)

	rows, err := rs.pool.Query(ctx, query, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}

	results, err := pgx.CollectRows(rows, pgx.RowToStructByPos[StoredResult])
	if err != nil {
		return nil, fmt.Errorf("failed to scan results: %w", err)
	}
	return results, nil
}

// LatestRun returns the id of the most recent run.
func (rs *ReportStore) LatestRun(ctx context.Context) (int64, error) {
	var id int64
	query := fmt.Sprintf(`SELECT id FROM %s ORDER BY id DESC LIMIT 1`, rs.runsTable())
	if err := rs.pool.QueryRow(ctx, query).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to query latest run: %w", err)
	}
	return id, nil
}

type StoredResult struct {
	Rank          int
	OurDocument   string
	TheirDocument string
	Similarity    float64
}

func (rs *ReportStore) Close() {
	if rs.pool != nil {
		rs.pool.Close()
	}
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
