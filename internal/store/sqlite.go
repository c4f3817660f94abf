package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/territory-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS allocation_runs (
	id                TEXT PRIMARY KEY,
	config            TEXT NOT NULL,
	rep_count         INTEGER NOT NULL,
	account_count     INTEGER NOT NULL,
	threshold         INTEGER NOT NULL,
	results           TEXT NOT NULL,
	fairness          TEXT NOT NULL,
	balanced_fairness REAL,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_allocation_runs_created_at ON allocation_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_allocation_runs_threshold ON allocation_runs(threshold);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run model.Run) (*model.Run, error) {
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	configJSON, resultsJSON, fairnessJSON, err := marshalRun(run)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal run")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO allocation_runs (id, config, rep_count, account_count, threshold, results, fairness, balanced_fairness, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(configJSON), run.RepCount, run.AccountCount, run.Config.Threshold,
		string(resultsJSON), string(fairnessJSON), run.Fairness.BalancedComposite, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return &run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, config, rep_count, account_count, results, fairness, created_at
		 FROM allocation_runs WHERE id = ?`,
		runID,
	)

	var r model.Run
	var configJSON, resultsJSON, fairnessJSON string
	err := row.Scan(&r.ID, &configJSON, &r.RepCount, &r.AccountCount, &resultsJSON, &fairnessJSON, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}

	if err := unmarshalRun(&r, []byte(configJSON), []byte(resultsJSON), []byte(fairnessJSON)); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal run")
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.RunSummary, error) {
	query := `SELECT id, threshold, rep_count, account_count, balanced_fairness, created_at
		 FROM allocation_runs ORDER BY created_at DESC`
	var args []any

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.RunSummary
	for rows.Next() {
		var rs model.RunSummary
		var fairness sql.NullFloat64
		if err := rows.Scan(&rs.ID, &rs.Threshold, &rs.RepCount, &rs.AccountCount, &fairness, &rs.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run summary")
		}
		if fairness.Valid {
			v := fairness.Float64
			rs.BalancedFairness = &v
		}
		runs = append(runs, rs)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM allocation_runs WHERE id = ?`, runID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func marshalRun(run model.Run) (config, results, fairness []byte, err error) {
	if config, err = json.Marshal(run.Config); err != nil {
		return nil, nil, nil, err
	}
	if results, err = json.Marshal(run.Results); err != nil {
		return nil, nil, nil, err
	}
	if fairness, err = json.Marshal(run.Fairness); err != nil {
		return nil, nil, nil, err
	}
	return config, results, fairness, nil
}

func unmarshalRun(r *model.Run, config, results, fairness []byte) error {
	if err := json.Unmarshal(config, &r.Config); err != nil {
		return err
	}
	if err := json.Unmarshal(results, &r.Results); err != nil {
		return err
	}
	return json.Unmarshal(fairness, &r.Fairness)
}
