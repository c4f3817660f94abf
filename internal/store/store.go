// Package store persists allocation runs so past results can be listed,
// reloaded, and compared. Two drivers exist: SQLite for single-user CLI
// use and Postgres for a shared server.
package store

import (
	"context"

	"github.com/sells-group/territory-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store is the persistence interface for allocation runs.
type Store interface {
	// CreateRun assigns the run an ID and timestamp and persists it.
	CreateRun(ctx context.Context, run model.Run) (*model.Run, error)
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.RunSummary, error)
	DeleteRun(ctx context.Context, runID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
