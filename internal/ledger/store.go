// Package ledger keeps a durable history of pipeline runs in SQLite.
//
// Every run gets one row in runs, and every stage start and finish is appended
// to stage_events. The ledger is append-only apart from closing a run with its
// final outcome.
package ledger

import (
	"context"
	"time"
)

// Store defines the interface for recording and listing runs.
type Store interface {
	// BeginRun inserts a new run.
	BeginRun(ctx context.Context, run Run) error

	// RecordStage appends a stage event to a run.
	RecordStage(ctx context.Context, ev StageEvent) error

	// FinishRun sets the final outcome of a run.
	FinishRun(ctx context.Context, runID, outcome string, finished time.Time) error

	// Recent lists the most recent runs, newest first, with their stage events.
	Recent(ctx context.Context, limit int) ([]Run, error)

	// Close closes the store and releases resources.
	Close() error
}

// EventKind distinguishes stage start and finish events.
type EventKind string

const (
	EventStarted  EventKind = "started"
	EventFinished EventKind = "finished"
)

// Run is one invocation of the pipeline.
type Run struct {
	ID       string
	Command  string
	Version  string
	Started  time.Time
	Finished time.Time // zero while running
	Outcome  string    // empty while running
	Stages   []StageEvent
}

// StageEvent is one start or finish of a stage.
type StageEvent struct {
	RunID    string
	Stage    string
	Kind     EventKind
	At       time.Time
	Result   string
	Duration time.Duration
	Rows     int
	Columns  int
	Message  string
	Metadata map[string]string
}
