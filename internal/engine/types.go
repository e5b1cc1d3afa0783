package engine

import (
	"context"

	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
)

// StateChangedFunc observes snapshots after each state change
type StateChangedFunc func(ctx context.Context, snapshot *survival.Snapshot)

// CommitFunc makes an accepted command durable. It runs after the state
// change and before any observer is notified; an error withholds the
// notifications and is returned to the caller.
type CommitFunc func(ctx context.Context, result *survival.TurnResult) error

// SubmitActionInput contains the player command
type SubmitActionInput struct {
	Action survival.Action

	// Commit runs for actions that end the player's turn
	Commit CommitFunc
}

// SubmitActionOutput contains the resolved turn
type SubmitActionOutput struct {
	Result *survival.TurnResult
}

// ResolveChoiceInput names the pending event and the chosen option
type ResolveChoiceInput struct {
	EventID  string
	ChoiceID string

	// Commit runs once the choice has been applied
	Commit CommitFunc
}

// ResolveChoiceOutput contains the result of the choice
type ResolveChoiceOutput struct {
	Result *survival.TurnResult
}

// GetSnapshotInput is empty; it exists so the call can grow options
type GetSnapshotInput struct{}

// GetSnapshotOutput contains the current state
type GetSnapshotOutput struct {
	Snapshot *survival.Snapshot
}
