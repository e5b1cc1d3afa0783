package playthrough

import (
	"github.com/KirkDiggler/deadgrid/internal/config"
	"github.com/KirkDiggler/deadgrid/internal/engine"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
)

// StartInput defines the request for starting a playthrough.
// A nil Seed draws a random one; nil Rules uses the orchestrator defaults.
type StartInput struct {
	Seed  *uint64
	Rules *config.Game
}

// StartOutput defines the response for starting a playthrough
type StartOutput struct {
	PlaythroughID string
	Seed          uint64
	Snapshot      *survival.Snapshot
}

// SubmitActionInput defines the request for a player action
type SubmitActionInput struct {
	PlaythroughID string
	Action        survival.Action
}

// SubmitActionOutput defines the response for a player action
type SubmitActionOutput struct {
	Result *survival.TurnResult
}

// ResolveChoiceInput defines the request for answering a pending event
type ResolveChoiceInput struct {
	PlaythroughID string
	EventID       string
	ChoiceID      string
}

// ResolveChoiceOutput defines the response for answering a pending event
type ResolveChoiceOutput struct {
	Result *survival.TurnResult
}

// GetSnapshotInput defines the request for reading a playthrough
type GetSnapshotInput struct {
	PlaythroughID string
}

// GetSnapshotOutput defines the response for reading a playthrough
type GetSnapshotOutput struct {
	Snapshot *survival.Snapshot
}

// SubscribeInput defines the request for observing state changes
type SubscribeInput struct {
	PlaythroughID string
	Handler       engine.StateChangedFunc
}

// SubscribeOutput carries the function that ends the subscription
type SubscribeOutput struct {
	Unsubscribe func()
}

// RestoreInput defines the request for rebuilding a playthrough from its journal
type RestoreInput struct {
	PlaythroughID string
}

// RestoreOutput defines the response for a restore
type RestoreOutput struct {
	Snapshot *survival.Snapshot
	Replayed int
}
