// Package engine defines the contract between the survival simulation core
// and the layers that drive and render it
package engine

//go:generate mockgen -destination=mock/mock_engine.go -package=enginemock github.com/KirkDiggler/deadgrid/internal/engine Engine

import (
	"context"
)

// Engine is one running simulation. Implementations are turn-synchronous:
// each call runs to completion before the next is accepted.
type Engine interface {
	// SubmitAction is accepted only during the player turn
	SubmitAction(ctx context.Context, input *SubmitActionInput) (*SubmitActionOutput, error)

	// ResolveChoice is accepted only while an event is pending
	ResolveChoice(ctx context.Context, input *ResolveChoiceInput) (*ResolveChoiceOutput, error)

	// GetSnapshot never changes state
	GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*GetSnapshotOutput, error)

	// OnStateChanged registers an observer called with a snapshot after
	// every phase transition that changed state, in order. The returned
	// func removes it.
	OnStateChanged(fn StateChangedFunc) (unsubscribe func())
}
