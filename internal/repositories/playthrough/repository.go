// Package playthrough stores the journal that fully determines a playthrough:
// its seed, rules, event packs and the ordered list of accepted commands
package playthrough

import (
	"context"
	"time"

	"github.com/KirkDiggler/deadgrid/internal/config"
	"github.com/KirkDiggler/deadgrid/internal/engine/narrative"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=playthroughmock github.com/KirkDiggler/deadgrid/internal/repositories/playthrough Repository

// Journal is everything needed to rebuild a playthrough by replay
type Journal struct {
	ID        string             `json:"id"`
	Seed      uint64             `json:"seed"`
	Rules     config.Game        `json:"rules"`
	Packs     []*narrative.Pack  `json:"packs,omitempty"`
	Commands  []survival.Command `json:"commands,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	ExpiresAt time.Time          `json:"expires_at,omitempty"`
}

// CreateInput contains a new journal with no commands yet
type CreateInput struct {
	Journal *Journal
	// TTL of zero keeps the journal until it is deleted
	TTL time.Duration
}

// CreateOutput contains the stored journal
type CreateOutput struct {
	Journal *Journal
}

// GetInput identifies a journal
type GetInput struct {
	ID string
}

// GetOutput contains the journal with every command in order
type GetOutput struct {
	Journal *Journal
}

// AppendInput adds one accepted command to a journal
type AppendInput struct {
	ID      string
	Command survival.Command
}

// AppendOutput reports the journal length after the append
type AppendOutput struct {
	Length int
}

// DeleteInput identifies a journal to remove
type DeleteInput struct {
	ID string
}

// DeleteOutput is empty
type DeleteOutput struct{}

// Repository defines the interface for journal storage
type Repository interface {
	// Create stores a new journal; the id must be unused
	Create(ctx context.Context, input *CreateInput) (*CreateOutput, error)

	// Get loads a journal with all of its commands
	Get(ctx context.Context, input *GetInput) (*GetOutput, error)

	// Append records one accepted command and refreshes the TTL
	Append(ctx context.Context, input *AppendInput) (*AppendOutput, error)

	// Delete removes a journal
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

const (
	errInputNil   = "input is required"
	errIDEmpty    = "playthrough ID is required"
	errJournalNil = "journal is required"
)
