package playthrough

import (
	"context"
	"sync"
	"time"

	"github.com/KirkDiggler/deadgrid/internal/engine/narrative"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
	"github.com/KirkDiggler/deadgrid/internal/pkg/clock"
)

type entry struct {
	journal Journal
	ttl     time.Duration
}

// InMemoryRepository implements Repository for single-process servers and tests
type InMemoryRepository struct {
	mu    sync.RWMutex
	clock clock.Clock
	store map[string]*entry
}

var _ Repository = (*InMemoryRepository)(nil)

// NewInMemory creates a new in-memory repository
func NewInMemory(c clock.Clock) *InMemoryRepository {
	if c == nil {
		c = clock.New()
	}
	return &InMemoryRepository{
		clock: c,
		store: make(map[string]*entry),
	}
}

// Create stores a new journal
func (r *InMemoryRepository) Create(_ context.Context, input *CreateInput) (*CreateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument(errInputNil)
	}
	if input.Journal == nil {
		return nil, errors.InvalidArgument(errJournalNil)
	}
	if input.Journal.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.store[input.Journal.ID]; ok && !r.expired(e) {
		return nil, errors.AlreadyExists("playthrough " + input.Journal.ID + " already exists")
	}

	j := copyJournal(input.Journal)
	j.Commands = nil
	j.CreatedAt = r.clock.Now()
	j.ExpiresAt = time.Time{}
	if input.TTL > 0 {
		j.ExpiresAt = j.CreatedAt.Add(input.TTL)
	}
	r.store[j.ID] = &entry{journal: j, ttl: input.TTL}

	out := copyJournal(&j)
	return &CreateOutput{Journal: &out}, nil
}

// Get retrieves a journal by ID
func (r *InMemoryRepository) Get(_ context.Context, input *GetInput) (*GetOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument(errInputNil)
	}
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.store[input.ID]
	if !ok || r.expired(e) {
		return nil, errors.NotFoundf("playthrough %s not found", input.ID)
	}
	out := copyJournal(&e.journal)
	return &GetOutput{Journal: &out}, nil
}

// Append records a command
func (r *InMemoryRepository) Append(_ context.Context, input *AppendInput) (*AppendOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument(errInputNil)
	}
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.store[input.ID]
	if !ok || r.expired(e) {
		return nil, errors.NotFoundf("playthrough %s not found", input.ID)
	}
	e.journal.Commands = append(e.journal.Commands, copyCommand(input.Command))
	if e.ttl > 0 {
		e.journal.ExpiresAt = r.clock.Now().Add(e.ttl)
	}
	return &AppendOutput{Length: len(e.journal.Commands)}, nil
}

// Delete removes a journal; deleting a missing journal is not an error
func (r *InMemoryRepository) Delete(_ context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument(errInputNil)
	}
	if input.ID == "" {
		return nil, errors.InvalidArgument(errIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, input.ID)
	return &DeleteOutput{}, nil
}

func (r *InMemoryRepository) expired(e *entry) bool {
	return !e.journal.ExpiresAt.IsZero() && r.clock.Now().After(e.journal.ExpiresAt)
}

func copyJournal(j *Journal) Journal {
	out := *j
	out.Packs = append([]*narrative.Pack(nil), j.Packs...)
	out.Commands = nil
	for _, c := range j.Commands {
		out.Commands = append(out.Commands, copyCommand(c))
	}
	return out
}

func copyCommand(c survival.Command) survival.Command {
	if c.Action != nil {
		a := *c.Action
		c.Action = &a
	}
	return c
}
