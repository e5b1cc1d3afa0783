// Package playthrough runs many simulations side by side and keeps each
// one durable as a journal of seed, rules and accepted commands.
package playthrough

//go:generate mockgen -destination=mock/mock_service.go -package=playthroughmock github.com/KirkDiggler/deadgrid/internal/orchestrators/playthrough Service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/deadgrid/internal/config"
	"github.com/KirkDiggler/deadgrid/internal/engine"
	"github.com/KirkDiggler/deadgrid/internal/engine/narrative"
	"github.com/KirkDiggler/deadgrid/internal/engine/simulation"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
	"github.com/KirkDiggler/deadgrid/internal/pkg/idgen"
	journal "github.com/KirkDiggler/deadgrid/internal/repositories/playthrough"
)

// Service defines the playthrough operations exposed to transports
type Service interface {
	Start(ctx context.Context, input *StartInput) (*StartOutput, error)
	SubmitAction(ctx context.Context, input *SubmitActionInput) (*SubmitActionOutput, error)
	ResolveChoice(ctx context.Context, input *ResolveChoiceInput) (*ResolveChoiceOutput, error)
	GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*GetSnapshotOutput, error)

	// Subscribe observes every state change of a playthrough. The
	// subscription survives the playthrough being restored.
	Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error)

	// Restore rebuilds a playthrough by replaying its journal
	Restore(ctx context.Context, input *RestoreInput) (*RestoreOutput, error)
}

// EngineFactory builds the engine for one playthrough
type EngineFactory func(cfg *simulation.Config) (engine.Engine, error)

// NewSimulation is the default EngineFactory
func NewSimulation(cfg *simulation.Config) (engine.Engine, error) {
	sim, err := simulation.New(cfg)
	if err != nil {
		return nil, err
	}
	return sim, nil
}

// Config holds the dependencies for the playthrough orchestrator
type Config struct {
	Repository  journal.Repository
	IDGenerator idgen.Generator

	// Rules apply to playthroughs started without their own
	Rules config.Game

	// Packs extend the builtin event templates of every playthrough
	Packs []*narrative.Pack

	// JournalTTL expires idle journals; zero keeps them forever
	JournalTTL time.Duration

	// EventBus is shared by every playthrough; one is created when nil
	EventBus events.EventBus

	// Factory defaults to NewSimulation
	Factory EngineFactory

	// Seeds draws seeds for playthroughs started without one
	Seeds func() uint64
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if err := c.Rules.Validate(); err != nil {
		vb.Field("Rules", errors.GetMessage(err))
	}
	for i, p := range c.Packs {
		if p == nil {
			vb.Fieldf("Packs", "pack %d is nil", i)
		}
	}

	return vb.Build()
}

// live is a playthrough held in memory. Its mutex keeps the journal in
// the same order as the commands the engine accepted.
type live struct {
	mu     sync.Mutex
	engine engine.Engine
}

type orchestrator struct {
	repo    journal.Repository
	idGen   idgen.Generator
	rules   config.Game
	packs   []*narrative.Pack
	ttl     time.Duration
	bus     events.EventBus
	factory EngineFactory
	seeds   func() uint64

	mu    sync.Mutex
	games map[string]*live
}

// NewOrchestrator creates a new playthrough orchestrator
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		repo:    cfg.Repository,
		idGen:   cfg.IDGenerator,
		rules:   cfg.Rules,
		packs:   cfg.Packs,
		ttl:     cfg.JournalTTL,
		bus:     cfg.EventBus,
		factory: cfg.Factory,
		seeds:   cfg.Seeds,
		games:   make(map[string]*live),
	}
	if o.bus == nil {
		o.bus = events.NewBus()
	}
	if o.factory == nil {
		o.factory = NewSimulation
	}
	if o.seeds == nil {
		o.seeds = rand.Uint64
	}
	return o, nil
}

// Start creates a playthrough and journals it before anything is played
func (o *orchestrator) Start(ctx context.Context, input *StartInput) (*StartOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	rules := o.rules
	if input.Rules != nil {
		rules = *input.Rules
		if err := rules.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid rules")
		}
	}
	seed := o.seeds()
	if input.Seed != nil {
		seed = *input.Seed
	}

	id := o.idGen.Generate()
	eng, err := o.factory(o.simulationConfig(id, seed, rules, o.packs))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create simulation")
	}

	_, err = o.repo.Create(ctx, &journal.CreateInput{
		Journal: &journal.Journal{ID: id, Seed: seed, Rules: rules, Packs: o.packs},
		TTL:     o.ttl,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to journal playthrough %s", id)
	}

	snap, err := eng.GetSnapshot(ctx, &engine.GetSnapshotInput{})
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.games[id] = &live{engine: eng}
	o.mu.Unlock()

	slog.Info("playthrough started", "playthrough_id", id, "seed", seed)
	return &StartOutput{PlaythroughID: id, Seed: seed, Snapshot: snap.Snapshot}, nil
}

// SubmitAction plays one action and journals it when it changed state
func (o *orchestrator) SubmitAction(ctx context.Context, input *SubmitActionInput) (*SubmitActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	result, err := o.play(ctx, input.PlaythroughID, survival.ActionCommand(input.Action))
	if err != nil {
		return nil, err
	}
	return &SubmitActionOutput{Result: result}, nil
}

// ResolveChoice answers the pending event and journals the choice
func (o *orchestrator) ResolveChoice(ctx context.Context, input *ResolveChoiceInput) (*ResolveChoiceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	result, err := o.play(ctx, input.PlaythroughID, survival.ChoiceCommand(input.EventID, input.ChoiceID))
	if err != nil {
		return nil, err
	}
	return &ResolveChoiceOutput{Result: result}, nil
}

// GetSnapshot reads the current state
func (o *orchestrator) GetSnapshot(ctx context.Context, input *GetSnapshotInput) (*GetSnapshotOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	g, err := o.game(ctx, input.PlaythroughID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	out, err := g.engine.GetSnapshot(ctx, &engine.GetSnapshotInput{})
	if err != nil {
		return nil, err
	}
	return &GetSnapshotOutput{Snapshot: out.Snapshot}, nil
}

// Subscribe attaches a handler to the state changes of a playthrough
func (o *orchestrator) Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Handler == nil {
		return nil, errors.InvalidArgument("handler is required")
	}
	g, err := o.game(ctx, input.PlaythroughID)
	if err != nil {
		return nil, err
	}
	return &SubscribeOutput{Unsubscribe: g.engine.OnStateChanged(input.Handler)}, nil
}

// Restore replaces any live copy with one rebuilt from the journal
func (o *orchestrator) Restore(ctx context.Context, input *RestoreInput) (*RestoreOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.PlaythroughID == "" {
		return nil, errors.InvalidArgument("playthrough id is required")
	}

	g, replayed, err := o.restore(ctx, input.PlaythroughID)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.games[input.PlaythroughID] = g
	o.mu.Unlock()

	out, err := g.engine.GetSnapshot(ctx, &engine.GetSnapshotInput{})
	if err != nil {
		return nil, err
	}
	return &RestoreOutput{Snapshot: out.Snapshot, Replayed: replayed}, nil
}

// play applies one command under the playthrough lock. Declined commands
// and non-committing actions never reach the journal. A committed command
// is journaled before the engine tells subscribers about it.
func (o *orchestrator) play(ctx context.Context, id string, cmd survival.Command) (*survival.TurnResult, error) {
	g, err := o.game(ctx, id)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return engine.ApplyWithCommit(ctx, g.engine, cmd, func(ctx context.Context, _ *survival.TurnResult) error {
		if _, err := o.repo.Append(ctx, &journal.AppendInput{ID: id, Command: cmd}); err != nil {
			// The live engine is now ahead of the journal; drop it so the
			// next call rebuilds from what was stored
			o.evict(id, g)
			slog.Error("failed to journal command",
				"playthrough_id", id,
				"kind", cmd.Kind,
				"error", err)
			return errors.Wrapf(err, "failed to journal command for %s", id)
		}
		return nil
	})
}

// game returns the live playthrough, restoring it from the journal on a miss
func (o *orchestrator) game(ctx context.Context, id string) (*live, error) {
	if id == "" {
		return nil, errors.InvalidArgument("playthrough id is required")
	}

	o.mu.Lock()
	g, ok := o.games[id]
	o.mu.Unlock()
	if ok {
		return g, nil
	}

	g, _, err := o.restore(ctx, id)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	// another caller may have restored it first
	if existing, ok := o.games[id]; ok {
		return existing, nil
	}
	o.games[id] = g
	return g, nil
}

func (o *orchestrator) restore(ctx context.Context, id string) (*live, int, error) {
	out, err := o.repo.Get(ctx, &journal.GetInput{ID: id})
	if err != nil {
		return nil, 0, err
	}
	j := out.Journal

	// Replayed commands must not reach subscribers a second time, so the
	// engine applies them before it is attached to anything
	cfg := o.simulationConfig(j.ID, j.Seed, j.Rules, j.Packs)
	cfg.Replay = j.Commands
	eng, err := o.factory(cfg)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to rebuild playthrough %s", id)
	}

	slog.Info("playthrough restored", "playthrough_id", id, "commands", len(j.Commands))
	return &live{engine: eng}, len(j.Commands), nil
}

func (o *orchestrator) evict(id string, g *live) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.games[id] == g {
		delete(o.games, id)
	}
}

func (o *orchestrator) simulationConfig(id string, seed uint64, rules config.Game, packs []*narrative.Pack) *simulation.Config {
	return &simulation.Config{
		ID:       id,
		Rules:    rules,
		Seed:     seed,
		EventBus: o.bus,
		Packs:    packs,
	}
}
