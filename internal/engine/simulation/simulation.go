// Package simulation is the turn scheduler. It owns one SimulationState and
// sequences the player, threat and environment phases over it.
package simulation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/deadgrid/internal/config"
	"github.com/KirkDiggler/deadgrid/internal/engine"
	"github.com/KirkDiggler/deadgrid/internal/engine/combat"
	"github.com/KirkDiggler/deadgrid/internal/engine/economy"
	"github.com/KirkDiggler/deadgrid/internal/engine/faction"
	"github.com/KirkDiggler/deadgrid/internal/engine/grid"
	"github.com/KirkDiggler/deadgrid/internal/engine/narrative"
	"github.com/KirkDiggler/deadgrid/internal/engine/registry"
	"github.com/KirkDiggler/deadgrid/internal/engine/threat"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
	"github.com/KirkDiggler/deadgrid/internal/pkg/rng"
)

// Reasons a game ends
const (
	GameOverPlayerDied    = "player_died"
	GameOverSurvivorsLost = "survivors_lost"
)

// EntityType is what the simulation reports as its core.Entity type
const EntityType = "simulation"

// State is everything a playthrough owns. Only the scheduler mutates it.
type State struct {
	Grid      *grid.Grid
	Registry  *registry.Registry
	Factions  *faction.Model
	Resources survival.Resources
	Camp      *survival.Camp
	Weather   survival.Weather
	Phase     survival.Phase
	Day       int
	Turn      int
	Pending   *survival.GameEvent
	GameOver  string
}

// Config holds the dependencies for a simulation
type Config struct {
	ID    string
	Rules config.Game
	Seed  uint64

	// Roller overrides the seeded roller; tests use it to script draws
	Roller dice.Roller

	// EventBus receives domain events; a private bus is created when nil
	EventBus events.EventBus

	// Packs extend the builtin event templates
	Packs []*narrative.Pack

	// Replay is applied in order before New returns, without publishing
	// any domain events
	Replay []survival.Command
}

// Validate ensures the config can build a world
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.ID == "" {
		vb.RequiredField("ID")
	}
	if err := c.Rules.Validate(); err != nil {
		vb.Field("Rules", err.Error())
	}
	return vb.Build()
}

// Simulation implements engine.Engine for one playthrough
type Simulation struct {
	mu sync.Mutex

	id    string
	rules config.Game
	state *State
	src   *rng.Source
	bus   events.EventBus

	combat    *combat.Resolver
	threat    *threat.AI
	economy   *economy.Model
	narrative *narrative.Generator

	// observing is set while a live command runs; phase transitions then
	// record a checkpoint for observers
	observing   bool
	checkpoints []checkpoint
}

var (
	_ engine.Engine = (*Simulation)(nil)
	_ core.Entity   = (*Simulation)(nil)
)

// New generates a world from the rules and seed
func New(cfg *Config) (*Simulation, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid simulation config")
	}

	roller := cfg.Roller
	if roller == nil {
		roller = rng.NewSeeded(cfg.Seed)
	}
	bus := cfg.EventBus
	if bus == nil {
		bus = events.NewBus()
	}

	sim := &Simulation{
		id:    cfg.ID,
		rules: cfg.Rules,
		src:   rng.New(roller),
		bus:   bus,
	}
	if err := sim.build(cfg.Packs); err != nil {
		return nil, err
	}
	for i, cmd := range cfg.Replay {
		if err := sim.replay(cmd); err != nil {
			return nil, errors.DataLossf("replay of %s diverged at command %d: %v", sim.id, i, err)
		}
	}

	slog.Info("simulation created",
		"simulation_id", sim.id,
		"seed", cfg.Seed,
		"width", cfg.Rules.Simulation.Width,
		"height", cfg.Rules.Simulation.Height,
		"entities", sim.state.Registry.Len())
	return sim, nil
}

func (s *Simulation) build(packs []*narrative.Pack) error {
	state, err := s.generateWorld()
	if err != nil {
		return err
	}
	s.state = state

	resolver, err := combat.NewResolver(&combat.Config{
		Rules:    s.rules.Combat,
		Weather:  s.rules.Weather,
		Registry: state.Registry,
		Factions: state.Factions,
		Random:   s.src,
	})
	if err != nil {
		return err
	}
	resolver.SetWeather(state.Weather)

	ai, err := threat.New(&threat.Config{
		Rules:     s.rules.Threat,
		NPCDamage: s.rules.Combat.NPCDamageBase,
		Registry:  state.Registry,
		Combat:    resolver,
		Random:    s.src,
	})
	if err != nil {
		return err
	}
	econ, err := economy.New(&economy.Config{
		Rules:       s.rules.Economy,
		WeaponBonus: s.rules.Combat.WeaponBonus,
		Registry:    state.Registry,
		Factions:    state.Factions,
		Random:      s.src,
	})
	if err != nil {
		return err
	}
	gen, err := narrative.New(&narrative.Config{Random: s.src, Packs: packs})
	if err != nil {
		return err
	}

	s.combat = resolver
	s.threat = ai
	s.economy = econ
	s.narrative = gen
	return nil
}

// GetID returns the simulation id
func (s *Simulation) GetID() string {
	return s.id
}

// GetType returns the entity type used on published events
func (s *Simulation) GetType() string {
	return EntityType
}

// Rules returns the rules the world was built with
func (s *Simulation) Rules() config.Game {
	return s.rules
}

// Draws returns how many random draws the simulation has consumed
func (s *Simulation) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Draws()
}

// SubmitAction runs one player command through the phase cycle
func (s *Simulation) SubmitAction(ctx context.Context, input *engine.SubmitActionInput) (*engine.SubmitActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	s.mu.Lock()
	s.observing = true
	result, err := s.submit(input.Action)
	var pending []events.Event
	if err == nil && result.Committed {
		pending = s.domainEvents(result.Steps, s.checkpoints)
	}
	s.observing, s.checkpoints = false, nil
	s.mu.Unlock()

	if err != nil {
		slog.Debug("action declined",
			"simulation_id", s.id,
			"action", input.Action.Type,
			"reason", errors.GetReason(err))
		return nil, err
	}
	if result.Committed {
		if err := s.commit(ctx, input.Commit, result); err != nil {
			return nil, err
		}
	}
	s.publish(ctx, pending)
	return &engine.SubmitActionOutput{Result: result}, nil
}

// ResolveChoice settles the pending event and resumes the cycle
func (s *Simulation) ResolveChoice(ctx context.Context, input *engine.ResolveChoiceInput) (*engine.ResolveChoiceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	s.mu.Lock()
	s.observing = true
	result, err := s.resolve(input.EventID, input.ChoiceID)
	var pending []events.Event
	if err == nil {
		pending = s.domainEvents(result.Steps, s.checkpoints)
	}
	s.observing, s.checkpoints = false, nil
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, input.Commit, result); err != nil {
		return nil, err
	}
	s.publish(ctx, pending)
	return &engine.ResolveChoiceOutput{Result: result}, nil
}

// commit runs the caller's commit step. A failure means nobody outside the
// engine hears about the change.
func (s *Simulation) commit(ctx context.Context, fn engine.CommitFunc, result *survival.TurnResult) error {
	if fn == nil {
		return nil
	}
	if err := fn(ctx, result); err != nil {
		slog.Warn("commit failed, withholding notifications",
			"simulation_id", s.id,
			"turn", result.Turn,
			"error", err)
		return err
	}
	return nil
}

// replay applies a journaled command quietly
func (s *Simulation) replay(cmd survival.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd.Kind {
	case survival.CommandAction:
		if cmd.Action == nil {
			return errors.InvalidArgument("action command has no action")
		}
		_, err := s.submit(*cmd.Action)
		return err
	case survival.CommandChoice:
		_, err := s.resolve(cmd.EventID, cmd.ChoiceID)
		return err
	default:
		return errors.InvalidArgumentf("unknown command kind %q", cmd.Kind)
	}
}

// GetSnapshot copies the current state
func (s *Simulation) GetSnapshot(_ context.Context, _ *engine.GetSnapshotInput) (*engine.GetSnapshotOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &engine.GetSnapshotOutput{Snapshot: s.snapshot()}, nil
}

// OnStateChanged subscribes fn to the state.changed event. One event is
// published per phase transition of a command.
func (s *Simulation) OnStateChanged(fn engine.StateChangedFunc) func() {
	id := s.bus.SubscribeFunc(EventStateChanged, 0, func(ctx context.Context, ev events.Event) error {
		if owner, _ := ev.Context().Get(ContextSimulationID); owner != s.id {
			return nil
		}
		if v, ok := ev.Context().Get(ContextSnapshot); ok {
			if snap, ok := v.(*survival.Snapshot); ok {
				fn(ctx, snap)
			}
		}
		return nil
	})
	return func() {
		if err := s.bus.Unsubscribe(id); err != nil {
			slog.Warn("failed to unsubscribe observer", "simulation_id", s.id, "error", err)
		}
	}
}
