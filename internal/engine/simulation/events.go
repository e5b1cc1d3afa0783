package simulation

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
)

// Event types published on the bus
const (
	EventZombieDetected = "zombie.detected"
	EventCombatHit      = "combat.hit"
	EventEntityRemoved  = "entity.removed"
	EventNPCTurned      = "npc.turned"
	EventDayStarted     = "day.started"
	EventPending        = "event.pending"
	EventGameOver       = "game.over"
	EventWeatherChanged = "weather.changed"
	EventStateChanged   = "state.changed"
)

// Keys set on every published event's context
const (
	ContextSimulationID = "simulation_id"
	ContextStep         = "step"
	ContextSnapshot     = "snapshot"
)

var stepTopics = map[survival.StepKind]string{
	survival.StepDetected:       EventZombieDetected,
	survival.StepAttacked:       EventCombatHit,
	survival.StepCounter:        EventCombatHit,
	survival.StepKilled:         EventEntityRemoved,
	survival.StepTurned:         EventNPCTurned,
	survival.StepDayStarted:     EventDayStarted,
	survival.StepEventTriggered: EventPending,
	survival.StepGameOver:       EventGameOver,
	survival.StepCollapsed:      EventEntityRemoved,
	survival.StepWeather:        EventWeatherChanged,
}

// checkpoint is the state observers see at one phase transition, taken
// after the first steps entries of the command's steps
type checkpoint struct {
	steps    int
	snapshot *survival.Snapshot
}

// domainEvents builds the bus events for a set of steps with one
// state.changed per checkpoint, each placed after the steps that led to it.
// Without checkpoints a single closing state.changed is built. Called with
// the lock held so entity lookups are safe.
func (s *Simulation) domainEvents(steps []survival.Step, checkpoints []checkpoint) []events.Event {
	if len(checkpoints) == 0 {
		checkpoints = []checkpoint{{steps: len(steps), snapshot: s.snapshot()}}
	}

	out := make([]events.Event, 0, len(steps)+len(checkpoints))
	next := 0
	flush := func(done int) {
		for next < len(checkpoints) && checkpoints[next].steps <= done {
			out = append(out, s.stateChanged(checkpoints[next].snapshot))
			next++
		}
	}

	for i, step := range steps {
		flush(i)
		topic, ok := stepTopics[step.Kind]
		if !ok {
			continue
		}
		ev := events.NewGameEvent(topic, s.entity(step.ActorID), s.entity(step.TargetID))
		ev.Context().Set(ContextSimulationID, s.id)
		ev.Context().Set(ContextStep, step)
		out = append(out, ev)
	}
	flush(len(steps))
	return out
}

func (s *Simulation) stateChanged(snap *survival.Snapshot) events.Event {
	ev := events.NewGameEvent(EventStateChanged, s, nil)
	ev.Context().Set(ContextSimulationID, s.id)
	ev.Context().Set(ContextSnapshot, snap)
	return ev
}

// entity resolves an id to a live entity, falling back to the simulation
func (s *Simulation) entity(id string) core.Entity {
	if id != "" {
		if e, ok := s.state.Registry.Get(id); ok {
			return e
		}
	}
	return s
}

// publish delivers events outside the lock so observers may call back in
func (s *Simulation) publish(ctx context.Context, evs []events.Event) {
	for _, ev := range evs {
		if err := s.bus.Publish(ctx, ev); err != nil {
			slog.Warn("failed to publish event",
				"simulation_id", s.id,
				"type", ev.Type(),
				"error", err)
		}
	}
}
