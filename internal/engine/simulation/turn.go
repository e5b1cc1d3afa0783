package simulation

import (
	"log/slog"

	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
)

// submit validates the phase, applies the action, then runs the threat and
// environment phases. A declined action returns before any mutation or draw.
func (s *Simulation) submit(a survival.Action) (*survival.TurnResult, error) {
	switch s.state.Phase {
	case survival.PhaseGameOver:
		return nil, errors.InvalidAction(errors.ReasonGameOver, "the game is over: "+s.state.GameOver)
	case survival.PhasePlayerTurn:
	default:
		return nil, errors.InvalidActionf(errors.ReasonNotYourTurn, "cannot act during %s", s.state.Phase)
	}

	if !a.Type.Commits() {
		return s.result(false, nil), nil
	}

	rec := survival.NewRecorder(survival.PhasePlayerTurn)
	if err := s.playerAction(rec, a); err != nil {
		return nil, err
	}
	s.advance(rec)

	slog.Debug("turn resolved",
		"simulation_id", s.id,
		"action", a.Type,
		"phase", s.state.Phase,
		"day", s.state.Day,
		"turn", s.state.Turn,
		"steps", len(rec.Steps()))
	return s.result(true, rec.Steps()), nil
}

func (s *Simulation) playerAction(rec *survival.Recorder, a survival.Action) error {
	player := s.state.Registry.Player()
	res := &s.state.Resources

	switch a.Type {
	case survival.ActionMove:
		return s.move(rec, player, a.Direction)
	case survival.ActionMelee:
		target, err := s.combat.MeleeTarget(a.TargetID, a.Direction)
		if err != nil {
			return err
		}
		return s.combat.Melee(rec, target)
	case survival.ActionRanged:
		return s.combat.Ranged(rec, res)
	case survival.ActionPickup:
		return s.economy.Pickup(rec, res, player)
	case survival.ActionEstablishCamp:
		camp, err := s.economy.EstablishCamp(rec, player, s.state.Camp)
		if err != nil {
			return err
		}
		s.state.Camp = camp
		return nil
	case survival.ActionWait:
		rec.Add(survival.Step{Kind: survival.StepWaited, ActorID: player.ID})
		return nil
	case survival.ActionUseItem:
		return s.economy.UseItem(rec, player, a.Item)
	case survival.ActionScavenge:
		return s.economy.Scavenge(rec, res, player)
	case survival.ActionTrade:
		return s.economy.Trade(rec, res, player, a.TargetID)
	case survival.ActionReinforceCamp:
		return s.economy.ReinforceCamp(rec, res, player, s.state.Camp)
	case survival.ActionRecruit:
		return s.economy.Recruit(rec, res, player, s.state.Camp)
	default:
		return errors.InvalidActionf(errors.ReasonUnknownAction, "unknown action %q", a.Type)
	}
}

func (s *Simulation) move(rec *survival.Recorder, player *survival.Player, dir survival.Direction) error {
	dx, dy, ok := dir.Delta()
	if !ok {
		return errors.InvalidActionf(errors.ReasonUnknownAction, "unknown direction %q", dir)
	}
	from := player.Pos
	if err := s.state.Registry.Move(player, from.Add(dx, dy)); err != nil {
		return err
	}
	rec.Add(survival.Step{Kind: survival.StepMoved, ActorID: player.ID, From: survival.Ptr(from), To: survival.Ptr(player.Pos)})
	return nil
}

// advance runs ThreatTurn then EnvironmentTurn and settles the next phase
func (s *Simulation) advance(rec *survival.Recorder) {
	if s.checkGameOver(rec) {
		return
	}

	s.enter(rec, survival.PhaseThreatTurn)
	s.threat.Run(rec, s.state.Camp)
	s.state.Turn++
	if s.checkGameOver(rec) {
		return
	}

	s.enter(rec, survival.PhaseEnvironmentTurn)
	s.environment(rec)
	if s.checkGameOver(rec) {
		return
	}

	if s.state.Pending != nil {
		s.enter(rec, survival.PhasePendingEventChoice)
		return
	}
	s.enter(rec, survival.PhasePlayerTurn)
}

// enter moves the scheduler to phase
func (s *Simulation) enter(rec *survival.Recorder, phase survival.Phase) {
	s.state.Phase = phase
	rec.SetPhase(phase)
	s.checkpoint(rec)
}

// checkpoint remembers the state at a phase transition so observers see
// every phase, not only where the command settled
func (s *Simulation) checkpoint(rec *survival.Recorder) {
	if !s.observing {
		return
	}
	s.checkpoints = append(s.checkpoints, checkpoint{
		steps:    len(rec.Steps()),
		snapshot: s.snapshot(),
	})
}

// environment applies day-boundary effects when the turn counter lands on
// a multiple of TurnsPerDay; otherwise it does nothing.
// Order: consumption, medicine, wave, NPC, loot, weather, night, event trigger.
func (s *Simulation) environment(rec *survival.Recorder) {
	if s.state.Turn%s.rules.Simulation.TurnsPerDay != 0 {
		return
	}

	s.state.Day++
	rec.Add(survival.Step{Kind: survival.StepDayStarted, Amount: s.state.Day})
	slog.Info("day started", "simulation_id", s.id, "day", s.state.Day)

	player := s.state.Registry.Player()
	s.economy.DailyConsumption(rec, &s.state.Resources, player)
	s.economy.DailyMedicine(rec, &s.state.Resources, player)

	s.spawnWave(rec)
	s.spawnNPC(rec)
	s.spawnLoot(rec)
	s.rollWeather(rec)
	s.night(rec)

	if s.checkGameOver(rec) {
		return
	}

	if !s.src.Chance(s.rules.Simulation.EventChance) {
		return
	}
	ev := s.narrative.Generate(s.state.Day, s.state.Weather)
	s.state.Pending = ev
	rec.Add(survival.Step{Kind: survival.StepEventTriggered, TargetID: ev.ID, Detail: ev.Title})
}

// checkGameOver moves to the terminal phase when the player is dead or a
// camp exists with nobody left in it
func (s *Simulation) checkGameOver(rec *survival.Recorder) bool {
	if s.state.Phase == survival.PhaseGameOver {
		return true
	}

	player := s.state.Registry.Player()
	var reason string
	switch {
	case player.Health <= 0:
		reason = GameOverPlayerDied
	case s.state.Camp != nil && player.Survivors <= 0:
		reason = GameOverSurvivorsLost
	default:
		return false
	}

	s.state.Phase = survival.PhaseGameOver
	s.state.GameOver = reason
	s.state.Pending = nil
	rec.Add(survival.Step{Kind: survival.StepGameOver, TargetID: player.ID, Detail: reason})
	s.checkpoint(rec)
	slog.Info("game over",
		"simulation_id", s.id,
		"reason", reason,
		"day", s.state.Day,
		"turn", s.state.Turn)
	return true
}

// resolve settles the pending event. The scheduler resumes at PlayerTurn
// because events only fire at the end of an environment phase.
func (s *Simulation) resolve(eventID, choiceID string) (*survival.TurnResult, error) {
	switch s.state.Phase {
	case survival.PhaseGameOver:
		return nil, errors.InvalidAction(errors.ReasonGameOver, "the game is over: "+s.state.GameOver)
	case survival.PhasePendingEventChoice:
	default:
		return nil, errors.InvalidActionf(errors.ReasonNotYourTurn, "no event is pending during %s", s.state.Phase)
	}

	ev := s.state.Pending
	if eventID != ev.ID {
		return nil, errors.InvalidActionf(errors.ReasonEventMismatch, "event %s is not pending", eventID)
	}
	choice, ok := ev.Choice(choiceID)
	if !ok {
		return nil, errors.InvalidActionf(errors.ReasonUnknownChoice, "event %s has no choice %s", ev.ID, choiceID)
	}

	rec := survival.NewRecorder(survival.PhasePendingEventChoice)
	outcome, success := s.narrative.Resolve(choice)
	step := survival.Step{Kind: survival.StepChoiceResolved, ActorID: choice.ID, TargetID: ev.ID, Detail: outcome.Description}
	if success {
		step.Amount = 1
	}
	rec.Add(step)
	s.applyOutcome(rec, outcome)
	s.state.Pending = nil

	slog.Info("event resolved",
		"simulation_id", s.id,
		"event_id", ev.ID,
		"choice_id", choice.ID,
		"success", success)

	if !s.checkGameOver(rec) {
		s.enter(rec, survival.PhasePlayerTurn)
	}
	return s.result(true, rec.Steps()), nil
}

func (s *Simulation) applyOutcome(rec *survival.Recorder, o survival.Outcome) {
	player := s.state.Registry.Player()
	e := o.Effects

	switch {
	case e.Health > 0:
		healed := player.Heal(e.Health)
		rec.Add(survival.Step{Kind: survival.StepHealed, TargetID: player.ID, Amount: healed})
	case e.Health < 0:
		player.Health += e.Health
		rec.Add(survival.Step{Kind: survival.StepAttacked, TargetID: player.ID, Amount: -e.Health, Detail: "event"})
	}

	s.state.Resources.Apply(e)

	switch {
	case e.Survivors > 0:
		player.Survivors += e.Survivors
		rec.Add(survival.Step{Kind: survival.StepRecruited, ActorID: player.ID, Amount: player.Survivors})
	case e.Survivors < 0:
		lost := -e.Survivors
		if lost > player.Survivors {
			lost = player.Survivors
		}
		player.Survivors -= lost
		rec.Add(survival.Step{Kind: survival.StepCasualty, TargetID: player.ID, Amount: lost, Detail: "event"})
	}

	for _, d := range o.Reputation {
		s.state.Factions.Update(d.Faction, d.Delta)
		rec.Add(survival.Step{Kind: survival.StepReputation, TargetID: string(d.Faction), Amount: d.Delta, Detail: string(d.Faction)})
	}

	for i := 0; i < o.SpawnThreats; i++ {
		if !s.spawnZombie(rec, survival.VariantWalker) {
			break
		}
	}
}
