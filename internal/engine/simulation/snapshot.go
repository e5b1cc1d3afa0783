package simulation

import (
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
)

func (s *Simulation) snapshot() *survival.Snapshot {
	st := s.state
	player := st.Registry.Player()

	snap := &survival.Snapshot{
		Width:       st.Grid.Width(),
		Height:      st.Grid.Height(),
		Terrain:     st.Grid.Rows(),
		Phase:       st.Phase,
		Day:         st.Day,
		Turn:        st.Turn,
		TurnsPerDay: s.rules.Simulation.TurnsPerDay,
		Weather:     st.Weather,
		Player: survival.PlayerView{
			ID:         player.ID,
			Position:   player.Pos,
			Health:     max(player.Health, 0),
			MaxHealth:  player.MaxHealth,
			Ammo:       st.Resources.Ammo,
			Survivors:  player.Survivors,
			MeleeBonus: player.MeleeBonus,
			Inventory:  player.Inventory.Clone(),
		},
		Resources:    st.Resources,
		Reputations:  st.Factions.All(),
		PendingEvent: copyEvent(st.Pending),
		GameOver:     st.GameOver,
	}
	if st.Camp != nil {
		camp := *st.Camp
		snap.Camp = &camp
	}

	for _, e := range st.Registry.All() {
		if _, ok := e.(*survival.Player); ok {
			continue
		}
		snap.Entities = append(snap.Entities, survival.ViewOf(e))
	}
	return snap
}

func (s *Simulation) result(committed bool, steps []survival.Step) *survival.TurnResult {
	return &survival.TurnResult{
		Committed:    committed,
		Phase:        s.state.Phase,
		Day:          s.state.Day,
		Turn:         s.state.Turn,
		Steps:        steps,
		PendingEvent: copyEvent(s.state.Pending),
		GameOver:     s.state.GameOver,
	}
}

func copyEvent(ev *survival.GameEvent) *survival.GameEvent {
	if ev == nil {
		return nil
	}
	out := *ev
	out.Choices = append([]survival.Choice(nil), ev.Choices...)
	return &out
}
