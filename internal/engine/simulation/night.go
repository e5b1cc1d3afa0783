package simulation

import (
	"log/slog"
	"math"

	"github.com/KirkDiggler/deadgrid/internal/engine/economy"
	"github.com/KirkDiggler/deadgrid/internal/engine/grid"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
)

var supplyDrop = []struct {
	item     survival.ItemKind
	quantity int
}{
	{survival.ItemFood, 3},
	{survival.ItemWater, 3},
	{survival.ItemMedicine, 2},
	{survival.ItemAmmo, 3},
}

// rollWeather picks the day's weather with one draw. With no fog or storm
// weight configured the sky stays clear and nothing is drawn.
func (s *Simulation) rollWeather(rec *survival.Recorder) {
	w := s.rules.Weather
	if w.FogWeight <= 0 && w.StormWeight <= 0 {
		return
	}

	next := pick(s, []weighted[survival.Weather]{
		{survival.WeatherClear, w.ClearWeight},
		{survival.WeatherFog, w.FogWeight},
		{survival.WeatherStorm, w.StormWeight},
	})
	if next == s.state.Weather {
		return
	}
	s.setWeather(next)
	rec.Add(survival.Step{Kind: survival.StepWeather, Detail: string(next)})
	slog.Info("weather changed", "simulation_id", s.id, "day", s.state.Day, "weather", next)
}

func (s *Simulation) setWeather(w survival.Weather) {
	s.state.Weather = w
	s.combat.SetWeather(w)
}

// night runs the overnight world dynamics in a fixed order. Each effect
// is off when its chance or interval is zero.
func (s *Simulation) night(rec *survival.Recorder) {
	s.spread(rec)
	s.collapse(rec)
	s.horde(rec)
	s.dropSupplies(rec)
	s.attackCamp(rec)
}

// SpreadChance is the chance each zombie draws a new walker overnight
func (s *Simulation) SpreadChance(day int) float64 {
	n := s.rules.Night
	return math.Min(1, n.SpreadBase+n.SpreadDaily*float64(day))
}

// spread lets every zombie present at nightfall infect a free neighbouring
// tile, one chance draw each and one index draw per success
func (s *Simulation) spread(rec *survival.Recorder) {
	n := s.rules.Night
	if n.SpreadBase <= 0 && n.SpreadDaily <= 0 {
		return
	}
	chance := s.SpreadChance(s.state.Day)
	reg := s.state.Registry

	for _, z := range reg.Zombies() {
		if len(reg.Zombies()) >= n.ZombieCap {
			return
		}
		if !s.src.Chance(chance) {
			continue
		}
		open := s.openAround(z.Pos)
		if len(open) == 0 {
			continue
		}
		p := open[s.src.Index(len(open))]
		walker := survival.NewZombie(survival.VariantWalker, p)
		if err := reg.Add(walker); err != nil {
			slog.Warn("failed to spread zombie", "simulation_id", s.id, "error", err)
			return
		}
		rec.Add(survival.Step{Kind: survival.StepSpread, ActorID: z.ID, TargetID: walker.ID, From: survival.Ptr(z.Pos), To: survival.Ptr(p)})
	}
}

// openAround lists the empty walkable neighbours of p off the camp tile
func (s *Simulation) openAround(p survival.Position) []survival.Position {
	var out []survival.Position
	for _, q := range grid.Neighbors(p) {
		if !s.state.Grid.Walkable(q) || len(s.state.Registry.At(q)) > 0 {
			continue
		}
		if s.state.Camp != nil && q == s.state.Camp.Pos {
			continue
		}
		out = append(out, q)
	}
	return out
}

// collapse brings down buildings, one draw each. A camp sheltering in a
// collapsed building is left standing in the open.
func (s *Simulation) collapse(rec *survival.Recorder) {
	chance := s.rules.Night.CollapseChance
	if chance <= 0 {
		return
	}
	reg := s.state.Registry

	for _, b := range reg.Buildings() {
		if !s.src.Chance(chance) {
			continue
		}
		reg.Remove(b.ID)
		rec.Add(survival.Step{Kind: survival.StepCollapsed, TargetID: b.ID, From: survival.Ptr(b.Pos), Detail: b.Name})
		slog.Info("building collapsed", "simulation_id", s.id, "building", b.Name)

		camp := s.state.Camp
		if camp == nil || camp.Pos != b.Pos || camp.Kind != survival.CampBuilding {
			continue
		}
		camp.Kind = survival.CampOpen
		camp.Defense = max(0, camp.Defense-(economy.BuildingCampDefense-economy.OpenCampDefense))
	}
}

// horde spawns a pack of group zombies every HordeInterval days
func (s *Simulation) horde(rec *survival.Recorder) {
	n := s.rules.Night
	if n.HordeInterval <= 0 || s.state.Day%n.HordeInterval != 0 {
		return
	}
	count := s.src.Between(n.HordeMin, n.HordeMax)
	rec.Add(survival.Step{Kind: survival.StepHorde, Amount: count})
	slog.Info("horde approaching", "simulation_id", s.id, "day", s.state.Day, "count", count)

	for i := 0; i < count; i++ {
		if !s.spawnZombie(rec, survival.VariantGroup) {
			return
		}
	}
}

// dropSupplies lands a crate of mixed loot on one tile
func (s *Simulation) dropSupplies(rec *survival.Recorder) {
	chance := s.rules.Night.SupplyDropChance
	if chance <= 0 || !s.src.Chance(chance) {
		return
	}
	p, ok := s.spawnPoint(1, false)
	if !ok {
		return
	}
	rec.Add(survival.Step{Kind: survival.StepSupplyDrop, To: survival.Ptr(p)})

	for _, d := range supplyDrop {
		l := survival.NewLoot(d.item, d.quantity, p)
		if err := s.state.Registry.Add(l); err != nil {
			slog.Warn("failed to drop supplies", "simulation_id", s.id, "error", err)
			return
		}
		rec.Add(survival.Step{Kind: survival.StepSpawned, TargetID: l.ID, To: survival.Ptr(p), Detail: string(d.item)})
	}
}

// attackCamp pits the zombies near the camp against its defenders. Nothing
// is drawn when no zombie is in range.
func (s *Simulation) attackCamp(rec *survival.Recorder) {
	camp := s.state.Camp
	radius := s.rules.Night.CampAttackRadius
	if camp == nil || radius <= 0 {
		return
	}

	nearby := 0
	for _, e := range s.state.Registry.Within(camp.Pos, radius) {
		if _, ok := e.(*survival.Zombie); ok {
			nearby++
		}
	}
	if nearby == 0 {
		return
	}

	player := s.state.Registry.Player()
	attack := nearby * s.src.Between(50, 150)
	defense := (camp.Defense + player.Survivors) * s.src.Between(80, 120)
	if attack <= defense {
		rec.Add(survival.Step{Kind: survival.StepCampDefended, TargetID: player.ID, Amount: nearby, Detail: "night attack"})
		return
	}

	lost := min(player.Survivors, s.src.Between(1, max(1, nearby/2)))
	player.Survivors -= lost
	rec.Add(survival.Step{Kind: survival.StepCampBreached, TargetID: player.ID, Amount: lost, Detail: "night attack"})
	slog.Info("camp overrun at night",
		"simulation_id", s.id,
		"zombies", nearby,
		"lost", lost)
}
