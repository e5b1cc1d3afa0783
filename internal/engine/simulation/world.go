package simulation

import (
	"log/slog"
	"math"

	"github.com/KirkDiggler/deadgrid/internal/engine/faction"
	"github.com/KirkDiggler/deadgrid/internal/engine/grid"
	"github.com/KirkDiggler/deadgrid/internal/engine/registry"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
)

var buildingNames = []string{
	"Pharmacy",
	"Grocery",
	"Police Station",
	"Gas Station",
	"Hardware Store",
	"Clinic",
	"School",
	"Warehouse",
}

type weighted[T any] struct {
	value  T
	weight int
}

var spawnLoot = []weighted[survival.ItemKind]{
	{survival.ItemAmmo, 20},
	{survival.ItemFood, 20},
	{survival.ItemWater, 20},
	{survival.ItemBandage, 15},
	{survival.ItemMaterials, 10},
	{survival.ItemMedkit, 5},
	{survival.ItemMedicine, 5},
	{survival.ItemWeapon, 5},
}

// waveVariants returns the zombie variant weights for a day
func waveVariants(day int) []weighted[survival.ZombieVariant] {
	switch {
	case day < 3:
		return []weighted[survival.ZombieVariant]{
			{survival.VariantWalker, 90},
			{survival.VariantGroup, 10},
		}
	case day < 7:
		return []weighted[survival.ZombieVariant]{
			{survival.VariantWalker, 60},
			{survival.VariantGroup, 35},
			{survival.VariantSwarm, 5},
		}
	default:
		return []weighted[survival.ZombieVariant]{
			{survival.VariantWalker, 40},
			{survival.VariantGroup, 40},
			{survival.VariantSwarm, 15},
			{survival.VariantTank, 5},
		}
	}
}

// WaveChance is the chance of a zombie wave at the start of day
func (s *Simulation) WaveChance(day int) float64 {
	r := s.rules.Simulation
	return math.Min(r.WaveMaxChance, r.WaveBaseChance+r.WaveDailyIncrease*float64(day))
}

func pick[T any](s *Simulation, table []weighted[T]) T {
	weights := make([]int, len(table))
	for i, e := range table {
		weights[i] = e.weight
	}
	return table[s.src.Weighted(weights)].value
}

// generateWorld lays out terrain then places buildings, the player,
// zombies, NPCs and loot. Terrain costs one draw per tile.
func (s *Simulation) generateWorld() (*State, error) {
	r := s.rules.Simulation
	g, err := grid.New(r.Width, r.Height)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create grid")
	}

	start := survival.Position{X: r.Width / 2, Y: r.Height / 2}
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			p := survival.Position{X: x, Y: y}
			if p.Manhattan(start) <= 1 {
				continue
			}
			if s.src.Chance(r.ObstacleDensity) {
				if err := g.SetTerrain(p, grid.Wall); err != nil {
					return nil, errors.Wrap(err, "failed to place wall")
				}
			}
		}
	}

	state := &State{
		Grid:     g,
		Registry: registry.New(g),
		Factions: faction.NewModel(),
		Resources: survival.Resources{
			Food:      r.StartFood,
			Water:     r.StartWater,
			Medicine:  r.StartMedicine,
			Ammo:      r.StartAmmo,
			Materials: r.StartMaterials,
		},
		Phase:   survival.PhasePlayerTurn,
		Weather: survival.WeatherClear,
		Day:     1,
	}

	player := &survival.Player{
		BaseEntity: survival.BaseEntity{Kind: survival.KindPlayer, Pos: start},
		Health:     r.PlayerHealth,
		MaxHealth:  r.PlayerHealth,
		Inventory:  survival.Inventory{},
		Survivors:  r.StartSurvivors,
	}
	if err := state.Registry.Add(player); err != nil {
		return nil, errors.Wrap(err, "failed to place player")
	}

	// Placement below reads s.state through spawnPoint
	s.state = state

	for i := 0; i < r.InitialBuildings; i++ {
		p, ok := s.spawnPoint(2, false)
		if !ok {
			break
		}
		b := &survival.Building{
			BaseEntity: survival.BaseEntity{Kind: survival.KindBuilding, Pos: p},
			Name:       buildingNames[i%len(buildingNames)],
			Scavenges:  s.rules.Economy.BuildingScavenges,
		}
		if err := state.Registry.Add(b); err != nil {
			return nil, errors.Wrap(err, "failed to place building")
		}
	}

	for i := 0; i < r.InitialZombies; i++ {
		p, ok := s.spawnPoint(r.SpawnMinDistance, true)
		if !ok {
			break
		}
		if err := state.Registry.Add(survival.NewZombie(pick(s, waveVariants(1)), p)); err != nil {
			return nil, errors.Wrap(err, "failed to place zombie")
		}
	}

	for i := 0; i < r.InitialNPCs; i++ {
		p, ok := s.spawnPoint(3, true)
		if !ok {
			break
		}
		if err := state.Registry.Add(state.Factions.Encounter(s.src, p)); err != nil {
			return nil, errors.Wrap(err, "failed to place npc")
		}
	}

	for i := 0; i < r.InitialLoot; i++ {
		p, ok := s.spawnPoint(1, false)
		if !ok {
			break
		}
		item := pick(s, spawnLoot)
		if err := state.Registry.Add(survival.NewLoot(item, survival.DefaultQuantity(item), p)); err != nil {
			return nil, errors.Wrap(err, "failed to place loot")
		}
	}

	return state, nil
}

// spawnPoint picks a walkable tile at least minDistance from the player and
// off the camp tile, with one draw over the candidates in row-major order.
// Blockers need a tile no blocker holds; anything else needs an empty tile.
func (s *Simulation) spawnPoint(minDistance int, blocker bool) (survival.Position, bool) {
	g := s.state.Grid
	reg := s.state.Registry
	player := reg.Player()

	var candidates []survival.Position
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			p := survival.Position{X: x, Y: y}
			if p.Manhattan(player.Pos) < minDistance || !g.Walkable(p) {
				continue
			}
			if s.state.Camp != nil && p == s.state.Camp.Pos {
				continue
			}
			if blocker && !reg.Free(p) {
				continue
			}
			if !blocker && len(reg.At(p)) > 0 {
				continue
			}
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return survival.Position{}, false
	}
	return candidates[s.src.Index(len(candidates))], true
}

// spawnZombie places one zombie for a wave or an event outcome
func (s *Simulation) spawnZombie(rec *survival.Recorder, v survival.ZombieVariant) bool {
	p, ok := s.spawnPoint(s.rules.Simulation.SpawnMinDistance, true)
	if !ok {
		slog.Debug("no room to spawn zombie", "simulation_id", s.id)
		return false
	}
	z := survival.NewZombie(v, p)
	if err := s.state.Registry.Add(z); err != nil {
		slog.Warn("failed to spawn zombie", "simulation_id", s.id, "error", err)
		return false
	}
	rec.Add(survival.Step{Kind: survival.StepSpawned, TargetID: z.ID, To: survival.Ptr(p), Detail: string(v)})
	return true
}

// spawnWave rolls the daily wave. Walkers arrive one to three at a time.
func (s *Simulation) spawnWave(rec *survival.Recorder) {
	if !s.src.Chance(s.WaveChance(s.state.Day)) {
		return
	}
	v := pick(s, waveVariants(s.state.Day))
	count := 1
	if v == survival.VariantWalker {
		count = s.src.Between(1, 3)
	}
	for i := 0; i < count; i++ {
		if !s.spawnZombie(rec, v) {
			return
		}
	}
	slog.Info("zombie wave", "simulation_id", s.id, "day", s.state.Day, "variant", v, "count", count)
}

func (s *Simulation) spawnNPC(rec *survival.Recorder) {
	if !s.src.Chance(s.rules.Simulation.NPCSpawnChance) {
		return
	}
	p, ok := s.spawnPoint(s.rules.Simulation.SpawnMinDistance, true)
	if !ok {
		return
	}
	n := s.state.Factions.Encounter(s.src, p)
	if err := s.state.Registry.Add(n); err != nil {
		slog.Warn("failed to spawn npc", "simulation_id", s.id, "error", err)
		return
	}
	rec.Add(survival.Step{Kind: survival.StepSpawned, TargetID: n.ID, To: survival.Ptr(p), Detail: string(n.Disposition)})
}

func (s *Simulation) spawnLoot(rec *survival.Recorder) {
	if !s.src.Chance(s.rules.Simulation.LootSpawnChance) {
		return
	}
	count := s.src.Between(1, 3)
	for i := 0; i < count; i++ {
		p, ok := s.spawnPoint(1, false)
		if !ok {
			return
		}
		item := pick(s, spawnLoot)
		l := survival.NewLoot(item, survival.DefaultQuantity(item), p)
		if err := s.state.Registry.Add(l); err != nil {
			slog.Warn("failed to spawn loot", "simulation_id", s.id, "error", err)
			return
		}
		rec.Add(survival.Step{Kind: survival.StepSpawned, TargetID: l.ID, To: survival.Ptr(p), Detail: string(item)})
	}
}
