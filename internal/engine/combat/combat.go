// Package combat resolves melee, ranged and threat attacks.
//
// Every check that can decline an attack runs before the first mutation,
// so a declined attack leaves health, ammo and positions untouched.
// Damage is rolled fresh on every call. Fog and storms make player attacks
// miss; under a clear sky no hit check is rolled.
package combat

import (
	"log/slog"

	"github.com/KirkDiggler/deadgrid/internal/config"
	"github.com/KirkDiggler/deadgrid/internal/engine/faction"
	"github.com/KirkDiggler/deadgrid/internal/engine/registry"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
	"github.com/KirkDiggler/deadgrid/internal/pkg/rng"
)

// Loot table weights used when a zombie drops something
var lootTable = []struct {
	item   survival.ItemKind
	weight int
}{
	{survival.ItemAmmo, 30},
	{survival.ItemMedkit, 10},
	{survival.ItemBandage, 20},
	{survival.ItemFood, 30},
	{survival.ItemWeapon, 10},
}

// NPCDropChance is the chance each carried item survives an NPC's death as loot
const NPCDropChance = 0.5

// Config holds the dependencies for a resolver
type Config struct {
	Rules    config.Combat
	Weather  config.Weather
	Registry *registry.Registry
	Factions *faction.Model
	Random   *rng.Source
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	if c.Factions == nil {
		vb.RequiredField("Factions")
	}
	if c.Random == nil {
		vb.RequiredField("Random")
	}
	return vb.Build()
}

// Resolver computes combat outcomes for one simulation
type Resolver struct {
	rules    config.Combat
	sky      config.Weather
	weather  survival.Weather
	reg      *registry.Registry
	factions *faction.Model
	src      *rng.Source
}

// NewResolver creates a resolver
func NewResolver(cfg *Config) (*Resolver, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid combat config")
	}
	return &Resolver{
		rules:    cfg.Rules,
		sky:      cfg.Weather,
		weather:  survival.WeatherClear,
		reg:      cfg.Registry,
		factions: cfg.Factions,
		src:      cfg.Random,
	}, nil
}

// SetWeather changes the conditions later attacks are rolled under
func (r *Resolver) SetWeather(w survival.Weather) {
	r.weather = w
}

// HitChance is the chance a player attack lands in the current weather
func (r *Resolver) HitChance() float64 {
	switch r.weather {
	case survival.WeatherFog:
		return r.sky.FogHitChance
	case survival.WeatherStorm:
		return r.sky.StormHitChance
	}
	return 1
}

// RangedRange is the reach of a ranged attack in the current weather
func (r *Resolver) RangedRange() int {
	reach := r.rules.RangedRange
	if r.weather == survival.WeatherStorm && r.sky.StormRangeFactor > 0 {
		reach = int(float64(reach) * r.sky.StormRangeFactor)
	}
	return max(reach, 1)
}

// lands rolls the weather hit check
func (r *Resolver) lands() bool {
	p := r.HitChance()
	if p >= 1 {
		return true
	}
	return r.src.Chance(p)
}

func (r *Resolver) miss(rec *survival.Recorder, attackerID string, target survival.Entity) {
	rec.Add(survival.Step{Kind: survival.StepMissed, ActorID: attackerID, TargetID: target.GetID(), Detail: string(r.weather)})
}

// MeleeTarget finds what the player would strike: the entity named by
// targetID, or the blocker one step in dir.
func (r *Resolver) MeleeTarget(targetID string, dir survival.Direction) (survival.Entity, error) {
	player := r.reg.Player()
	if targetID != "" {
		e, ok := r.reg.Get(targetID)
		if !ok {
			return nil, errors.InvalidActionf(errors.ReasonNoTarget, "no entity %s", targetID)
		}
		return e, nil
	}

	dx, dy, ok := dir.Delta()
	if !ok {
		return nil, errors.InvalidActionf(errors.ReasonUnknownAction, "melee needs a target or a direction, got %q", dir)
	}
	e := r.reg.BlockerAt(player.Pos.Add(dx, dy))
	if e == nil {
		return nil, errors.InvalidAction(errors.ReasonNoTarget, "nothing to strike there")
	}
	return e, nil
}

// Melee resolves a player strike against target. Range is checked first.
// Draw order: the weather hit check, damage, then either the loot/drop
// rolls on a kill or the counter-attack roll. A miss skips straight to the
// counter-attack.
func (r *Resolver) Melee(rec *survival.Recorder, target survival.Entity) error {
	player := r.reg.Player()

	var variance int
	switch target.(type) {
	case *survival.Zombie:
		variance = r.rules.MeleeVariance
	case *survival.NPC:
		variance = r.rules.NPCMeleeVariance
	default:
		return errors.InvalidActionf(errors.ReasonNoTarget, "%s cannot be attacked", target.GetType())
	}
	if player.Pos.Manhattan(target.Base().Pos) > 1 {
		return errors.InvalidActionf(errors.ReasonOutOfRange, "%s is not adjacent", target.GetID())
	}

	if r.lands() {
		base := r.rules.MeleeBase + player.MeleeBonus
		damage := r.src.Between(base, base+variance)
		killed := r.strike(rec, player.ID, target, damage)
		if killed || player.Health <= 0 {
			return nil
		}
	} else {
		r.miss(rec, player.ID, target)
	}

	if r.src.Chance(r.rules.CounterChance) {
		player.Health -= r.rules.CounterDamage
		rec.Add(survival.Step{
			Kind:     survival.StepCounter,
			ActorID:  target.GetID(),
			TargetID: player.ID,
			Amount:   r.rules.CounterDamage,
		})
	}
	return nil
}

// NearestRangedTarget returns the closest zombie or hostile NPC in range
// and line of sight. Ties go to registry order.
func (r *Resolver) NearestRangedTarget() survival.Entity {
	player := r.reg.Player()
	g := r.reg.Grid()

	var best survival.Entity
	bestDist := 0
	for _, e := range r.reg.Within(player.Pos, r.RangedRange()) {
		switch t := e.(type) {
		case *survival.Zombie:
		case *survival.NPC:
			if t.Disposition != survival.DispositionHostile {
				continue
			}
		default:
			continue
		}
		d := player.Pos.Manhattan(e.Base().Pos)
		if d == 0 || (best != nil && d >= bestDist) {
			continue
		}
		if !g.LineOfSight(player.Pos, e.Base().Pos) {
			continue
		}
		best, bestDist = e, d
	}
	return best
}

// Ranged fires at the nearest valid target. Ammo is only spent once a
// target is confirmed; a miss still spends it.
func (r *Resolver) Ranged(rec *survival.Recorder, res *survival.Resources) error {
	if res.Ammo < r.rules.RangedCost {
		return errors.InvalidActionf(errors.ReasonInsufficientAmmo, "need %d ammo, have %d", r.rules.RangedCost, res.Ammo)
	}
	target := r.NearestRangedTarget()
	if target == nil {
		return errors.InvalidActionf(errors.ReasonNoTarget, "no target within %d tiles", r.RangedRange())
	}

	res.Ammo -= r.rules.RangedCost
	player := r.reg.Player()
	if !r.lands() {
		r.miss(rec, player.ID, target)
		return nil
	}
	damage := r.src.Between(r.rules.RangedMin, r.rules.RangedMax)
	r.strike(rec, player.ID, target, damage)
	return nil
}

// HitPlayer applies a threat attack of random(base, 2*base). A player
// standing on the camp tile has the damage cut by defense/5, minimum 1.
func (r *Resolver) HitPlayer(rec *survival.Recorder, attackerID string, base int, camp *survival.Camp) int {
	player := r.reg.Player()
	damage := r.src.Between(base, 2*base)
	if camp != nil && camp.Pos == player.Pos {
		damage -= camp.Defense / 5
		if damage < 1 {
			damage = 1
		}
	}
	player.Health -= damage
	rec.Add(survival.Step{
		Kind:     survival.StepAttacked,
		ActorID:  attackerID,
		TargetID: player.ID,
		Amount:   damage,
	})
	slog.Debug("player hit", "attacker", attackerID, "damage", damage, "health", player.Health)
	return damage
}

// AssaultCamp resolves a zombie reaching the camp barricade
func (r *Resolver) AssaultCamp(rec *survival.Recorder, z *survival.Zombie, camp *survival.Camp) {
	player := r.reg.Player()
	hold := 0.4 + 0.05*float64(camp.Defense)
	if hold > 0.9 {
		hold = 0.9
	}

	if r.src.Chance(hold) {
		camp.Defense++
		rec.Add(survival.Step{Kind: survival.StepCampDefended, ActorID: z.ID, Amount: camp.Defense})
		r.strike(rec, "camp", z, r.rules.BarricadeRecoil)
		return
	}

	if camp.Defense > 0 {
		camp.Defense--
	}
	lost := 0
	if player.Survivors > 0 {
		player.Survivors--
		lost = 1
	}
	rec.Add(survival.Step{Kind: survival.StepCampBreached, ActorID: z.ID, Amount: lost, Detail: "barricade failed"})
}

// strike applies damage and resolves a kill; it reports whether the target died
func (r *Resolver) strike(rec *survival.Recorder, attackerID string, target survival.Entity, damage int) bool {
	var health *int
	switch t := target.(type) {
	case *survival.Zombie:
		health = &t.Health
	case *survival.NPC:
		health = &t.Health
		if attackerID == r.reg.Player().ID && t.Disposition != survival.DispositionHostile {
			r.shiftReputation(rec, t.Faction, -r.rules.AttackRepPenalty)
		}
	default:
		return false
	}

	*health -= damage
	rec.Add(survival.Step{Kind: survival.StepAttacked, ActorID: attackerID, TargetID: target.GetID(), Amount: damage})
	if *health > 0 {
		return false
	}

	switch t := target.(type) {
	case *survival.Zombie:
		r.killZombie(rec, attackerID, t)
	case *survival.NPC:
		r.killNPC(rec, attackerID, t)
	}
	return true
}

func (r *Resolver) killZombie(rec *survival.Recorder, attackerID string, z *survival.Zombie) {
	pos := z.Pos
	r.reg.Remove(z.ID)
	rec.Add(survival.Step{Kind: survival.StepKilled, ActorID: attackerID, TargetID: z.ID, From: survival.Ptr(pos)})

	if !r.src.Chance(z.LootChance) {
		return
	}
	weights := make([]int, len(lootTable))
	for i, e := range lootTable {
		weights[i] = e.weight
	}
	item := lootTable[r.src.Weighted(weights)].item
	l := survival.NewLoot(item, survival.DefaultQuantity(item), pos)
	if err := r.reg.Add(l); err != nil {
		slog.Warn("failed to drop loot", "zombie_id", z.ID, "error", err)
		return
	}
	rec.Add(survival.Step{Kind: survival.StepLootDropped, TargetID: l.ID, To: survival.Ptr(pos), Detail: string(item)})
}

func (r *Resolver) killNPC(rec *survival.Recorder, attackerID string, n *survival.NPC) {
	if attackerID == r.reg.Player().ID {
		r.shiftReputation(rec, n.Faction, -r.rules.KillRepPenalty)
	}
	rec.Add(survival.Step{Kind: survival.StepKilled, ActorID: attackerID, TargetID: n.ID, From: survival.Ptr(n.Pos)})

	var dropped []survival.ItemKind
	for _, item := range n.Inventory {
		if r.src.Chance(NPCDropChance) {
			dropped = append(dropped, item)
		}
	}

	z, loot, err := r.reg.Turn(n, survival.VariantWalker, dropped)
	if err != nil {
		slog.Error("failed to turn npc", "npc_id", n.ID, "error", err)
		return
	}
	rec.Add(survival.Step{Kind: survival.StepTurned, ActorID: n.ID, TargetID: z.ID, To: survival.Ptr(z.Pos)})
	for _, l := range loot {
		rec.Add(survival.Step{Kind: survival.StepLootDropped, TargetID: l.ID, To: survival.Ptr(l.Pos), Detail: string(l.Item)})
	}
}

func (r *Resolver) shiftReputation(rec *survival.Recorder, f survival.FactionID, delta int) {
	if delta == 0 {
		return
	}
	v := r.factions.Update(f, delta)
	rec.Add(survival.Step{Kind: survival.StepReputation, TargetID: string(f), Amount: delta, Detail: string(f)})
	slog.Debug("reputation shifted by combat", "faction", f, "delta", delta, "value", v)
}
