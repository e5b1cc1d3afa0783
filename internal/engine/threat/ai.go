// Package threat runs zombie and NPC turns.
//
// Every zombie acts first, then every NPC, each in registry order. The
// mover lists are captured when the phase starts; later movers observe
// the positions earlier movers ended on.
package threat

import (
	"log/slog"

	"github.com/KirkDiggler/deadgrid/internal/config"
	"github.com/KirkDiggler/deadgrid/internal/engine/combat"
	"github.com/KirkDiggler/deadgrid/internal/engine/grid"
	"github.com/KirkDiggler/deadgrid/internal/engine/registry"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
	"github.com/KirkDiggler/deadgrid/internal/pkg/rng"
)

// Config holds the dependencies for the threat AI
type Config struct {
	Rules     config.Threat
	NPCDamage int
	Registry  *registry.Registry
	Combat    *combat.Resolver
	Random    *rng.Source
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	if c.Combat == nil {
		vb.RequiredField("Combat")
	}
	if c.Random == nil {
		vb.RequiredField("Random")
	}
	errors.ValidateMin("NPCDamage", c.NPCDamage, 1, vb)
	return vb.Build()
}

// AI decides and applies threat actions
type AI struct {
	rules     config.Threat
	npcDamage int
	reg       *registry.Registry
	combat    *combat.Resolver
	src       *rng.Source
}

// New creates the threat AI
func New(cfg *Config) (*AI, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid threat config")
	}
	return &AI{
		rules:     cfg.Rules,
		npcDamage: cfg.NPCDamage,
		reg:       cfg.Registry,
		combat:    cfg.Combat,
		src:       cfg.Random,
	}, nil
}

// Run processes one threat phase. It stops early once the player dies.
func (a *AI) Run(rec *survival.Recorder, camp *survival.Camp) {
	player := a.reg.Player()

	for _, z := range a.reg.Zombies() {
		if !z.Active {
			continue
		}
		a.zombieTurn(rec, z, camp)
		if player.Health <= 0 {
			return
		}
	}

	for _, n := range a.reg.NPCs() {
		if !n.Active {
			continue
		}
		a.npcTurn(rec, n, camp)
		if player.Health <= 0 {
			return
		}
	}
}

// Target returns the position a zombie hunts: the nearer of the player
// and the camp, the player on ties
func Target(player *survival.Player, camp *survival.Camp, from survival.Position) survival.Position {
	if camp == nil {
		return player.Pos
	}
	if from.Manhattan(camp.Pos) < from.Manhattan(player.Pos) {
		return camp.Pos
	}
	return player.Pos
}

func (a *AI) zombieTurn(rec *survival.Recorder, z *survival.Zombie, camp *survival.Camp) {
	player := a.reg.Player()
	target := Target(player, camp, z.Pos)
	dist := z.Pos.Manhattan(target)

	if !z.Detected {
		if chance := DetectionChance(z, dist); chance > 0 && a.src.Chance(chance) {
			z.MarkDetected()
			rec.Add(survival.Step{Kind: survival.StepDetected, ActorID: z.ID, Amount: dist})
			slog.Debug("zombie detected player", "zombie_id", z.ID, "distance", dist)
		}
	}

	if z.Detected || dist <= a.rules.AlwaysAwareRadius {
		a.advance(rec, z, target, camp)
		return
	}
	a.wander(rec, z, camp)
}

func (a *AI) advance(rec *survival.Recorder, z *survival.Zombie, target survival.Position, camp *survival.Camp) {
	player := a.reg.Player()
	for _, next := range a.stepsToward(z.Variant, z.Pos, target) {
		if next == player.Pos {
			a.combat.HitPlayer(rec, z.ID, z.Damage, camp)
			return
		}
		if camp != nil && next == camp.Pos {
			a.combat.AssaultCamp(rec, z, camp)
			return
		}
		if a.reg.Free(next) {
			a.move(rec, z, next)
			return
		}
	}
}

func (a *AI) wander(rec *survival.Recorder, z *survival.Zombie, camp *survival.Camp) {
	if !a.src.Chance(a.rules.WanderChance) {
		return
	}
	dir := survival.Directions[a.src.Index(len(survival.Directions))]
	dx, dy, _ := dir.Delta()
	next := z.Pos.Add(dx, dy)
	if camp != nil && next == camp.Pos {
		return
	}
	if a.reg.Free(next) {
		a.move(rec, z, next)
	}
}

// stepsToward returns the preferred step first and, when both axes
// reduce distance, the other axis as a fallback. Only walker ties and
// group diagonals consume a roll.
func (a *AI) stepsToward(v survival.ZombieVariant, from, to survival.Position) []survival.Position {
	dx, dy := to.X-from.X, to.Y-from.Y
	ax, ay := abs(dx), abs(dy)
	if ax == 0 && ay == 0 {
		return nil
	}

	xStep := from.Add(sign(dx), 0)
	yStep := from.Add(0, sign(dy))
	if ay == 0 {
		return []survival.Position{xStep}
	}
	if ax == 0 {
		return []survival.Position{yStep}
	}

	preferX := ax > ay
	switch v {
	case survival.VariantGroup:
		preferX = a.src.Roll(ax+ay) <= ax
	case survival.VariantSwarm:
		preferX = ax >= ay
	case survival.VariantTank:
		preferX = ax > ay
	default:
		if ax == ay {
			preferX = a.src.Roll(2) == 1
		}
	}

	if preferX {
		return []survival.Position{xStep, yStep}
	}
	return []survival.Position{yStep, xStep}
}

func (a *AI) npcTurn(rec *survival.Recorder, n *survival.NPC, camp *survival.Camp) {
	player := a.reg.Player()

	switch n.Disposition {
	case survival.DispositionHostile:
		if !a.playerWithin(n.Pos, a.rules.NPCEngageRadius) {
			return
		}
		dx, dy := player.Pos.X-n.Pos.X, player.Pos.Y-n.Pos.Y
		var next survival.Position
		if abs(dx) >= abs(dy) {
			next = n.Pos.Add(sign(dx), 0)
		} else {
			next = n.Pos.Add(0, sign(dy))
		}
		if next == player.Pos {
			a.combat.HitPlayer(rec, n.ID, a.npcDamage, camp)
			return
		}
		if a.reg.Free(next) {
			a.move(rec, n, next)
		}

	case survival.DispositionFriendly:
		if !a.playerWithin(n.Pos, a.rules.NPCFleeRadius) {
			return
		}
		a.flee(rec, n)
	}
}

// playerWithin asks the world for everything radius steps from p and
// reports whether the player is among it
func (a *AI) playerWithin(p survival.Position, radius int) bool {
	player := a.reg.Player()
	for _, e := range a.reg.Within(p, radius) {
		if e == survival.Entity(player) {
			return true
		}
	}
	return false
}

// flee moves an NPC to the free neighbour farthest from the nearest
// zombie, only if that increases the distance
func (a *AI) flee(rec *survival.Recorder, n *survival.NPC) {
	var threat *survival.Zombie
	best := -1
	for _, z := range a.reg.Zombies() {
		d := n.Pos.Manhattan(z.Pos)
		if threat == nil || d < best {
			threat, best = z, d
		}
	}
	if threat == nil {
		return
	}

	current := best
	var dest *survival.Position
	for _, p := range grid.Neighbors(n.Pos) {
		if !a.reg.Free(p) {
			continue
		}
		if d := p.Manhattan(threat.Pos); d > current {
			current = d
			dest = survival.Ptr(p)
		}
	}
	if dest != nil {
		a.move(rec, n, *dest)
	}
}

func (a *AI) move(rec *survival.Recorder, e survival.Entity, to survival.Position) {
	from := e.Base().Pos
	if err := a.reg.Move(e, to); err != nil {
		slog.Debug("threat move rejected", "entity_id", e.GetID(), "to", to.String(), "error", err)
		return
	}
	rec.Add(survival.Step{Kind: survival.StepMoved, ActorID: e.GetID(), From: survival.Ptr(from), To: survival.Ptr(to)})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
