// Package registry owns every live entity of a simulation.
//
// Iteration order is insertion order. Removal is immediate: once Remove
// returns, no query can observe the entity again.
package registry

import (
	"log/slog"

	"github.com/KirkDiggler/deadgrid/internal/engine/grid"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
	"github.com/KirkDiggler/deadgrid/internal/pkg/idgen"
)

// Registry is an ordered, id-keyed entity store bound to a grid
type Registry struct {
	grid   *grid.Grid
	order  []string
	byID   map[string]survival.Entity
	ids    map[survival.Kind]idgen.Generator
	player *survival.Player
}

// New creates an empty registry on g
func New(g *grid.Grid) *Registry {
	return &Registry{
		grid: g,
		byID: make(map[string]survival.Entity),
		ids:  make(map[survival.Kind]idgen.Generator),
	}
}

// Grid returns the world grid
func (r *Registry) Grid() *grid.Grid {
	return r.grid
}

func (r *Registry) nextID(kind survival.Kind) string {
	gen, ok := r.ids[kind]
	if !ok {
		gen = idgen.NewSequential(string(kind))
		r.ids[kind] = gen
	}
	return gen.Generate()
}

// Add places an entity. It assigns an id when none is set and rejects
// off-grid, wall and blocked tiles.
func (r *Registry) Add(e survival.Entity) error {
	b := e.Base()
	if !r.grid.InBounds(b.Pos) {
		return errors.InvalidArgumentf("cannot place %s at %s: out of bounds", b.Kind, b.Pos)
	}
	if !r.grid.Walkable(b.Pos) {
		return errors.InvalidArgumentf("cannot place %s at %s: wall", b.Kind, b.Pos)
	}
	if survival.Blocking(e) && r.BlockerAt(b.Pos) != nil {
		return errors.InvalidArgumentf("cannot place %s at %s: occupied", b.Kind, b.Pos)
	}
	if p, ok := e.(*survival.Player); ok && r.player != nil && r.player != p {
		return errors.AlreadyExists("a player is already registered")
	}

	if b.ID == "" {
		b.ID = r.nextID(b.Kind)
	}
	if _, exists := r.byID[b.ID]; exists {
		return errors.AlreadyExists("entity " + b.ID + " already registered")
	}

	if err := r.grid.Place(e, b.Pos); err != nil {
		return err
	}

	b.Active = true
	r.byID[b.ID] = e
	r.order = append(r.order, b.ID)
	if p, ok := e.(*survival.Player); ok {
		r.player = p
	}
	return nil
}

// Remove deletes an entity synchronously. The player cannot be removed.
func (r *Registry) Remove(id string) bool {
	e, ok := r.byID[id]
	if !ok {
		return false
	}
	if _, isPlayer := e.(*survival.Player); isPlayer {
		return false
	}
	r.grid.Vacate(id)
	e.Base().Active = false
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the entity with id
func (r *Registry) Get(id string) (survival.Entity, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// Player returns the protagonist, or nil before one is added
func (r *Registry) Player() *survival.Player {
	return r.player
}

// Len returns the number of live entities
func (r *Registry) Len() int {
	return len(r.order)
}

// All returns live entities in registry order
func (r *Registry) All() []survival.Entity {
	out := make([]survival.Entity, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Zombies returns a copy of the live zombie list in registry order
func (r *Registry) Zombies() []*survival.Zombie {
	var out []*survival.Zombie
	for _, id := range r.order {
		if z, ok := r.byID[id].(*survival.Zombie); ok {
			out = append(out, z)
		}
	}
	return out
}

// NPCs returns a copy of the live NPC list in registry order
func (r *Registry) NPCs() []*survival.NPC {
	var out []*survival.NPC
	for _, id := range r.order {
		if n, ok := r.byID[id].(*survival.NPC); ok {
			out = append(out, n)
		}
	}
	return out
}

// Buildings returns live buildings in registry order
func (r *Registry) Buildings() []*survival.Building {
	var out []*survival.Building
	for _, id := range r.order {
		if b, ok := r.byID[id].(*survival.Building); ok {
			out = append(out, b)
		}
	}
	return out
}

// At returns every entity on p in registry order
func (r *Registry) At(p survival.Position) []survival.Entity {
	var out []survival.Entity
	for _, id := range r.order {
		e := r.byID[id]
		if e.Base().Pos == p {
			out = append(out, e)
		}
	}
	return out
}

// BlockerAt returns the player, zombie or NPC standing on p
func (r *Registry) BlockerAt(p survival.Position) survival.Entity {
	for _, e := range r.At(p) {
		if survival.Blocking(e) {
			return e
		}
	}
	return nil
}

// ZombieAt returns the zombie on p
func (r *Registry) ZombieAt(p survival.Position) *survival.Zombie {
	if z, ok := r.BlockerAt(p).(*survival.Zombie); ok {
		return z
	}
	return nil
}

// LootAt returns pickups on p in registry order
func (r *Registry) LootAt(p survival.Position) []*survival.Loot {
	var out []*survival.Loot
	for _, e := range r.At(p) {
		if l, ok := e.(*survival.Loot); ok {
			out = append(out, l)
		}
	}
	return out
}

// BuildingAt returns the building on p
func (r *Registry) BuildingAt(p survival.Position) *survival.Building {
	for _, e := range r.At(p) {
		if b, ok := e.(*survival.Building); ok {
			return b
		}
	}
	return nil
}

// Within returns every entity at most radius steps from center, in
// registry order
func (r *Registry) Within(center survival.Position, radius int) []survival.Entity {
	near := make(map[string]bool)
	for _, id := range r.grid.Near(center, radius) {
		near[id] = true
	}

	var out []survival.Entity
	for _, id := range r.order {
		e := r.byID[id]
		if near[id] && e.Base().Pos.Manhattan(center) <= radius {
			out = append(out, e)
		}
	}
	return out
}

// Free reports whether a blocking entity could enter p
func (r *Registry) Free(p survival.Position) bool {
	return r.grid.Walkable(p) && r.BlockerAt(p) == nil
}

// Move relocates a live entity, enforcing bounds, walls and blockers
func (r *Registry) Move(e survival.Entity, to survival.Position) error {
	b := e.Base()
	if _, ok := r.byID[b.ID]; !ok {
		return errors.NotFoundf("entity %s is not registered", b.ID)
	}
	if !r.grid.InBounds(to) {
		return errors.InvalidAction(errors.ReasonOutOfBounds, "destination "+to.String()+" is outside the grid")
	}
	if !r.grid.Walkable(to) {
		return errors.InvalidAction(errors.ReasonBlocked, "destination "+to.String()+" is a wall")
	}
	if blocker := r.BlockerAt(to); blocker != nil && blocker != e {
		return errors.InvalidAction(errors.ReasonBlocked, "destination "+to.String()+" is occupied by "+blocker.GetID())
	}
	if err := r.grid.Relocate(b.ID, to); err != nil {
		return err
	}
	b.Pos = to
	return nil
}

// Turn replaces a dead NPC with a zombie on the same tile and converts
// the dropped items into loot there. The zombie takes the next zombie id.
func (r *Registry) Turn(npc *survival.NPC, variant survival.ZombieVariant, dropped []survival.ItemKind) (*survival.Zombie, []*survival.Loot, error) {
	pos := npc.Pos
	if !r.Remove(npc.ID) {
		return nil, nil, errors.NotFoundf("npc %s is not registered", npc.ID)
	}

	z := survival.NewZombie(variant, pos)
	if err := r.Add(z); err != nil {
		return nil, nil, errors.Wrapf(err, "failed to raise %s", npc.ID)
	}

	loot := make([]*survival.Loot, 0, len(dropped))
	for _, item := range dropped {
		l := survival.NewLoot(item, survival.DefaultQuantity(item), pos)
		if err := r.Add(l); err != nil {
			return nil, nil, errors.Wrapf(err, "failed to drop %s from %s", item, npc.ID)
		}
		loot = append(loot, l)
	}

	slog.Debug("npc turned", "npc_id", npc.ID, "zombie_id", z.ID, "dropped", len(loot))
	return z, loot, nil
}
