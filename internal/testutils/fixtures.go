package testutils

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/deadgrid/internal/engine/grid"
	"github.com/KirkDiggler/deadgrid/internal/engine/registry"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
)

// Faces that force a d10000 chance check either way
const (
	Pass = 1
	Fail = 10000
)

// Pos is shorthand for a survival.Position
func Pos(x, y int) survival.Position {
	return survival.Position{X: x, Y: y}
}

// World is an empty grid with a registered player
type World struct {
	Grid     *grid.Grid
	Registry *registry.Registry
	Player   *survival.Player
}

// NewWorld builds a width x height open world with the player at p
func NewWorld(t *testing.T, width, height int, p survival.Position) *World {
	g, err := grid.New(width, height)
	require.NoError(t, err)

	reg := registry.New(g)
	player := &survival.Player{
		BaseEntity: survival.BaseEntity{Kind: survival.KindPlayer, Pos: p},
		Health:     100,
		MaxHealth:  100,
		Inventory:  survival.Inventory{},
		Survivors:  3,
	}
	require.NoError(t, reg.Add(player))

	return &World{Grid: g, Registry: reg, Player: player}
}

// AddZombie registers a zombie of variant at p
func (w *World) AddZombie(t *testing.T, v survival.ZombieVariant, p survival.Position) *survival.Zombie {
	z := survival.NewZombie(v, p)
	require.NoError(t, w.Registry.Add(z))
	return z
}

// AddNPC registers an NPC with a fixed disposition at p
func (w *World) AddNPC(t *testing.T, f survival.FactionID, d survival.Disposition, p survival.Position, inv ...survival.ItemKind) *survival.NPC {
	n := &survival.NPC{
		BaseEntity:  survival.BaseEntity{Kind: survival.KindNPC, Pos: p},
		Name:        "Riley",
		Faction:     f,
		Disposition: d,
		Health:      50,
		MaxHealth:   50,
		Inventory:   inv,
	}
	require.NoError(t, w.Registry.Add(n))
	return n
}

// AddLoot registers a pickup at p
func (w *World) AddLoot(t *testing.T, item survival.ItemKind, qty int, p survival.Position) *survival.Loot {
	l := survival.NewLoot(item, qty, p)
	require.NoError(t, w.Registry.Add(l))
	return l
}

// AddBuilding registers a scavengeable building at p
func (w *World) AddBuilding(t *testing.T, p survival.Position, scavenges int) *survival.Building {
	b := &survival.Building{
		BaseEntity: survival.BaseEntity{Kind: survival.KindBuilding, Pos: p},
		Name:       "Pharmacy",
		Scavenges:  scavenges,
	}
	require.NoError(t, w.Registry.Add(b))
	return b
}

// Wall turns p into a wall
func (w *World) Wall(t *testing.T, p survival.Position) {
	require.NoError(t, w.Grid.SetTerrain(p, grid.Wall))
}
