// Package grid is the finite world space every other engine package builds on.
//
// The world is an rpg-toolkit spatial room over a square grid. Walls are
// room entities that block movement and sight; the registry places its
// entities in the same room so range and sight queries see everything.
package grid

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/tools/spatial"

	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
)

// Terrain is the static content of a tile
type Terrain uint8

// Terrain types
const (
	Open Terrain = iota
	Wall
)

const (
	roomID   = "world"
	roomType = "outdoor"
	wallType = "wall"
)

// wall is an impassable, opaque obstacle tile
type wall struct {
	id string
}

func (w *wall) GetID() string           { return w.id }
func (w *wall) GetType() string         { return wallType }
func (w *wall) GetSize() int            { return 1 }
func (w *wall) BlocksMovement() bool    { return true }
func (w *wall) BlocksLineOfSight() bool { return true }

// footprint stands in for a generic occupant when asking the room whether
// a tile can be entered
type footprint struct{}

func (footprint) GetID() string   { return "" }
func (footprint) GetType() string { return "footprint" }

// Grid is a width x height world backed by a spatial room
type Grid struct {
	width   int
	height  int
	squares *spatial.SquareGrid
	room    *spatial.BasicRoom
}

// New creates an all-open grid
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.InvalidArgumentf("grid must have positive size, got %dx%d", width, height)
	}

	squares := spatial.NewSquareGrid(spatial.SquareGridConfig{
		Width:  float64(width),
		Height: float64(height),
	})
	room := spatial.NewBasicRoom(spatial.BasicRoomConfig{
		ID:   roomID,
		Type: roomType,
		Grid: squares,
	})

	return &Grid{
		width:   width,
		height:  height,
		squares: squares,
		room:    room,
	}, nil
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p is on the grid
func (g *Grid) InBounds(p survival.Position) bool {
	return g.squares.IsValidPosition(toSpatial(p))
}

// Terrain returns the terrain at p; off-grid tiles read as Wall
func (g *Grid) Terrain(p survival.Position) Terrain {
	if !g.InBounds(p) {
		return Wall
	}
	for _, e := range g.room.GetEntitiesAt(toSpatial(p)) {
		if _, ok := e.(*wall); ok {
			return Wall
		}
	}
	return Open
}

// SetTerrain changes the terrain at p
func (g *Grid) SetTerrain(p survival.Position, t Terrain) error {
	if !g.InBounds(p) {
		return errors.InvalidArgumentf("position %s is outside the grid", p)
	}
	if g.Terrain(p) == t {
		return nil
	}

	id := wallID(p)
	switch t {
	case Wall:
		if err := g.room.PlaceEntity(&wall{id: id}, toSpatial(p)); err != nil {
			return errors.Wrapf(err, "failed to raise wall at %s", p)
		}
	case Open:
		if err := g.room.RemoveEntity(id); err != nil {
			return errors.Wrapf(err, "failed to clear wall at %s", p)
		}
	default:
		return errors.InvalidArgumentf("unknown terrain %d", t)
	}
	return nil
}

// Walkable reports whether an entity could stand on p, ignoring occupants
// the registry tracks
func (g *Grid) Walkable(p survival.Position) bool {
	return g.room.CanPlaceEntity(footprint{}, toSpatial(p))
}

// Neighbors returns the orthogonal neighbours of p in survival.Directions order,
// including off-grid ones
func Neighbors(p survival.Position) [4]survival.Position {
	var out [4]survival.Position
	for i, d := range survival.Directions {
		dx, dy, _ := d.Delta()
		out[i] = p.Add(dx, dy)
	}
	return out
}

// LineOfSight reports whether nothing opaque lies strictly between a and b
func (g *Grid) LineOfSight(a, b survival.Position) bool {
	if a == b {
		return true
	}
	return !g.room.IsLineOfSightBlocked(toSpatial(a), toSpatial(b))
}

// Place puts an occupant into the room at p
func (g *Grid) Place(e core.Entity, p survival.Position) error {
	if err := g.room.PlaceEntity(e, toSpatial(p)); err != nil {
		return errors.Wrapf(err, "failed to place %s at %s", e.GetID(), p)
	}
	return nil
}

// Relocate moves a placed occupant to p
func (g *Grid) Relocate(id string, p survival.Position) error {
	if err := g.room.MoveEntity(id, toSpatial(p)); err != nil {
		return errors.Wrapf(err, "failed to move %s to %s", id, p)
	}
	return nil
}

// Vacate takes an occupant out of the room
func (g *Grid) Vacate(id string) {
	if err := g.room.RemoveEntity(id); err != nil {
		slog.Warn("occupant missing from room", "entity_id", id, "error", err)
	}
}

// Near returns the ids of occupants the room finds within radius of
// center. Walls are never returned. The room measures with its own metric,
// which admits every tile within radius orthogonal steps, so callers narrow
// the result. The result is unordered.
func (g *Grid) Near(center survival.Position, radius int) []string {
	if radius < 0 {
		return nil
	}
	var ids []string
	for _, e := range g.room.GetEntitiesInRange(toSpatial(center), float64(radius)) {
		if _, ok := e.(*wall); ok {
			continue
		}
		ids = append(ids, e.GetID())
	}
	return ids
}

// Rows renders the terrain as strings of '.' and '#'
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	var b strings.Builder
	for y := 0; y < g.height; y++ {
		b.Reset()
		for x := 0; x < g.width; x++ {
			if g.Terrain(survival.Position{X: x, Y: y}) == Wall {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		rows[y] = b.String()
	}
	return rows
}

func wallID(p survival.Position) string {
	return fmt.Sprintf("wall_%d_%d", p.X, p.Y)
}

func toSpatial(p survival.Position) spatial.Position {
	return spatial.Position{X: float64(p.X), Y: float64(p.Y)}
}
