package grid_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/deadgrid/internal/engine/grid"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
)

type GridTestSuite struct {
	suite.Suite
	grid *grid.Grid
}

func TestGridSuite(t *testing.T) {
	suite.Run(t, new(GridTestSuite))
}

func (s *GridTestSuite) SetupTest() {
	g, err := grid.New(10, 8)
	s.Require().NoError(err)
	s.grid = g
}

func pos(x, y int) survival.Position { return survival.Position{X: x, Y: y} }

func (s *GridTestSuite) TestBounds() {
	s.Assert().True(s.grid.InBounds(pos(0, 0)))
	s.Assert().True(s.grid.InBounds(pos(9, 7)))
	s.Assert().False(s.grid.InBounds(pos(10, 0)))
	s.Assert().False(s.grid.InBounds(pos(0, -1)))
	s.Assert().False(s.grid.Walkable(pos(-1, 3)))
}

func (s *GridTestSuite) TestNewRejectsEmpty() {
	_, err := grid.New(0, 5)
	s.Assert().Error(err)
}

func (s *GridTestSuite) TestWalls() {
	s.Require().NoError(s.grid.SetTerrain(pos(3, 3), grid.Wall))
	s.Assert().False(s.grid.Walkable(pos(3, 3)))
	s.Assert().Error(s.grid.SetTerrain(pos(30, 3), grid.Wall))
	s.Assert().Equal("...#......", s.grid.Rows()[3])
	s.Assert().Equal(grid.Wall, s.grid.Terrain(pos(3, 3)))
	s.Assert().Equal(grid.Wall, s.grid.Terrain(pos(-1, 3)))

	s.Require().NoError(s.grid.SetTerrain(pos(3, 3), grid.Open))
	s.Assert().True(s.grid.Walkable(pos(3, 3)))
	s.Assert().Equal("..........", s.grid.Rows()[3])
}

func (s *GridTestSuite) TestOccupantsShareTheRoomWithWalls() {
	z := survival.NewZombie(survival.VariantWalker, pos(2, 2))
	z.ID = "zombie_1"
	s.Require().NoError(s.grid.SetTerrain(pos(3, 2), grid.Wall))
	s.Require().NoError(s.grid.Place(z, z.Pos))

	s.Assert().Equal([]string{"zombie_1"}, s.grid.Near(pos(2, 4), 2))
	s.Assert().Empty(s.grid.Near(pos(2, 5), 2))
	s.Assert().True(s.grid.Walkable(pos(2, 2)), "occupants are the registry's concern")

	s.Require().NoError(s.grid.Relocate(z.ID, pos(2, 6)))
	s.Assert().Equal([]string{"zombie_1"}, s.grid.Near(pos(2, 5), 1))

	s.grid.Vacate(z.ID)
	s.Assert().Empty(s.grid.Near(pos(2, 5), 1))
	s.Assert().Empty(s.grid.Near(pos(3, 2), 0), "walls never show up as occupants")
}

func (s *GridTestSuite) TestLineOfSight() {
	s.Require().NoError(s.grid.SetTerrain(pos(5, 2), grid.Wall))

	s.Assert().True(s.grid.LineOfSight(pos(2, 2), pos(4, 2)))
	s.Assert().False(s.grid.LineOfSight(pos(2, 2), pos(8, 2)))
	s.Assert().True(s.grid.LineOfSight(pos(2, 4), pos(8, 4)))
	s.Assert().True(s.grid.LineOfSight(pos(4, 2), pos(4, 2)))
}

func (s *GridTestSuite) TestNeighborsOrder() {
	n := grid.Neighbors(pos(4, 4))
	s.Assert().Equal([4]survival.Position{pos(4, 3), pos(4, 5), pos(3, 4), pos(5, 4)}, n)
}
