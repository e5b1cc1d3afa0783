package registry_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/deadgrid/internal/engine/grid"
	"github.com/KirkDiggler/deadgrid/internal/engine/registry"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
)

type RegistryTestSuite struct {
	suite.Suite
	grid     *grid.Grid
	registry *registry.Registry
	player   *survival.Player
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func pos(x, y int) survival.Position { return survival.Position{X: x, Y: y} }

func (s *RegistryTestSuite) SetupTest() {
	g, err := grid.New(10, 10)
	s.Require().NoError(err)
	s.grid = g
	s.registry = registry.New(g)
	s.player = &survival.Player{
		BaseEntity: survival.BaseEntity{Kind: survival.KindPlayer, Pos: pos(5, 5)},
		Health:     100,
		MaxHealth:  100,
		Inventory:  survival.Inventory{},
	}
	s.Require().NoError(s.registry.Add(s.player))
}

func (s *RegistryTestSuite) TestAddAssignsSequentialIDs() {
	z1 := survival.NewZombie(survival.VariantWalker, pos(1, 1))
	z2 := survival.NewZombie(survival.VariantGroup, pos(2, 1))
	s.Require().NoError(s.registry.Add(z1))
	s.Require().NoError(s.registry.Add(z2))

	s.Assert().Equal("player_1", s.player.ID)
	s.Assert().Equal("zombie_1", z1.ID)
	s.Assert().Equal("zombie_2", z2.ID)
	s.Assert().Equal([]*survival.Zombie{z1, z2}, s.registry.Zombies())
}

func (s *RegistryTestSuite) TestAddRejectsInvalidPlacement() {
	s.Require().NoError(s.grid.SetTerrain(pos(0, 0), grid.Wall))

	s.Assert().Error(s.registry.Add(survival.NewZombie(survival.VariantWalker, pos(0, 0))))
	s.Assert().Error(s.registry.Add(survival.NewZombie(survival.VariantWalker, pos(-1, 0))))
	s.Assert().Error(s.registry.Add(survival.NewZombie(survival.VariantWalker, pos(5, 5))))

	second := &survival.Player{BaseEntity: survival.BaseEntity{Kind: survival.KindPlayer, Pos: pos(7, 7)}}
	s.Assert().Error(s.registry.Add(second))

	// loot may share a tile with a blocker
	s.Assert().NoError(s.registry.Add(survival.NewLoot(survival.ItemAmmo, 10, pos(5, 5))))
}

func (s *RegistryTestSuite) TestRemoveIsImmediate() {
	z := survival.NewZombie(survival.VariantWalker, pos(1, 1))
	s.Require().NoError(s.registry.Add(z))

	s.Assert().True(s.registry.Remove(z.ID))
	s.Assert().False(z.Active)
	_, ok := s.registry.Get(z.ID)
	s.Assert().False(ok)
	s.Assert().Nil(s.registry.ZombieAt(pos(1, 1)))
	s.Assert().Empty(s.registry.Zombies())
	s.Assert().False(s.registry.Remove(z.ID))
	s.Assert().False(s.registry.Remove(s.player.ID))
}

func (s *RegistryTestSuite) TestMove() {
	z := survival.NewZombie(survival.VariantWalker, pos(1, 1))
	s.Require().NoError(s.registry.Add(z))
	s.Require().NoError(s.grid.SetTerrain(pos(1, 2), grid.Wall))

	s.Require().NoError(s.registry.Move(z, pos(2, 1)))
	s.Assert().Equal(pos(2, 1), z.Pos)

	err := s.registry.Move(z, pos(2, -1))
	s.Assert().Equal(errors.ReasonOutOfBounds, errors.GetReason(err))

	s.Require().NoError(s.registry.Move(z, pos(1, 1)))
	err = s.registry.Move(z, pos(1, 2))
	s.Assert().Equal(errors.ReasonBlocked, errors.GetReason(err))

	s.Require().NoError(s.registry.Move(s.player, pos(2, 1)))
	err = s.registry.Move(z, pos(2, 1))
	s.Assert().Equal(errors.ReasonBlocked, errors.GetReason(err))
	s.Assert().Equal(pos(1, 1), z.Pos)
}

func (s *RegistryTestSuite) TestTurnReplacesNPCWithZombieAndLoot() {
	npc := &survival.NPC{
		BaseEntity: survival.BaseEntity{Kind: survival.KindNPC, Pos: pos(3, 3)},
		Name:       "Quinn",
		Faction:    survival.FactionRaiders,
		Inventory:  []survival.ItemKind{survival.ItemAmmo, survival.ItemFood},
	}
	s.Require().NoError(s.registry.Add(npc))

	z, loot, err := s.registry.Turn(npc, survival.VariantWalker, npc.Inventory[:1])
	s.Require().NoError(err)

	_, ok := s.registry.Get(npc.ID)
	s.Assert().False(ok)
	s.Assert().Equal(pos(3, 3), z.Pos)
	s.Assert().Equal(z, s.registry.ZombieAt(pos(3, 3)))
	s.Require().Len(loot, 1)
	s.Assert().Equal(survival.ItemAmmo, loot[0].Item)
	s.Assert().Equal(10, loot[0].Quantity)
	s.Assert().Equal(loot, s.registry.LootAt(pos(3, 3)))
}

func (s *RegistryTestSuite) TestQueries() {
	b := &survival.Building{BaseEntity: survival.BaseEntity{Kind: survival.KindBuilding, Pos: pos(8, 8)}, Scavenges: 3}
	s.Require().NoError(s.registry.Add(b))

	s.Assert().Equal(b, s.registry.BuildingAt(pos(8, 8)))
	s.Assert().True(s.registry.Free(pos(8, 8)))
	s.Assert().False(s.registry.Free(pos(5, 5)))
	s.Assert().Equal(s.player, s.registry.BlockerAt(pos(5, 5)))
	s.Assert().Equal(2, s.registry.Len())
	s.Assert().Len(s.registry.Buildings(), 1)
}

func (s *RegistryTestSuite) TestWithinUsesStepsAndRegistryOrder() {
	far := survival.NewZombie(survival.VariantWalker, pos(7, 7))
	diagonal := survival.NewZombie(survival.VariantWalker, pos(6, 6))
	loot := survival.NewLoot(survival.ItemAmmo, 5, pos(5, 3))
	s.Require().NoError(s.registry.Add(far))
	s.Require().NoError(s.registry.Add(diagonal))
	s.Require().NoError(s.registry.Add(loot))

	// (7,7) is two tiles away on each axis, which is four steps
	s.Assert().Equal([]survival.Entity{s.player, diagonal, loot}, s.registry.Within(pos(5, 5), 2))
	s.Assert().Equal([]survival.Entity{s.player}, s.registry.Within(pos(5, 5), 0))

	s.Require().NoError(s.registry.Move(diagonal, pos(6, 8)))
	s.Assert().Equal([]survival.Entity{s.player, loot}, s.registry.Within(pos(5, 5), 2))

	s.registry.Remove(loot.ID)
	s.Assert().Equal([]survival.Entity{far, diagonal}, s.registry.Within(pos(7, 7), 2))
}
