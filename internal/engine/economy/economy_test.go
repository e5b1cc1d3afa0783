package economy_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/deadgrid/internal/config"
	"github.com/KirkDiggler/deadgrid/internal/engine/economy"
	"github.com/KirkDiggler/deadgrid/internal/engine/faction"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
	"github.com/KirkDiggler/deadgrid/internal/pkg/rng"
	"github.com/KirkDiggler/deadgrid/internal/testutils"
)

type EconomyTestSuite struct {
	suite.Suite
	world    *testutils.World
	roller   *testutils.ScriptedRoller
	factions *faction.Model
	model    *economy.Model
	rec      *survival.Recorder
	res      *survival.Resources
}

func TestEconomySuite(t *testing.T) {
	suite.Run(t, new(EconomyTestSuite))
}

func (s *EconomyTestSuite) SetupTest() {
	s.world = testutils.NewWorld(s.T(), 12, 12, testutils.Pos(5, 5))
	s.roller = testutils.NewScriptedRoller()
	s.factions = faction.NewModel()
	s.rec = survival.NewRecorder(survival.PhasePlayerTurn)
	s.res = &survival.Resources{Food: 50, Water: 50, Medicine: 5, Ammo: 20, Materials: 10}

	rules := config.DefaultGame()
	m, err := economy.New(&economy.Config{
		Rules:       rules.Economy,
		WeaponBonus: rules.Combat.WeaponBonus,
		Registry:    s.world.Registry,
		Factions:    s.factions,
		Random:      rng.New(s.roller),
	})
	s.Require().NoError(err)
	s.model = m
}

func (s *EconomyTestSuite) TestNewRequiresDependencies() {
	_, err := economy.New(nil)
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = economy.New(&economy.Config{})
	s.Assert().Error(err)
}

func (s *EconomyTestSuite) TestDailyNeed() {
	s.Assert().Equal(1, economy.DailyNeed(0))
	s.Assert().Equal(1, economy.DailyNeed(1))
	s.Assert().Equal(2, economy.DailyNeed(3))
	s.Assert().Equal(3, economy.DailyNeed(4))
}

func (s *EconomyTestSuite) TestConsumptionWithoutShortageDoesNotRoll() {
	s.model.DailyConsumption(s.rec, s.res, s.world.Player)

	s.Assert().Equal(48, s.res.Food)
	s.Assert().Equal(48, s.res.Water)
	s.Assert().Empty(s.roller.Sizes())
	s.Assert().Equal(3, s.world.Player.Survivors)
}

func (s *EconomyTestSuite) TestShortageClampsAndRollsOnce() {
	s.res.Food = 1
	s.res.Water = 1
	s.roller.Push(testutils.Fail)

	s.model.DailyConsumption(s.rec, s.res, s.world.Player)

	s.Assert().Equal(0, s.res.Food)
	s.Assert().Equal(0, s.res.Water)
	s.Assert().Equal([]int{rng.ChanceSides}, s.roller.Sizes())
	s.Assert().Equal(3, s.world.Player.Survivors)
}

func (s *EconomyTestSuite) TestShortageCasualty() {
	s.res.Water = 0
	s.roller.Push(testutils.Pass)

	s.model.DailyConsumption(s.rec, s.res, s.world.Player)

	s.Assert().Equal(2, s.world.Player.Survivors)
	steps := s.rec.Steps()
	s.Require().Len(steps, 2)
	s.Assert().Equal(survival.StepCasualty, steps[1].Kind)
}

func (s *EconomyTestSuite) TestCasualtyNeverGoesBelowZero() {
	s.world.Player.Survivors = 0
	s.res.Food = 0
	s.roller.Push(testutils.Pass)

	s.model.DailyConsumption(s.rec, s.res, s.world.Player)

	s.Assert().Equal(0, s.world.Player.Survivors)
	s.Assert().Equal(0, s.res.Food)
}

func (s *EconomyTestSuite) TestDailyMedicine() {
	s.model.DailyMedicine(s.rec, s.res, s.world.Player)
	s.Assert().Equal(5, s.res.Medicine, "healthy players keep their medicine")

	s.world.Player.Health = 60
	s.model.DailyMedicine(s.rec, s.res, s.world.Player)
	s.Assert().Equal(4, s.res.Medicine)
	s.Assert().Equal(90, s.world.Player.Health)

	s.res.Medicine = 0
	s.model.DailyMedicine(s.rec, s.res, s.world.Player)
	s.Assert().Equal(90, s.world.Player.Health)
}

func (s *EconomyTestSuite) TestPickupRoutesItems() {
	here := s.world.Player.Pos
	s.world.AddLoot(s.T(), survival.ItemAmmo, 10, here)
	s.world.AddLoot(s.T(), survival.ItemMedkit, 1, here)
	s.world.AddLoot(s.T(), survival.ItemWeapon, 1, here)

	s.Require().NoError(s.model.Pickup(s.rec, s.res, s.world.Player))

	s.Assert().Equal(30, s.res.Ammo)
	s.Assert().Equal(1, s.world.Player.Inventory.Count(survival.ItemMedkit))
	s.Assert().Equal(5, s.world.Player.MeleeBonus)
	s.Assert().Empty(s.world.Registry.LootAt(here))
	s.Assert().Len(s.rec.Steps(), 3)
}

func (s *EconomyTestSuite) TestPickupNothingHere() {
	err := s.model.Pickup(s.rec, s.res, s.world.Player)
	s.Assert().Equal(errors.ReasonNothingHere, errors.GetReason(err))
	s.Assert().Empty(s.rec.Steps())
}

func (s *EconomyTestSuite) TestUseItem() {
	p := s.world.Player
	p.Inventory.Add(survival.ItemBandage, 1)

	err := s.model.UseItem(s.rec, p, survival.ItemBandage)
	s.Assert().Equal(errors.ReasonFullHealth, errors.GetReason(err))
	s.Assert().Equal(1, p.Inventory.Count(survival.ItemBandage))

	p.Health = 90
	s.Require().NoError(s.model.UseItem(s.rec, p, survival.ItemBandage))
	s.Assert().Equal(100, p.Health)
	s.Assert().Equal(0, p.Inventory.Count(survival.ItemBandage))

	err = s.model.UseItem(s.rec, p, survival.ItemMedkit)
	s.Assert().Equal(errors.ReasonInsufficientResources, errors.GetReason(err))

	err = s.model.UseItem(s.rec, p, survival.ItemAmmo)
	s.Assert().Equal(errors.ReasonUnknownAction, errors.GetReason(err))
}

func (s *EconomyTestSuite) TestScavengeTiers() {
	testCases := []struct {
		name      string
		rolls     []int
		food      int
		water     int
		materials int
		zombies   int
	}{
		{name: "success with water", rolls: []int{1, 5, 1, 1}, food: 57, water: 53, materials: 10},
		{name: "success with materials", rolls: []int{45, 1, 2, 5}, food: 53, water: 50, materials: 17},
		{name: "partial", rolls: []int{46, 3, 3}, food: 50, water: 50, materials: 13},
		{name: "failure", rolls: []int{76}, food: 50, water: 50, materials: 10},
		{name: "ambush", rolls: []int{91}, food: 50, water: 50, materials: 10, zombies: 1},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			b := s.world.AddBuilding(s.T(), testutils.Pos(5, 6), 3)
			s.roller.Push(tc.rolls...)

			s.Require().NoError(s.model.Scavenge(s.rec, s.res, s.world.Player))

			s.Assert().Equal(tc.food, s.res.Food)
			s.Assert().Equal(tc.water, s.res.Water)
			s.Assert().Equal(tc.materials, s.res.Materials)
			s.Assert().Equal(2, b.Scavenges)
			s.Assert().Zero(s.roller.Remaining())

			zombies := s.world.Registry.Zombies()
			s.Require().Len(zombies, tc.zombies)
			for _, z := range zombies {
				s.Assert().True(z.Detected)
				s.Assert().Equal(1, z.Pos.Manhattan(s.world.Player.Pos))
			}
		})
	}
}

func (s *EconomyTestSuite) TestScavengeExhaustedBuilding() {
	s.world.AddBuilding(s.T(), testutils.Pos(5, 6), 0)

	err := s.model.Scavenge(s.rec, s.res, s.world.Player)
	s.Assert().Equal(errors.ReasonNothingHere, errors.GetReason(err))
	s.Assert().Empty(s.roller.Sizes())
}

func (s *EconomyTestSuite) TestTradeTakesLastItem() {
	npc := s.world.AddNPC(s.T(), survival.FactionTraders, survival.DispositionFriendly, testutils.Pos(6, 5),
		survival.ItemBandage, survival.ItemAmmo)

	s.Require().NoError(s.model.Trade(s.rec, s.res, s.world.Player, ""))

	s.Assert().Equal(30, s.res.Ammo)
	s.Assert().Equal([]survival.ItemKind{survival.ItemBandage}, npc.Inventory)
	s.Assert().Equal(2, s.factions.Reputation(survival.FactionTraders))
}

func (s *EconomyTestSuite) TestTradedFoodGoesToInventory() {
	npc := s.world.AddNPC(s.T(), survival.FactionTraders, survival.DispositionFriendly, testutils.Pos(6, 5), survival.ItemFood)
	food := s.res.Food

	s.Require().NoError(s.model.Trade(s.rec, s.res, s.world.Player, npc.ID))

	s.Assert().Equal(1, s.world.Player.Inventory.Count(survival.ItemFood))
	s.Assert().Equal(food, s.res.Food)
	s.Assert().Empty(npc.Inventory)
}

func (s *EconomyTestSuite) TestTradeDeclined() {
	hostile := s.world.AddNPC(s.T(), survival.FactionRaiders, survival.DispositionHostile, testutils.Pos(6, 5), survival.ItemAmmo)
	far := s.world.AddNPC(s.T(), survival.FactionTraders, survival.DispositionFriendly, testutils.Pos(9, 9), survival.ItemAmmo)

	err := s.model.Trade(s.rec, s.res, s.world.Player, "")
	s.Assert().Equal(errors.ReasonNoTarget, errors.GetReason(err))

	err = s.model.Trade(s.rec, s.res, s.world.Player, hostile.ID)
	s.Assert().Equal(errors.ReasonNoTarget, errors.GetReason(err))

	err = s.model.Trade(s.rec, s.res, s.world.Player, far.ID)
	s.Assert().Equal(errors.ReasonOutOfRange, errors.GetReason(err))

	s.Assert().Equal(20, s.res.Ammo)
	s.Assert().Len(hostile.Inventory, 1)
}

func (s *EconomyTestSuite) TestEstablishCamp() {
	camp, err := s.model.EstablishCamp(s.rec, s.world.Player, nil)
	s.Require().NoError(err)
	s.Assert().Equal(survival.CampOpen, camp.Kind)
	s.Assert().Equal(economy.OpenCampDefense, camp.Defense)

	_, err = s.model.EstablishCamp(s.rec, s.world.Player, camp)
	s.Assert().Equal(errors.ReasonCampExists, errors.GetReason(err))
}

func (s *EconomyTestSuite) TestEstablishCampInBuilding() {
	s.world.AddBuilding(s.T(), s.world.Player.Pos, 3)

	camp, err := s.model.EstablishCamp(s.rec, s.world.Player, nil)
	s.Require().NoError(err)
	s.Assert().Equal(survival.CampBuilding, camp.Kind)
	s.Assert().Equal(economy.BuildingCampDefense, camp.Defense)
}

func (s *EconomyTestSuite) TestReinforceCamp() {
	err := s.model.ReinforceCamp(s.rec, s.res, s.world.Player, nil)
	s.Assert().Equal(errors.ReasonNoCamp, errors.GetReason(err))

	camp := &survival.Camp{Pos: testutils.Pos(5, 6), Kind: survival.CampOpen, Defense: 1}
	s.Require().NoError(s.model.ReinforceCamp(s.rec, s.res, s.world.Player, camp))
	s.Assert().Equal(2, camp.Defense)
	s.Assert().Equal(0, s.res.Materials)

	err = s.model.ReinforceCamp(s.rec, s.res, s.world.Player, camp)
	s.Assert().Equal(errors.ReasonInsufficientResources, errors.GetReason(err))
	s.Assert().Equal(2, camp.Defense)

	far := &survival.Camp{Pos: testutils.Pos(0, 0)}
	err = s.model.ReinforceCamp(s.rec, s.res, s.world.Player, far)
	s.Assert().Equal(errors.ReasonOutOfRange, errors.GetReason(err))
}

func (s *EconomyTestSuite) TestRecruit() {
	camp := &survival.Camp{Pos: s.world.Player.Pos, Kind: survival.CampOpen, Defense: 1}

	s.Require().NoError(s.model.Recruit(s.rec, s.res, s.world.Player, camp))
	s.Assert().Equal(4, s.world.Player.Survivors)
	s.Assert().Equal(30, s.res.Food)
	s.Assert().Equal(30, s.res.Water)

	s.res.Water = 19
	err := s.model.Recruit(s.rec, s.res, s.world.Player, camp)
	s.Assert().Equal(errors.ReasonInsufficientResources, errors.GetReason(err))
	s.Assert().Equal(4, s.world.Player.Survivors)
	s.Assert().Equal(30, s.res.Food)
}
