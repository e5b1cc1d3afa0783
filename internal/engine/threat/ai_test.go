package threat_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/deadgrid/internal/config"
	"github.com/KirkDiggler/deadgrid/internal/engine/combat"
	"github.com/KirkDiggler/deadgrid/internal/engine/faction"
	"github.com/KirkDiggler/deadgrid/internal/engine/threat"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/pkg/rng"
	"github.com/KirkDiggler/deadgrid/internal/testutils"
)

type ThreatTestSuite struct {
	suite.Suite
	world  *testutils.World
	roller *testutils.ScriptedRoller
	src    *rng.Source
	ai     *threat.AI
	rec    *survival.Recorder
}

func TestThreatSuite(t *testing.T) {
	suite.Run(t, new(ThreatTestSuite))
}

func (s *ThreatTestSuite) SetupTest() {
	s.world = testutils.NewWorld(s.T(), 20, 20, testutils.Pos(5, 5))
	s.roller = testutils.NewScriptedRoller()
	s.src = rng.New(s.roller)
	s.rec = survival.NewRecorder(survival.PhaseThreatTurn)

	rules := config.DefaultGame()
	resolver, err := combat.NewResolver(&combat.Config{
		Rules:    rules.Combat,
		Registry: s.world.Registry,
		Factions: faction.NewModel(),
		Random:   s.src,
	})
	s.Require().NoError(err)

	ai, err := threat.New(&threat.Config{
		Rules:     rules.Threat,
		NPCDamage: rules.Combat.NPCDamageBase,
		Registry:  s.world.Registry,
		Combat:    resolver,
		Random:    s.src,
	})
	s.Require().NoError(err)
	s.ai = ai
}

func (s *ThreatTestSuite) TestNewValidates() {
	_, err := threat.New(&threat.Config{})
	s.Assert().Error(err)
}

func (s *ThreatTestSuite) TestDetectionBands() {
	testCases := []struct {
		variant  survival.ZombieVariant
		distance int
		expected float64
	}{
		{survival.VariantWalker, 1, 0.9},
		{survival.VariantWalker, 2, 0.9},
		{survival.VariantWalker, 4, 0.6},
		{survival.VariantWalker, 6, 0.3},
		{survival.VariantWalker, 8, 0.1},
		{survival.VariantWalker, 9, 0},
		{survival.VariantSwarm, 2, 1.0},
		{survival.VariantSwarm, 4, 0.9},
		{survival.VariantTank, 6, 0.45},
		{survival.VariantTank, 8, 0},
	}

	for _, tc := range testCases {
		z := survival.NewZombie(tc.variant, testutils.Pos(0, 0))
		s.Assert().InDelta(tc.expected, threat.DetectionChance(z, tc.distance), 1e-9, "%s at %d", tc.variant, tc.distance)
	}

	for d := 0; d < 12; d++ {
		s.Assert().GreaterOrEqual(threat.BandChance(d), threat.BandChance(d+1))
	}
}

func (s *ThreatTestSuite) TestDetectedZombieStepsCloser() {
	z := s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(5, 7))
	s.roller.Push(testutils.Pass)

	s.ai.Run(s.rec, nil)

	s.Assert().True(z.Detected)
	s.Assert().Equal(testutils.Pos(5, 6), z.Pos)
	s.Assert().Equal(1, z.Pos.Manhattan(s.world.Player.Pos))
	s.Assert().Equal(1, s.src.Draws())
	s.Assert().Equal(100, s.world.Player.Health)
}

func (s *ThreatTestSuite) TestDetectionIsSticky() {
	z := s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(5, 7))
	s.roller.Push(testutils.Pass)
	s.ai.Run(s.rec, nil)
	s.Require().True(z.Detected)

	s.Require().NoError(s.world.Registry.Move(s.world.Player, testutils.Pos(15, 15)))
	for i := 0; i < 5; i++ {
		s.ai.Run(s.rec, nil)
		s.Require().True(z.Detected)
	}
	// the chase closes one tile per turn
	s.Assert().Equal(testutils.Pos(5, 6).Manhattan(testutils.Pos(15, 15))-5, z.Pos.Manhattan(s.world.Player.Pos))
}

func (s *ThreatTestSuite) TestNoDetectionRollBeyondRange() {
	z := s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(15, 15))

	s.ai.Run(s.rec, nil)

	s.Assert().False(z.Detected)
	s.Assert().Equal(testutils.Pos(15, 15), z.Pos)
	// only the wander check
	s.Assert().Equal([]int{rng.ChanceSides}, s.roller.Sizes())
}

func (s *ThreatTestSuite) TestWander() {
	z := s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(15, 15))
	// wander passes, d4 face 4 -> right
	s.roller.Push(testutils.Pass, 4)

	s.ai.Run(s.rec, nil)
	s.Assert().Equal(testutils.Pos(16, 15), z.Pos)
	s.Assert().False(z.Detected)
}

func (s *ThreatTestSuite) TestAlwaysAwareRadiusAdvancesWithoutDetection() {
	z := s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(7, 5))
	s.roller.Push(testutils.Fail)

	s.ai.Run(s.rec, nil)
	s.Assert().False(z.Detected)
	s.Assert().Equal(testutils.Pos(6, 5), z.Pos)
}

func (s *ThreatTestSuite) TestAdjacentZombieAttacksInsteadOfMoving() {
	z := s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(5, 6))
	z.MarkDetected()
	s.roller.Push(6)

	s.ai.Run(s.rec, nil)

	s.Assert().Equal(testutils.Pos(5, 6), z.Pos)
	s.Assert().Equal(90, s.world.Player.Health)
	s.Assert().Equal([]int{6}, s.roller.Sizes())
}

func (s *ThreatTestSuite) TestLaterZombiesSeeEarlierMoves() {
	first := s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(5, 7))
	second := s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(5, 8))
	first.MarkDetected()
	second.MarkDetected()

	s.ai.Run(s.rec, nil)

	s.Assert().Equal(testutils.Pos(5, 6), first.Pos)
	s.Assert().Equal(testutils.Pos(5, 7), second.Pos)
}

func (s *ThreatTestSuite) TestZombieCannotEnterZombieTile() {
	blocker := s.world.AddZombie(s.T(), survival.VariantTank, testutils.Pos(5, 7))
	mover := s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(5, 8))
	mover.MarkDetected()
	// the wall pins the tank, and the walker may not step onto the tank
	s.world.Wall(s.T(), testutils.Pos(5, 6))

	s.ai.Run(s.rec, nil)

	s.Assert().Equal(testutils.Pos(5, 7), blocker.Pos)
	s.Assert().Equal(testutils.Pos(5, 8), mover.Pos)
}

func (s *ThreatTestSuite) TestBlockedAxisFallsBack() {
	z := s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(6, 7))
	z.MarkDetected()
	s.world.Wall(s.T(), testutils.Pos(6, 6))

	s.ai.Run(s.rec, nil)
	s.Assert().Equal(testutils.Pos(5, 7), z.Pos)
}

func (s *ThreatTestSuite) TestVariantTieBreaks() {
	testCases := []struct {
		name     string
		variant  survival.ZombieVariant
		rolls    []int
		expected survival.Position
	}{
		{name: "swarm prefers x", variant: survival.VariantSwarm, expected: testutils.Pos(7, 8)},
		{name: "tank prefers y", variant: survival.VariantTank, expected: testutils.Pos(8, 7)},
		{name: "walker d2 one is x", variant: survival.VariantWalker, rolls: []int{1}, expected: testutils.Pos(7, 8)},
		{name: "walker d2 two is y", variant: survival.VariantWalker, rolls: []int{2}, expected: testutils.Pos(8, 7)},
		{name: "group low roll is x", variant: survival.VariantGroup, rolls: []int{3}, expected: testutils.Pos(7, 8)},
		{name: "group high roll is y", variant: survival.VariantGroup, rolls: []int{4}, expected: testutils.Pos(8, 7)},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			z := s.world.AddZombie(s.T(), tc.variant, testutils.Pos(8, 8))
			z.MarkDetected()
			s.roller.Push(tc.rolls...)

			s.ai.Run(s.rec, nil)
			s.Assert().Equal(tc.expected, z.Pos)
			s.Assert().Equal(len(tc.rolls), s.src.Draws())
		})
	}
}

func (s *ThreatTestSuite) TestZombieTargetsNearerCamp() {
	camp := &survival.Camp{Pos: testutils.Pos(12, 12), Kind: survival.CampOpen, Defense: 2}
	z := s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(12, 13))
	z.MarkDetected()
	s.roller.Push(testutils.Pass)

	s.ai.Run(s.rec, camp)

	s.Assert().Equal(testutils.Pos(12, 13), z.Pos)
	s.Assert().Equal(3, camp.Defense)
	s.Assert().Equal(testutils.Pos(12, 12), threat.Target(s.world.Player, camp, z.Pos))
	s.Assert().Equal(s.world.Player.Pos, threat.Target(s.world.Player, nil, z.Pos))
}

func (s *ThreatTestSuite) TestHostileNPCAdvancesAndAttacks() {
	npc := s.world.AddNPC(s.T(), survival.FactionRaiders, survival.DispositionHostile, testutils.Pos(8, 5))

	s.ai.Run(s.rec, nil)
	s.Assert().Equal(testutils.Pos(7, 5), npc.Pos)

	s.ai.Run(s.rec, nil)
	s.Assert().Equal(testutils.Pos(6, 5), npc.Pos)

	s.roller.Push(1)
	s.ai.Run(s.rec, nil)
	s.Assert().Equal(testutils.Pos(6, 5), npc.Pos)
	s.Assert().Equal(93, s.world.Player.Health)
}

func (s *ThreatTestSuite) TestHostileNPCOutsideRadiusHolds() {
	npc := s.world.AddNPC(s.T(), survival.FactionRaiders, survival.DispositionHostile, testutils.Pos(12, 5))
	s.ai.Run(s.rec, nil)
	s.Assert().Equal(testutils.Pos(12, 5), npc.Pos)
}

func (s *ThreatTestSuite) TestNPCRadiusCountsSteps() {
	// four tiles away on both axes: inside a square of radius 5, eight steps by foot
	hostile := s.world.AddNPC(s.T(), survival.FactionRaiders, survival.DispositionHostile, testutils.Pos(9, 9))
	friendly := s.world.AddNPC(s.T(), survival.FactionSurvivors, survival.DispositionFriendly, testutils.Pos(7, 7))
	s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(7, 9))
	s.roller.Push(testutils.Fail, testutils.Fail)

	s.ai.Run(s.rec, nil)

	s.Assert().Equal(testutils.Pos(9, 9), hostile.Pos)
	s.Assert().Equal(testutils.Pos(7, 7), friendly.Pos, "player is four steps away, beyond the flee radius")
}

func (s *ThreatTestSuite) TestFriendlyNPCFlees() {
	npc := s.world.AddNPC(s.T(), survival.FactionSurvivors, survival.DispositionFriendly, testutils.Pos(6, 6))
	z := s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(6, 9))
	// zombie is beyond always-aware range: detection fails, wander fails
	s.roller.Push(testutils.Fail, testutils.Fail)

	s.ai.Run(s.rec, nil)

	s.Assert().Equal(testutils.Pos(6, 9), z.Pos)
	s.Assert().Equal(testutils.Pos(6, 5), npc.Pos)
}

func (s *ThreatTestSuite) TestNeutralNPCHolds() {
	npc := s.world.AddNPC(s.T(), survival.FactionTraders, survival.DispositionNeutral, testutils.Pos(6, 6))
	s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(16, 16))

	s.ai.Run(s.rec, nil)
	s.Assert().Equal(testutils.Pos(6, 6), npc.Pos)
}

func (s *ThreatTestSuite) TestStopsOnceThePlayerDies() {
	s.world.Player.Health = 3
	first := s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(5, 6))
	second := s.world.AddZombie(s.T(), survival.VariantWalker, testutils.Pos(5, 8))
	first.MarkDetected()
	second.MarkDetected()
	s.roller.Push(1)

	s.ai.Run(s.rec, nil)

	s.Assert().LessOrEqual(s.world.Player.Health, 0)
	s.Assert().Equal(testutils.Pos(5, 8), second.Pos)
}
