package faction_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/deadgrid/internal/engine/faction"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/pkg/rng"
	"github.com/KirkDiggler/deadgrid/internal/testutils"
)

type FactionTestSuite struct {
	suite.Suite
	model *faction.Model
}

func TestFactionSuite(t *testing.T) {
	suite.Run(t, new(FactionTestSuite))
}

func (s *FactionTestSuite) SetupTest() {
	s.model = faction.NewModel()
}

func (s *FactionTestSuite) TestInitialTable() {
	s.Assert().Equal(-20, s.model.Reputation(survival.FactionRaiders))
	s.Assert().Equal(-50, s.model.Reputation(survival.FactionCannibals))
	s.Assert().Len(s.model.All(), len(survival.AllFactions))
}

func (s *FactionTestSuite) TestUpdateClamps() {
	testCases := []struct {
		name     string
		deltas   []int
		expected int
	}{
		{name: "huge positive", deltas: []int{1000}, expected: 100},
		{name: "huge negative", deltas: []int{-1000}, expected: -100},
		{name: "saturate then recover", deltas: []int{500, -30}, expected: 70},
		{name: "recover then saturate", deltas: []int{-30, 500}, expected: 100},
		{name: "small steps", deltas: []int{5, 5, -3}, expected: 17},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			m := faction.NewModel()
			var got int
			for _, d := range tc.deltas {
				got = m.Update(survival.FactionSurvivors, d)
				s.Require().GreaterOrEqual(got, faction.MinReputation)
				s.Require().LessOrEqual(got, faction.MaxReputation)
			}
			s.Assert().Equal(tc.expected, got)
			s.Assert().Equal(tc.expected, m.Reputation(survival.FactionSurvivors))
		})
	}
}

func (s *FactionTestSuite) TestAllIsACopy() {
	all := s.model.All()
	all[survival.FactionRaiders] = 99
	s.Assert().Equal(-20, s.model.Reputation(survival.FactionRaiders))
}

func (s *FactionTestSuite) TestChances() {
	f, h := faction.Chances(-20)
	s.Assert().InDelta(0.3, f, 1e-9)
	s.Assert().InDelta(0.3, h, 1e-9)

	f, h = faction.Chances(40)
	s.Assert().InDelta(0.5, f, 1e-9)
	s.Assert().InDelta(0.2, h, 1e-9)
}

func (s *FactionTestSuite) TestRollDispositionBands() {
	// raiders at -20: friendly [1,3000], hostile [3001,6000], neutral above
	testCases := []struct {
		roll     int
		expected survival.Disposition
	}{
		{1, survival.DispositionFriendly},
		{3000, survival.DispositionFriendly},
		{3001, survival.DispositionHostile},
		{6000, survival.DispositionHostile},
		{6001, survival.DispositionNeutral},
		{10000, survival.DispositionNeutral},
	}

	for _, tc := range testCases {
		roller := testutils.NewScriptedRoller(tc.roll)
		src := rng.New(roller)
		s.Assert().Equal(tc.expected, s.model.RollDisposition(src, survival.FactionRaiders), "roll %d", tc.roll)
		s.Assert().Equal(1, src.Draws())
	}
}

func (s *FactionTestSuite) TestHostileProportionForRaiders() {
	src := rng.New(rng.NewSeeded(7))
	const trials = 2000
	hostile := 0
	for i := 0; i < trials; i++ {
		if s.model.RollDisposition(src, survival.FactionRaiders) == survival.DispositionHostile {
			hostile++
		}
	}
	ratio := float64(hostile) / trials
	s.Assert().InDelta(0.3, ratio, 0.05)
}

func (s *FactionTestSuite) TestEncounterIsDeterministic() {
	a := s.model.Encounter(rng.New(rng.NewSeeded(11)), survival.Position{X: 2, Y: 3})
	b := s.model.Encounter(rng.New(rng.NewSeeded(11)), survival.Position{X: 2, Y: 3})
	s.Assert().Equal(a, b)
	s.Assert().Equal(survival.KindNPC, a.Kind)
	s.Assert().NotEmpty(a.Name)
	s.Assert().LessOrEqual(len(a.Inventory), 2)
}
