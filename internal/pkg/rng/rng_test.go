package rng_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/deadgrid/internal/errors"
	"github.com/KirkDiggler/deadgrid/internal/pkg/rng"
)

type fixedRoller struct {
	values []int
	sizes  []int
	err    error
}

func (f *fixedRoller) Roll(size int) (int, error) {
	f.sizes = append(f.sizes, size)
	if f.err != nil {
		return 0, f.err
	}
	v := f.values[0]
	f.values = f.values[1:]
	return v, nil
}

func (f *fixedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		v, err := f.Roll(size)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type RNGTestSuite struct {
	suite.Suite
}

func TestRNGSuite(t *testing.T) {
	suite.Run(t, new(RNGTestSuite))
}

func (s *RNGTestSuite) TestSeededIsDeterministic() {
	a := rng.NewSeeded(42)
	b := rng.NewSeeded(42)
	for i := 0; i < 100; i++ {
		va, err := a.Roll(20)
		s.Require().NoError(err)
		vb, err := b.Roll(20)
		s.Require().NoError(err)
		s.Require().Equal(va, vb)
		s.Require().GreaterOrEqual(va, 1)
		s.Require().LessOrEqual(va, 20)
	}
}

func (s *RNGTestSuite) TestSeededRejectsBadSize() {
	_, err := rng.NewSeeded(1).Roll(0)
	s.Assert().True(errors.IsInvalidArgument(err))

	vals, err := rng.NewSeeded(1).RollN(3, 6)
	s.Require().NoError(err)
	s.Assert().Len(vals, 3)
}

func (s *RNGTestSuite) TestChanceUsesOneRoll() {
	roller := &fixedRoller{values: []int{9000, 9001}}
	src := rng.New(roller)

	s.Assert().True(src.Chance(0.9))
	s.Assert().False(src.Chance(0.9))
	s.Assert().Equal(2, src.Draws())
	s.Assert().Equal([]int{rng.ChanceSides, rng.ChanceSides}, roller.sizes)
}

func (s *RNGTestSuite) TestBetween() {
	roller := &fixedRoller{values: []int{1, 6}}
	src := rng.New(roller)

	s.Assert().Equal(10, src.Between(10, 15))
	s.Assert().Equal(15, src.Between(10, 15))
	s.Assert().Equal(7, src.Between(7, 7))
	s.Assert().Equal(2, src.Draws())
}

func (s *RNGTestSuite) TestWeighted() {
	testCases := []struct {
		name     string
		roll     int
		expected int
	}{
		{name: "first band", roll: 45, expected: 0},
		{name: "second band", roll: 46, expected: 1},
		{name: "third band", roll: 90, expected: 2},
		{name: "last band", roll: 100, expected: 3},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			src := rng.New(&fixedRoller{values: []int{tc.roll}})
			s.Assert().Equal(tc.expected, src.Weighted([]int{45, 30, 15, 10}))
		})
	}

	s.Assert().Equal(-1, rng.New(&fixedRoller{}).Weighted([]int{0, 0}))
}

func (s *RNGTestSuite) TestRollerErrorFailsClosed() {
	src := rng.New(&fixedRoller{err: errors.Internal("dice jammed")})

	s.Assert().False(src.Chance(0.5))
	s.Assert().Error(src.Err())
	s.Assert().Equal(1, src.Draws())
}

func (s *RNGTestSuite) TestChanceThreshold() {
	s.Assert().Equal(0, rng.ChanceThreshold(0))
	s.Assert().Equal(3000, rng.ChanceThreshold(0.3))
	s.Assert().Equal(rng.ChanceSides, rng.ChanceThreshold(1.2))
}
