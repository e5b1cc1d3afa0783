// Package rng is the single seedable random source of a simulation.
//
// Seeded implements the rpg-toolkit dice.Roller contract on top of a PCG
// generator so that a playthrough replays exactly from its seed. Source
// layers decision helpers over any dice.Roller; each helper consumes
// exactly one roll, which keeps scripted rollers in tests aligned with
// the decision points of the simulation.
package rng

import (
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/deadgrid/internal/errors"
)

// ChanceSides is the die used for probability checks
const ChanceSides = 10000

// Seeded is a deterministic dice.Roller
type Seeded struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSeeded creates a roller whose sequence is fully determined by seed
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

var _ dice.Roller = (*Seeded)(nil)

// Roll returns a value in [1, size]
func (s *Seeded) Roll(size int) (int, error) {
	if size <= 0 {
		return 0, errors.InvalidArgumentf("die size must be positive, got %d", size)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(size) + 1, nil
}

// RollN rolls count dice of the given size
func (s *Seeded) RollN(count, size int) ([]int, error) {
	if count < 0 {
		return nil, errors.InvalidArgumentf("die count must not be negative, got %d", count)
	}
	out := make([]int, count)
	for i := range out {
		v, err := s.Roll(size)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Source turns dice rolls into simulation decisions
type Source struct {
	roller dice.Roller
	draws  int
	err    error
}

// New wraps a roller
func New(roller dice.Roller) *Source {
	return &Source{roller: roller}
}

// Draws returns how many rolls have been consumed
func (s *Source) Draws() int {
	return s.draws
}

// Err returns the first error reported by the underlying roller
func (s *Source) Err() error {
	return s.err
}

// roll never fails from the caller's view; a roller error is latched in
// Err and the highest face is used so chance checks fail closed.
func (s *Source) roll(size int) int {
	s.draws++
	v, err := s.roller.Roll(size)
	if err != nil {
		if s.err == nil {
			s.err = errors.Wrapf(err, "roll d%d", size)
		}
		slog.Warn("dice roll failed", "sides", size, "error", err)
		return size
	}
	if v < 1 {
		return 1
	}
	if v > size {
		return size
	}
	return v
}

// Roll consumes one raw roll of a die with the given sides
func (s *Source) Roll(sides int) int {
	return s.roll(sides)
}

// ChanceThreshold is the highest d10000 face that passes a check of p
func ChanceThreshold(p float64) int {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return ChanceSides
	}
	return int(p*ChanceSides + 0.5)
}

// Chance performs one Bernoulli trial with probability p
func (s *Source) Chance(p float64) bool {
	return s.roll(ChanceSides) <= ChanceThreshold(p)
}

// Between returns an integer in [lo, hi] using one roll. A degenerate
// range returns lo without rolling.
func (s *Source) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.roll(hi-lo+1) - 1
}

// Index returns an index in [0, n). n <= 1 returns 0 without rolling.
func (s *Source) Index(n int) int {
	if n <= 1 {
		return 0
	}
	return s.roll(n) - 1
}

// Weighted picks an index proportionally to weights with one roll.
// Non-positive weights are never picked; -1 means nothing is pickable.
func (s *Source) Weighted(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	r := s.roll(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if r <= w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}
