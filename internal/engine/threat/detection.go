package threat

import "github.com/KirkDiggler/deadgrid/internal/entities/survival"

// detection bands, nearest first
var bands = []struct {
	within int
	chance float64
}{
	{2, 0.9},
	{4, 0.6},
	{6, 0.3},
	{8, 0.1},
}

// BandChance is the unmodified detection chance at a Manhattan distance
func BandChance(distance int) float64 {
	for _, b := range bands {
		if distance <= b.within {
			return b.chance
		}
	}
	return 0
}

// DetectionChance applies the variant modifier and detection range
func DetectionChance(z *survival.Zombie, distance int) float64 {
	if distance > z.DetectionRange {
		return 0
	}
	c := BandChance(distance) * survival.StatsFor(z.Variant).DetectionModifier
	if c > 1 {
		return 1
	}
	return c
}
