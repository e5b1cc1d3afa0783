// Package faction tracks per-faction reputation and derives NPC dispositions
package faction

import (
	"log/slog"

	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/pkg/rng"
)

// Reputation bounds
const (
	MinReputation = -100
	MaxReputation = 100
)

// Disposition base chances before reputation shifts them
const (
	BaseFriendlyChance = 0.3
	BaseHostileChance  = 0.2
)

// InitialReputations is the table every playthrough starts from
var InitialReputations = map[survival.FactionID]int{
	survival.FactionSurvivors: 10,
	survival.FactionRaiders:   -20,
	survival.FactionTraders:   0,
	survival.FactionCannibals: -50,
	survival.FactionMilitary:  0,
	survival.FactionCultists:  -10,
}

// Model is the reputation table of one playthrough
type Model struct {
	reps map[survival.FactionID]int
}

// NewModel creates a model seeded with InitialReputations
func NewModel() *Model {
	m := &Model{reps: make(map[survival.FactionID]int, len(InitialReputations))}
	for f, v := range InitialReputations {
		m.reps[f] = v
	}
	return m
}

// Reputation returns the current value for f; unknown factions read 0
func (m *Model) Reputation(f survival.FactionID) int {
	return m.reps[f]
}

// Update is the only mutator. It adds delta, clamps to the bounds and
// returns the new value.
func (m *Model) Update(f survival.FactionID, delta int) int {
	v := clamp(m.reps[f] + delta)
	m.reps[f] = v
	slog.Debug("reputation updated", "faction", f, "delta", delta, "value", v)
	return v
}

// All returns a copy of the table
func (m *Model) All() map[survival.FactionID]int {
	out := make(map[survival.FactionID]int, len(m.reps))
	for f, v := range m.reps {
		out[f] = v
	}
	return out
}

func clamp(v int) int {
	if v < MinReputation {
		return MinReputation
	}
	if v > MaxReputation {
		return MaxReputation
	}
	return v
}

// Chances returns the friendly and hostile probabilities for a reputation.
// Positive reputation raises the friendly chance by rep/200, negative
// reputation raises the hostile chance by |rep|/200.
func Chances(rep int) (friendly, hostile float64) {
	friendly, hostile = BaseFriendlyChance, BaseHostileChance
	switch {
	case rep > 0:
		friendly += float64(rep) / 200
	case rep < 0:
		hostile += float64(-rep) / 200
	}
	return friendly, hostile
}

// RollDisposition samples a disposition for a new NPC of faction f with
// one d10000 roll: friendly band first, then hostile, the rest neutral.
func (m *Model) RollDisposition(src *rng.Source, f survival.FactionID) survival.Disposition {
	friendly, hostile := Chances(m.Reputation(f))
	r := src.Roll(rng.ChanceSides)
	fb := rng.ChanceThreshold(friendly)
	hb := fb + rng.ChanceThreshold(hostile)

	switch {
	case r <= fb:
		return survival.DispositionFriendly
	case r <= hb:
		return survival.DispositionHostile
	default:
		return survival.DispositionNeutral
	}
}

var names = []string{"Alex", "Sam", "Jordan", "Morgan", "Casey", "Riley", "Avery", "Quinn"}

var factionItems = map[survival.FactionID][]survival.ItemKind{
	survival.FactionSurvivors: {survival.ItemFood, survival.ItemWater, survival.ItemBandage},
	survival.FactionRaiders:   {survival.ItemAmmo, survival.ItemWeapon, survival.ItemFood},
	survival.FactionTraders:   {survival.ItemMedkit, survival.ItemMaterials, survival.ItemWater},
	survival.FactionCannibals: {survival.ItemFood, survival.ItemWeapon},
	survival.FactionMilitary:  {survival.ItemAmmo, survival.ItemMedkit, survival.ItemMedicine},
	survival.FactionCultists:  {survival.ItemMedicine, survival.ItemBandage},
}

// Encounter builds a new NPC at pos. It draws, in order: faction, name,
// inventory size, one roll per carried item, and the disposition.
func (m *Model) Encounter(src *rng.Source, pos survival.Position) *survival.NPC {
	f := survival.AllFactions[src.Index(len(survival.AllFactions))]
	name := names[src.Index(len(names))]

	pool := factionItems[f]
	count := src.Between(0, 2)
	inv := make([]survival.ItemKind, 0, count)
	for i := 0; i < count; i++ {
		inv = append(inv, pool[src.Index(len(pool))])
	}

	return &survival.NPC{
		BaseEntity:  survival.BaseEntity{Kind: survival.KindNPC, Pos: pos, Active: true},
		Name:        name,
		Faction:     f,
		Disposition: m.RollDisposition(src, f),
		Health:      50,
		MaxHealth:   50,
		Inventory:   inv,
	}
}
