package survival

// ZombieStats is the stat block of a variant
type ZombieStats struct {
	Health         int
	Damage         int
	DetectionRange int
	LootChance     float64
	// DetectionModifier scales the distance band chance, capped at 1.0
	DetectionModifier float64
}

var bestiary = map[ZombieVariant]ZombieStats{
	VariantWalker: {Health: 30, Damage: 5, DetectionRange: 8, LootChance: 0.3, DetectionModifier: 1.0},
	VariantGroup:  {Health: 50, Damage: 10, DetectionRange: 8, LootChance: 0.4, DetectionModifier: 1.0},
	VariantSwarm:  {Health: 100, Damage: 15, DetectionRange: 8, LootChance: 0.5, DetectionModifier: 1.5},
	VariantTank:   {Health: 120, Damage: 20, DetectionRange: 6, LootChance: 0.5, DetectionModifier: 1.5},
}

// StatsFor returns the stat block of a variant, falling back to walker
func StatsFor(v ZombieVariant) ZombieStats {
	if s, ok := bestiary[v]; ok {
		return s
	}
	return bestiary[VariantWalker]
}

// NewZombie builds an active zombie at pos. The id is assigned by the registry.
func NewZombie(v ZombieVariant, pos Position) *Zombie {
	if _, ok := bestiary[v]; !ok {
		v = VariantWalker
	}
	s := bestiary[v]
	return &Zombie{
		BaseEntity:     BaseEntity{Kind: KindZombie, Pos: pos, Active: true},
		Variant:        v,
		Health:         s.Health,
		MaxHealth:      s.Health,
		Damage:         s.Damage,
		DetectionRange: s.DetectionRange,
		LootChance:     s.LootChance,
	}
}

// NewLoot builds a pickup at pos
func NewLoot(item ItemKind, quantity int, pos Position) *Loot {
	return &Loot{
		BaseEntity: BaseEntity{Kind: KindLoot, Pos: pos, Active: true},
		Item:       item,
		Quantity:   quantity,
	}
}

// DefaultQuantity is how much of an item a single pickup carries
func DefaultQuantity(item ItemKind) int {
	switch item {
	case ItemAmmo:
		return 10
	case ItemFood, ItemWater, ItemMaterials:
		return 3
	default:
		return 1
	}
}
