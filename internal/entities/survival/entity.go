package survival

import (
	"github.com/KirkDiggler/rpg-toolkit/core"
)

// Entity is the closed set of things the registry can own.
// Only types in this package satisfy it; dispatch with a type switch.
type Entity interface {
	core.Entity
	Base() *BaseEntity
	sealed()
}

// BaseEntity carries the fields every entity shares
type BaseEntity struct {
	ID     string   `json:"id"`
	Kind   Kind     `json:"kind"`
	Pos    Position `json:"position"`
	Active bool     `json:"active"`
}

// GetID returns the entity id
func (b *BaseEntity) GetID() string {
	return b.ID
}

// GetType returns the entity kind for rpg-toolkit
func (b *BaseEntity) GetType() string {
	return string(b.Kind)
}

// Base exposes the shared fields
func (b *BaseEntity) Base() *BaseEntity {
	return b
}

func (b *BaseEntity) sealed() {}

// Zombie is a hostile undead threat
type Zombie struct {
	BaseEntity
	Variant        ZombieVariant `json:"variant"`
	Health         int           `json:"health"`
	MaxHealth      int           `json:"max_health"`
	Damage         int           `json:"damage"`
	DetectionRange int           `json:"detection_range"`
	LootChance     float64       `json:"loot_chance"`

	// Detected never goes back to false for the lifetime of this instance.
	Detected bool `json:"detected"`
}

// MarkDetected latches the detected flag
func (z *Zombie) MarkDetected() {
	z.Detected = true
}

// NPC is a faction-aligned non-player character
type NPC struct {
	BaseEntity
	Name        string      `json:"name"`
	Faction     FactionID   `json:"faction"`
	Disposition Disposition `json:"disposition"`
	Health      int         `json:"health"`
	MaxHealth   int         `json:"max_health"`
	Inventory   []ItemKind  `json:"inventory"`
}

// Player is the protagonist; exactly one exists per simulation
type Player struct {
	BaseEntity
	Health     int       `json:"health"`
	MaxHealth  int       `json:"max_health"`
	MeleeBonus int       `json:"melee_bonus"`
	Inventory  Inventory `json:"inventory"`
	Survivors  int       `json:"survivors"`
}

// Heal raises health by amount, capped at MaxHealth, and returns the gain
func (p *Player) Heal(amount int) int {
	before := p.Health
	p.Health += amount
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
	return p.Health - before
}

// Hurt returns true when the player is below max health
func (p *Player) Hurt() bool {
	return p.Health < p.MaxHealth
}

// Loot is a transient pickup lying on a tile
type Loot struct {
	BaseEntity
	Item     ItemKind `json:"item"`
	Quantity int      `json:"quantity"`
}

// Building is a scavengeable structure; exhausted once Scavenges reaches zero
type Building struct {
	BaseEntity
	Name      string `json:"name"`
	Scavenges int    `json:"scavenges"`
}

// Blocking reports whether the entity prevents others from entering its tile
func Blocking(e Entity) bool {
	switch e.(type) {
	case *Zombie, *NPC, *Player:
		return true
	default:
		return false
	}
}

// Camp is the optional player base. It is not a registry entity.
type Camp struct {
	Pos     Position `json:"position"`
	Kind    CampKind `json:"kind"`
	Defense int      `json:"defense"`
}

// Inventory is a multiset of item kinds
type Inventory map[ItemKind]int

// Add puts n of kind into the inventory
func (inv Inventory) Add(kind ItemKind, n int) {
	if n <= 0 {
		return
	}
	inv[kind] += n
}

// Take removes one of kind, reporting false when none is held
func (inv Inventory) Take(kind ItemKind) bool {
	if inv[kind] <= 0 {
		return false
	}
	inv[kind]--
	if inv[kind] == 0 {
		delete(inv, kind)
	}
	return true
}

// Count returns how many of kind are held
func (inv Inventory) Count(kind ItemKind) int {
	return inv[kind]
}

// Clone copies the inventory
func (inv Inventory) Clone() Inventory {
	out := make(Inventory, len(inv))
	for k, v := range inv {
		out[k] = v
	}
	return out
}
