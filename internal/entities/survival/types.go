// Package survival holds the data model of the survival simulation
package survival

import "fmt"

// Position is an integer tile coordinate on the world grid
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String renders the position as (x,y)
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Add returns p shifted by the given deltas
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Manhattan returns |dx| + |dy| between p and o
func (p Position) Manhattan(o Position) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Kind identifies the variant of an entity
type Kind string

// Entity kinds
const (
	KindPlayer   Kind = "player"
	KindZombie   Kind = "zombie"
	KindNPC      Kind = "npc"
	KindLoot     Kind = "loot"
	KindBuilding Kind = "building"
)

// ZombieVariant selects the stat block and movement style of a zombie
type ZombieVariant string

// Zombie variants
const (
	VariantWalker ZombieVariant = "walker"
	VariantGroup  ZombieVariant = "group"
	VariantSwarm  ZombieVariant = "swarm"
	VariantTank   ZombieVariant = "tank"
)

// Disposition is an NPC's stance toward the player, fixed at encounter time
type Disposition string

// Dispositions
const (
	DispositionFriendly Disposition = "friendly"
	DispositionNeutral  Disposition = "neutral"
	DispositionHostile  Disposition = "hostile"
)

// FactionID names a faction
type FactionID string

// Factions present in every playthrough
const (
	FactionSurvivors FactionID = "survivors"
	FactionRaiders   FactionID = "raiders"
	FactionTraders   FactionID = "traders"
	FactionCannibals FactionID = "cannibals"
	FactionMilitary  FactionID = "military"
	FactionCultists  FactionID = "cultists"
)

// AllFactions lists factions in their canonical order
var AllFactions = []FactionID{
	FactionSurvivors,
	FactionRaiders,
	FactionTraders,
	FactionCannibals,
	FactionMilitary,
	FactionCultists,
}

// ItemKind is a kind of pickup or inventory item
type ItemKind string

// Item kinds
const (
	ItemAmmo      ItemKind = "ammo"
	ItemMedkit    ItemKind = "medkit"
	ItemBandage   ItemKind = "bandage"
	ItemFood      ItemKind = "food"
	ItemWater     ItemKind = "water"
	ItemMedicine  ItemKind = "medicine"
	ItemMaterials ItemKind = "materials"
	ItemWeapon    ItemKind = "weapon"
)

// CampKind describes where the camp was established
type CampKind string

// Camp kinds
const (
	CampOpen     CampKind = "open"
	CampBuilding CampKind = "building"
)

// Weather is the sky over the city for one day
type Weather string

// Weather conditions
const (
	WeatherClear Weather = "clear"
	WeatherFog   Weather = "fog"
	WeatherStorm Weather = "storm"
)

// Phase is a state of the turn scheduler
type Phase string

// Scheduler phases
const (
	PhasePlayerTurn         Phase = "player_turn"
	PhaseThreatTurn         Phase = "threat_turn"
	PhaseEnvironmentTurn    Phase = "environment_turn"
	PhasePendingEventChoice Phase = "pending_event_choice"
	PhaseGameOver           Phase = "game_over"
)

// Terminal reports whether no further phase can follow
func (p Phase) Terminal() bool {
	return p == PhaseGameOver
}
