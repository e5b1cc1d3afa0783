package survival

// ActionType names a player action
type ActionType string

// Player actions
const (
	ActionMove          ActionType = "move"
	ActionMelee         ActionType = "melee"
	ActionRanged        ActionType = "ranged"
	ActionPickup        ActionType = "pickup"
	ActionEstablishCamp ActionType = "establish_camp"
	ActionWait          ActionType = "wait"
	ActionUseItem       ActionType = "use_item"
	ActionScavenge      ActionType = "scavenge"
	ActionTrade         ActionType = "trade"
	ActionReinforceCamp ActionType = "reinforce_camp"
	ActionRecruit       ActionType = "recruit"
	ActionOpenInventory ActionType = "open_inventory"
	ActionToggleMap     ActionType = "toggle_map"
)

// Commits reports whether the action ends the player's turn
func (a ActionType) Commits() bool {
	switch a {
	case ActionOpenInventory, ActionToggleMap:
		return false
	}
	return true
}

// Direction is an orthogonal step
type Direction string

// Directions
const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// Directions in the order used for random steps
var Directions = []Direction{DirUp, DirDown, DirLeft, DirRight}

// Delta returns the grid offset for a direction
func (d Direction) Delta() (int, int, bool) {
	switch d {
	case DirUp:
		return 0, -1, true
	case DirDown:
		return 0, 1, true
	case DirLeft:
		return -1, 0, true
	case DirRight:
		return 1, 0, true
	}
	return 0, 0, false
}

// Action is a single player command. Direction is used by move and melee,
// TargetID optionally pins melee/trade to an entity, Item selects use_item.
type Action struct {
	Type      ActionType `json:"type"`
	Direction Direction  `json:"direction,omitempty"`
	TargetID  string     `json:"target_id,omitempty"`
	Item      ItemKind   `json:"item,omitempty"`
}
