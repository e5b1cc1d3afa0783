package simulation

import (
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
)

// Autopilot picks a command from a snapshot without drawing randomness, so
// a seeded headless run stays reproducible. Its suggestion may still be
// declined; callers fall back to waiting.
func Autopilot(snap *survival.Snapshot) survival.Command {
	if ev := snap.PendingEvent; ev != nil {
		return survival.ChoiceCommand(ev.ID, safestChoice(ev))
	}

	p := snap.Player
	var nearestZombie, nearestGoal *survival.EntityView
	for i := range snap.Entities {
		e := &snap.Entities[i]
		d := e.Position.Manhattan(p.Position)
		switch e.Kind {
		case survival.KindZombie:
			if nearestZombie == nil || d < nearestZombie.Position.Manhattan(p.Position) {
				nearestZombie = e
			}
		case survival.KindLoot:
			if nearestGoal == nil || d < nearestGoal.Position.Manhattan(p.Position) {
				nearestGoal = e
			}
		case survival.KindBuilding:
			if e.Scavenges > 0 && (nearestGoal == nil || d < nearestGoal.Position.Manhattan(p.Position)) {
				nearestGoal = e
			}
		}
	}

	if nearestZombie != nil && nearestZombie.Position.Manhattan(p.Position) == 1 {
		return survival.ActionCommand(survival.Action{Type: survival.ActionMelee, TargetID: nearestZombie.ID})
	}

	if p.Health*2 < p.MaxHealth {
		for _, item := range []survival.ItemKind{survival.ItemMedkit, survival.ItemBandage, survival.ItemFood} {
			if p.Inventory.Count(item) > 0 {
				return survival.ActionCommand(survival.Action{Type: survival.ActionUseItem, Item: item})
			}
		}
	}

	if nearestZombie != nil && p.Ammo > 0 && nearestZombie.Position.Manhattan(p.Position) <= 4 {
		return survival.ActionCommand(survival.Action{Type: survival.ActionRanged})
	}

	if nearestGoal != nil {
		d := nearestGoal.Position.Manhattan(p.Position)
		switch {
		case nearestGoal.Kind == survival.KindLoot && d == 0:
			return survival.ActionCommand(survival.Action{Type: survival.ActionPickup})
		case nearestGoal.Kind == survival.KindBuilding && d == 0 && snap.Camp == nil:
			return survival.ActionCommand(survival.Action{Type: survival.ActionEstablishCamp})
		case nearestGoal.Kind == survival.KindBuilding && d <= 1:
			return survival.ActionCommand(survival.Action{Type: survival.ActionScavenge})
		default:
			return survival.ActionCommand(survival.Action{Type: survival.ActionMove, Direction: toward(p.Position, nearestGoal.Position)})
		}
	}

	return survival.ActionCommand(survival.Action{Type: survival.ActionWait})
}

// safestChoice prefers the highest success rate; zero means certain
func safestChoice(ev *survival.GameEvent) string {
	best := ""
	bestRate := -1.0
	for _, c := range ev.Choices {
		rate := c.SuccessRate
		if rate <= 0 {
			rate = 1
		}
		if rate > bestRate {
			best, bestRate = c.ID, rate
		}
	}
	return best
}

func toward(from, to survival.Position) survival.Direction {
	dx, dy := to.X-from.X, to.Y-from.Y
	if abs(dx) >= abs(dy) {
		if dx > 0 {
			return survival.DirRight
		}
		return survival.DirLeft
	}
	if dy > 0 {
		return survival.DirDown
	}
	return survival.DirUp
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
