// Package economy owns the stockpile, survivor upkeep and camp management
package economy

import (
	"log/slog"

	"github.com/KirkDiggler/deadgrid/internal/config"
	"github.com/KirkDiggler/deadgrid/internal/engine/faction"
	"github.com/KirkDiggler/deadgrid/internal/engine/grid"
	"github.com/KirkDiggler/deadgrid/internal/engine/registry"
	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
	"github.com/KirkDiggler/deadgrid/internal/errors"
	"github.com/KirkDiggler/deadgrid/internal/pkg/rng"
)

// Scavenge tiers; the weights cover the whole roll space
const (
	TierSuccess = iota
	TierPartial
	TierFailure
	TierAmbush
)

// TierWeights are the d100 bands of the scavenge tiers
var TierWeights = []int{45, 30, 15, 10}

// Heal amounts of usable items
var healing = map[survival.ItemKind]int{
	survival.ItemMedkit:  50,
	survival.ItemBandage: 20,
	survival.ItemFood:    10,
}

// Camp base defense by kind
const (
	OpenCampDefense     = 1
	BuildingCampDefense = 3
)

// Config holds the dependencies for the economy
type Config struct {
	Rules       config.Economy
	WeaponBonus int
	Registry    *registry.Registry
	Factions    *faction.Model
	Random      *rng.Source
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.Registry == nil {
		vb.RequiredField("Registry")
	}
	if c.Factions == nil {
		vb.RequiredField("Factions")
	}
	if c.Random == nil {
		vb.RequiredField("Random")
	}
	return vb.Build()
}

// Model applies resource rules for one simulation
type Model struct {
	rules       config.Economy
	weaponBonus int
	reg         *registry.Registry
	factions    *faction.Model
	src         *rng.Source
}

// New creates an economy model
func New(cfg *Config) (*Model, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid economy config")
	}
	return &Model{
		rules:       cfg.Rules,
		weaponBonus: cfg.WeaponBonus,
		reg:         cfg.Registry,
		factions:    cfg.Factions,
		src:         cfg.Random,
	}, nil
}

// DailyNeed is the food and water each day costs
func DailyNeed(survivors int) int {
	return 1 + survivors/2
}

// DailyConsumption feeds the group. Any shortage clamps stock to zero and
// triggers exactly one casualty roll for the day.
func (m *Model) DailyConsumption(rec *survival.Recorder, res *survival.Resources, player *survival.Player) {
	need := DailyNeed(player.Survivors)
	short := false

	if res.Food < need {
		short = true
	}
	if res.Water < need {
		short = true
	}
	res.Apply(survival.Effects{Food: -need, Water: -need})
	rec.Add(survival.Step{Kind: survival.StepConsumed, Amount: need, Detail: "food,water"})

	if !short {
		return
	}
	if m.src.Chance(m.rules.CasualtyChance) && player.Survivors > 0 {
		player.Survivors--
		rec.Add(survival.Step{Kind: survival.StepCasualty, TargetID: player.ID, Amount: 1, Detail: "starvation"})
		slog.Info("survivor lost to shortage", "survivors", player.Survivors)
	}
}

// DailyMedicine spends one medicine on a hurt player
func (m *Model) DailyMedicine(rec *survival.Recorder, res *survival.Resources, player *survival.Player) {
	if res.Medicine <= 0 || !player.Hurt() {
		return
	}
	res.Medicine--
	healed := player.Heal(m.rules.MedicineHeal)
	rec.Add(survival.Step{Kind: survival.StepHealed, TargetID: player.ID, Amount: healed, Detail: string(survival.ItemMedicine)})
}

// Pickup collects every loot item on the player's tile
func (m *Model) Pickup(rec *survival.Recorder, res *survival.Resources, player *survival.Player) error {
	loot := m.reg.LootAt(player.Pos)
	if len(loot) == 0 {
		return errors.InvalidAction(errors.ReasonNothingHere, "nothing to pick up")
	}

	for _, l := range loot {
		switch l.Item {
		case survival.ItemWeapon:
			player.MeleeBonus += m.weaponBonus
		case survival.ItemMedkit, survival.ItemBandage, survival.ItemFood:
			player.Inventory.Add(l.Item, l.Quantity)
		default:
			res.Add(l.Item, l.Quantity)
		}
		m.reg.Remove(l.ID)
		rec.Add(survival.Step{Kind: survival.StepPickedUp, ActorID: player.ID, TargetID: l.ID, Amount: l.Quantity, Detail: string(l.Item)})
	}
	return nil
}

// UseItem consumes a healing item from the inventory
func (m *Model) UseItem(rec *survival.Recorder, player *survival.Player, item survival.ItemKind) error {
	heal, ok := healing[item]
	if !ok {
		return errors.InvalidActionf(errors.ReasonUnknownAction, "%q cannot be used", item)
	}
	if player.Inventory.Count(item) == 0 {
		return errors.InvalidActionf(errors.ReasonInsufficientResources, "no %s in inventory", item)
	}
	if !player.Hurt() {
		return errors.InvalidAction(errors.ReasonFullHealth, "already at full health")
	}

	player.Inventory.Take(item)
	healed := player.Heal(heal)
	rec.Add(survival.Step{Kind: survival.StepItemUsed, ActorID: player.ID, Amount: healed, Detail: string(item)})
	return nil
}

// scavengeSite returns the non-exhausted building on or next to p
func (m *Model) scavengeSite(p survival.Position) *survival.Building {
	if b := m.reg.BuildingAt(p); b != nil && b.Scavenges > 0 {
		return b
	}
	for _, n := range grid.Neighbors(p) {
		if b := m.reg.BuildingAt(n); b != nil && b.Scavenges > 0 {
			return b
		}
	}
	return nil
}

// Scavenge searches an adjacent building. Draws: the tier, then the
// amounts for that tier.
func (m *Model) Scavenge(rec *survival.Recorder, res *survival.Resources, player *survival.Player) error {
	site := m.scavengeSite(player.Pos)
	if site == nil {
		return errors.InvalidAction(errors.ReasonNothingHere, "no building left to scavenge nearby")
	}

	tier := m.src.Weighted(TierWeights)
	site.Scavenges--
	step := survival.Step{Kind: survival.StepScavenged, ActorID: player.ID, TargetID: site.ID}

	switch tier {
	case TierSuccess:
		food := m.src.Between(3, 7)
		extra := survival.ItemWater
		if m.src.Roll(2) == 2 {
			extra = survival.ItemMaterials
		}
		amount := m.src.Between(3, 7)
		res.Add(survival.ItemFood, food)
		res.Add(extra, amount)
		step.Amount = food + amount
		step.Detail = "success"
	case TierPartial:
		kinds := []survival.ItemKind{survival.ItemFood, survival.ItemWater, survival.ItemMaterials}
		kind := kinds[m.src.Index(len(kinds))]
		amount := m.src.Between(1, 3)
		res.Add(kind, amount)
		step.Amount = amount
		step.Detail = "partial"
	case TierFailure:
		step.Detail = "failure"
	default:
		step.Detail = "ambush"
		rec.Add(step)
		m.ambush(rec, player)
		return nil
	}
	rec.Add(step)
	return nil
}

func (m *Model) ambush(rec *survival.Recorder, player *survival.Player) {
	for _, p := range grid.Neighbors(player.Pos) {
		if !m.reg.Free(p) {
			continue
		}
		z := survival.NewZombie(survival.VariantWalker, p)
		z.MarkDetected()
		if err := m.reg.Add(z); err != nil {
			slog.Warn("failed to place ambusher", "error", err)
			return
		}
		rec.Add(survival.Step{Kind: survival.StepSpawned, TargetID: z.ID, To: survival.Ptr(p), Detail: string(z.Variant)})
		return
	}
}

// Trade takes the last carried item of an adjacent friendly NPC. Medkits,
// bandages and food rations go to the inventory.
func (m *Model) Trade(rec *survival.Recorder, res *survival.Resources, player *survival.Player, targetID string) error {
	npc, err := m.tradePartner(player, targetID)
	if err != nil {
		return err
	}

	item := npc.Inventory[len(npc.Inventory)-1]
	npc.Inventory = npc.Inventory[:len(npc.Inventory)-1]
	switch item {
	case survival.ItemWeapon:
		player.MeleeBonus += m.weaponBonus
	case survival.ItemMedkit, survival.ItemBandage, survival.ItemFood:
		player.Inventory.Add(item, 1)
	default:
		res.Add(item, survival.DefaultQuantity(item))
	}
	rec.Add(survival.Step{Kind: survival.StepTraded, ActorID: player.ID, TargetID: npc.ID, Detail: string(item)})

	if m.rules.TradeReputation != 0 {
		m.factions.Update(npc.Faction, m.rules.TradeReputation)
		rec.Add(survival.Step{Kind: survival.StepReputation, TargetID: string(npc.Faction), Amount: m.rules.TradeReputation, Detail: string(npc.Faction)})
	}
	return nil
}

func (m *Model) tradePartner(player *survival.Player, targetID string) (*survival.NPC, error) {
	var candidates []*survival.NPC
	if targetID != "" {
		e, ok := m.reg.Get(targetID)
		npc, isNPC := e.(*survival.NPC)
		if !ok || !isNPC {
			return nil, errors.InvalidActionf(errors.ReasonNoTarget, "no npc %s", targetID)
		}
		candidates = []*survival.NPC{npc}
	} else {
		candidates = m.reg.NPCs()
	}

	for _, npc := range candidates {
		if npc.Pos.Manhattan(player.Pos) > 1 {
			if targetID != "" {
				return nil, errors.InvalidActionf(errors.ReasonOutOfRange, "%s is not adjacent", npc.ID)
			}
			continue
		}
		if npc.Disposition != survival.DispositionFriendly || len(npc.Inventory) == 0 {
			if targetID != "" {
				return nil, errors.InvalidActionf(errors.ReasonNoTarget, "%s will not trade", npc.ID)
			}
			continue
		}
		return npc, nil
	}
	return nil, errors.InvalidAction(errors.ReasonNoTarget, "no willing trader nearby")
}

// EstablishCamp founds the camp on the player's tile
func (m *Model) EstablishCamp(rec *survival.Recorder, player *survival.Player, existing *survival.Camp) (*survival.Camp, error) {
	if existing != nil {
		return nil, errors.InvalidActionf(errors.ReasonCampExists, "camp already established at %s", existing.Pos)
	}

	camp := &survival.Camp{Pos: player.Pos, Kind: survival.CampOpen, Defense: OpenCampDefense}
	if m.reg.BuildingAt(player.Pos) != nil {
		camp.Kind = survival.CampBuilding
		camp.Defense = BuildingCampDefense
	}
	rec.Add(survival.Step{Kind: survival.StepCampEstablished, ActorID: player.ID, To: survival.Ptr(camp.Pos), Amount: camp.Defense, Detail: string(camp.Kind)})
	slog.Info("camp established", "position", camp.Pos.String(), "kind", camp.Kind)
	return camp, nil
}

func atCamp(player *survival.Player, camp *survival.Camp) error {
	if camp == nil {
		return errors.InvalidAction(errors.ReasonNoCamp, "no camp has been established")
	}
	if player.Pos.Manhattan(camp.Pos) > 1 {
		return errors.InvalidAction(errors.ReasonOutOfRange, "too far from camp")
	}
	return nil
}

// ReinforceCamp spends materials on one point of defense
func (m *Model) ReinforceCamp(rec *survival.Recorder, res *survival.Resources, player *survival.Player, camp *survival.Camp) error {
	if err := atCamp(player, camp); err != nil {
		return err
	}
	if res.Materials < m.rules.ReinforceMaterials {
		return errors.InvalidActionf(errors.ReasonInsufficientResources, "need %d materials", m.rules.ReinforceMaterials)
	}
	res.Materials -= m.rules.ReinforceMaterials
	camp.Defense++
	rec.Add(survival.Step{Kind: survival.StepCampReinforced, ActorID: player.ID, Amount: camp.Defense})
	return nil
}

// Recruit spends food and water on one more survivor
func (m *Model) Recruit(rec *survival.Recorder, res *survival.Resources, player *survival.Player, camp *survival.Camp) error {
	if err := atCamp(player, camp); err != nil {
		return err
	}
	if res.Food < m.rules.RecruitFood || res.Water < m.rules.RecruitWater {
		return errors.InvalidActionf(errors.ReasonInsufficientResources, "need %d food and %d water", m.rules.RecruitFood, m.rules.RecruitWater)
	}
	res.Food -= m.rules.RecruitFood
	res.Water -= m.rules.RecruitWater
	player.Survivors++
	rec.Add(survival.Step{Kind: survival.StepRecruited, ActorID: player.ID, Amount: player.Survivors})
	return nil
}
