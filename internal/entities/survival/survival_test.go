package survival_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/deadgrid/internal/entities/survival"
)

func TestNewZombieUsesVariantStats(t *testing.T) {
	z := survival.NewZombie(survival.VariantTank, survival.Position{X: 1, Y: 2})
	assert.Equal(t, survival.KindZombie, z.Kind)
	assert.Equal(t, 120, z.Health)
	assert.Equal(t, z.Health, z.MaxHealth)
	assert.True(t, z.Active)
	assert.False(t, z.Detected)
	assert.Equal(t, "zombie", z.GetType())

	unknown := survival.NewZombie("crawler", survival.Position{})
	assert.Equal(t, survival.VariantWalker, unknown.Variant)
}

func TestResourcesClampAtZero(t *testing.T) {
	r := survival.Resources{Food: 2, Water: 1, Ammo: 5}
	r.Apply(survival.Effects{Food: -5, Water: 3, Ammo: -5, Medicine: -1})
	assert.Equal(t, survival.Resources{Food: 0, Water: 4, Ammo: 0}, r)

	assert.True(t, r.Add(survival.ItemMaterials, 10))
	assert.False(t, r.Add(survival.ItemMedkit, 1))
	assert.Equal(t, 10, r.Get(survival.ItemMaterials))
}

func TestInventoryMultiset(t *testing.T) {
	inv := survival.Inventory{}
	inv.Add(survival.ItemBandage, 2)
	inv.Add(survival.ItemMedkit, 0)

	assert.True(t, inv.Take(survival.ItemBandage))
	assert.True(t, inv.Take(survival.ItemBandage))
	assert.False(t, inv.Take(survival.ItemBandage))
	assert.Empty(t, inv)
}

func TestPlayerHealCapsAtMax(t *testing.T) {
	p := &survival.Player{Health: 90, MaxHealth: 100}
	assert.Equal(t, 10, p.Heal(50))
	assert.False(t, p.Hurt())
}

func TestManhattan(t *testing.T) {
	a := survival.Position{X: 5, Y: 5}
	assert.Equal(t, 2, a.Manhattan(survival.Position{X: 5, Y: 7}))
	assert.Equal(t, 7, a.Manhattan(survival.Position{X: 1, Y: 8}))
}

func TestActionCommits(t *testing.T) {
	assert.True(t, survival.ActionMove.Commits())
	assert.True(t, survival.ActionWait.Commits())
	assert.False(t, survival.ActionOpenInventory.Commits())
	assert.False(t, survival.ActionToggleMap.Commits())
}

func TestViewOfFlattensVariants(t *testing.T) {
	z := survival.NewZombie(survival.VariantSwarm, survival.Position{X: 3, Y: 4})
	z.ID = "zombie_1"
	z.MarkDetected()
	v := survival.ViewOf(z)
	assert.Equal(t, "zombie_1", v.ID)
	assert.Equal(t, survival.VariantSwarm, v.Variant)
	assert.True(t, v.Detected)

	l := survival.NewLoot(survival.ItemAmmo, 10, survival.Position{X: 1, Y: 1})
	lv := survival.ViewOf(l)
	assert.Equal(t, survival.KindLoot, lv.Kind)
	assert.Equal(t, 10, lv.Quantity)
}
