package survival

// Resources is the camp stockpile. Every field is clamped at zero on the
// low end; there is no upper bound.
type Resources struct {
	Food      int `json:"food"`
	Water     int `json:"water"`
	Medicine  int `json:"medicine"`
	Ammo      int `json:"ammo"`
	Materials int `json:"materials"`
}

// Apply adds the deltas and clamps every field at zero
func (r *Resources) Apply(d Effects) {
	r.Food = clampZero(r.Food + d.Food)
	r.Water = clampZero(r.Water + d.Water)
	r.Medicine = clampZero(r.Medicine + d.Medicine)
	r.Ammo = clampZero(r.Ammo + d.Ammo)
	r.Materials = clampZero(r.Materials + d.Materials)
}

// Get returns the stock matching an item kind, or 0 for non-stock items
func (r Resources) Get(kind ItemKind) int {
	switch kind {
	case ItemFood:
		return r.Food
	case ItemWater:
		return r.Water
	case ItemMedicine:
		return r.Medicine
	case ItemAmmo:
		return r.Ammo
	case ItemMaterials:
		return r.Materials
	}
	return 0
}

// Add credits n of a stock item kind. It reports false for kinds that
// are not part of the stockpile.
func (r *Resources) Add(kind ItemKind, n int) bool {
	switch kind {
	case ItemFood:
		r.Food = clampZero(r.Food + n)
	case ItemWater:
		r.Water = clampZero(r.Water + n)
	case ItemMedicine:
		r.Medicine = clampZero(r.Medicine + n)
	case ItemAmmo:
		r.Ammo = clampZero(r.Ammo + n)
	case ItemMaterials:
		r.Materials = clampZero(r.Materials + n)
	default:
		return false
	}
	return true
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
