package domain

// Category classifies a resource. The set is fixed reference data.
type Category string

const (
	CategoryForestry       Category = "Forestry"
	CategoryCarpentry      Category = "Carpentry"
	CategoryHunting        Category = "Hunting"
	CategoryLeatherworking Category = "Leatherworking"
	CategoryForaging       Category = "Foraging"
	CategoryMining         Category = "Mining"
	CategoryTailoring      Category = "Tailoring"
	CategoryMasonry        Category = "Masonry"
	CategorySmithing       Category = "Smithing"
	CategoryFarming        Category = "Farming"
	CategoryFishing        Category = "Fishing"
	CategoryCooking        Category = "Cooking"
	CategoryScholar        Category = "Scholar"
)

// Categories lists every resource category in display order.
var Categories = []Category{
	CategoryForestry, CategoryCarpentry, CategoryHunting, CategoryLeatherworking,
	CategoryForaging, CategoryMining, CategoryTailoring, CategoryMasonry,
	CategorySmithing, CategoryFarming, CategoryFishing, CategoryCooking,
	CategoryScholar,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Resource is static reference data describing something a settlement can need.
type Resource struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
}
