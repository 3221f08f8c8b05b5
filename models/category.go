package models

// CategorySlug identifies one of the fixed product categories.
type CategorySlug string

const (
	CategoryAll                CategorySlug = "all"
	CategorySnackAttack        CategorySlug = "snack-attack"
	CategoryThirstQuenchers    CategorySlug = "thirst-quenchers"
	CategoryEverydayEssentials CategorySlug = "everyday-essentials"
	CategoryHomeHelpers        CategorySlug = "home-helpers"
	CategoryCampGo             CategorySlug = "camp-go"
	CategoryBestBundles        CategorySlug = "best-bundles"
)

// Category represents a product category.
// It pairs a slug with a human-readable name and, when listed, the number
// of products filed under it.
type Category struct {
	Slug     CategorySlug
	Name     string
	Products int64
}

var categories = []Category{
	{Slug: CategorySnackAttack, Name: "Snack Attack"},
	{Slug: CategoryThirstQuenchers, Name: "Thirst Quenchers"},
	{Slug: CategoryEverydayEssentials, Name: "Everyday Essentials"},
	{Slug: CategoryHomeHelpers, Name: "Home Helpers"},
	{Slug: CategoryCampGo, Name: "Camp & Go"},
	{Slug: CategoryBestBundles, Name: "Best Bundles"},
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether s names a concrete category. "all" is a filter
// value, not a category, and is rejected.
func (s CategorySlug) Valid() bool {
	for _, c := range categories {
		if c.Slug == s {
			return true
		}
	}
	return false
}
