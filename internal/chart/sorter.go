// Package chart turns classified, renamed export records into a
// declarative stacked-bar figure document with a total trend overlay and
// per-category visibility filters.
package chart

import (
	"sort"

	"golang-export-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// CanonicalOrder is the visual-importance ordering of the chart: every
// distinct display name exactly once, grouped by category, with both
// levels sorted by descending total value.
type CanonicalOrder struct {
	// Names lists display names highest-total-first, category blocks
	// concatenated in category order.
	Names []string
	// Categories lists the categories by descending total value.
	Categories []models.Category
	// categoryOf maps each display name to its category.
	categoryOf map[string]models.Category
}

// CategoryOf returns the category a display name was grouped under.
func (o *CanonicalOrder) CategoryOf(name string) models.Category {
	return o.categoryOf[name]
}

type totalEntry struct {
	name  string
	total decimal.Decimal
}

// BuildCanonicalOrder computes the two-level descending sort: categories
// by summed value, then display names by summed value within each
// category. Ties at either level keep first-seen input order; the result
// is a permutation of all distinct display names in the record set.
func BuildCanonicalOrder(records []*models.ExportRecord) *CanonicalOrder {
	categoryTotals := make(map[models.Category]decimal.Decimal)
	var categorySeen []models.Category

	nameTotals := make(map[models.Category]map[string]decimal.Decimal)
	nameSeen := make(map[models.Category][]string)
	categoryOf := make(map[string]models.Category)

	for _, record := range records {
		category := record.Category
		name := record.DisplayName
		value := record.ValueOrZero()

		if _, ok := categoryTotals[category]; !ok {
			categorySeen = append(categorySeen, category)
			nameTotals[category] = make(map[string]decimal.Decimal)
		}
		categoryTotals[category] = categoryTotals[category].Add(value)

		if _, ok := nameTotals[category][name]; !ok {
			nameSeen[category] = append(nameSeen[category], name)
			categoryOf[name] = category
		}
		nameTotals[category][name] = nameTotals[category][name].Add(value)
	}

	categories := make([]models.Category, len(categorySeen))
	copy(categories, categorySeen)
	sort.SliceStable(categories, func(i, j int) bool {
		return categoryTotals[categories[i]].GreaterThan(categoryTotals[categories[j]])
	})

	var names []string
	for _, category := range categories {
		entries := make([]totalEntry, 0, len(nameSeen[category]))
		for _, name := range nameSeen[category] {
			entries = append(entries, totalEntry{name: name, total: nameTotals[category][name]})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].total.GreaterThan(entries[j].total)
		})
		for _, entry := range entries {
			names = append(names, entry.name)
		}
	}

	return &CanonicalOrder{
		Names:      names,
		Categories: categories,
		categoryOf: categoryOf,
	}
}
