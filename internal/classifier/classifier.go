// Package classifier assigns commodity rows to broad product families
// using ordered keyword rules over the free-text commodity name.
package classifier

import (
	"strings"

	"golang-export-dashboard/internal/models"
	"golang-export-dashboard/pkg/logger"
)

// CategoryRule pairs a product family with the keywords that select it.
// Matching is case-insensitive substring containment.
type CategoryRule struct {
	Category models.Category
	Keywords []string
}

// DefaultRules returns the keyword rules in their canonical declaration
// order. The order is load-bearing: a name matching several families is
// assigned the first one declared (a wheat-and-barley blend classifies as
// Wheat Complex). Do not reorder without revisiting downstream output.
func DefaultRules() []CategoryRule {
	return []CategoryRule{
		{Category: models.CategoryCanola, Keywords: []string{"rape", "colza", "canola"}},
		{Category: models.CategoryWheat, Keywords: []string{"wheat", "durum"}},
		{Category: models.CategoryBarley, Keywords: []string{"barley"}},
		{Category: models.CategoryPulses, Keywords: []string{"pea", "lentil", "chickpea"}},
		{Category: models.CategoryPotash, Keywords: []string{"potassium", "potash"}},
		{Category: models.CategoryPulp, Keywords: []string{"wood", "pulp"}},
		{Category: models.CategorySoya, Keywords: []string{"soya"}},
	}
}

// Classifier maps commodity names to broad categories
type Classifier struct {
	rules  []CategoryRule
	logger logger.Logger
}

// New creates a Classifier with the default rule set
func New() *Classifier {
	return NewWithRules(DefaultRules())
}

// NewWithRules creates a Classifier with a custom ordered rule set
func NewWithRules(rules []CategoryRule) *Classifier {
	return &Classifier{
		rules:  rules,
		logger: logger.GetGlobalLogger().WithComponent("classifier"),
	}
}

// Classify maps a raw commodity name to its broad category. It is a pure
// function of the lower-cased name: the same input always yields the same
// category.
//
// Canola oil extracts encode their family only through the 1514 HS chapter
// fragment in the name, not a canola keyword, so that combination short
// circuits ahead of the keyword scan.
func (c *Classifier) Classify(rawName string) models.Category {
	s := strings.ToLower(rawName)

	if strings.Contains(s, "1514") && strings.Contains(s, "oil") {
		return models.CategoryCanola
	}

	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(s, keyword) {
				return rule.Category
			}
		}
	}

	return models.CategoryOther
}

// ClassifyRecords classifies every record in place and returns only the
// rows that landed in a known product family. Unclassifiable rows are
// expected noise in the source feed and are dropped silently.
func (c *Classifier) ClassifyRecords(records []*models.ExportRecord) []*models.ExportRecord {
	classified := make([]*models.ExportRecord, 0, len(records))
	dropped := 0

	for _, record := range records {
		record.Category = c.Classify(record.CommodityName)
		if !record.Category.IsClassified() {
			dropped++
			continue
		}
		classified = append(classified, record)
	}

	c.logger.WithFields(logger.Fields{
		"total":    len(records),
		"retained": len(classified),
		"dropped":  dropped,
	}).Info("Classification completed")

	return classified
}
