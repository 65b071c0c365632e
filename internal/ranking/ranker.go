// Package ranking computes per-commodity value totals, the top-N ordering,
// and the ranked display names derived from it.
package ranking

import (
	"sort"

	"golang-export-dashboard/internal/models"
	"golang-export-dashboard/pkg/logger"

	"github.com/shopspring/decimal"
)

// DefaultTopN is the number of commodities that receive a rank prefix
const DefaultTopN = 10

// CommodityTotal aggregates all rows of one distinct raw commodity name.
// Code and Category are the first ones observed for the name; rows sharing
// a name share both by construction.
type CommodityTotal struct {
	Name     string          `json:"name"`
	Code     string          `json:"code"`
	Category models.Category `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// Totals sums export value per distinct commodity name, preserving
// first-seen insertion order. Null values contribute zero to the sum but
// never exclude a row from the grouping.
func Totals(records []*models.ExportRecord) []*CommodityTotal {
	index := make(map[string]*CommodityTotal)
	var order []*CommodityTotal

	for _, record := range records {
		entry, exists := index[record.CommodityName]
		if !exists {
			entry = &CommodityTotal{
				Name:     record.CommodityName,
				Code:     record.CategoryCode,
				Category: record.Category,
				Total:    decimal.Zero,
			}
			index[record.CommodityName] = entry
			order = append(order, entry)
		}
		entry.Total = entry.Total.Add(record.ValueOrZero())
	}

	return order
}

// TopN returns the n highest-value commodity names in descending order of
// total value. The sort is stable over first-seen insertion order, so ties
// rank in the order the names first appear in the input; shuffling rows
// with distinct totals never changes the result.
func TopN(records []*models.ExportRecord, n int) []string {
	if n <= 0 {
		n = DefaultTopN
	}

	totals := Totals(records)

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Total.GreaterThan(totals[j].Total)
	})

	if len(totals) > n {
		totals = totals[:n]
	}

	names := make([]string, len(totals))
	for i, entry := range totals {
		names[i] = entry.Name
	}

	log := logger.GetGlobalLogger().WithComponent("ranker")
	log.WithFields(logger.Fields{
		"top_n":     len(names),
		"requested": n,
	}).Info("Ranking completed")
	for i, name := range names {
		log.WithFields(logger.Fields{
			"rank": i + 1,
			"name": name,
		}).Debug("Ranked commodity")
	}

	return names
}
