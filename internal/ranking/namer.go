package ranking

import (
	"fmt"

	"golang-export-dashboard/internal/models"
)

// FormatRankedName builds the display name for a commodity: top-N names
// carry a 1-based rank prefix and the HS code fragment, all others carry
// just the code fragment. Names without a code omit the bracket fragment.
func FormatRankedName(rawName, code string, rank int) string {
	switch {
	case rank > 0 && code != "":
		return fmt.Sprintf("(Top %d) [%s] %s", rank, code, rawName)
	case rank > 0:
		return fmt.Sprintf("(Top %d) %s", rank, rawName)
	case code != "":
		return fmt.Sprintf("[%s] %s", code, rawName)
	default:
		return rawName
	}
}

// BuildRenameMap derives the ranked display name for every distinct
// commodity in the record set, not just the top-N. The code embedded in
// each name is the first one observed for that commodity.
func BuildRenameMap(records []*models.ExportRecord, topNames []string) map[string]string {
	rankOf := make(map[string]int, len(topNames))
	for i, name := range topNames {
		rankOf[name] = i + 1
	}

	renames := make(map[string]string)
	for _, entry := range Totals(records) {
		renames[entry.Name] = FormatRankedName(entry.Name, entry.Code, rankOf[entry.Name])
	}

	return renames
}

// ApplyRenames stamps each record's display name from the rename map.
// Records whose name is somehow absent from the map keep the raw name.
func ApplyRenames(records []*models.ExportRecord, renames map[string]string) {
	for _, record := range records {
		if ranked, ok := renames[record.CommodityName]; ok {
			record.DisplayName = ranked
		} else {
			record.DisplayName = record.CommodityName
		}
	}
}

// RekeyColors rebuilds a name-to-color table against the rename map:
// curated entries keyed by a raw name that was renamed move under the
// ranked key so they stay reachable after the rename pass. The input
// table is not mutated; the rekey runs only once the full rename map is
// known.
func RekeyColors(colors map[string]string, renames map[string]string) map[string]string {
	rekeyed := make(map[string]string, len(colors))
	for key, color := range colors {
		if ranked, ok := renames[key]; ok {
			rekeyed[ranked] = color
		} else {
			rekeyed[key] = color
		}
	}
	return rekeyed
}
