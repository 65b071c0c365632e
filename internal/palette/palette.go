// Package palette holds the curated commodity color table and the
// resolver that maps any display name, ranked or raw, to a hex color.
package palette

import (
	"fmt"
	"strings"
)

// NeutralColor is assigned to commodities no curated entry or keyword
// rule covers. Deliberately gray so unknowns never read as a trade flow.
const NeutralColor = "#A0A0A0"

// CuratedColors returns the hand-picked hex color per curated commodity,
// keyed by the raw commodity name as it appears in the source report.
// Each product family shares a hue range: canola warm, wheat blue,
// barley green, pulses earth tones, potash purple.
func CuratedColors() map[string]string {
	return map[string]string{
		// Canola complex
		"Rape/colza seeds,low erucic acid, for oil extraction, w/n broken":                 "#C62828",
		"Rape/colza seed oil-cake & o solid residue, low erucic acid, w/n ground/pellet":   "#EF6C00",
		"Low erucic acid rape (canola) or colza oil and its fractions, crude":              "#FFB300",
		"Low erucic acid rape (canola) or colza oil and its fractions, refined":            "#FFD600",

		// Wheat complex
		"Red spring wheat, o/t certified organic, grade 1, o/t seed for sowing": "#1565C0",
		"Red spring wheat, o/t certified organic, grade 2, o/t seed for sowing": "#42A5F5",
		"Durum wheat, o/t certified organic, o/t seed for sowing":               "#455A64",

		// Barley family
		"Barley, for malting, o/t seed for sowing":                      "#2E7D32",
		"Barley, o/t certified organic, o/t seed for sowing or malting": "#81C784",

		// Pulses complex
		"Peas, yellow, nes, dried, shelled, w/n skinned": "#F9A825",
		"Peas, green, nes, dried, shelled, w/n skinned":  "#CDDC39",
		"Lentils, dried, shelled, w/n skinned":           "#795548",

		// Potash
		"Potassium chloride, in packages weighing more than 10 kg": "#9C27B0",

		// Others
		"Wood pulp, obtained by a combination of mechanical & chemical pulping processes":  "#5D4037",
		"Soya beans,o/t certified organic,for oil extraction,w/n broken,o/t seed f sowing": "#00BCD4",
	}
}

// Resolver resolves display names against a color table. The table is
// expected to be rekeyed to ranked names before traces are built, so the
// exact-match path handles top commodities and the fuzzy path catches
// everything the curation missed.
type Resolver struct {
	colors map[string]string
}

// NewResolver builds a resolver over the given color table. A nil table
// resolves purely through the keyword rules.
func NewResolver(colors map[string]string) *Resolver {
	return &Resolver{colors: colors}
}

// Resolve returns the hex color for a commodity display name.
// Resolution order: exact table lookup, exact lookup after stripping a
// rank prefix, keyword rules, neutral gray. Resolve is a pure lookup;
// calling it with a ranked name or its raw form yields the same color.
func (r *Resolver) Resolve(name string) string {
	if color, ok := r.colors[name]; ok {
		return color
	}

	clean := stripRankPrefix(name)
	if color, ok := r.colors[clean]; ok {
		return color
	}

	return keywordColor(clean)
}

// stripRankPrefix removes a leading "(Top n) [code] " or "(Top n) "
// marker for ranks 1 through 10, recovering the raw commodity name. The
// rank is not known at this call site, so all ten values are probed;
// names never carry more than one marker.
func stripRankPrefix(name string) string {
	for rank := 1; rank <= 10; rank++ {
		prefix := fmt.Sprintf("(Top %d) ", rank)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		stripped := name[len(prefix):]
		if strings.HasPrefix(stripped, "[") {
			if end := strings.Index(stripped, "] "); end >= 0 {
				stripped = stripped[end+2:]
			}
		}
		return stripped
	}
	return name
}

func keywordColor(name string) string {
	lower := strings.ToLower(name)

	contains := func(subs ...string) bool {
		for _, sub := range subs {
			if strings.Contains(lower, sub) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("rape", "colza", "canola"):
		switch {
		case contains("seed") && !contains("oil"):
			return "#C62828"
		case contains("cake", "residue"):
			return "#EF6C00"
		case contains("crude"):
			return "#FFB300"
		case contains("refined"):
			return "#FFD600"
		default:
			return "#C62828"
		}
	case contains("wheat"):
		switch {
		case contains("grade 1", "grade1"):
			return "#1565C0"
		case contains("grade 2", "grade2"):
			return "#42A5F5"
		case contains("durum"):
			return "#455A64"
		default:
			return "#1565C0"
		}
	case contains("barley"):
		if contains("malting") {
			return "#2E7D32"
		}
		return "#81C784"
	case contains("pea"):
		switch {
		case contains("yellow"):
			return "#F9A825"
		case contains("green"):
			return "#CDDC39"
		default:
			return "#F9A825"
		}
	case contains("lentil"):
		return "#795548"
	case contains("potassium", "potash"):
		return "#9C27B0"
	case contains("wood pulp", "pulp"):
		return "#5D4037"
	case contains("soya", "soy"):
		return "#00BCD4"
	default:
		return NeutralColor
	}
}
