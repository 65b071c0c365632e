package palette

import (
	"testing"

	"golang-export-dashboard/internal/ranking"
)

func TestResolve_ExactMatch(t *testing.T) {
	resolver := NewResolver(CuratedColors())

	tests := []struct {
		name string
		want string
	}{
		{"Red spring wheat, o/t certified organic, grade 1, o/t seed for sowing", "#1565C0"},
		{"Barley, for malting, o/t seed for sowing", "#2E7D32"},
		{"Lentils, dried, shelled, w/n skinned", "#795548"},
		{"Potassium chloride, in packages weighing more than 10 kg", "#9C27B0"},
	}

	for _, tt := range tests {
		if got := resolver.Resolve(tt.name); got != tt.want {
			t.Errorf("Resolve(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestResolve_RekeyedRankedNames(t *testing.T) {
	// After the rename pass the table is rekeyed under ranked names, so
	// exact lookup hits the ranked key directly.
	raw := "Barley, for malting, o/t seed for sowing"
	ranked := ranking.FormatRankedName(raw, "1003.90.00.12", 3)

	colors := ranking.RekeyColors(CuratedColors(), map[string]string{raw: ranked})
	resolver := NewResolver(colors)

	if got := resolver.Resolve(ranked); got != "#2E7D32" {
		t.Errorf("Resolve(ranked) = %s, want #2E7D32", got)
	}
}

func TestResolve_StripsRankPrefix(t *testing.T) {
	resolver := NewResolver(CuratedColors())

	// The table still holds the raw key; stripping the rank prefix,
	// with or without a code fragment, recovers it for ranks 1 through 10.
	for _, name := range []string{
		"(Top 1) Barley, for malting, o/t seed for sowing",
		"(Top 10) Barley, for malting, o/t seed for sowing",
		"(Top 3) [1003.90.00.12] Barley, for malting, o/t seed for sowing",
	} {
		if got := resolver.Resolve(name); got != "#2E7D32" {
			t.Errorf("Resolve(%q) = %s, want #2E7D32", name, got)
		}
	}
}

func TestResolve_FuzzyRules(t *testing.T) {
	resolver := NewResolver(nil)

	tests := []struct {
		name string
		want string
	}{
		// Canola: seed without oil beats the generic fallback
		{"Rape or colza seeds, for sowing", "#C62828"},
		{"Canola oil-cake and other solid residues", "#EF6C00"},
		{"Canola oil, crude", "#FFB300"},
		{"Canola oil, refined", "#FFD600"},
		{"Rape/colza seeds, for oil extraction", "#C62828"},
		{"Canola meal, miscellaneous", "#C62828"},
		// Wheat grades
		{"White winter wheat, grade 1", "#1565C0"},
		{"White winter wheat, grade 2", "#42A5F5"},
		{"Durum wheat, nes", "#455A64"},
		{"Wheat, nes", "#1565C0"},
		// Barley
		{"Barley, for malting", "#2E7D32"},
		{"Barley, feed grade", "#81C784"},
		// Pulses
		{"Peas, yellow, split", "#F9A825"},
		{"Peas, green, whole", "#CDDC39"},
		{"Peas, marrowfat", "#F9A825"},
		{"Lentils, red, split", "#795548"},
		// Potash, pulp, soy
		{"Potash, crude", "#9C27B0"},
		{"Chemical wood pulp, soda or sulphate", "#5D4037"},
		{"Soy sauce preparations", "#00BCD4"},
		// Nothing matches
		{"Flaxseed, whether or not broken", "#A0A0A0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolver.Resolve(tt.name); got != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestResolve_RankedAndRawAgree(t *testing.T) {
	resolver := NewResolver(CuratedColors())

	for raw := range CuratedColors() {
		for rank := 1; rank <= 10; rank++ {
			for _, code := range []string{"", "1001.99.00.11"} {
				name := ranking.FormatRankedName(raw, code, rank)
				if got, want := resolver.Resolve(name), resolver.Resolve(raw); got != want {
					t.Errorf("rank %d code %q changed color for %q: %s vs %s", rank, code, raw, got, want)
				}
			}
		}
	}
}

func TestResolve_PureFunction(t *testing.T) {
	resolver := NewResolver(CuratedColors())

	first := resolver.Resolve("Flaxseed, whether or not broken")
	for i := 0; i < 50; i++ {
		if got := resolver.Resolve("Flaxseed, whether or not broken"); got != first {
			t.Fatalf("iteration %d: Resolve changed from %s to %s", i, first, got)
		}
	}
}
