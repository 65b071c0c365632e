package chart

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"golang-export-dashboard/internal/models"
	"golang-export-dashboard/internal/palette"

	"github.com/shopspring/decimal"
)

func record(name string, category models.Category, month time.Month, value int64) *models.ExportRecord {
	r := models.NewExportRecord(name, "", "Saskatchewan",
		time.Date(2024, month, 1, 0, 0, 0, 0, time.UTC),
		decimal.NullDecimal{Decimal: decimal.NewFromInt(value), Valid: true},
		decimal.NullDecimal{})
	r.Category = category
	r.DisplayName = name
	return r
}

// Wheat totals 150 but Barley totals 200, so the Barley block leads even
// though the single largest commodity comparison is closer.
func exampleRecords() []*models.ExportRecord {
	return []*models.ExportRecord{
		record("Wheat A", models.CategoryWheat, time.January, 100),
		record("Wheat B", models.CategoryWheat, time.January, 50),
		record("Barley C", models.CategoryBarley, time.January, 200),
	}
}

func TestBuildCanonicalOrder(t *testing.T) {
	order := BuildCanonicalOrder(exampleRecords())

	wantNames := []string{"Barley C", "Wheat A", "Wheat B"}
	if !reflect.DeepEqual(order.Names, wantNames) {
		t.Errorf("canonical order = %v, want %v", order.Names, wantNames)
	}

	wantCategories := []models.Category{models.CategoryBarley, models.CategoryWheat}
	if !reflect.DeepEqual(order.Categories, wantCategories) {
		t.Errorf("category order = %v, want %v", order.Categories, wantCategories)
	}

	if got := order.CategoryOf("Wheat B"); got != models.CategoryWheat {
		t.Errorf("CategoryOf(Wheat B) = %v", got)
	}
}

func TestBuildCanonicalOrder_Permutation(t *testing.T) {
	records := exampleRecords()
	records = append(records, record("Wheat A", models.CategoryWheat, time.February, 25))

	order := BuildCanonicalOrder(records)

	// Every distinct display name exactly once
	seen := make(map[string]int)
	for _, name := range order.Names {
		seen[name]++
	}
	for name, count := range seen {
		if count != 1 {
			t.Errorf("%q appears %d times", name, count)
		}
	}
	if len(order.Names) != 3 {
		t.Errorf("len = %d, want 3", len(order.Names))
	}
}

func TestAssemble_StackAndLegendOrder(t *testing.T) {
	order := BuildCanonicalOrder(exampleRecords())
	assembly := Assemble(exampleRecords(), order, palette.NewResolver(nil))

	if len(assembly.Traces) != 4 {
		t.Fatalf("trace count = %d, want 3 bars + trend", len(assembly.Traces))
	}

	// Stack draw order is the exact reverse of canonical order
	var drawOrder []string
	for _, trace := range assembly.Traces[:3] {
		drawOrder = append(drawOrder, trace.Name)
	}
	if want := []string{"Wheat B", "Wheat A", "Barley C"}; !reflect.DeepEqual(drawOrder, want) {
		t.Errorf("stack draw order = %v, want %v", drawOrder, want)
	}

	// Legend ranks reproduce canonical order when sorted ascending
	wantRanks := map[string]int{"Barley C": 0, "Wheat A": 1, "Wheat B": 2}
	for _, trace := range assembly.Traces[:3] {
		if trace.LegendRank != wantRanks[trace.Name] {
			t.Errorf("%s legend rank = %d, want %d", trace.Name, trace.LegendRank, wantRanks[trace.Name])
		}
	}

	trend := assembly.Traces[3]
	if trend.Name != TrendName || trend.Kind != KindTrend {
		t.Fatalf("last trace = %q kind %q, want trend overlay", trend.Name, trend.Kind)
	}
	if trend.LegendRank <= 2 {
		t.Errorf("trend legend rank = %d, must sort after every commodity", trend.LegendRank)
	}
	if trend.Y[0] != 350 {
		t.Errorf("trend total = %v, want 350", trend.Y[0])
	}
}

func TestAssemble_Filters(t *testing.T) {
	order := BuildCanonicalOrder(exampleRecords())
	assembly := Assemble(exampleRecords(), order, palette.NewResolver(nil))

	if len(assembly.Filters) != 3 {
		t.Fatalf("filter count = %d, want overview + 2 categories", len(assembly.Filters))
	}

	overview := assembly.Filters[0]
	if overview.Label != OverviewLabel {
		t.Errorf("first filter = %q, want %q", overview.Label, OverviewLabel)
	}
	for i, visible := range overview.Visible {
		if !visible {
			t.Errorf("overview hides trace %d", i)
		}
	}

	// Category filters follow canonical category order; trend stays
	// visible everywhere. Draw order is [Wheat B, Wheat A, Barley C, trend].
	barley := assembly.Filters[1]
	if barley.Label != string(models.CategoryBarley) {
		t.Fatalf("second filter = %q", barley.Label)
	}
	if want := []bool{false, false, true, true}; !reflect.DeepEqual(barley.Visible, want) {
		t.Errorf("barley visibility = %v, want %v", barley.Visible, want)
	}

	wheat := assembly.Filters[2]
	if want := []bool{true, true, false, true}; !reflect.DeepEqual(wheat.Visible, want) {
		t.Errorf("wheat visibility = %v, want %v", wheat.Visible, want)
	}
}

func TestAssemble_MonthHandling(t *testing.T) {
	records := []*models.ExportRecord{
		record("Wheat A", models.CategoryWheat, time.March, 10),
		record("Wheat A", models.CategoryWheat, time.January, 20),
		record("Barley C", models.CategoryBarley, time.February, 30),
	}
	// Unparseable period degrades upstream to the zero time; the row is
	// kept for totals but has no month to plot under.
	noPeriod := record("Wheat A", models.CategoryWheat, time.January, 5)
	noPeriod.Period = time.Time{}
	records = append(records, noPeriod)

	order := BuildCanonicalOrder(records)
	assembly := Assemble(records, order, palette.NewResolver(nil))

	if want := []string{"2024-01", "2024-02", "2024-03"}; !reflect.DeepEqual(assembly.Months, want) {
		t.Errorf("months = %v, want %v", assembly.Months, want)
	}

	for _, trace := range assembly.Traces {
		if trace.Name != "Wheat A" {
			continue
		}
		if want := []string{"2024-01", "2024-03"}; !reflect.DeepEqual(trace.X, want) {
			t.Errorf("Wheat A x = %v, want %v", trace.X, want)
		}
		if want := []float64{20, 10}; !reflect.DeepEqual(trace.Y, want) {
			t.Errorf("Wheat A y = %v, want %v", trace.Y, want)
		}
		if !sort.StringsAreSorted(trace.X) {
			t.Error("trace months not ascending")
		}
	}
}

func TestAssemble_ResolvesColors(t *testing.T) {
	records := []*models.ExportRecord{
		record("Barley, for malting, o/t seed for sowing", models.CategoryBarley, time.January, 100),
		record("Flaxseed, whether or not broken", models.CategoryOther, time.January, 50),
	}

	order := BuildCanonicalOrder(records)
	assembly := Assemble(records, order, palette.NewResolver(palette.CuratedColors()))

	colorOf := make(map[string]string)
	for _, trace := range assembly.Traces {
		colorOf[trace.Name] = trace.Color
	}
	if got := colorOf["Barley, for malting, o/t seed for sowing"]; got != "#2E7D32" {
		t.Errorf("barley color = %s", got)
	}
	if got := colorOf["Flaxseed, whether or not broken"]; got != palette.NeutralColor {
		t.Errorf("unknown commodity color = %s, want neutral", got)
	}
	if got := colorOf[TrendName]; got != "white" {
		t.Errorf("trend color = %s", got)
	}
}

func TestFigureJSON(t *testing.T) {
	order := BuildCanonicalOrder(exampleRecords())
	assembly := Assemble(exampleRecords(), order, palette.NewResolver(nil))
	figure := BuildFigure(assembly)

	var buf bytes.Buffer
	if err := figure.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var doc struct {
		Data []struct {
			Type       string `json:"type"`
			Name       string `json:"name"`
			Mode       string `json:"mode"`
			LegendRank int    `json:"legendrank"`
		} `json:"data"`
		Layout struct {
			BarMode     string `json:"barmode"`
			Template    string `json:"template"`
			UpdateMenus []struct {
				Buttons []struct {
					Label   string `json:"label"`
					Method  string `json:"method"`
					Args    []struct {
						Visible []bool `json:"visible"`
					} `json:"args"`
				} `json:"buttons"`
			} `json:"updatemenus"`
			XAxis struct {
				Type          string   `json:"type"`
				CategoryArray []string `json:"categoryarray"`
			} `json:"xaxis"`
		} `json:"layout"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if doc.Layout.BarMode != "stack" {
		t.Errorf("barmode = %q", doc.Layout.BarMode)
	}
	if doc.Layout.Template != "plotly_dark" {
		t.Errorf("template = %q", doc.Layout.Template)
	}
	if doc.Layout.XAxis.Type != "category" || len(doc.Layout.XAxis.CategoryArray) == 0 {
		t.Error("x-axis category ordering missing")
	}

	if len(doc.Data) != 4 {
		t.Fatalf("trace count = %d", len(doc.Data))
	}
	last := doc.Data[3]
	if last.Type != "scatter" || last.Mode != "lines+markers" || last.Name != TrendName {
		t.Errorf("trend trace encoded as %+v", last)
	}
	for _, trace := range doc.Data[:3] {
		if trace.Type != "bar" {
			t.Errorf("%s type = %q, want bar", trace.Name, trace.Type)
		}
	}

	buttons := doc.Layout.UpdateMenus[0].Buttons
	if buttons[0].Label != OverviewLabel {
		t.Errorf("first button = %q", buttons[0].Label)
	}
	for _, button := range buttons {
		if button.Method != "update" {
			t.Errorf("button %q method = %q", button.Label, button.Method)
		}
		if len(button.Args[0].Visible) != len(doc.Data) {
			t.Errorf("button %q visibility length %d, want %d",
				button.Label, len(button.Args[0].Visible), len(doc.Data))
		}
	}

	// Hover templates must keep their angle brackets
	if strings.Contains(buf.String(), `\u003c`) {
		t.Error("HTML escaping mangled the hover templates")
	}
	if !strings.Contains(buf.String(), "<b>") {
		t.Error("expected literal angle brackets in hover templates")
	}
}
