package chart

import (
	"sort"

	"golang-export-dashboard/internal/models"
	"golang-export-dashboard/internal/palette"
	"golang-export-dashboard/pkg/logger"

	"github.com/shopspring/decimal"
)

// TrendName is the display name of the overlay total series.
const TrendName = "TOTAL Trend"

// OverviewLabel is the filter that shows every trace at once.
const OverviewLabel = "Overview (Stacked)"

// trendLegendRank pins the overlay trend after every commodity in the
// legend; commodity ranks are bounded by the trace count, which never
// approaches this.
const trendLegendRank = 1000

// TraceKind distinguishes stacked commodity bars from the overlay line.
type TraceKind string

const (
	KindBar   TraceKind = "bar"
	KindTrend TraceKind = "trend"
)

// Trace is one renderable series: ordered monthly points, a resolved
// color, and the legend metadata the renderer needs.
type Trace struct {
	Kind       TraceKind
	Name       string
	Category   models.Category
	X          []string
	Y          []float64
	Color      string
	LegendRank int
}

// Filter names a visibility vector over the assembled trace list, in
// trace append order.
type Filter struct {
	Label   string
	Visible []bool
}

// Assembly is the complete input to the figure encoder: traces in stack
// draw order, the filter set, and the full month axis.
type Assembly struct {
	Traces  []*Trace
	Filters []*Filter
	Months  []string
}

// Assemble builds the trace list from the canonical order and the
// classified records. Traces are appended in reverse canonical order so
// bottom-up stacking places the highest-value series on top, while each
// trace's legend rank is its position in the canonical order, keeping
// the legend sorted by value. The overlay trend is appended last and is
// visible under every filter.
func Assemble(records []*models.ExportRecord, order *CanonicalOrder, resolver *palette.Resolver) *Assembly {
	log := logger.GetGlobalLogger().WithComponent("assembler")

	points := groupPoints(records)
	months := allMonths(records)

	rank := make(map[string]int, len(order.Names))
	for i, name := range order.Names {
		rank[name] = i
	}

	traces := make([]*Trace, 0, len(order.Names)+1)
	for i := len(order.Names) - 1; i >= 0; i-- {
		name := order.Names[i]
		x, y := points.series(name)
		traces = append(traces, &Trace{
			Kind:       KindBar,
			Name:       name,
			Category:   order.CategoryOf(name),
			X:          x,
			Y:          y,
			Color:      resolver.Resolve(name),
			LegendRank: rank[name],
		})
	}

	trendX, trendY := trendSeries(records)
	traces = append(traces, &Trace{
		Kind:       KindTrend,
		Name:       TrendName,
		X:          trendX,
		Y:          trendY,
		Color:      "white",
		LegendRank: trendLegendRank,
	})

	log.WithFields(logger.Fields{
		"traces":     len(traces),
		"months":     len(months),
		"categories": len(order.Categories),
	}).Info("Chart assembly completed")

	return &Assembly{
		Traces:  traces,
		Filters: buildFilters(traces, order.Categories),
		Months:  months,
	}
}

// buildFilters produces the overview vector plus one vector per category
// in canonical category order. The trend trace stays visible everywhere.
func buildFilters(traces []*Trace, categories []models.Category) []*Filter {
	overview := &Filter{Label: OverviewLabel, Visible: make([]bool, len(traces))}
	for i := range overview.Visible {
		overview.Visible[i] = true
	}

	filters := []*Filter{overview}
	for _, category := range categories {
		visible := make([]bool, len(traces))
		for i, trace := range traces {
			visible[i] = trace.Kind == KindTrend || trace.Category == category
		}
		filters = append(filters, &Filter{Label: string(category), Visible: visible})
	}
	return filters
}

// monthlyPoints holds per-name month sums keyed off the month string.
type monthlyPoints map[string]map[string]decimal.Decimal

func (p monthlyPoints) add(name, month string, value decimal.Decimal) {
	if p[name] == nil {
		p[name] = make(map[string]decimal.Decimal)
	}
	p[name][month] = p[name][month].Add(value)
}

// series returns the name's months ascending with their summed values.
func (p monthlyPoints) series(name string) ([]string, []float64) {
	sums := p[name]
	months := make([]string, 0, len(sums))
	for month := range sums {
		months = append(months, month)
	}
	sort.Strings(months)

	values := make([]float64, len(months))
	for i, month := range months {
		values[i] = sums[month].InexactFloat64()
	}
	return months, values
}

// groupPoints sums value per (display name, month). Records without a
// parseable period carry no month and are left out of the chart, though
// they still influenced classification and ranking upstream.
func groupPoints(records []*models.ExportRecord) monthlyPoints {
	points := make(monthlyPoints)
	for _, record := range records {
		if !record.HasPeriod() {
			continue
		}
		points.add(record.DisplayName, record.MonthKey(), record.ValueOrZero())
	}
	return points
}

// trendSeries sums value per month across every record.
func trendSeries(records []*models.ExportRecord) ([]string, []float64) {
	points := make(monthlyPoints)
	for _, record := range records {
		if !record.HasPeriod() {
			continue
		}
		points.add(TrendName, record.MonthKey(), record.ValueOrZero())
	}
	return points.series(TrendName)
}

// allMonths returns every month present in the record set, ascending.
// The figure pins the x-axis category order to this list so gaps in an
// individual trace never reorder the axis.
func allMonths(records []*models.ExportRecord) []string {
	seen := make(map[string]bool)
	var months []string
	for _, record := range records {
		if !record.HasPeriod() {
			continue
		}
		month := record.MonthKey()
		if !seen[month] {
			seen[month] = true
			months = append(months, month)
		}
	}
	sort.Strings(months)
	return months
}
