// Package reporter renders run summaries for dashboard generation.
//
// Two formats are supported: a human-readable console summary for
// terminal use, and a JSON summary for programmatic consumption. The
// summary covers ingestion retention, per-category totals in visual
// importance order, the ranked top commodities, and the shape of the
// assembled chart.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"golang-export-dashboard/internal/pipeline"

	"github.com/shopspring/decimal"
)

// OutputFormat represents the supported summary output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for summary generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// Console formatting options
	TableMaxWidth int `json:"table_max_width"`

	// Section toggles
	IncludeParseStats     bool `json:"include_parse_stats"`
	IncludeCategoryTotals bool `json:"include_category_totals"`
	IncludeTopCommodities bool `json:"include_top_commodities"`
}

// DefaultReportConfig returns a default summary configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:                FormatConsole,
		TableMaxWidth:         120,
		IncludeParseStats:     true,
		IncludeCategoryTotals: true,
		IncludeTopCommodities: true,
	}
}

// Validate validates the summary configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.TableMaxWidth < 50 {
		return fmt.Errorf("table max width must be at least 50 characters, got %d", c.TableMaxWidth)
	}
	return nil
}

// ReportGenerator generates run summaries in the configured format
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new summary generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateReport writes a summary of the run result to the provided writer
func (rg *ReportGenerator) GenerateReport(result *pipeline.Result, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("run result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(result, writer)
	case FormatJSON:
		return rg.generateJSONReport(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) generateConsoleReport(result *pipeline.Result, writer io.Writer) error {
	fmt.Fprintf(writer, "EXPORT DASHBOARD RUN SUMMARY\n")
	fmt.Fprintf(writer, "Generated: %s\n", result.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(writer, "Duration: %v\n\n", result.Duration)

	if rg.config.IncludeParseStats && result.ParseStats != nil {
		fmt.Fprintf(writer, "=== INGESTION ===\n")
		fmt.Fprintf(writer, "%-24s %d\n", "Records parsed:", result.ParseStats.RecordsParsed)
		fmt.Fprintf(writer, "%-24s %d\n", "Filtered by province:", result.ParseStats.RecordsFiltered)
		fmt.Fprintf(writer, "%-24s %d\n", "Classified:", result.RecordsClassified)
		fmt.Fprintf(writer, "%-24s %d\n", "Dropped (unclassified):", result.RecordsDropped)
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeCategoryTotals && len(result.CategoryTotals) > 0 {
		fmt.Fprintf(writer, "=== CATEGORY TOTALS ===\n")
		for _, entry := range result.CategoryTotals {
			fmt.Fprintf(writer, "%-24s %s\n", string(entry.Category)+":", formatCurrency(entry.Total))
		}
		fmt.Fprintf(writer, "\n")
	}

	if rg.config.IncludeTopCommodities && len(result.TopCommodities) > 0 {
		fmt.Fprintf(writer, "=== TOP COMMODITIES ===\n")
		for _, entry := range result.TopCommodities {
			name := entry.Name
			if max := rg.config.TableMaxWidth - 30; len(name) > max {
				name = name[:max-3] + "..."
			}
			fmt.Fprintf(writer, "%2d. %s %-16s %s\n",
				entry.Rank, formatCurrency(entry.Total), entry.Category, name)
		}
		fmt.Fprintf(writer, "\n")
	}

	fmt.Fprintf(writer, "=== CHART ===\n")
	fmt.Fprintf(writer, "%-24s %d\n", "Traces:", result.TraceCount)
	fmt.Fprintf(writer, "%-24s %d\n", "Months:", result.MonthCount)

	return nil
}

func (rg *ReportGenerator) generateJSONReport(result *pipeline.Result, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// formatCurrency renders a decimal as a dollar amount with thousand
// separators, matching the hover labels in the chart itself.
func formatCurrency(d decimal.Decimal) string {
	whole := d.Round(0).String()
	negative := strings.HasPrefix(whole, "-")
	if negative {
		whole = whole[1:]
	}

	var parts []string
	for len(whole) > 3 {
		parts = append([]string{whole[len(whole)-3:]}, parts...)
		whole = whole[:len(whole)-3]
	}
	parts = append([]string{whole}, parts...)

	out := "$" + strings.Join(parts, ",")
	if negative {
		out = "-" + out
	}
	return out
}
