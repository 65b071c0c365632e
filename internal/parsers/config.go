package parsers

import (
	"fmt"
	"strings"
)

// ReportParserConfig holds configuration for parsing trade-export report files
type ReportParserConfig struct {
	CommodityColumn string            `json:"commodity_column"`
	ProvinceColumn  string            `json:"province_column"`
	PeriodColumn    string            `json:"period_column"`
	ValueColumn     string            `json:"value_column"`
	QuantityColumn  string            `json:"quantity_column"`
	ProvinceFilter  string            `json:"province_filter"`
	HasHeader       bool              `json:"has_header"`
	SkipLeadingLines int              `json:"skip_leading_lines"`
	Delimiter       rune              `json:"delimiter"`
	ColumnAliases   map[string]string `json:"column_aliases,omitempty"`
}

// DefaultReportParserConfig returns the configuration matching the
// production export report layout.
func DefaultReportParserConfig() *ReportParserConfig {
	return &ReportParserConfig{
		CommodityColumn:  "Commodity",
		ProvinceColumn:   "Province",
		PeriodColumn:     "Period",
		ValueColumn:      "Value ($)",
		QuantityColumn:   "Quantity",
		ProvinceFilter:   "Saskatchewan",
		HasHeader:        true,
		SkipLeadingLines: 1, // the report opens with a placeholder line
		Delimiter:        ',',
		ColumnAliases: map[string]string{
			"commodity_name": "Commodity",
			"product":        "Commodity",
			"region":         "Province",
			"month":          "Period",
			"date":           "Period",
			"value":          "Value ($)",
			"export_value":   "Value ($)",
			"qty":            "Quantity",
		},
	}
}

// Validate checks if the report parser configuration is valid
func (rc *ReportParserConfig) Validate() error {
	if strings.TrimSpace(rc.CommodityColumn) == "" {
		return fmt.Errorf("commodity column cannot be empty")
	}

	if strings.TrimSpace(rc.ProvinceColumn) == "" {
		return fmt.Errorf("province column cannot be empty")
	}

	if strings.TrimSpace(rc.PeriodColumn) == "" {
		return fmt.Errorf("period column cannot be empty")
	}

	if strings.TrimSpace(rc.ValueColumn) == "" {
		return fmt.Errorf("value column cannot be empty")
	}

	if rc.SkipLeadingLines < 0 {
		return fmt.Errorf("skip leading lines cannot be negative")
	}

	return nil
}

// GetColumnName returns the actual column name, checking aliases first
func (rc *ReportParserConfig) GetColumnName(standardName string) string {
	if alias, exists := rc.ColumnAliases[standardName]; exists {
		return alias
	}

	switch standardName {
	case "commodity":
		return rc.CommodityColumn
	case "province":
		return rc.ProvinceColumn
	case "period":
		return rc.PeriodColumn
	case "value":
		return rc.ValueColumn
	case "quantity":
		return rc.QuantityColumn
	default:
		return standardName
	}
}
