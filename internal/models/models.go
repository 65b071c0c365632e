package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category represents one of the broad product families a commodity row is
// classified into. The closed set mirrors the production report taxonomy.
type Category string

const (
	CategoryCanola Category = "Canola Complex"
	CategoryWheat  Category = "Wheat Complex"
	CategoryBarley Category = "Barley Family"
	CategoryPulses Category = "Pulses Complex"
	CategoryPotash Category = "Potash"
	CategoryPulp   Category = "Wood Pulp"
	CategorySoya   Category = "Soya Beans"

	// CategoryOther is the unclassified sentinel. Rows carrying it are
	// dropped before ranking and never reach the chart.
	CategoryOther Category = "Others"
)

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// IsClassified reports whether the category is one of the known product
// families rather than the unclassified sentinel.
func (c Category) IsClassified() bool {
	switch c {
	case CategoryCanola, CategoryWheat, CategoryBarley, CategoryPulses,
		CategoryPotash, CategoryPulp, CategorySoya:
		return true
	default:
		return false
	}
}

// ExportRecord represents one observation row of the trade-export report.
// Value and Quantity are nullable: unparseable source fields degrade to null
// and contribute zero to aggregations instead of dropping the row.
type ExportRecord struct {
	CommodityName string              `json:"commodity_name" csv:"commodity_name"`
	CategoryCode  string              `json:"category_code" csv:"category_code"`
	Province      string              `json:"province" csv:"province"`
	Period        time.Time           `json:"period" csv:"period"`
	Value         decimal.NullDecimal `json:"value" csv:"value"`
	Quantity      decimal.NullDecimal `json:"quantity" csv:"quantity"`
	UnitPrice     decimal.NullDecimal `json:"unit_price,omitempty" csv:"unit_price"`
	Category      Category            `json:"category,omitempty" csv:"category"`

	// DisplayName is the ranked display string derived from CommodityName
	// once the top-N pass has run. Empty until the rename stage.
	DisplayName string `json:"display_name,omitempty" csv:"display_name"`
}

// NewExportRecord creates a new ExportRecord instance
func NewExportRecord(name, code, province string, period time.Time, value, quantity decimal.NullDecimal) *ExportRecord {
	r := &ExportRecord{
		CommodityName: name,
		CategoryCode:  code,
		Province:      province,
		Period:        period,
		Value:         value,
		Quantity:      quantity,
	}
	r.UnitPrice = deriveUnitPrice(value, quantity)
	return r
}

// Validate performs basic validation on the ExportRecord
func (r *ExportRecord) Validate() error {
	if strings.TrimSpace(r.CommodityName) == "" {
		return fmt.Errorf("commodity name cannot be empty")
	}

	return nil
}

// ValueOrZero returns the record's value, treating null as zero.
// Null values count zero toward sums but never exclude the row.
func (r *ExportRecord) ValueOrZero() decimal.Decimal {
	if !r.Value.Valid {
		return decimal.Zero
	}
	return r.Value.Decimal
}

// HasPeriod reports whether the period field parsed successfully
func (r *ExportRecord) HasPeriod() bool {
	return !r.Period.IsZero()
}

// MonthKey returns the record's period at month granularity, formatted as
// the x-axis label used by the chart.
func (r *ExportRecord) MonthKey() string {
	if r.Period.IsZero() {
		return ""
	}
	return r.Period.Format("2006-01")
}

// String returns a string representation of the ExportRecord
func (r *ExportRecord) String() string {
	value := "null"
	if r.Value.Valid {
		value = r.Value.Decimal.String()
	}
	return fmt.Sprintf("ExportRecord{Name: %s, Code: %s, Period: %s, Value: %s, Category: %s}",
		r.CommodityName, r.CategoryCode, r.MonthKey(), value, r.Category)
}

// deriveUnitPrice computes value/quantity when both are present and the
// quantity is positive; anything else carries a null unit price.
func deriveUnitPrice(value, quantity decimal.NullDecimal) decimal.NullDecimal {
	if !value.Valid || !quantity.Valid || !quantity.Decimal.IsPositive() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{
		Decimal: value.Decimal.Div(quantity.Decimal),
		Valid:   true,
	}
}

// Utility functions for type conversion

// ParseNullDecimal parses a nullable decimal from a report field. Empty or
// unparseable input degrades to null rather than an error; callers keep the
// row and the null contributes zero to sums.
func ParseNullDecimal(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}

	// Remove common currency symbols and thousand separators
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// periodFormats are the layouts accepted for the report's Period column.
var periodFormats = []string{
	"2006-01-02",
	"2006-01",
	"January 2006",
	"Jan 2006",
	"2006/01/02",
	"01/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParsePeriod parses a month-granularity period from a report field,
// truncating any day/time component to the first of the month. Unparseable
// input degrades to the zero time.
func ParsePeriod(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, format := range periodFormats {
		if t, err := time.Parse(format, s); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
	}

	return time.Time{}
}

// SplitCommodity splits the report's combined Commodity column into its
// HS-style code and the free-text name, splitting on the first " - " only
// since names routinely contain further dashes.
func SplitCommodity(s string) (code, name string) {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, " - "); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+3:])
	}
	return "", s
}

// NormalizeProvince canonicalizes a province field for filtering
func NormalizeProvince(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CreateExportRecordFromCSV creates an ExportRecord from raw report fields.
// Numeric and date fields degrade to null on parse failure; only a missing
// commodity name rejects the row.
func CreateExportRecordFromCSV(commodity, province, periodStr, valueStr, quantityStr string) (*ExportRecord, error) {
	code, name := SplitCommodity(commodity)

	record := NewExportRecord(
		name,
		code,
		strings.TrimSpace(province),
		ParsePeriod(periodStr),
		ParseNullDecimal(valueStr),
		ParseNullDecimal(quantityStr),
	)

	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("invalid export record: %w", err)
	}

	return record, nil
}
