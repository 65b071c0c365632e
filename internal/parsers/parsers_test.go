package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"golang-export-dashboard/pkg/errors"
)

const sampleReport = "Trade Data Online - Monthly Report\n" +
	"\ufeffCommodity,Province,Period,Value ($),Quantity\n" +
	"\"1001.99.00.11 - Red spring wheat, o/t certified organic, grade 1, o/t seed for sowing\",Saskatchewan,2024-01-01,\"1,500,000\",12000\n" +
	"1205.10.00.10 - Rape/colza seeds,Saskatchewan,2024-01-01,2500000,30000\n" +
	"\"1003.90.00.12 - Barley, o/t certified organic\",Alberta,2024-01-01,900000,8000\n" +
	"3104.20.00.10 - Potassium chloride,Saskatchewan,2024-02-01,n/a,\n" +
	"\"0713.40.90.00 - Lentils, dried\",Saskatchewan,bad-period,450000,5000\n"

func writeTempReport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestReportParser_ParseReport(t *testing.T) {
	parser, err := NewReportParser(nil)
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}

	path := writeTempReport(t, sampleReport)

	records, stats, err := parser.ParseReport(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 5 data rows parsed; Alberta row filtered out
	if stats.RecordsParsed != 5 {
		t.Errorf("records parsed = %d, want 5", stats.RecordsParsed)
	}
	if stats.RecordsFiltered != 1 {
		t.Errorf("records filtered = %d, want 1", stats.RecordsFiltered)
	}
	if len(records) != 4 {
		t.Fatalf("records kept = %d, want 4", len(records))
	}

	first := records[0]
	if first.CategoryCode != "1001.99.00.11" {
		t.Errorf("first code = %q", first.CategoryCode)
	}
	if !first.Value.Valid || first.Value.Decimal.String() != "1500000" {
		t.Errorf("first value = %v", first.Value)
	}
	if first.MonthKey() != "2024-01" {
		t.Errorf("first month = %q", first.MonthKey())
	}

	// Unparseable value degrades to null, row is kept
	potash := records[2]
	if potash.CategoryCode != "3104.20.00.10" {
		t.Fatalf("expected potash row third, got %q", potash.CategoryCode)
	}
	if potash.Value.Valid {
		t.Error("expected null value for unparseable field")
	}

	// Unparseable period degrades to zero time, row is kept
	lentils := records[3]
	if lentils.HasPeriod() {
		t.Error("expected null period for unparseable field")
	}
}

func TestReportParser_BOMHeaderStripped(t *testing.T) {
	parser, err := NewReportParser(nil)
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}

	path := writeTempReport(t, sampleReport)

	// Would fail header validation if the BOM were left on "Commodity"
	if err := parser.ValidateReportFile(path); err != nil {
		t.Errorf("validation failed: %v", err)
	}
}

func TestReportParser_FileNotFound(t *testing.T) {
	parser, err := NewReportParser(nil)
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}

	_, _, err = parser.ParseReport("/nonexistent/report.csv")
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	dashErr, ok := errors.AsDashboardError(err)
	if !ok {
		t.Fatalf("expected DashboardError, got %T", err)
	}
	if dashErr.Category != errors.CategoryFile {
		t.Errorf("category = %s, want %s", dashErr.Category, errors.CategoryFile)
	}
	if dashErr.GetExitCode() != 2 {
		t.Errorf("exit code = %d, want 2", dashErr.GetExitCode())
	}
}

func TestReportParser_MissingColumns(t *testing.T) {
	parser, err := NewReportParser(nil)
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}

	path := writeTempReport(t, "placeholder\nCommodity,Region,Month\nx - y,Saskatchewan,2024-01\n")

	_, _, err = parser.ParseReport(path)
	if err == nil {
		t.Fatal("expected error for missing required columns")
	}

	dashErr, ok := errors.AsDashboardError(err)
	if !ok || dashErr.Category != errors.CategoryParse {
		t.Errorf("expected parse-category DashboardError, got %v", err)
	}
}

func TestReportParser_CustomProvinceFilter(t *testing.T) {
	config := DefaultReportParserConfig()
	config.ProvinceFilter = "Alberta"

	parser, err := NewReportParser(config)
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}

	path := writeTempReport(t, sampleReport)

	records, _, err := parser.ParseReport(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records kept = %d, want 1", len(records))
	}
	if records[0].Province != "Alberta" {
		t.Errorf("province = %q", records[0].Province)
	}
}

func TestReportParserConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ReportParserConfig)
		wantError bool
	}{
		{"default is valid", func(c *ReportParserConfig) {}, false},
		{"empty commodity column", func(c *ReportParserConfig) { c.CommodityColumn = "" }, true},
		{"empty province column", func(c *ReportParserConfig) { c.ProvinceColumn = " " }, true},
		{"empty period column", func(c *ReportParserConfig) { c.PeriodColumn = "" }, true},
		{"empty value column", func(c *ReportParserConfig) { c.ValueColumn = "" }, true},
		{"negative skip", func(c *ReportParserConfig) { c.SkipLeadingLines = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultReportParserConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestReportParserConfig_GetColumnName(t *testing.T) {
	config := DefaultReportParserConfig()

	if got := config.GetColumnName("commodity"); got != "Commodity" {
		t.Errorf("commodity column = %q", got)
	}
	if got := config.GetColumnName("value"); got != "Value ($)" {
		t.Errorf("value column = %q", got)
	}
	// Alias lookup wins over standard mapping
	if got := config.GetColumnName("export_value"); got != "Value ($)" {
		t.Errorf("aliased column = %q", got)
	}
}
