package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

const testReport = `Monthly Merchandise Trade Report
Commodity,Province,Period,Value ($),Quantity
"1001.99.00.11 - Red spring wheat, o/t certified organic, grade 1, o/t seed for sowing",Saskatchewan,2024-01,1000000,500
"1003.90.00.12 - Barley, for malting, o/t seed for sowing",Saskatchewan,2024-01,2000000,900
"3104.20.00.10 - Potassium chloride, in packages weighing more than 10 kg",Saskatchewan,2024-02,3000000,1500
`

func writeTestReport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.csv")
	if err := os.WriteFile(path, []byte(testReport), 0644); err != nil {
		t.Fatalf("failed to create report file: %v", err)
	}
	return path
}

func setGenerateFlags(t *testing.T, overrides map[string]interface{}) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("output", "export_data.json")
	viper.Set("summary-format", "console")
	viper.Set("top-n", 10)
	for key, value := range overrides {
		viper.Set(key, value)
	}
}

func TestValidateFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	validFile := filepath.Join(tmpDir, "valid.csv")
	if err := os.WriteFile(validFile, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name        string
		filePath    string
		expectError bool
	}{
		{
			name:        "valid file",
			filePath:    validFile,
			expectError: false,
		},
		{
			name:        "empty path",
			filePath:    "",
			expectError: true,
		},
		{
			name:        "non-existent file",
			filePath:    "/non/existent/file.csv",
			expectError: true,
		},
		{
			name:        "directory instead of file",
			filePath:    tmpDir,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath, "test file")

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateGenerateFlags(t *testing.T) {
	reportFile := writeTestReport(t)

	tests := []struct {
		name        string
		overrides   map[string]interface{}
		expectError bool
	}{
		{
			name:        "valid flags",
			overrides:   map[string]interface{}{"input": reportFile},
			expectError: false,
		},
		{
			name:        "missing input",
			overrides:   map[string]interface{}{},
			expectError: true,
		},
		{
			name: "non-existent input",
			overrides: map[string]interface{}{
				"input": "/non/existent/report.csv",
			},
			expectError: true,
		},
		{
			name: "invalid summary format",
			overrides: map[string]interface{}{
				"input":          reportFile,
				"summary-format": "yaml",
			},
			expectError: true,
		},
		{
			name: "non-positive top-n",
			overrides: map[string]interface{}{
				"input": reportFile,
				"top-n": 0,
			},
			expectError: true,
		},
		{
			name: "output directory missing",
			overrides: map[string]interface{}{
				"input":  reportFile,
				"output": "/non/existent/dir/export_data.json",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setGenerateFlags(t, tt.overrides)
			err := validateGenerateFlags(generateCmd, nil)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRunGenerate(t *testing.T) {
	reportFile := writeTestReport(t)
	outDir := t.TempDir()
	chartFile := filepath.Join(outDir, "export_data.json")
	summaryPath := filepath.Join(outDir, "summary.json")

	setGenerateFlags(t, map[string]interface{}{
		"input":          reportFile,
		"output":         chartFile,
		"summary-format": "json",
		"summary-file":   summaryPath,
	})

	if err := validateGenerateFlags(generateCmd, nil); err != nil {
		t.Fatalf("flag validation failed: %v", err)
	}
	if err := runGenerate(generateCmd, nil); err != nil {
		t.Fatalf("runGenerate failed: %v", err)
	}

	// The chart document exists and is valid JSON with a trace list
	chartData, err := os.ReadFile(chartFile)
	if err != nil {
		t.Fatalf("reading chart document: %v", err)
	}
	var figure struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(chartData, &figure); err != nil {
		t.Fatalf("chart document is not valid JSON: %v", err)
	}
	// 3 commodities plus the trend overlay
	if len(figure.Data) != 4 {
		t.Errorf("chart trace count = %d, want 4", len(figure.Data))
	}

	// The summary exists and reports the classified rows
	summaryData, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}
	var summary struct {
		RecordsClassified int `json:"records_classified"`
	}
	if err := json.Unmarshal(summaryData, &summary); err != nil {
		t.Fatalf("summary is not valid JSON: %v", err)
	}
	if summary.RecordsClassified != 3 {
		t.Errorf("records_classified = %d, want 3", summary.RecordsClassified)
	}
}
