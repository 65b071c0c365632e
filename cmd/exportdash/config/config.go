// Package config builds the stage configurations for the exportdash CLI
// from command-line flags.
package config

import (
	"golang-export-dashboard/internal/parsers"
	"golang-export-dashboard/internal/pipeline"
	"golang-export-dashboard/internal/ranking"
	"golang-export-dashboard/internal/reporter"
)

// CreateParserConfig creates a report parser configuration for the given
// province filter. An empty province keeps the default filter.
func CreateParserConfig(province string) (*parsers.ReportParserConfig, error) {
	config := parsers.DefaultReportParserConfig()
	if province != "" {
		config.ProvinceFilter = province
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// CreatePipelineConfig creates a pipeline configuration from CLI flags.
func CreatePipelineConfig(parserConfig *parsers.ReportParserConfig, topN int, chartTitle string) *pipeline.Config {
	config := pipeline.DefaultConfig()
	config.Parser = parserConfig

	if topN > 0 {
		config.TopN = topN
	} else {
		config.TopN = ranking.DefaultTopN
	}
	config.ChartTitle = chartTitle

	return config
}

// CreateReportConfig creates a summary report configuration for the
// requested format.
func CreateReportConfig(format string) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()
	if format != "" {
		config.Format = reporter.OutputFormat(format)
	}
	return config
}
