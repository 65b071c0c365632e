// Package pipeline orchestrates a full dashboard run: parse the export
// report, classify rows into product families, rank and rename the top
// commodities, resolve colors, and assemble the figure document.
package pipeline

import (
	"context"
	"time"

	"golang-export-dashboard/internal/chart"
	"golang-export-dashboard/internal/classifier"
	"golang-export-dashboard/internal/models"
	"golang-export-dashboard/internal/palette"
	"golang-export-dashboard/internal/parsers"
	"golang-export-dashboard/internal/ranking"
	dasherrors "golang-export-dashboard/pkg/errors"
	"golang-export-dashboard/pkg/logger"

	"github.com/shopspring/decimal"
)

// Config holds the tunable parts of a run. Zero values fall back to the
// defaults of the stage that owns them.
type Config struct {
	Parser     *parsers.ReportParserConfig
	TopN       int
	ChartTitle string
}

// DefaultConfig returns a configuration matching the standard monthly
// Saskatchewan export report.
func DefaultConfig() *Config {
	return &Config{
		Parser: parsers.DefaultReportParserConfig(),
		TopN:   ranking.DefaultTopN,
	}
}

// Progress reports how far a run has advanced. Stages run strictly in
// sequence; there is exactly one callback per completed stage.
type Progress struct {
	Stage           string
	StagesCompleted int
	TotalStages     int
	PercentComplete float64
	Elapsed         time.Duration
}

// ProgressCallback receives stage-completion events during Run.
type ProgressCallback func(*Progress)

// RankedCommodity is one top-N entry with its aggregate value.
type RankedCommodity struct {
	Rank        int             `json:"rank"`
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Code        string          `json:"code"`
	Category    models.Category `json:"category"`
	Total       decimal.Decimal `json:"total"`
}

// CategoryTotal is one product family's aggregate value.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// Result captures everything a run produced: the figure document plus
// the aggregates the run summary is built from.
type Result struct {
	GeneratedAt       time.Time             `json:"generated_at"`
	Duration          time.Duration         `json:"duration"`
	ParseStats        *parsers.ParseStats   `json:"parse_stats"`
	RecordsClassified int                   `json:"records_classified"`
	RecordsDropped    int                   `json:"records_dropped"`
	TopCommodities    []*RankedCommodity    `json:"top_commodities"`
	CategoryTotals    []*CategoryTotal      `json:"category_totals"`
	TraceCount        int                   `json:"trace_count"`
	MonthCount        int                   `json:"month_count"`
	Figure            *chart.Figure         `json:"-"`
}

const totalStages = 6

// Pipeline runs the parse-to-figure sequence. A Pipeline is not safe
// for concurrent use; every Run owns its intermediate state outright.
type Pipeline struct {
	config     *Config
	parser     *parsers.ReportParser
	classifier *classifier.Classifier
	callbacks  []ProgressCallback
	logger     logger.Logger
}

// New builds a pipeline, validating the parser configuration up front.
func New(config *Config) (*Pipeline, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Parser == nil {
		config.Parser = parsers.DefaultReportParserConfig()
	}
	if config.TopN <= 0 {
		config.TopN = ranking.DefaultTopN
	}

	parser, err := parsers.NewReportParser(config.Parser)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		config:     config,
		parser:     parser,
		classifier: classifier.New(),
		logger:     logger.GetGlobalLogger().WithComponent("pipeline"),
	}, nil
}

// AddProgressCallback registers a callback invoked after each stage.
func (p *Pipeline) AddProgressCallback(callback ProgressCallback) {
	p.callbacks = append(p.callbacks, callback)
}

// Run executes the full pipeline against one report file. Ingestion
// failures are fatal and keep their file or parse category; a report in
// which no row classifies into a known product family fails with a
// pipeline error since there is nothing to chart.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (*Result, error) {
	start := time.Now()

	p.logger.WithFields(logger.Fields{
		"input": inputPath,
		"top_n": p.config.TopN,
	}).Info("Starting dashboard run")

	// Stage 1: ingest
	records, stats, err := p.parser.ParseReportWithContext(ctx, inputPath)
	if err != nil {
		return nil, err
	}
	p.notify("parse", 1, start)

	// Stage 2: classify; unclassifiable rows drop here
	classified := p.classifier.ClassifyRecords(records)
	if len(classified) == 0 {
		return nil, dasherrors.PipelineError(
			dasherrors.CodeNoClassifiedRows,
			"classify",
			nil,
		)
	}
	p.notify("classify", 2, start)

	// Stage 3: rank and rename
	topNames := ranking.TopN(classified, p.config.TopN)
	renames := ranking.BuildRenameMap(classified, topNames)
	ranking.ApplyRenames(classified, renames)
	p.notify("rank", 3, start)

	// Stage 4: rekey the curated colors under the ranked names. This
	// runs only after the rename map covers every distinct commodity.
	colors := ranking.RekeyColors(palette.CuratedColors(), renames)
	resolver := palette.NewResolver(colors)
	p.notify("palette", 4, start)

	// Stage 5: canonical order and trace assembly
	order := chart.BuildCanonicalOrder(classified)
	assembly := chart.Assemble(classified, order, resolver)
	p.notify("assemble", 5, start)

	// Stage 6: figure document
	var figure *chart.Figure
	if p.config.ChartTitle != "" {
		figure = chart.BuildFigureWithTitle(assembly, p.config.ChartTitle)
	} else {
		figure = chart.BuildFigure(assembly)
	}
	p.notify("figure", 6, start)

	result := &Result{
		GeneratedAt:       start,
		Duration:          time.Since(start),
		ParseStats:        stats,
		RecordsClassified: len(classified),
		RecordsDropped:    len(records) - len(classified),
		TopCommodities:    p.rankedCommodities(classified, topNames, renames),
		CategoryTotals:    categoryTotals(classified, order),
		TraceCount:        len(assembly.Traces),
		MonthCount:        len(assembly.Months),
		Figure:            figure,
	}

	p.logger.WithFields(logger.Fields{
		"records_classified": result.RecordsClassified,
		"records_dropped":    result.RecordsDropped,
		"traces":             result.TraceCount,
		"months":             result.MonthCount,
		"duration":           result.Duration,
	}).Info("Dashboard run completed")

	return result, nil
}

func (p *Pipeline) rankedCommodities(records []*models.ExportRecord, topNames []string, renames map[string]string) []*RankedCommodity {
	byName := make(map[string]*ranking.CommodityTotal)
	for _, entry := range ranking.Totals(records) {
		byName[entry.Name] = entry
	}

	top := make([]*RankedCommodity, 0, len(topNames))
	for i, name := range topNames {
		entry := byName[name]
		top = append(top, &RankedCommodity{
			Rank:        i + 1,
			Name:        entry.Name,
			DisplayName: renames[entry.Name],
			Code:        entry.Code,
			Category:    entry.Category,
			Total:       entry.Total,
		})
	}
	return top
}

func categoryTotals(records []*models.ExportRecord, order *chart.CanonicalOrder) []*CategoryTotal {
	sums := make(map[models.Category]decimal.Decimal)
	for _, record := range records {
		sums[record.Category] = sums[record.Category].Add(record.ValueOrZero())
	}

	totals := make([]*CategoryTotal, 0, len(order.Categories))
	for _, category := range order.Categories {
		totals = append(totals, &CategoryTotal{Category: category, Total: sums[category]})
	}
	return totals
}

func (p *Pipeline) notify(stage string, completed int, start time.Time) {
	if len(p.callbacks) == 0 {
		return
	}
	progress := &Progress{
		Stage:           stage,
		StagesCompleted: completed,
		TotalStages:     totalStages,
		PercentComplete: float64(completed) / float64(totalStages) * 100,
		Elapsed:         time.Since(start),
	}
	for _, callback := range p.callbacks {
		callback(progress)
	}
}
