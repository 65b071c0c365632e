package parsers

import (
	"context"
	"fmt"
	"io"

	"golang-export-dashboard/internal/models"
	"golang-export-dashboard/pkg/errors"
	"golang-export-dashboard/pkg/logger"
)

// ReportParser handles parsing of trade-export report CSV files
type ReportParser struct {
	*BaseParser
	config *ReportParserConfig
	logger logger.Logger
}

// NewReportParser creates a new ReportParser with the given configuration
func NewReportParser(config *ReportParserConfig) (*ReportParser, error) {
	if config == nil {
		config = DefaultReportParserConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"report_parser_config",
			config,
			err,
		).WithSuggestion("Check the report parser configuration values")
	}

	parseConfig := &ParseConfig{
		HasHeader:        config.HasHeader,
		SkipLeadingLines: config.SkipLeadingLines,
		Delimiter:        config.Delimiter,
		Comment:          0,
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
		ValidateEncoding: true,
	}

	baseParser := NewBaseParser(parseConfig)
	log := logger.GetGlobalLogger().WithComponent("report_parser")

	log.WithFields(logger.Fields{
		"province_filter":    config.ProvinceFilter,
		"skip_leading_lines": config.SkipLeadingLines,
		"delimiter":          string(config.Delimiter),
	}).Debug("Created report parser")

	return &ReportParser{
		BaseParser: baseParser,
		config:     config,
		logger:     log,
	}, nil
}

// ParseReport parses a CSV trade-export report file
func (rp *ReportParser) ParseReport(filePath string) ([]*models.ExportRecord, *ParseStats, error) {
	return rp.ParseReportWithContext(context.Background(), filePath)
}

// ParseReportWithContext parses the report with cancellation support.
// Rows whose province does not match the configured filter are counted as
// filtered; rows with unparseable values or periods are kept with null
// fields per the degradation policy.
func (rp *ReportParser) ParseReportWithContext(ctx context.Context, filePath string) ([]*models.ExportRecord, *ParseStats, error) {
	rp.logger.WithFields(logger.Fields{
		"file_path": filePath,
		"operation": "parse_report",
	}).Info("Starting report parsing")

	file, reader, err := rp.OpenFile(filePath)
	if err != nil {
		rp.logger.WithError(err).WithField("file_path", filePath).Error("Failed to open report file")
		return nil, nil, err
	}
	defer file.Close()

	parseCtx := NewParseContext(ctx)
	stats := NewParseStats()

	if err := rp.SkipPreamble(reader, parseCtx); err != nil {
		rp.logger.WithError(err).WithField("file_path", filePath).Error("Failed to skip report preamble")
		return nil, stats, errors.WrapIfNeeded(err, errors.CategoryParse, errors.CodeInvalidFormat, "failed to skip report preamble")
	}

	requiredHeaders := rp.getRequiredHeaders()
	if err := rp.ReadHeaders(reader, parseCtx, requiredHeaders); err != nil {
		rp.logger.WithError(err).WithFields(logger.Fields{
			"file_path":        filePath,
			"required_headers": requiredHeaders,
		}).Error("Failed to read or validate headers")

		return nil, stats, errors.ParseError(
			errors.CodeMissingColumn,
			filePath,
			parseCtx.LineNumber,
			"headers",
			"",
			err,
		).WithSuggestion("Ensure the report has the required headers: " + fmt.Sprintf("%v", requiredHeaders))
	}

	provinceFilter := models.NormalizeProvince(rp.config.ProvinceFilter)
	var records []*models.ExportRecord

	tracker := logger.NewProgressTracker(logger.ProgressConfig{
		Operation: "parse_report",
		Logger:    rp.logger,
	})
	defer tracker.Complete()

	for {
		if parseCtx.IsCancelled() {
			rp.logger.Warn("Report parsing was cancelled")
			return records, stats, errors.InternalError(
				errors.CodeUnexpectedError,
				"report_parsing",
				fmt.Errorf("parsing cancelled by context"),
			)
		}

		record, err := rp.ReadRecord(reader, parseCtx)
		if err != nil {
			if err == io.EOF {
				break
			}

			rp.logger.WithError(err).WithField("line_number", parseCtx.LineNumber).Warn("Failed to read record")
			stats.AddError(&ParseError{
				Line:    parseCtx.LineNumber,
				Message: "failed to read record",
				Err:     err,
			})
			continue
		}

		stats.RecordsParsed++
		tracker.Increment()

		exportRecord, parseErr := rp.parseRecordFromRow(record, parseCtx, filePath)
		if parseErr != nil {
			stats.AddError(parseErr)
			continue
		}

		// Jurisdiction filter is applied at ingestion; the downstream
		// pipeline only ever sees one province.
		if provinceFilter != "" && models.NormalizeProvince(exportRecord.Province) != provinceFilter {
			stats.RecordsFiltered++
			continue
		}

		records = append(records, exportRecord)
		stats.RecordsValid++
	}

	stats.TotalLines = parseCtx.LineNumber

	rp.logger.WithFields(logger.Fields{
		"file_path":        filePath,
		"total_lines":      stats.TotalLines,
		"records_parsed":   stats.RecordsParsed,
		"records_kept":     stats.RecordsValid,
		"records_filtered": stats.RecordsFiltered,
		"error_count":      len(stats.Errors),
	}).Info("Report parsing completed")

	if len(stats.Errors) > 0 {
		rp.logger.WithField("sample_errors", stats.GetSampleErrors(3)).Warn("Encountered errors during parsing")
	}

	return records, stats, nil
}

// getRequiredHeaders returns the list of required header names
func (rp *ReportParser) getRequiredHeaders() []string {
	return []string{
		rp.config.GetColumnName("commodity"),
		rp.config.GetColumnName("province"),
		rp.config.GetColumnName("period"),
		rp.config.GetColumnName("value"),
	}
}

// parseRecordFromRow creates an ExportRecord from a CSV row
func (rp *ReportParser) parseRecordFromRow(record []string, parseCtx *ParseContext, filePath string) (*models.ExportRecord, *ParseError) {
	commodity, err := rp.GetFieldValue(record, parseCtx, rp.config.GetColumnName("commodity"))
	if err != nil {
		return nil, rp.fieldError(parseCtx, filePath, rp.config.GetColumnName("commodity"), err)
	}

	province, err := rp.GetFieldValue(record, parseCtx, rp.config.GetColumnName("province"))
	if err != nil {
		return nil, rp.fieldError(parseCtx, filePath, rp.config.GetColumnName("province"), err)
	}

	periodStr, err := rp.GetFieldValue(record, parseCtx, rp.config.GetColumnName("period"))
	if err != nil {
		return nil, rp.fieldError(parseCtx, filePath, rp.config.GetColumnName("period"), err)
	}

	valueStr, err := rp.GetFieldValue(record, parseCtx, rp.config.GetColumnName("value"))
	if err != nil {
		return nil, rp.fieldError(parseCtx, filePath, rp.config.GetColumnName("value"), err)
	}

	// Quantity is optional; reports without the column still parse.
	var quantityStr string
	if parseCtx.GetColumnIndex(rp.config.GetColumnName("quantity")) != -1 {
		quantityStr, _ = rp.GetFieldValue(record, parseCtx, rp.config.GetColumnName("quantity"))
	}

	exportRecord, err := models.CreateExportRecordFromCSV(commodity, province, periodStr, valueStr, quantityStr)
	if err != nil {
		rp.logger.WithError(err).WithFields(logger.Fields{
			"line_number": parseCtx.LineNumber,
			"commodity":   commodity,
		}).Warn("Failed to create export record from CSV data")

		parseError := errors.ParseError(
			errors.CodeInvalidData,
			filePath,
			parseCtx.LineNumber,
			"commodity",
			commodity,
			err,
		).WithSuggestion("Ensure each row has a commodity description")

		return nil, &ParseError{
			Line:    parseCtx.LineNumber,
			Field:   rp.config.GetColumnName("commodity"),
			Value:   commodity,
			Message: parseError.Message,
			Err:     parseError,
		}
	}

	return exportRecord, nil
}

func (rp *ReportParser) fieldError(parseCtx *ParseContext, filePath, field string, err error) *ParseError {
	parseError := errors.ParseError(
		errors.CodeMissingField,
		filePath,
		parseCtx.LineNumber,
		field,
		"",
		err,
	).WithSuggestion(fmt.Sprintf("Ensure the %s column exists and has a value", field))

	return &ParseError{
		Line:    parseCtx.LineNumber,
		Field:   field,
		Message: parseError.Message,
		Err:     parseError,
	}
}

// ValidateReportFile validates that a CSV file has the expected report format
func (rp *ReportParser) ValidateReportFile(filePath string) error {
	rp.logger.WithField("file_path", filePath).Info("Validating report file format")

	file, reader, err := rp.OpenFile(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	parseCtx := NewParseContext(context.Background())

	if err := rp.SkipPreamble(reader, parseCtx); err != nil {
		return errors.WrapIfNeeded(err, errors.CategoryParse, errors.CodeInvalidFormat, "failed to skip report preamble")
	}

	requiredHeaders := rp.getRequiredHeaders()
	if err := rp.ReadHeaders(reader, parseCtx, requiredHeaders); err != nil {
		rp.logger.WithError(err).WithFields(logger.Fields{
			"file_path":        filePath,
			"required_headers": requiredHeaders,
		}).Error("Header validation failed")

		return errors.ParseError(
			errors.CodeMissingColumn,
			filePath,
			parseCtx.LineNumber,
			"headers",
			"",
			err,
		).WithSuggestion("Ensure the report has the required headers: " + fmt.Sprintf("%v", requiredHeaders))
	}

	// Spot-check the first few data rows
	recordCount := 0
	maxValidation := 10
	var validationErrors []error

	for recordCount < maxValidation {
		record, err := rp.ReadRecord(reader, parseCtx)
		if err != nil {
			if err == io.EOF {
				break
			}
			validationErrors = append(validationErrors, err)
			continue
		}

		recordCount++

		if _, parseErr := rp.parseRecordFromRow(record, parseCtx, filePath); parseErr != nil {
			validationErrors = append(validationErrors, parseErr.Err)
		}
	}

	if recordCount == 0 {
		err := errors.ValidationError(
			errors.CodeMissingField,
			"data_records",
			0,
			nil,
		).WithSuggestion("Ensure the file contains data rows after the header")

		rp.logger.WithField("file_path", filePath).Error("File contains no data records")
		return err
	}

	if len(validationErrors) > 0 {
		rp.logger.WithFields(logger.Fields{
			"file_path":      filePath,
			"error_count":    len(validationErrors),
			"records_tested": recordCount,
		}).Error("File validation failed with errors")

		return errors.ValidationError(
			errors.CodeInvalidData,
			"file_format",
			fmt.Sprintf("%d validation errors out of %d records tested", len(validationErrors), recordCount),
			validationErrors[0],
		).WithSuggestion("Fix the data format issues and try again")
	}

	rp.logger.WithFields(logger.Fields{
		"file_path":      filePath,
		"records_tested": recordCount,
	}).Info("Report file validation completed successfully")

	return nil
}
