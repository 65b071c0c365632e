// Package parsers provides CSV parsing for tabular trade-export reports.
//
// The package handles the quirks of real export-report files: a preamble
// line before the header, BOM-prefixed header names, combined code/name
// commodity columns, and numeric or date fields that fail to parse and must
// degrade to null without dropping the row.
//
// Parser types:
//   - ReportParser: for trade-export report files
//
// Example usage:
//
//	config := DefaultReportParserConfig()
//	parser, err := NewReportParser(config)
//	records, stats, err := parser.ParseReport("SK-CN_2024-2025Oct_Report.csv")
package parsers

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang-export-dashboard/pkg/errors"
	"golang-export-dashboard/pkg/logger"
)

// ParseError represents an error that occurred during CSV parsing
type ParseError struct {
	Line    int
	Column  int
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error at line %d, column %d (%s='%s'): %s: %v",
			e.Line, e.Column, e.Field, e.Value, e.Message, e.Err)
	}
	return fmt.Sprintf("parse error at line %d, column %d (%s='%s'): %s",
		e.Line, e.Column, e.Field, e.Value, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseConfig holds configuration for CSV parsing
type ParseConfig struct {
	HasHeader        bool
	SkipLeadingLines int
	Delimiter        rune
	Comment          rune
	TrimLeadingSpace bool
	SkipEmptyRows    bool
	ValidateEncoding bool
}

// DefaultParseConfig returns a configuration with sensible defaults
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		HasHeader:        true,
		SkipLeadingLines: 0,
		Delimiter:        ',',
		Comment:          0,
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
		ValidateEncoding: true,
	}
}

// BaseParser provides common CSV parsing functionality
type BaseParser struct {
	config *ParseConfig
	logger logger.Logger
}

// NewBaseParser creates a new BaseParser with the given configuration
func NewBaseParser(config *ParseConfig) *BaseParser {
	if config == nil {
		config = DefaultParseConfig()
	}

	log := logger.GetGlobalLogger().WithComponent("base_parser")
	log.WithFields(logger.Fields{
		"has_header":         config.HasHeader,
		"skip_leading_lines": config.SkipLeadingLines,
		"delimiter":          string(config.Delimiter),
		"validate_encoding":  config.ValidateEncoding,
	}).Debug("Created base parser")

	return &BaseParser{
		config: config,
		logger: log,
	}
}

// ParseContext holds state during parsing operations
type ParseContext struct {
	LineNumber  int
	Headers     []string
	HeaderMap   map[string]int
	RecordCount int
	ErrorCount  int
	Errors      []*ParseError
	ctx         context.Context
}

// NewParseContext creates a new parsing context
func NewParseContext(ctx context.Context) *ParseContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ParseContext{
		Headers:   make([]string, 0),
		HeaderMap: make(map[string]int),
		Errors:    make([]*ParseError, 0),
		ctx:       ctx,
	}
}

// IsCancelled checks if the parsing context has been cancelled
func (pc *ParseContext) IsCancelled() bool {
	select {
	case <-pc.ctx.Done():
		return true
	default:
		return false
	}
}

// AddError adds a parsing error to the context
func (pc *ParseContext) AddError(column int, field, value, message string, err error) {
	parseErr := &ParseError{
		Line:    pc.LineNumber,
		Column:  column,
		Field:   field,
		Value:   value,
		Message: message,
		Err:     err,
	}
	pc.Errors = append(pc.Errors, parseErr)
	pc.ErrorCount++
}

// GetColumnIndex returns the index of a column by name, or -1 if not found
func (pc *ParseContext) GetColumnIndex(name string) int {
	if index, exists := pc.HeaderMap[name]; exists {
		return index
	}

	// Try case-insensitive lookup
	lowerName := strings.ToLower(name)
	for header, index := range pc.HeaderMap {
		if strings.ToLower(header) == lowerName {
			return index
		}
	}

	return -1
}

// OpenFile opens a CSV file and returns a csv.Reader
func (bp *BaseParser) OpenFile(filePath string) (*os.File, *csv.Reader, error) {
	bp.logger.WithField("file_path", filePath).Debug("Opening CSV file")

	file, err := os.Open(filePath)
	if err != nil {
		bp.logger.WithError(err).WithField("file_path", filePath).Error("Failed to open CSV file")

		if os.IsNotExist(err) {
			return nil, nil, errors.FileError(errors.CodeFileNotFound, filePath, err)
		}
		if os.IsPermission(err) {
			return nil, nil, errors.FileError(errors.CodeFilePermission, filePath, err)
		}

		return nil, nil, errors.FileError(errors.CodeDirectoryError, filePath, err)
	}

	if bp.config.ValidateEncoding {
		if err := bp.validateEncoding(file, filePath); err != nil {
			file.Close()
			bp.logger.WithError(err).WithField("file_path", filePath).Error("File encoding validation failed")
			return nil, nil, err
		}

		if _, err := file.Seek(0, 0); err != nil {
			file.Close()
			return nil, nil, errors.FileError(errors.CodeFileCorrupted, filePath, err)
		}
	}

	reader := csv.NewReader(file)
	reader.Comma = bp.config.Delimiter
	reader.Comment = bp.config.Comment
	reader.TrimLeadingSpace = bp.config.TrimLeadingSpace
	reader.FieldsPerRecord = -1 // Variable number of fields

	bp.logger.WithField("file_path", filePath).Debug("Successfully opened CSV file")
	return file, reader, nil
}

// validateEncoding checks if the file contains valid UTF-8 text
func (bp *BaseParser) validateEncoding(file *os.File, filePath string) error {
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() && lineNum < 100 { // Check first 100 lines
		lineNum++
		if !utf8.Valid(scanner.Bytes()) {
			return errors.ParseError(
				errors.CodeEncodingError,
				filePath,
				lineNum,
				"encoding",
				"",
				fmt.Errorf("invalid UTF-8 encoding detected"),
			).WithSuggestion("Save the file in UTF-8 encoding and try again")
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.FileError(errors.CodeFileCorrupted, filePath, err)
	}

	return nil
}

// SkipPreamble consumes the configured number of leading non-header lines.
// Export reports commonly open with a title/placeholder line before the
// actual column header.
func (bp *BaseParser) SkipPreamble(reader *csv.Reader, parseCtx *ParseContext) error {
	for i := 0; i < bp.config.SkipLeadingLines; i++ {
		if _, err := reader.Read(); err != nil {
			if err == io.EOF {
				return errors.ValidationError(
					errors.CodeMissingField,
					"file_content",
					"empty",
					nil,
				).WithSuggestion("Ensure the file contains header and data rows")
			}
			return errors.ParseError(
				errors.CodeInvalidFormat,
				"",
				parseCtx.LineNumber+1,
				"preamble",
				"",
				err,
			)
		}
		parseCtx.LineNumber++
	}
	return nil
}

// ReadHeaders reads and validates the header row
func (bp *BaseParser) ReadHeaders(reader *csv.Reader, parseCtx *ParseContext, requiredHeaders []string) error {
	bp.logger.WithFields(logger.Fields{
		"has_header":       bp.config.HasHeader,
		"required_headers": requiredHeaders,
	}).Debug("Reading CSV headers")

	if !bp.config.HasHeader {
		if len(requiredHeaders) > 0 {
			parseCtx.Headers = make([]string, len(requiredHeaders))
			copy(parseCtx.Headers, requiredHeaders)
		}
		bp.buildHeaderMap(parseCtx)
		return nil
	}

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			bp.logger.Error("File is empty or contains no data")
			return errors.ValidationError(
				errors.CodeMissingField,
				"file_content",
				"empty",
				nil,
			).WithSuggestion("Ensure the file contains header and data rows")
		}

		bp.logger.WithError(err).Error("Failed to read header row")
		return errors.ParseError(
			errors.CodeInvalidFormat,
			"",
			parseCtx.LineNumber+1,
			"headers",
			"",
			err,
		).WithSuggestion("Check the file format and ensure it's a valid CSV")
	}

	parseCtx.LineNumber++
	parseCtx.Headers = bp.cleanHeaders(headers)
	bp.buildHeaderMap(parseCtx)

	bp.logger.WithField("headers", parseCtx.Headers).Debug("Successfully read headers")

	if len(requiredHeaders) > 0 {
		missing := bp.findMissingHeaders(parseCtx, requiredHeaders)
		if len(missing) > 0 {
			bp.logger.WithFields(logger.Fields{
				"missing_headers":   missing,
				"available_headers": parseCtx.Headers,
			}).Error("Required headers are missing")

			return errors.ParseError(
				errors.CodeMissingColumn,
				"",
				parseCtx.LineNumber,
				"headers",
				strings.Join(missing, ", "),
				nil,
			).WithSuggestion(fmt.Sprintf("Ensure the report contains these headers: %s", strings.Join(missing, ", ")))
		}
	}

	return nil
}

// cleanHeaders strips whitespace and any UTF-8 BOM from header names.
// Exported reports frequently carry a BOM on the first column.
func (bp *BaseParser) cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimPrefix(header, "\ufeff")
		cleaned[i] = strings.TrimSpace(header)
	}
	return cleaned
}

// buildHeaderMap creates a map from header names to column indices
func (bp *BaseParser) buildHeaderMap(parseCtx *ParseContext) {
	parseCtx.HeaderMap = make(map[string]int)
	for i, header := range parseCtx.Headers {
		parseCtx.HeaderMap[header] = i
	}
}

// findMissingHeaders returns a list of required headers that are not present
func (bp *BaseParser) findMissingHeaders(parseCtx *ParseContext, required []string) []string {
	var missing []string
	for _, header := range required {
		if parseCtx.GetColumnIndex(header) == -1 {
			missing = append(missing, header)
		}
	}
	return missing
}

// ReadRecord reads a single CSV record, skipping empty rows when configured
func (bp *BaseParser) ReadRecord(reader *csv.Reader, parseCtx *ParseContext) ([]string, error) {
	for {
		if parseCtx.IsCancelled() {
			bp.logger.Debug("Record reading cancelled by context")
			return nil, errors.InternalError(
				errors.CodeUnexpectedError,
				"csv_parsing",
				fmt.Errorf("parsing cancelled"),
			)
		}

		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil, err // Normal end of file
			}

			bp.logger.WithError(err).WithField("line_number", parseCtx.LineNumber+1).Warn("Failed to read CSV record")
			return nil, err
		}

		parseCtx.LineNumber++

		if bp.config.SkipEmptyRows && bp.isEmptyRecord(record) {
			bp.logger.WithField("line_number", parseCtx.LineNumber).Debug("Skipping empty record")
			continue
		}

		return record, nil
	}
}

// isEmptyRecord checks if all fields in a record are empty or whitespace
func (bp *BaseParser) isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// GetFieldValue safely retrieves a field value by name
func (bp *BaseParser) GetFieldValue(record []string, parseCtx *ParseContext, fieldName string) (string, error) {
	index := parseCtx.GetColumnIndex(fieldName)
	if index == -1 {
		return "", errors.ParseError(
			errors.CodeMissingColumn,
			"",
			parseCtx.LineNumber,
			fieldName,
			"",
			fmt.Errorf("field '%s' not found in headers", fieldName),
		).WithSuggestion(fmt.Sprintf("Check the CSV headers. Available headers: %v", parseCtx.Headers))
	}

	if index >= len(record) {
		bp.logger.WithFields(logger.Fields{
			"field_name":    fieldName,
			"field_index":   index,
			"record_length": len(record),
			"line_number":   parseCtx.LineNumber,
		}).Warn("Field index exceeds record length")

		return "", errors.ParseError(
			errors.CodeInvalidData,
			"",
			parseCtx.LineNumber,
			fieldName,
			"",
			fmt.Errorf("field '%s' (index %d) not present in record with %d fields", fieldName, index, len(record)),
		).WithSuggestion("Check that all rows have the same number of columns as the header")
	}

	return strings.TrimSpace(record[index]), nil
}

// ParseStats holds statistics about a parsing operation
type ParseStats struct {
	TotalLines       int
	RecordsParsed    int
	RecordsValid     int
	RecordsFiltered  int
	ErrorCount       int
	Errors           []*ParseError
}

// NewParseStats creates a new ParseStats instance
func NewParseStats() *ParseStats {
	return &ParseStats{
		Errors: make([]*ParseError, 0),
	}
}

// AddError adds an error to the parsing statistics
func (ps *ParseStats) AddError(err *ParseError) {
	ps.Errors = append(ps.Errors, err)
	ps.ErrorCount++
}

// HasErrors returns true if there were any parsing errors
func (ps *ParseStats) HasErrors() bool {
	return ps.ErrorCount > 0
}

// String returns a human-readable summary of parsing statistics
func (ps *ParseStats) String() string {
	return fmt.Sprintf("Parsed %d lines, %d records (%d kept, %d filtered), %d errors",
		ps.TotalLines, ps.RecordsParsed, ps.RecordsValid, ps.RecordsFiltered, ps.ErrorCount)
}

// GetSampleErrors returns a sample of the parsing errors for logging
func (ps *ParseStats) GetSampleErrors(maxSamples int) []string {
	if len(ps.Errors) == 0 {
		return nil
	}

	var samples []string
	limit := len(ps.Errors)
	if maxSamples > 0 && maxSamples < limit {
		limit = maxSamples
	}

	for i := 0; i < limit; i++ {
		samples = append(samples, ps.Errors[i].Error())
	}

	return samples
}
