package parsers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"statement-reconciliation-service/internal/models"
	"statement-reconciliation-service/pkg/logger"
)

// CSVConfig holds configuration for the CSV statement parser
type CSVConfig struct {
	// HasHeader controls whether the first row is a header to be mapped
	// heuristically. Without a header a fixed positional order applies.
	HasHeader bool
	// DateFormat is the caller-facing date pattern, e.g. "DD/MM/YYYY"
	DateFormat string
	Delimiter  rune
}

// DefaultCSVConfig returns a CSV configuration with sensible defaults
func DefaultCSVConfig(dateFormat string) *CSVConfig {
	if dateFormat == "" {
		dateFormat = "DD/MM/YYYY"
	}
	return &CSVConfig{
		HasHeader:  true,
		DateFormat: dateFormat,
		Delimiter:  ',',
	}
}

// CSVParser parses header-driven CSV statements into normalized
// transactions. One bad row never aborts the batch: failures are recorded
// as ParseErrors at their input line and parsing continues.
type CSVParser struct {
	config *CSVConfig
	logger logger.Logger
}

// NewCSVParser creates a CSVParser with the given configuration
func NewCSVParser(config *CSVConfig) *CSVParser {
	if config == nil {
		config = DefaultCSVConfig("")
	}
	return &CSVParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("csv_parser"),
	}
}

// Parse implements the Parser interface for CSV statement bodies
func (p *CSVParser) Parse(input RawStatementInput) (*ParseResult, error) {
	reader := csv.NewReader(bytes.NewReader(input.Data))
	reader.Comma = p.config.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	result := NewParseResult()
	mapping := PositionalMapping()
	headerRead := false

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed CSV row (unbalanced quotes etc.): record and move on
			result.addError(errorLine(err), "malformed CSV row: "+err.Error(), "")
			continue
		}
		// The reader skips empty lines, so line numbers come from the
		// record's position in the raw input, not from a read counter.
		line, _ := reader.FieldPos(0)

		if isBlankRow(row) {
			continue
		}

		if p.config.HasHeader && !headerRead {
			headerRead = true
			mapping = MapColumns(row)
			p.logger.WithFields(logger.Fields{
				"headers":     row,
				"date_col":    mapping.Date,
				"debit_col":   mapping.Debit,
				"credit_col":  mapping.Credit,
				"balance_col": mapping.Balance,
			}).Debug("Mapped CSV header columns")
			continue
		}

		tx, rowErr := p.buildTransaction(row, mapping)
		if rowErr != nil {
			result.addError(line, rowErr.Error(), joinRow(row, p.config.Delimiter))
			continue
		}
		result.addTransaction(tx)
	}

	result.finalize()

	p.logger.WithFields(logger.Fields{
		"total":  result.TotalRecords,
		"valid":  result.ValidRecords,
		"errors": result.ErrorRecords,
	}).Info("Parsed CSV statement")

	return result, nil
}

// buildTransaction builds a NormalizedTransaction from one data row. Any
// failure is returned for the caller to record at the row's line number.
func (p *CSVParser) buildTransaction(row []string, mapping ColumnMapping) (*models.NormalizedTransaction, error) {
	date, err := ParseDate(field(row, mapping.Date), p.config.DateFormat)
	if err != nil {
		return nil, err
	}

	debit, err := ParseAmount(field(row, mapping.Debit))
	if err != nil {
		return nil, err
	}
	credit, err := ParseAmount(field(row, mapping.Credit))
	if err != nil {
		return nil, err
	}

	description := field(row, mapping.Description)

	tx := &models.NormalizedTransaction{
		Date:        date,
		Reference:   field(row, mapping.Reference),
		Description: description,
		Debit:       debit,
		Credit:      credit,
		Type:        Classify(description, debit, credit),
	}

	if raw := field(row, mapping.Balance); raw != "" {
		balance, err := ParseAmount(raw)
		if err != nil {
			return nil, err
		}
		tx.Balance = &balance
	}

	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// errorLine extracts the raw-input line number from a csv.Reader error
func errorLine(err error) int {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return parseErr.Line
	}
	return 0
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func joinRow(row []string, delim rune) string {
	var buf bytes.Buffer
	for i, cell := range row {
		if i > 0 {
			buf.WriteRune(delim)
		}
		buf.WriteString(cell)
	}
	return buf.String()
}
