// Package parsers turns raw bank-statement payloads into normalized,
// error-tolerant transaction lists.
//
// Two statement formats are supported natively: header-driven CSV (column
// order unknown, mapped heuristically) and SWIFT MT940. XLSX workbooks are
// accepted as a third selector and converted to CSV text before parsing.
//
// Parsing is error-tolerant by design: a malformed row or transaction
// block is recorded as a ParseError at its input line and parsing
// continues. Only input-level failures (invalid encoding, unknown format)
// abort the whole statement.
package parsers

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"statement-reconciliation-service/internal/models"
	"statement-reconciliation-service/pkg/errors"

	"github.com/shopspring/decimal"
)

// StatementFormat is the closed set of accepted statement formats,
// resolved once at the entry point.
type StatementFormat int

const (
	FormatCSV StatementFormat = iota
	FormatMT940
	FormatXLSX
)

// String returns the string representation of StatementFormat
func (f StatementFormat) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatMT940:
		return "mt940"
	case FormatXLSX:
		return "xlsx"
	default:
		return "unknown"
	}
}

// ParseFormat resolves a raw format selector to a StatementFormat.
// Unknown selectors are rejected before any parsing begins.
func ParseFormat(s string) (StatementFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "mt940":
		return FormatMT940, nil
	case "xlsx":
		return FormatXLSX, nil
	default:
		return 0, errors.ParseError(errors.CodeUnknownFormat, s, nil)
	}
}

// RawStatementInput is the request-scoped statement payload handed to the
// parsing entry point. DateFormat applies to CSV (and converted XLSX)
// input only, using caller-facing tokens such as "DD/MM/YYYY".
type RawStatementInput struct {
	Data       []byte
	Format     StatementFormat
	DateFormat string
}

// Parser is the common capability each statement format implements
type Parser interface {
	Parse(input RawStatementInput) (*ParseResult, error)
}

// ParseStatement is the single entry point for statement ingestion. It
// validates encoding, dispatches on the format enum and returns the
// normalized result. XLSX payloads are converted to CSV text first.
func ParseStatement(input RawStatementInput) (*ParseResult, error) {
	if input.Format == FormatXLSX {
		converted, err := ConvertXLSXToCSV(input.Data)
		if err != nil {
			return nil, err
		}
		input = RawStatementInput{
			Data:       converted,
			Format:     FormatCSV,
			DateFormat: input.DateFormat,
		}
	}

	if !utf8.Valid(input.Data) {
		return nil, errors.ParseError(errors.CodeEncodingError, input.Format.String(),
			fmt.Errorf("input is not valid UTF-8"))
	}

	var parser Parser
	switch input.Format {
	case FormatCSV:
		parser = NewCSVParser(DefaultCSVConfig(input.DateFormat))
	case FormatMT940:
		parser = NewMT940Parser()
	default:
		return nil, errors.ParseError(errors.CodeUnknownFormat, input.Format.String(), nil)
	}

	return parser.Parse(input)
}

// ParseError records a single recoverable failure while parsing a
// statement. Line numbers are 1-based relative to the raw input.
type ParseError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
	Raw     string `json:"raw,omitempty"`
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("line %d: %s (row: %s)", e.Line, e.Message, e.Raw)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// StatementPeriod is the date range covered by the parsed transactions
type StatementPeriod struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ParseResult is the outcome of parsing one statement. Transactions and
// errors are both ordered as encountered; Success is true only when no
// row failed. ValidRecords + ErrorRecords == TotalRecords.
type ParseResult struct {
	Success        bool                            `json:"success"`
	TotalRecords   int                             `json:"totalRecords"`
	ValidRecords   int                             `json:"validRecords"`
	ErrorRecords   int                             `json:"errorRecords"`
	Transactions   []*models.NormalizedTransaction `json:"transactions"`
	Errors         []*ParseError                   `json:"errors"`
	OpeningBalance *decimal.Decimal                `json:"openingBalance,omitempty"`
	ClosingBalance *decimal.Decimal                `json:"closingBalance,omitempty"`
	Period         *StatementPeriod                `json:"statementPeriod,omitempty"`
}

// NewParseResult creates an empty parse result
func NewParseResult() *ParseResult {
	return &ParseResult{
		Transactions: make([]*models.NormalizedTransaction, 0),
		Errors:       make([]*ParseError, 0),
	}
}

// addTransaction appends a successfully built transaction and bumps the
// record counters.
func (pr *ParseResult) addTransaction(tx *models.NormalizedTransaction) {
	pr.Transactions = append(pr.Transactions, tx)
	pr.TotalRecords++
	pr.ValidRecords++
}

// addError records a row-level failure and bumps the record counters
func (pr *ParseResult) addError(line int, message, raw string) {
	pr.Errors = append(pr.Errors, &ParseError{Line: line, Message: message, Raw: raw})
	pr.TotalRecords++
	pr.ErrorRecords++
}

// finalize derives the success flag, statement period and, unless a
// format set them explicitly, the opening/closing balances from the first
// and last transactions carrying one.
func (pr *ParseResult) finalize() {
	pr.Success = len(pr.Errors) == 0

	if pr.OpeningBalance == nil {
		for _, tx := range pr.Transactions {
			if tx.Balance != nil {
				pr.OpeningBalance = tx.Balance
				break
			}
		}
	}
	if pr.ClosingBalance == nil {
		for i := len(pr.Transactions) - 1; i >= 0; i-- {
			if pr.Transactions[i].Balance != nil {
				pr.ClosingBalance = pr.Transactions[i].Balance
				break
			}
		}
	}

	if len(pr.Transactions) > 0 {
		from := pr.Transactions[0].Date
		to := pr.Transactions[0].Date
		for _, tx := range pr.Transactions[1:] {
			if tx.Date.Before(from) {
				from = tx.Date
			}
			if tx.Date.After(to) {
				to = tx.Date
			}
		}
		pr.Period = &StatementPeriod{From: from, To: to}
	}
}

// SampleErrors returns at most max error messages for display
func (pr *ParseResult) SampleErrors(max int) []string {
	limit := len(pr.Errors)
	if max > 0 && max < limit {
		limit = max
	}
	samples := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		samples = append(samples, pr.Errors[i].Error())
	}
	return samples
}

// String returns a human-readable summary of the parse result
func (pr *ParseResult) String() string {
	return fmt.Sprintf("ParseResult{total: %d, valid: %d, errors: %d}",
		pr.TotalRecords, pr.ValidRecords, pr.ErrorRecords)
}
