package parsers

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"statement-reconciliation-service/internal/models"
	"statement-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Book-entry CSV columns are simpler than statement columns: an
// identifier, a date, either one signed amount column or a debit/credit
// pair, and an optional reference.
var (
	bookIDSynonyms     = []string{"entry id", "voucher", "journal", "id"}
	bookAmountSynonyms = []string{"amount", "value"}
)

// BookConfig holds configuration for the book-entry loader
type BookConfig struct {
	HasHeader  bool
	DateFormat string
	Delimiter  rune
}

// DefaultBookConfig returns a book-entry loader configuration with
// sensible defaults
func DefaultBookConfig(dateFormat string) *BookConfig {
	if dateFormat == "" {
		dateFormat = "YYYY-MM-DD"
	}
	return &BookConfig{
		HasHeader:  true,
		DateFormat: dateFormat,
		Delimiter:  ',',
	}
}

// BookEntryLoader reads ledger-side book entries from CSV text. It exists
// for callers (such as the CLI) that hold their ledger extract as a file;
// service integrations construct BookEntry values directly. Loading is
// error-tolerant in the same way statement parsing is.
type BookEntryLoader struct {
	config *BookConfig
	logger logger.Logger
}

// NewBookEntryLoader creates a loader with the given configuration
func NewBookEntryLoader(config *BookConfig) *BookEntryLoader {
	if config == nil {
		config = DefaultBookConfig("")
	}
	return &BookEntryLoader{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("book_loader"),
	}
}

// bookMapping resolves book-entry CSV columns. Amount == -1 means the
// file carries a debit/credit pair instead of one signed column.
type bookMapping struct {
	ID        int
	Date      int
	Amount    int
	Debit     int
	Credit    int
	Reference int
}

// Load parses book entries from CSV text. Bad rows are collected and
// returned alongside the entries that did parse.
func (l *BookEntryLoader) Load(data []byte) ([]*models.BookEntry, []*ParseError, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = l.config.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var entries []*models.BookEntry
	var parseErrors []*ParseError

	// Positional fallback: id, date, amount, reference
	mapping := bookMapping{ID: 0, Date: 1, Amount: 2, Debit: -1, Credit: -1, Reference: 3}
	headerRead := false

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, &ParseError{Line: errorLine(err), Message: "malformed CSV row: " + err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)
		if isBlankRow(row) {
			continue
		}

		if l.config.HasHeader && !headerRead {
			headerRead = true
			mapping = mapBookColumns(row)
			continue
		}

		entry, rowErr := l.buildEntry(row, mapping)
		if rowErr != nil {
			parseErrors = append(parseErrors, &ParseError{Line: line, Message: rowErr.Error(), Raw: joinRow(row, l.config.Delimiter)})
			continue
		}
		entries = append(entries, entry)
	}

	l.logger.WithFields(logger.Fields{
		"entries": len(entries),
		"errors":  len(parseErrors),
	}).Info("Loaded book entries")

	return entries, parseErrors, nil
}

func mapBookColumns(headers []string) bookMapping {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	return bookMapping{
		ID:        findColumn(lowered, bookIDSynonyms),
		Date:      findColumn(lowered, dateSynonyms),
		Amount:    findColumn(lowered, bookAmountSynonyms),
		Debit:     findColumn(lowered, debitSynonyms),
		Credit:    findColumn(lowered, creditSynonyms),
		Reference: findColumn(lowered, referenceSynonyms),
	}
}

func (l *BookEntryLoader) buildEntry(row []string, mapping bookMapping) (*models.BookEntry, error) {
	date, err := ParseDate(field(row, mapping.Date), l.config.DateFormat)
	if err != nil {
		return nil, err
	}

	id := field(row, mapping.ID)
	reference := field(row, mapping.Reference)

	var entry *models.BookEntry
	if mapping.Amount >= 0 {
		// Signed amount column: parse without the absolute-value rule so
		// ledger debits keep their sign
		raw := strings.TrimSpace(field(row, mapping.Amount))
		amount, err := parseSignedAmount(raw)
		if err != nil {
			return nil, err
		}
		entry = models.NewBookEntry(id, date, amount, reference)
	} else {
		debit, err := ParseAmount(field(row, mapping.Debit))
		if err != nil {
			return nil, err
		}
		credit, err := ParseAmount(field(row, mapping.Credit))
		if err != nil {
			return nil, err
		}
		entry = models.NewBookEntryFromPair(id, date, debit, credit, reference)
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return entry, nil
}

// parseSignedAmount applies the same strip rule as ParseAmount but keeps
// the sign.
func parseSignedAmount(text string) (decimal.Decimal, error) {
	amount, err := ParseAmount(text)
	if err != nil {
		return decimal.Zero, err
	}
	if strings.HasPrefix(strings.TrimSpace(text), "-") {
		return amount.Neg(), nil
	}
	return amount, nil
}
