package parsers

import (
	"fmt"
	"strings"
	"time"

	"statement-reconciliation-service/internal/models"
	"statement-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// MT940 tag prefixes. Only the statement-line, balance and information
// tags are consumed; other tags (:20:, :25:, :28C:, ...) are skipped.
const (
	tagOpeningFinal        = ":60F:"
	tagOpeningIntermediate = ":60M:"
	tagClosingFinal        = ":62F:"
	tagClosingIntermediate = ":62M:"
	tagStatementLine       = ":61:"
	tagInformation         = ":86:"
)

// MT940Parser parses SWIFT MT940 statement text. Each :61: tag starts a
// transaction record; :86: lines and bare continuation lines extend its
// description. A failed record is logged as a ParseError at the line of
// its :61: tag and never aborts the file.
type MT940Parser struct {
	logger logger.Logger
}

// NewMT940Parser creates a new MT940 parser
func NewMT940Parser() *MT940Parser {
	return &MT940Parser{
		logger: logger.GetGlobalLogger().WithComponent("mt940_parser"),
	}
}

// pendingRecord accumulates one :61: statement line until the next tag
// finalizes it.
type pendingRecord struct {
	line      int
	date      time.Time
	isDebit   bool
	amount    decimal.Decimal
	descParts []string
	err       error
}

// Parse implements the Parser interface for MT940 text
func (p *MT940Parser) Parse(input RawStatementInput) (*ParseResult, error) {
	result := NewParseResult()

	var pending *pendingRecord
	finalize := func() {
		if pending == nil {
			return
		}
		if pending.err != nil {
			result.addError(pending.line, pending.err.Error(), "")
		} else {
			tx := p.buildTransaction(pending)
			if err := tx.Validate(); err != nil {
				result.addError(pending.line, err.Error(), "")
			} else {
				result.addTransaction(tx)
			}
		}
		pending = nil
	}

	lines := strings.Split(string(input.Data), "\n")
	for i, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		lineNo := i + 1
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, tagOpeningFinal), strings.HasPrefix(line, tagOpeningIntermediate):
			amount, err := parseBalanceTag(line[len(tagOpeningFinal):])
			if err != nil {
				result.addError(lineNo, "bad opening balance: "+err.Error(), line)
				continue
			}
			result.OpeningBalance = &amount

		case strings.HasPrefix(line, tagClosingFinal), strings.HasPrefix(line, tagClosingIntermediate):
			amount, err := parseBalanceTag(line[len(tagClosingFinal):])
			if err != nil {
				result.addError(lineNo, "bad closing balance: "+err.Error(), line)
				continue
			}
			result.ClosingBalance = &amount

		case strings.HasPrefix(line, tagStatementLine):
			finalize()
			pending = p.parseStatementLine(line[len(tagStatementLine):], lineNo)

		case strings.HasPrefix(line, tagInformation):
			if pending != nil {
				pending.descParts = append(pending.descParts, strings.TrimSpace(line[len(tagInformation):]))
			}

		case strings.HasPrefix(line, ":"):
			// Unconsumed tag (:20:, :25:, :28C:, ...)

		default:
			// Continuation of the information field
			if pending != nil {
				pending.descParts = append(pending.descParts, strings.TrimSpace(line))
			}
		}
	}
	finalize()

	result.finalize()

	p.logger.WithFields(logger.Fields{
		"total":  result.TotalRecords,
		"valid":  result.ValidRecords,
		"errors": result.ErrorRecords,
	}).Info("Parsed MT940 statement")

	return result, nil
}

// parseStatementLine decodes the body of a :61: tag: a 6-digit value date,
// an optional 4-digit entry date, a debit/credit indicator (single or
// doubled letter, optionally prefixed with R for reversals) and the
// amount token. Decode failures are stored on the record so finalization
// can report them at this tag's line.
func (p *MT940Parser) parseStatementLine(body string, lineNo int) *pendingRecord {
	rec := &pendingRecord{line: lineNo}

	if len(body) < 6 || !allDigits(body[:6]) {
		rec.err = fmt.Errorf("statement line missing 6-digit value date: %q", body)
		return rec
	}
	date, err := time.Parse("060102", body[:6])
	if err != nil {
		rec.err = fmt.Errorf("bad value date %q: %w", body[:6], err)
		return rec
	}
	rec.date = date
	rest := body[6:]

	// Optional 4-digit entry date
	if len(rest) >= 4 && allDigits(rest[:4]) {
		rest = rest[4:]
	}

	// Indicator: letters from {R, C, D}, e.g. D, C, DD, CC, RD, RC.
	// Any indicator containing D is a debit, any containing C a credit.
	indicator := ""
	for len(rest) > 0 {
		c := rest[0]
		if c != 'R' && c != 'C' && c != 'D' {
			break
		}
		indicator += string(c)
		rest = rest[1:]
		if len(indicator) == 3 {
			break
		}
	}
	switch {
	case strings.Contains(indicator, "D"):
		rec.isDebit = true
	case strings.Contains(indicator, "C"):
		rec.isDebit = false
	default:
		rec.err = fmt.Errorf("statement line has no debit/credit indicator: %q", body)
		return rec
	}

	// Amount token: digits with a comma decimal mark
	amountToken := ""
	for len(rest) > 0 {
		c := rest[0]
		if (c < '0' || c > '9') && c != ',' {
			break
		}
		amountToken += string(c)
		rest = rest[1:]
	}
	if amountToken == "" {
		rec.err = fmt.Errorf("statement line has no amount: %q", body)
		return rec
	}
	amount, err := decimal.NewFromString(strings.Replace(amountToken, ",", ".", 1))
	if err != nil {
		rec.err = fmt.Errorf("bad amount %q: %w", amountToken, err)
		return rec
	}
	rec.amount = amount.Abs()

	return rec
}

func (p *MT940Parser) buildTransaction(rec *pendingRecord) *models.NormalizedTransaction {
	debit := decimal.Zero
	credit := decimal.Zero
	if rec.isDebit {
		debit = rec.amount
	} else {
		credit = rec.amount
	}

	description := strings.Join(rec.descParts, " ")

	return &models.NormalizedTransaction{
		Date:        rec.date,
		Description: description,
		Debit:       debit,
		Credit:      credit,
		Type:        Classify(description, debit, credit),
	}
}

// parseBalanceTag decodes a :60F:/:62F: style balance field: a
// credit/debit flag, a 6-digit date, a 3-letter currency and the amount.
// Only the amount is consumed.
func parseBalanceTag(body string) (decimal.Decimal, error) {
	body = strings.TrimSpace(body)
	if len(body) < 10 {
		return decimal.Zero, fmt.Errorf("balance field too short: %q", body)
	}

	flag := body[0]
	if flag != 'C' && flag != 'D' {
		return decimal.Zero, fmt.Errorf("balance field missing credit/debit flag: %q", body)
	}
	if !allDigits(body[1:7]) {
		return decimal.Zero, fmt.Errorf("balance field missing 6-digit date: %q", body)
	}

	amountToken := strings.Replace(body[10:], ",", ".", 1)
	amount, err := decimal.NewFromString(amountToken)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad balance amount %q: %w", body[10:], err)
	}
	return amount.Abs(), nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
