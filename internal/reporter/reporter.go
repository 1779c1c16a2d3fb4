// Package reporter aggregates matching results into a reconciliation
// summary and renders it to console, JSON or CSV output.
//
// Both the summary builder and the renderers are pure over their inputs:
// they can be invoked repeatedly on the same match output with identical
// results and no side effects.
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"statement-reconciliation-service/internal/matcher"
	"statement-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

// Status classifies a reconciliation run, derived purely from counts
type Status string

const (
	// StatusFullyMatched means every entry on both sides found a partner
	StatusFullyMatched Status = "fully-matched"
	// StatusMismatched means at least one side has unmatched entries
	StatusMismatched Status = "mismatched"
	// StatusPending means there was nothing to reconcile on either side
	StatusPending Status = "pending"
)

// ReconciliationSummary aggregates one matching run: matched and
// unmatched counts per side, the signed totals of each side (credits
// positive, debits negative) and their difference.
type ReconciliationSummary struct {
	MatchedCount       int             `json:"matchedCount"`
	UnmatchedBankCount int             `json:"unmatchedBankCount"`
	UnmatchedBookCount int             `json:"unmatchedBookCount"`
	BankTotal          decimal.Decimal `json:"bankTotal"`
	BooksTotal         decimal.Decimal `json:"booksTotal"`
	Difference         decimal.Decimal `json:"difference"`
	UnmatchedBankValue decimal.Decimal `json:"unmatchedBankValue"`
	UnmatchedBookValue decimal.Decimal `json:"unmatchedBookValue"`
	Status             Status          `json:"status"`
}

// BuildSummary aggregates a matching run into a ReconciliationSummary.
// Totals are computed over the full input lists as signed nets, so that
// Difference = BooksTotal - BankTotal reflects the whole statement
// period, not just the matched subset.
func BuildSummary(bank []*models.NormalizedTransaction, books []*models.BookEntry, result *matcher.Result) ReconciliationSummary {
	summary := ReconciliationSummary{
		MatchedCount:       len(result.Matches),
		UnmatchedBankCount: len(result.UnmatchedBank),
		UnmatchedBookCount: len(result.UnmatchedBook),
		BankTotal:          decimal.Zero,
		BooksTotal:         decimal.Zero,
		UnmatchedBankValue: decimal.Zero,
		UnmatchedBookValue: decimal.Zero,
	}

	for _, tx := range bank {
		summary.BankTotal = summary.BankTotal.Add(tx.SignedAmount())
	}
	for _, entry := range books {
		summary.BooksTotal = summary.BooksTotal.Add(entry.Amount)
	}
	summary.Difference = summary.BooksTotal.Sub(summary.BankTotal)

	for _, tx := range result.UnmatchedBank {
		summary.UnmatchedBankValue = summary.UnmatchedBankValue.Add(tx.Amount())
	}
	for _, entry := range result.UnmatchedBook {
		summary.UnmatchedBookValue = summary.UnmatchedBookValue.Add(entry.Magnitude())
	}

	switch {
	case len(bank) == 0 && len(books) == 0:
		summary.Status = StatusPending
	case len(result.UnmatchedBank) == 0 && len(result.UnmatchedBook) == 0:
		summary.Status = StatusFullyMatched
	default:
		summary.Status = StatusMismatched
	}

	return summary
}

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds options for report rendering
type ReportConfig struct {
	Format           OutputFormat `json:"format"`
	IncludeMatches   bool         `json:"include_matches"`
	IncludeUnmatched bool         `json:"include_unmatched"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:           FormatConsole,
		IncludeMatches:   true,
		IncludeUnmatched: true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	return nil
}

// Reporter renders reconciliation results in the configured format
type Reporter struct {
	config *ReportConfig
}

// NewReporter creates a Reporter, falling back to defaults when nil
func NewReporter(config *ReportConfig) *Reporter {
	if config == nil {
		config = DefaultReportConfig()
	}
	return &Reporter{config: config}
}

// Report is the serializable reconciliation payload handed to callers
type Report struct {
	Matches       []*matcher.MatchResult          `json:"matchedEntries"`
	UnmatchedBank []*models.NormalizedTransaction `json:"unmatchedBankEntries"`
	UnmatchedBook []*models.BookEntry             `json:"unmatchedBookEntries"`
	Summary       ReconciliationSummary           `json:"summary"`
}

// BuildReport assembles the payload for one matching run
func BuildReport(bank []*models.NormalizedTransaction, books []*models.BookEntry, result *matcher.Result) *Report {
	return &Report{
		Matches:       result.Matches,
		UnmatchedBank: result.UnmatchedBank,
		UnmatchedBook: result.UnmatchedBook,
		Summary:       BuildSummary(bank, books, result),
	}
}

// Write renders the report to w in the configured format
func (r *Reporter) Write(w io.Writer, report *Report) error {
	switch r.config.Format {
	case FormatJSON:
		return r.writeJSON(w, report)
	case FormatCSV:
		return r.writeCSV(w, report)
	default:
		return r.writeConsole(w, report)
	}
}

func (r *Reporter) writeJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func (r *Reporter) writeConsole(w io.Writer, report *Report) error {
	var b strings.Builder
	sum := report.Summary

	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("RECONCILIATION REPORT\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Status:                  %s\n", sum.Status))
	b.WriteString(fmt.Sprintf("Matched entries:         %d\n", sum.MatchedCount))
	b.WriteString(fmt.Sprintf("Unmatched bank entries:  %d\n", sum.UnmatchedBankCount))
	b.WriteString(fmt.Sprintf("Unmatched book entries:  %d\n", sum.UnmatchedBookCount))
	b.WriteString(fmt.Sprintf("Bank total:              %s\n", sum.BankTotal))
	b.WriteString(fmt.Sprintf("Books total:             %s\n", sum.BooksTotal))
	b.WriteString(fmt.Sprintf("Difference:              %s\n", sum.Difference))

	if r.config.IncludeMatches && len(report.Matches) > 0 {
		b.WriteString("\n" + strings.Repeat("-", 60) + "\n")
		b.WriteString("MATCHED ENTRIES\n")
		b.WriteString(strings.Repeat("-", 60) + "\n")
		for _, m := range report.Matches {
			b.WriteString(fmt.Sprintf("%-12s <-> %-12s  %s  %s  conf=%.2f\n",
				m.BankID, m.BookID, m.BankAmount, m.Type, m.Confidence))
		}
	}

	if r.config.IncludeUnmatched {
		if len(report.UnmatchedBank) > 0 {
			b.WriteString("\n" + strings.Repeat("-", 60) + "\n")
			b.WriteString("UNMATCHED BANK ENTRIES\n")
			b.WriteString(strings.Repeat("-", 60) + "\n")
			for _, tx := range report.UnmatchedBank {
				b.WriteString(fmt.Sprintf("%-12s %s  %s  %s\n",
					tx.ID, tx.Date.Format("2006-01-02"), tx.Amount(), tx.Description))
			}
		}
		if len(report.UnmatchedBook) > 0 {
			b.WriteString("\n" + strings.Repeat("-", 60) + "\n")
			b.WriteString("UNMATCHED BOOK ENTRIES\n")
			b.WriteString(strings.Repeat("-", 60) + "\n")
			for _, entry := range report.UnmatchedBook {
				b.WriteString(fmt.Sprintf("%-12s %s  %s  %s\n",
					entry.ID, entry.Date.Format("2006-01-02"), entry.Amount, entry.Reference))
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Reporter) writeCSV(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"section", "bank_id", "book_id", "bank_amount", "book_amount", "date", "match_type", "confidence"}); err != nil {
		return err
	}

	for _, m := range report.Matches {
		row := []string{
			"matched",
			m.BankID,
			m.BookID,
			m.BankAmount.String(),
			m.BookAmount.String(),
			m.BankDate.Format("2006-01-02"),
			m.Type.String(),
			strconv.FormatFloat(m.Confidence, 'f', 4, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	if r.config.IncludeUnmatched {
		for _, tx := range report.UnmatchedBank {
			row := []string{"unmatched_bank", tx.ID, "", tx.Amount().String(), "", tx.Date.Format("2006-01-02"), "", ""}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		for _, entry := range report.UnmatchedBook {
			row := []string{"unmatched_book", "", entry.ID, "", entry.Amount.String(), entry.Date.Format("2006-01-02"), "", ""}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
