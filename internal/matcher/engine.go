package matcher

import (
	"sort"
	"strings"
	"time"

	"statement-reconciliation-service/internal/models"
	"statement-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// MatchType distinguishes the phase that produced a match
type MatchType int

const (
	// MatchExact is a phase-one match on reference and amount
	MatchExact MatchType = iota
	// MatchFuzzy is a phase-two match on amount and date proximity
	MatchFuzzy
)

// String returns the string representation of MatchType
func (mt MatchType) String() string {
	switch mt {
	case MatchExact:
		return "exact"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "unknown"
	}
}

// MatchResult pairs one bank transaction with one book entry. A given
// bank or book identifier appears in at most one MatchResult per run.
type MatchResult struct {
	BankID     string          `json:"bankId"`
	BookID     string          `json:"bookId"`
	BankAmount decimal.Decimal `json:"bankAmount"`
	BookAmount decimal.Decimal `json:"bookAmount"`
	BankDate   time.Time       `json:"bankDate"`
	BookDate   time.Time       `json:"bookDate"`
	Type       MatchType       `json:"matchType"`
	Confidence float64         `json:"confidence"`
}

// Result is the complete output of one matching run
type Result struct {
	Matches       []*MatchResult
	UnmatchedBank []*models.NormalizedTransaction
	UnmatchedBook []*models.BookEntry
}

// Engine is the two-phase matching engine. It holds no per-run state;
// a single Engine may serve concurrent reconciliation requests.
type Engine struct {
	config *MatchingConfig
	logger logger.Logger
}

// NewEngine creates a matching engine with the given configuration,
// falling back to defaults when nil.
func NewEngine(config *MatchingConfig) *Engine {
	if config == nil {
		config = DefaultMatchingConfig()
	}
	return &Engine{
		config: config.Clone(),
		logger: logger.GetGlobalLogger().WithComponent("matcher"),
	}
}

// Config returns a copy of the engine configuration
func (e *Engine) Config() *MatchingConfig {
	return e.config.Clone()
}

// Reconcile runs both matching phases over the inputs and returns the
// matches plus the residual unmatched lists. Inputs are not mutated; both
// sides are processed in a stable date-then-identifier order so that
// identical inputs always produce identical output.
func (e *Engine) Reconcile(bank []*models.NormalizedTransaction, books []*models.BookEntry) *Result {
	sortedBank := sortBank(bank)
	sortedBooks := sortBooks(books)

	matchedBank := make(map[int]bool, len(sortedBank))
	matchedBook := make(map[int]bool, len(sortedBooks))
	var matches []*MatchResult

	// Phase 1: exact reference matches
	for bi, tx := range sortedBank {
		ref := models.NormalizeReference(tx.Reference)
		if ref == "" {
			continue
		}
		for ki, entry := range sortedBooks {
			if matchedBook[ki] {
				continue
			}
			bookRef := models.NormalizeReference(entry.Reference)
			if bookRef == "" {
				continue
			}
			if !strings.Contains(ref, bookRef) && !strings.Contains(bookRef, ref) {
				continue
			}
			if !e.withinTolerance(tx.Amount(), entry.Magnitude()) {
				continue
			}
			matches = append(matches, e.newMatch(tx, entry, MatchExact, 1.0))
			matchedBank[bi] = true
			matchedBook[ki] = true
			break
		}
	}

	// Phase 2: amount/date proximity scoring over the remainder
	for bi, tx := range sortedBank {
		if matchedBank[bi] {
			continue
		}

		bestIdx := -1
		bestScore := 0.0
		for ki, entry := range sortedBooks {
			if matchedBook[ki] {
				continue
			}
			if !e.withinTolerance(tx.Amount(), entry.Magnitude()) {
				continue
			}
			days := dateDiffDays(tx.Date, entry.Date)
			if days > e.config.DateWindowDays {
				continue
			}
			// Strictly higher wins; the first candidate keeps an exact
			// tie, preserving the sort-order determinism.
			if score := e.score(tx, entry, days); score > bestScore {
				bestScore = score
				bestIdx = ki
			}
		}

		if bestIdx >= 0 && bestScore >= e.config.FuzzyThreshold {
			matches = append(matches, e.newMatch(tx, sortedBooks[bestIdx], MatchFuzzy, bestScore))
			matchedBank[bi] = true
			matchedBook[bestIdx] = true
		}
	}

	result := &Result{Matches: matches}
	for bi, tx := range sortedBank {
		if !matchedBank[bi] {
			result.UnmatchedBank = append(result.UnmatchedBank, tx)
		}
	}
	for ki, entry := range sortedBooks {
		if !matchedBook[ki] {
			result.UnmatchedBook = append(result.UnmatchedBook, entry)
		}
	}

	e.logger.WithFields(logger.Fields{
		"bank_entries":   len(bank),
		"book_entries":   len(books),
		"matches":        len(matches),
		"unmatched_bank": len(result.UnmatchedBank),
		"unmatched_book": len(result.UnmatchedBook),
	}).Info("Reconciliation matching complete")

	return result
}

// score computes the fuzzy pairing score:
//
//	(1 - dateDiff/(window+1)) * (1 - |amountDiff| / max(bankAmount, 1))
func (e *Engine) score(tx *models.NormalizedTransaction, entry *models.BookEntry, dateDiff int) float64 {
	dateScore := 1.0 - float64(dateDiff)/float64(e.config.DateWindowDays+1)

	bankAmount := tx.Amount()
	diff := bankAmount.Sub(entry.Magnitude()).Abs()
	denominator := bankAmount
	if denominator.LessThan(decimal.NewFromInt(1)) {
		denominator = decimal.NewFromInt(1)
	}
	amountScore := 1.0 - diff.Div(denominator).InexactFloat64()

	return dateScore * amountScore
}

func (e *Engine) withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(e.config.AmountTolerance)
}

func (e *Engine) newMatch(tx *models.NormalizedTransaction, entry *models.BookEntry, mt MatchType, confidence float64) *MatchResult {
	return &MatchResult{
		BankID:     tx.ID,
		BookID:     entry.ID,
		BankAmount: tx.Amount(),
		BookAmount: entry.Magnitude(),
		BankDate:   tx.Date,
		BookDate:   entry.Date,
		Type:       mt,
		Confidence: confidence,
	}
}

// sortBank returns a copy of the bank transactions in date order, ties
// broken by identifier.
func sortBank(bank []*models.NormalizedTransaction) []*models.NormalizedTransaction {
	sorted := make([]*models.NormalizedTransaction, len(bank))
	copy(sorted, bank)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// sortBooks returns a copy of the book entries in date order, ties broken
// by identifier.
func sortBooks(books []*models.BookEntry) []*models.BookEntry {
	sorted := make([]*models.BookEntry, len(books))
	copy(sorted, books)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// dateDiffDays returns the absolute calendar-day difference between two
// dates, ignoring time-of-day.
func dateDiffDays(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	diff := ad.Sub(bd)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Hours() / 24)
}
