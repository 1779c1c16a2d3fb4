// Package matcher pairs bank statement transactions against ledger book
// entries using a two-phase algorithm: an exact pass over reference
// strings, then a scored amount/date proximity pass over the remainder.
//
// The matcher is deliberately greedy: bank entries are processed exactly
// once in a deterministic sort order and each side can be claimed at most
// once. That trades global optimality for an explainable, reproducible
// assignment, which is what reconciliation review workflows need.
package matcher

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MatchingConfig holds the tunable parameters of the matching algorithm
type MatchingConfig struct {
	// AmountTolerance is the maximum absolute amount difference, in
	// currency units, for two entries to be considered equal. The
	// boundary is inclusive.
	AmountTolerance decimal.Decimal `json:"amount_tolerance"`

	// DateWindowDays is the maximum date difference, in days, for the
	// fuzzy phase to consider a pairing at all.
	DateWindowDays int `json:"date_window_days"`

	// FuzzyThreshold is the minimum score for a fuzzy match to be
	// accepted.
	FuzzyThreshold float64 `json:"fuzzy_threshold"`
}

// DefaultMatchingConfig returns the standard configuration: one cent of
// tolerance, a three day window and the 0.7 acceptance threshold.
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		AmountTolerance: decimal.NewFromFloat(0.01),
		DateWindowDays:  3,
		FuzzyThreshold:  0.7,
	}
}

// StrictMatchingConfig returns a configuration for same-day, exact-amount
// reconciliation
func StrictMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		AmountTolerance: decimal.Zero,
		DateWindowDays:  0,
		FuzzyThreshold:  0.95,
	}
}

// RelaxedMatchingConfig returns a configuration for exploratory matching
// over noisy data
func RelaxedMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		AmountTolerance: decimal.NewFromFloat(1.00),
		DateWindowDays:  7,
		FuzzyThreshold:  0.5,
	}
}

// Validate checks if the matching configuration is valid
func (mc *MatchingConfig) Validate() error {
	if mc.AmountTolerance.IsNegative() {
		return fmt.Errorf("amount tolerance cannot be negative: %s", mc.AmountTolerance)
	}
	if mc.DateWindowDays < 0 {
		return fmt.Errorf("date window days cannot be negative: %d", mc.DateWindowDays)
	}
	if mc.FuzzyThreshold < 0.0 || mc.FuzzyThreshold > 1.0 {
		return fmt.Errorf("fuzzy threshold must be between 0.0 and 1.0: %f", mc.FuzzyThreshold)
	}
	return nil
}

// Clone returns a copy of the configuration
func (mc *MatchingConfig) Clone() *MatchingConfig {
	clone := *mc
	return &clone
}
