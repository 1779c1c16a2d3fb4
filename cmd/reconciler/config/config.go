// Package config builds the library configuration objects from CLI
// inputs.
package config

import (
	"statement-reconciliation-service/internal/banks"
	"statement-reconciliation-service/internal/matcher"
	"statement-reconciliation-service/internal/parsers"
	"statement-reconciliation-service/internal/reconciler"
	"statement-reconciliation-service/internal/reporter"

	"github.com/shopspring/decimal"
)

// CreateMatchingConfig creates a matching configuration with the
// CLI-supplied tolerances applied over the defaults
func CreateMatchingConfig(amountTolerance float64, dateWindowDays int) *matcher.MatchingConfig {
	cfg := matcher.DefaultMatchingConfig()
	cfg.AmountTolerance = decimal.NewFromFloat(amountTolerance)
	cfg.DateWindowDays = dateWindowDays
	return cfg
}

// CreateServiceConfig assembles the reconciler service configuration.
// Account metadata is optional; when an account number and IFSC are both
// given they are validated and attached to the run.
func CreateServiceConfig(matching *matcher.MatchingConfig, accountNumber, ifsc string) (*reconciler.Config, error) {
	cfg := reconciler.DefaultConfig()
	cfg.Matching = matching

	if accountNumber != "" || ifsc != "" {
		account, err := banks.NewAccountConfig(accountNumber, ifsc, "", cfg.Registry)
		if err != nil {
			return nil, err
		}
		cfg.Account = account
	}

	return cfg, nil
}

// CreateReportConfig creates a report configuration for the requested
// output format
func CreateReportConfig(format string) (*reporter.ReportConfig, error) {
	cfg := reporter.DefaultReportConfig()
	cfg.Format = reporter.OutputFormat(format)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CreateBookConfig creates the book-entry loader configuration
func CreateBookConfig(dateFormat string) *parsers.BookConfig {
	return parsers.DefaultBookConfig(dateFormat)
}
