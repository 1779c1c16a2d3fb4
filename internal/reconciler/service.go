// Package reconciler orchestrates the full pipeline for one request:
// parse the raw statement, assign stable identifiers, run the matching
// engine and assemble the reconciliation payload.
//
// Every call allocates its own collections and shares nothing with other
// calls, so independent requests may run concurrently without
// coordination.
package reconciler

import (
	"fmt"

	"statement-reconciliation-service/internal/banks"
	"statement-reconciliation-service/internal/matcher"
	"statement-reconciliation-service/internal/models"
	"statement-reconciliation-service/internal/parsers"
	"statement-reconciliation-service/internal/reporter"
	"statement-reconciliation-service/pkg/logger"

	"github.com/google/uuid"
)

// DefaultMaxSurfacedErrors caps how many parse errors the payload
// surfaces; the full list stays on the ParseResult.
const DefaultMaxSurfacedErrors = 10

// Config holds the dependencies and settings of a reconciliation service
type Config struct {
	Matching *matcher.MatchingConfig
	Registry *banks.Registry
	// Account optionally identifies the statement's bank account and is
	// echoed on the payload
	Account           *banks.AccountConfig
	MaxSurfacedErrors int
}

// DefaultConfig returns a service configuration with standard matching
// parameters and the built-in bank registry
func DefaultConfig() *Config {
	return &Config{
		Matching:          matcher.DefaultMatchingConfig(),
		Registry:          banks.DefaultRegistry(),
		MaxSurfacedErrors: DefaultMaxSurfacedErrors,
	}
}

// Validate checks the service configuration
func (c *Config) Validate() error {
	if c.Matching == nil {
		return fmt.Errorf("matching configuration is required")
	}
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("invalid matching configuration: %w", err)
	}
	if c.MaxSurfacedErrors < 0 {
		return fmt.Errorf("max surfaced errors cannot be negative: %d", c.MaxSurfacedErrors)
	}
	return nil
}

// Payload is the complete output of one reconciliation request
type Payload struct {
	RunID   string               `json:"runId"`
	Account *banks.AccountConfig `json:"account,omitempty"`

	// Parse outcome
	Success        bool                 `json:"success"`
	TotalRecords   int                  `json:"totalRecords"`
	ValidRecords   int                  `json:"validRecords"`
	ErrorRecords   int                  `json:"errorRecords"`
	SurfacedErrors []string             `json:"errors,omitempty"`
	Parse          *parsers.ParseResult `json:"-"`

	// Matching outcome
	Report *reporter.Report `json:"report"`
}

// Service runs the parse-match-report pipeline. It is stateless across
// invocations.
type Service struct {
	config *Config
	engine *matcher.Engine
	logger logger.Logger
}

// NewService creates a reconciliation service from the configuration,
// falling back to defaults when nil.
func NewService(config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		config: config,
		engine: matcher.NewEngine(config.Matching),
		logger: logger.GetGlobalLogger().WithComponent("reconciler"),
	}, nil
}

// Reconcile parses the raw statement, matches its transactions against
// the supplied book entries and returns the assembled payload. Row-level
// parse errors do not abort the run: matching proceeds over whatever
// transactions were recovered, with Success set to false.
func (s *Service) Reconcile(input parsers.RawStatementInput, books []*models.BookEntry) (*Payload, error) {
	runID := uuid.NewString()
	log := s.logger.WithField("run_id", runID)

	parseResult, err := parsers.ParseStatement(input)
	if err != nil {
		log.WithError(err).Error("Statement parsing failed")
		return nil, err
	}

	assignIdentifiers(runID, parseResult.Transactions)

	matchResult := s.engine.Reconcile(parseResult.Transactions, books)
	report := reporter.BuildReport(parseResult.Transactions, books, matchResult)

	log.WithFields(logger.Fields{
		"transactions": parseResult.ValidRecords,
		"parse_errors": parseResult.ErrorRecords,
		"matches":      report.Summary.MatchedCount,
		"status":       report.Summary.Status,
	}).Info("Reconciliation run complete")

	return &Payload{
		RunID:          runID,
		Account:        s.config.Account,
		Success:        parseResult.Success,
		TotalRecords:   parseResult.TotalRecords,
		ValidRecords:   parseResult.ValidRecords,
		ErrorRecords:   parseResult.ErrorRecords,
		SurfacedErrors: parseResult.SampleErrors(s.config.MaxSurfacedErrors),
		Parse:          parseResult,
		Report:         report,
	}, nil
}

// assignIdentifiers gives each parsed transaction a stable identifier
// scoped to the run. Positional numbering keeps the matcher's tie-break
// order aligned with statement order.
func assignIdentifiers(runID string, transactions []*models.NormalizedTransaction) {
	prefix := runID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	for i, tx := range transactions {
		if tx.ID == "" {
			tx.ID = fmt.Sprintf("%s-%04d", prefix, i+1)
		}
	}
}
