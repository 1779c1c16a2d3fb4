package cmd

import (
	"fmt"
	"io"
	"os"

	"statement-reconciliation-service/cmd/reconciler/config"
	"statement-reconciliation-service/internal/parsers"
	"statement-reconciliation-service/internal/reconciler"
	"statement-reconciliation-service/internal/reporter"
	pkgerrors "statement-reconciliation-service/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconcile command
var (
	statementFile   string
	statementFormat string
	dateFormat      string
	booksFile       string
	booksDateFormat string
	outputFormat    string
	outputFile      string
	amountTolerance float64
	dateWindow      int
	accountNumber   string
	ifscCode        string
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a bank statement against ledger book entries",
	Long: `Reconcile parses a bank statement, matches its transactions against
book entries exported from the ledger and reports matches, unmatched
entries and balance differences.

This command requires:
- A bank statement file (CSV, MT940 or XLSX)
- A book entries file (CSV export from the ledger)

Examples:
  # Basic reconciliation of a CSV statement
  reconciler reconcile --statement-file stmt.csv --books-file ledger.csv

  # MT940 statement with JSON output
  reconciler reconcile --statement-file stmt.mt940 --statement-format mt940 \
    --books-file ledger.csv --output-format json --output-file report.json

  # Custom date format and matching tolerances
  reconciler reconcile --statement-file stmt.csv --date-format DD-MM-YYYY \
    --books-file ledger.csv --amount-tolerance 0.05 --date-window 5

  # Attach account metadata to the run
  reconciler reconcile --statement-file stmt.csv --books-file ledger.csv \
    --account-number 123456789012 --ifsc HDFC0001234`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Required flags
	reconcileCmd.Flags().StringVarP(&statementFile, "statement-file", "s", "", "path to the bank statement file (required)")
	reconcileCmd.Flags().StringVarP(&booksFile, "books-file", "b", "", "path to the ledger book entries CSV file (required)")

	// Statement format flags
	reconcileCmd.Flags().StringVar(&statementFormat, "statement-format", "csv", "statement format: csv, mt940, xlsx")
	reconcileCmd.Flags().StringVar(&dateFormat, "date-format", "DD/MM/YYYY", "statement date format (CSV and XLSX)")
	reconcileCmd.Flags().StringVar(&booksDateFormat, "books-date-format", "YYYY-MM-DD", "book entries date format")

	// Output flags
	reconcileCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	// Matching configuration flags
	reconcileCmd.Flags().Float64VarP(&amountTolerance, "amount-tolerance", "a", 0.01, "amount tolerance in currency units")
	reconcileCmd.Flags().IntVarP(&dateWindow, "date-window", "d", 3, "date proximity window in days")

	// Account metadata flags
	reconcileCmd.Flags().StringVar(&accountNumber, "account-number", "", "bank account number (optional)")
	reconcileCmd.Flags().StringVar(&ifscCode, "ifsc", "", "bank branch IFSC code (optional)")

	reconcileCmd.MarkFlagRequired("statement-file")
	reconcileCmd.MarkFlagRequired("books-file")

	viper.BindPFlag("statement-file", reconcileCmd.Flags().Lookup("statement-file"))
	viper.BindPFlag("books-file", reconcileCmd.Flags().Lookup("books-file"))
	viper.BindPFlag("statement-format", reconcileCmd.Flags().Lookup("statement-format"))
	viper.BindPFlag("date-format", reconcileCmd.Flags().Lookup("date-format"))
	viper.BindPFlag("books-date-format", reconcileCmd.Flags().Lookup("books-date-format"))
	viper.BindPFlag("output-format", reconcileCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("amount-tolerance", reconcileCmd.Flags().Lookup("amount-tolerance"))
	viper.BindPFlag("date-window", reconcileCmd.Flags().Lookup("date-window"))
	viper.BindPFlag("account-number", reconcileCmd.Flags().Lookup("account-number"))
	viper.BindPFlag("ifsc", reconcileCmd.Flags().Lookup("ifsc"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	// Viper values win so a config file can override defaults
	statementFile = viper.GetString("statement-file")
	booksFile = viper.GetString("books-file")
	statementFormat = viper.GetString("statement-format")
	dateFormat = viper.GetString("date-format")
	booksDateFormat = viper.GetString("books-date-format")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	amountTolerance = viper.GetFloat64("amount-tolerance")
	dateWindow = viper.GetInt("date-window")
	accountNumber = viper.GetString("account-number")
	ifscCode = viper.GetString("ifsc")

	if statementFile == "" {
		return fmt.Errorf("statement-file is required")
	}
	if booksFile == "" {
		return fmt.Errorf("books-file is required")
	}
	if _, err := parsers.ParseFormat(statementFormat); err != nil {
		return err
	}
	if amountTolerance < 0 {
		return fmt.Errorf("amount-tolerance cannot be negative: %f", amountTolerance)
	}
	if dateWindow < 0 {
		return fmt.Errorf("date-window cannot be negative: %d", dateWindow)
	}
	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	format, err := parsers.ParseFormat(statementFormat)
	if err != nil {
		return err
	}

	statementData, err := readInputFile(statementFile)
	if err != nil {
		return err
	}
	booksData, err := readInputFile(booksFile)
	if err != nil {
		return err
	}

	loader := parsers.NewBookEntryLoader(config.CreateBookConfig(booksDateFormat))
	books, bookErrors, err := loader.Load(booksData)
	if err != nil {
		return err
	}
	for _, bookErr := range bookErrors {
		fmt.Fprintf(os.Stderr, "books-file %s\n", bookErr)
	}

	matching := config.CreateMatchingConfig(amountTolerance, dateWindow)
	serviceConfig, err := config.CreateServiceConfig(matching, accountNumber, ifscCode)
	if err != nil {
		return err
	}

	service, err := reconciler.NewService(serviceConfig)
	if err != nil {
		return err
	}

	payload, err := service.Reconcile(parsers.RawStatementInput{
		Data:       statementData,
		Format:     format,
		DateFormat: dateFormat,
	}, books)
	if err != nil {
		return err
	}

	if !payload.Success {
		fmt.Fprintf(os.Stderr, "Warning: %d of %d statement records failed to parse\n",
			payload.ErrorRecords, payload.TotalRecords)
		for _, msg := range payload.SurfacedErrors {
			fmt.Fprintf(os.Stderr, "  %s\n", msg)
		}
	}

	reportConfig, err := config.CreateReportConfig(outputFormat)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return pkgerrors.FileError(pkgerrors.CodeFilePermission, outputFile, err)
		}
		defer f.Close()
		out = f
	}

	return reporter.NewReporter(reportConfig).Write(out, payload.Report)
}

func readInputFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.FileError(pkgerrors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, pkgerrors.FileError(pkgerrors.CodeFilePermission, path, err)
		}
		return nil, pkgerrors.FileError(pkgerrors.CodeFileCorrupted, path, err)
	}
	return data, nil
}
