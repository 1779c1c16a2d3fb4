package parsers

import (
	"strings"
	"testing"

	"statement-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
)

func parseCSV(t *testing.T, body, dateFormat string) *ParseResult {
	t.Helper()
	result, err := ParseStatement(RawStatementInput{
		Data:       []byte(body),
		Format:     FormatCSV,
		DateFormat: dateFormat,
	})
	if err != nil {
		t.Fatalf("ParseStatement returned error: %v", err)
	}
	return result
}

func TestCSVParserSingleCredit(t *testing.T) {
	body := "Date,Narration,Debit,Credit,Balance\n" +
		"01/04/2024,NEFT CR FROM ACME,0,5000.00,105000.00\n"

	result := parseCSV(t, body, "DD/MM/YYYY")

	if !result.Success {
		t.Fatalf("Expected success, got errors: %v", result.Errors)
	}
	if len(result.Transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(result.Transactions))
	}

	tx := result.Transactions[0]
	if !tx.Credit.Equal(decimal.NewFromFloat(5000.00)) {
		t.Errorf("Credit = %s, want 5000", tx.Credit)
	}
	if !tx.Debit.IsZero() {
		t.Errorf("Debit = %s, want 0", tx.Debit)
	}
	if tx.Type != models.TypeWireCreditNEFT {
		t.Errorf("Type = %s, want %s", tx.Type, models.TypeWireCreditNEFT)
	}
	if result.ClosingBalance == nil || !result.ClosingBalance.Equal(decimal.NewFromFloat(105000.00)) {
		t.Errorf("ClosingBalance = %v, want 105000", result.ClosingBalance)
	}
}

func TestCSVParserBadDateRow(t *testing.T) {
	body := "Date,Narration,Debit,Credit,Balance\n" +
		"99/99/2024,BROKEN ROW,0,100.00,100.00\n"

	result := parseCSV(t, body, "DD/MM/YYYY")

	if result.Success {
		t.Error("Expected success=false for a row with an unparseable date")
	}
	if len(result.Transactions) != 0 {
		t.Errorf("Expected 0 transactions, got %d", len(result.Transactions))
	}
	if result.ErrorRecords != 1 {
		t.Errorf("ErrorRecords = %d, want 1", result.ErrorRecords)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 parse error, got %d", len(result.Errors))
	}
	if result.Errors[0].Line != 2 {
		t.Errorf("Error line = %d, want 2", result.Errors[0].Line)
	}
}

func TestCSVParserBadRowDoesNotAbortBatch(t *testing.T) {
	body := "Date,Narration,Debit,Credit,Balance\n" +
		"01/04/2024,SALARY PAYMENT,50000.00,0,50000.00\n" +
		"99/99/2024,BROKEN ROW,0,100.00,\n" +
		"03/04/2024,UPI CR FROM CUSTOMER,0,1200.00,51200.00\n"

	result := parseCSV(t, body, "DD/MM/YYYY")

	if result.Success {
		t.Error("Expected success=false with one bad row")
	}
	if result.TotalRecords != 3 {
		t.Errorf("TotalRecords = %d, want 3", result.TotalRecords)
	}
	if result.ValidRecords != 2 {
		t.Errorf("ValidRecords = %d, want 2", result.ValidRecords)
	}
	if result.ErrorRecords != 1 {
		t.Errorf("ErrorRecords = %d, want 1", result.ErrorRecords)
	}
	if result.ValidRecords+result.ErrorRecords != result.TotalRecords {
		t.Error("Row-count invariant violated: valid + error != total")
	}
}

func TestCSVParserLineNumbersSurviveBlankLines(t *testing.T) {
	// Empty lines are skipped by the reader without producing a record;
	// reported line numbers must still count them.
	body := "Date,Narration,Debit,Credit,Balance\n" +
		"\n" +
		"99/99/2024,BROKEN ROW,0,100.00,100.00\n" +
		"   ,,,,\n" +
		"99/99/2024,ALSO BROKEN,0,200.00,200.00\n"

	result := parseCSV(t, body, "DD/MM/YYYY")

	if len(result.Errors) != 2 {
		t.Fatalf("Expected 2 parse errors, got %d", len(result.Errors))
	}
	if result.Errors[0].Line != 3 {
		t.Errorf("First error line = %d, want raw input line 3", result.Errors[0].Line)
	}
	if result.Errors[1].Line != 5 {
		t.Errorf("Second error line = %d, want raw input line 5", result.Errors[1].Line)
	}
}

func TestCSVParserSkipsBlankRows(t *testing.T) {
	body := "Date,Narration,Debit,Credit,Balance\n" +
		"\n" +
		"01/04/2024,CASH DEPOSIT,0,800.00,800.00\n" +
		"  ,,,,\n" +
		"02/04/2024,ATM WITHDRAWAL,500.00,0,300.00\n"

	result := parseCSV(t, body, "DD/MM/YYYY")

	if result.TotalRecords != 2 {
		t.Errorf("TotalRecords = %d, want 2 (blank rows skipped)", result.TotalRecords)
	}
	if !result.Success {
		t.Errorf("Expected success, got errors: %v", result.Errors)
	}
}

func TestCSVParserBalancesAndPeriod(t *testing.T) {
	body := "Date,Narration,Debit,Credit,Balance\n" +
		"05/04/2024,OPENING DEPOSIT,0,1000.00,1000.00\n" +
		"02/04/2024,TRANSFER IN,0,250.00,\n" +
		"09/04/2024,BANK CHARGES,50.00,0,1200.00\n"

	result := parseCSV(t, body, "DD/MM/YYYY")

	if result.OpeningBalance == nil || !result.OpeningBalance.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("OpeningBalance = %v, want 1000", result.OpeningBalance)
	}
	if result.ClosingBalance == nil || !result.ClosingBalance.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("ClosingBalance = %v, want 1200", result.ClosingBalance)
	}
	if result.Period == nil {
		t.Fatal("Expected a statement period")
	}
	if result.Period.From.Format("2006-01-02") != "2024-04-02" {
		t.Errorf("Period.From = %s, want 2024-04-02", result.Period.From.Format("2006-01-02"))
	}
	if result.Period.To.Format("2006-01-02") != "2024-04-09" {
		t.Errorf("Period.To = %s, want 2024-04-09", result.Period.To.Format("2006-01-02"))
	}
}

func TestCSVParserNoHeaderPositional(t *testing.T) {
	body := "01/04/2024,RTGS CR FROM VENDOR,0,75000.00,75000.00\n"

	parser := NewCSVParser(&CSVConfig{
		HasHeader:  false,
		DateFormat: "DD/MM/YYYY",
		Delimiter:  ',',
	})
	result, err := parser.Parse(RawStatementInput{Data: []byte(body), Format: FormatCSV})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if len(result.Transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(result.Transactions))
	}
	tx := result.Transactions[0]
	if !tx.Credit.Equal(decimal.NewFromInt(75000)) {
		t.Errorf("Credit = %s, want 75000", tx.Credit)
	}
	if tx.Type != models.TypeWireCreditRTGS {
		t.Errorf("Type = %s, want %s", tx.Type, models.TypeWireCreditRTGS)
	}
}

func TestCSVParserReferenceColumn(t *testing.T) {
	body := "Date,Narration,Debit,Credit,Balance,Reference No\n" +
		"01/04/2024,VENDOR PAYMENT,2500.00,0,97500.00,INV-55\n"

	result := parseCSV(t, body, "DD/MM/YYYY")

	if len(result.Transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(result.Transactions))
	}
	if result.Transactions[0].Reference != "INV-55" {
		t.Errorf("Reference = %q, want INV-55", result.Transactions[0].Reference)
	}
}

func TestCSVParserSignInvariant(t *testing.T) {
	body := "Date,Narration,Debit,Credit,Balance\n" +
		"01/04/2024,NEFT DR TO SUPPLIER,-1500.00,0,98500.00\n" +
		"02/04/2024,INTEREST CREDIT,0,42.00,98542.00\n"

	result := parseCSV(t, body, "DD/MM/YYYY")

	for _, tx := range result.Transactions {
		if tx.Debit.IsNegative() || tx.Credit.IsNegative() {
			t.Errorf("Negative amount on %s", tx)
		}
		if tx.Debit.IsPositive() && tx.Credit.IsPositive() {
			t.Errorf("Both debit and credit set on %s", tx)
		}
	}
}

func TestParseStatementUnknownFormat(t *testing.T) {
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("Expected error for unknown format selector")
	}
}

func TestParseStatementInvalidEncoding(t *testing.T) {
	_, err := ParseStatement(RawStatementInput{
		Data:       []byte{0xff, 0xfe, 0xfd},
		Format:     FormatCSV,
		DateFormat: "DD/MM/YYYY",
	})
	if err == nil {
		t.Fatal("Expected a fatal error for invalid UTF-8 input")
	}
	if !strings.Contains(err.Error(), "encoding") && !strings.Contains(err.Error(), "UTF-8") {
		t.Errorf("Unexpected error message: %v", err)
	}
}
