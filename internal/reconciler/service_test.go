package reconciler

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"statement-reconciliation-service/internal/banks"
	"statement-reconciliation-service/internal/matcher"
	"statement-reconciliation-service/internal/models"
	"statement-reconciliation-service/internal/parsers"
	"statement-reconciliation-service/internal/reporter"

	"github.com/shopspring/decimal"
)

func csvInput(body string) parsers.RawStatementInput {
	return parsers.RawStatementInput{
		Data:       []byte(body),
		Format:     parsers.FormatCSV,
		DateFormat: "DD/MM/YYYY",
	}
}

func bookEntry(id, date string, amount float64) *models.BookEntry {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return models.NewBookEntry(id, d, decimal.NewFromFloat(amount), "")
}

func TestServiceReconcileEndToEnd(t *testing.T) {
	service, err := NewService(nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	statement := "Date,Description,Debit,Credit,Balance\n" +
		"02/04/2024,NEFT CR FROM ACME CORP,,25000.00,125000.00\n" +
		"03/04/2024,ATM WDL,5000.00,,120000.00\n"
	books := []*models.BookEntry{
		bookEntry("BK-001", "2024-04-02", 25000.00),
		bookEntry("BK-002", "2024-04-03", -5000.00),
	}

	payload, err := service.Reconcile(csvInput(statement), books)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if !payload.Success {
		t.Errorf("expected success, surfaced errors: %v", payload.SurfacedErrors)
	}
	if payload.TotalRecords != 2 || payload.ValidRecords != 2 || payload.ErrorRecords != 0 {
		t.Errorf("record counts wrong: total=%d valid=%d error=%d",
			payload.TotalRecords, payload.ValidRecords, payload.ErrorRecords)
	}
	if payload.RunID == "" {
		t.Error("payload run identifier is empty")
	}
	if payload.Report == nil {
		t.Fatal("payload report is nil")
	}
	if payload.Report.Summary.MatchedCount != 2 {
		t.Errorf("matched = %d, want 2", payload.Report.Summary.MatchedCount)
	}
	if payload.Report.Summary.Status != reporter.StatusFullyMatched {
		t.Errorf("status = %s, want fully-matched", payload.Report.Summary.Status)
	}
}

func TestServiceReconcileAssignsIdentifiers(t *testing.T) {
	service, err := NewService(nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	statement := "Date,Description,Debit,Credit\n" +
		"02/04/2024,FIRST,,100.00\n" +
		"03/04/2024,SECOND,200.00,\n"

	payload, err := service.Reconcile(csvInput(statement), nil)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	prefix := payload.RunID[:8]
	want := []string{prefix + "-0001", prefix + "-0002"}
	for i, tx := range payload.Parse.Transactions {
		if tx.ID != want[i] {
			t.Errorf("transaction %d ID = %s, want %s", i, tx.ID, want[i])
		}
	}
}

func TestServiceReconcileContinuesPastBadRows(t *testing.T) {
	service, err := NewService(nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	statement := "Date,Description,Debit,Credit\n" +
		"02/04/2024,GOOD ROW,,100.00\n" +
		"not-a-date,BAD ROW,,200.00\n" +
		"04/04/2024,ANOTHER GOOD ROW,300.00,\n"
	books := []*models.BookEntry{bookEntry("BK-001", "2024-04-02", 100.00)}

	payload, err := service.Reconcile(csvInput(statement), books)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if payload.Success {
		t.Error("run with row errors must not report success")
	}
	if payload.TotalRecords != 3 || payload.ValidRecords != 2 || payload.ErrorRecords != 1 {
		t.Errorf("record counts wrong: total=%d valid=%d error=%d",
			payload.TotalRecords, payload.ValidRecords, payload.ErrorRecords)
	}
	if payload.ValidRecords+payload.ErrorRecords != payload.TotalRecords {
		t.Error("valid plus error records must equal total records")
	}
	// Matching still ran over the recovered rows.
	if payload.Report.Summary.MatchedCount != 1 {
		t.Errorf("matched = %d, want 1", payload.Report.Summary.MatchedCount)
	}
}

func TestServiceReconcileSurfacedErrorsCapped(t *testing.T) {
	service, err := NewService(nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	var b strings.Builder
	b.WriteString("Date,Description,Debit,Credit\n")
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "bad-date-%d,ROW,,100.00\n", i)
	}

	payload, err := service.Reconcile(csvInput(b.String()), nil)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if payload.ErrorRecords != 12 {
		t.Errorf("error records = %d, want 12", payload.ErrorRecords)
	}
	if len(payload.SurfacedErrors) != DefaultMaxSurfacedErrors {
		t.Errorf("surfaced errors = %d, want %d", len(payload.SurfacedErrors), DefaultMaxSurfacedErrors)
	}
	if len(payload.Parse.Errors) != 12 {
		t.Errorf("full error list = %d, want 12", len(payload.Parse.Errors))
	}
}

func TestServiceReconcileInvalidStatement(t *testing.T) {
	service, err := NewService(nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	input := parsers.RawStatementInput{
		Data:   []byte{0xff, 0xfe, 0x00},
		Format: parsers.FormatCSV,
	}
	if _, err := service.Reconcile(input, nil); err == nil {
		t.Fatal("expected error for undecodable statement data")
	}
}

func TestServiceEchoesAccount(t *testing.T) {
	account, err := banks.NewAccountConfig("12345678901", "SBIN0001234", "", banks.DefaultRegistry())
	if err != nil {
		t.Fatalf("NewAccountConfig failed: %v", err)
	}

	config := DefaultConfig()
	config.Account = account
	service, err := NewService(config)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	statement := "Date,Description,Debit,Credit\n02/04/2024,ROW,,100.00\n"
	payload, err := service.Reconcile(csvInput(statement), nil)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if payload.Account == nil || payload.Account.IFSC != "SBIN0001234" {
		t.Errorf("payload account not echoed: %+v", payload.Account)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	missing := &Config{}
	if err := missing.Validate(); err == nil {
		t.Error("nil matching config accepted")
	}

	negative := &Config{Matching: matcher.DefaultMatchingConfig(), MaxSurfacedErrors: -1}
	if err := negative.Validate(); err == nil {
		t.Error("negative surfaced-error cap accepted")
	}
}
