// Package models defines the core data types shared across the
// reconciliation pipeline: normalized statement transactions produced by
// the parsers and book entries supplied by the caller from the ledger.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the classification tag assigned to a normalized
// statement transaction from its description keywords and direction.
type TransactionType string

const (
	TypeWireCreditNEFT    TransactionType = "wire-credit-neft"
	TypeWireCreditRTGS    TransactionType = "wire-credit-rtgs"
	TypeWireCreditUPI     TransactionType = "wire-credit-upi"
	TypeInterestCredit    TransactionType = "interest-credit"
	TypeChequeDeposit     TransactionType = "cheque-deposit"
	TypeTransferIn        TransactionType = "transfer-in"
	TypeGenericDeposit    TransactionType = "generic-deposit"
	TypeWireDebitNEFT     TransactionType = "wire-debit-neft"
	TypeWireDebitRTGS     TransactionType = "wire-debit-rtgs"
	TypeWireDebitUPI      TransactionType = "wire-debit-upi"
	TypeSalaryPayment     TransactionType = "salary-payment"
	TypeBankCharges       TransactionType = "bank-charges"
	TypeChequeWithdrawal  TransactionType = "cheque-withdrawal"
	TypeTransferOut       TransactionType = "transfer-out"
	TypeGenericWithdrawal TransactionType = "generic-withdrawal"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsCredit reports whether the tag classifies an inbound transaction
func (t TransactionType) IsCredit() bool {
	switch t {
	case TypeWireCreditNEFT, TypeWireCreditRTGS, TypeWireCreditUPI,
		TypeInterestCredit, TypeChequeDeposit, TypeTransferIn, TypeGenericDeposit:
		return true
	}
	return false
}

// NormalizedTransaction is a single statement transaction in canonical
// form, produced by a parser and never mutated afterwards. Exactly one of
// Debit and Credit is non-zero; both are non-negative. The amount's
// direction is carried by which field is set, never by its sign.
type NormalizedTransaction struct {
	// ID is a stable identifier assigned by the caller before matching.
	// Parsers leave it empty.
	ID          string           `json:"id,omitempty"`
	Date        time.Time        `json:"date"`
	Reference   string           `json:"reference,omitempty"`
	Description string           `json:"description"`
	Debit       decimal.Decimal  `json:"debit"`
	Credit      decimal.Decimal  `json:"credit"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	Type        TransactionType  `json:"type"`
}

// Amount returns the transaction magnitude: whichever of debit or credit
// is non-zero.
func (t *NormalizedTransaction) Amount() decimal.Decimal {
	if t.Debit.IsPositive() {
		return t.Debit
	}
	return t.Credit
}

// SignedAmount returns credit minus debit, the ledger-style signed value
func (t *NormalizedTransaction) SignedAmount() decimal.Decimal {
	return t.Credit.Sub(t.Debit)
}

// IsDebit returns true if the transaction moves money out of the account
func (t *NormalizedTransaction) IsDebit() bool {
	return t.Debit.IsPositive()
}

// IsCredit returns true if the transaction moves money into the account
func (t *NormalizedTransaction) IsCredit() bool {
	return t.Credit.IsPositive()
}

// Validate checks the sign-normalization invariants
func (t *NormalizedTransaction) Validate() error {
	if t.Debit.IsNegative() {
		return fmt.Errorf("debit amount cannot be negative: %s", t.Debit)
	}
	if t.Credit.IsNegative() {
		return fmt.Errorf("credit amount cannot be negative: %s", t.Credit)
	}
	if t.Debit.IsPositive() && t.Credit.IsPositive() {
		return fmt.Errorf("transaction cannot carry both debit (%s) and credit (%s)", t.Debit, t.Credit)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date cannot be zero")
	}
	return nil
}

// String returns a string representation of the transaction
func (t *NormalizedTransaction) String() string {
	return fmt.Sprintf("Transaction{ID: %s, Date: %s, Debit: %s, Credit: %s, Type: %s}",
		t.ID, t.Date.Format("2006-01-02"), t.Debit, t.Credit, t.Type)
}

// BookEntry is a ledger-side record supplied by the caller. The amount is
// held signed: credits positive, debits negative. Entries arriving as a
// debit/credit pair are collapsed at construction.
type BookEntry struct {
	ID        string          `json:"id"`
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// NewBookEntry creates a book entry from an already-signed amount
func NewBookEntry(id string, date time.Time, amount decimal.Decimal, reference string) *BookEntry {
	return &BookEntry{
		ID:        strings.TrimSpace(id),
		Date:      date,
		Amount:    amount,
		Reference: strings.TrimSpace(reference),
	}
}

// NewBookEntryFromPair creates a book entry from a debit/credit pair,
// collapsing it to a single signed amount (credit minus debit).
func NewBookEntryFromPair(id string, date time.Time, debit, credit decimal.Decimal, reference string) *BookEntry {
	return NewBookEntry(id, date, credit.Sub(debit), reference)
}

// Magnitude returns the absolute value of the entry amount
func (be *BookEntry) Magnitude() decimal.Decimal {
	return be.Amount.Abs()
}

// IsDebit returns true if the entry represents money leaving the ledger
func (be *BookEntry) IsDebit() bool {
	return be.Amount.IsNegative()
}

// Validate performs basic validation on the book entry
func (be *BookEntry) Validate() error {
	if strings.TrimSpace(be.ID) == "" {
		return fmt.Errorf("book entry identifier cannot be empty")
	}
	if be.Date.IsZero() {
		return fmt.Errorf("book entry date cannot be zero")
	}
	return nil
}

// String returns a string representation of the book entry
func (be *BookEntry) String() string {
	return fmt.Sprintf("BookEntry{ID: %s, Date: %s, Amount: %s, Ref: %s}",
		be.ID, be.Date.Format("2006-01-02"), be.Amount, be.Reference)
}

// NormalizeReference cleans a reference string for comparison: trimmed and
// upper-cased.
func NormalizeReference(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}
