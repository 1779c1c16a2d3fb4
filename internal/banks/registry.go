// Package banks provides an immutable IFSC lookup registry and the
// account configuration attached to a reconciliation run. The registry is
// built once and injected by reference, so tests can substitute a fixture
// table without touching package state.
package banks

import (
	"fmt"
	"strings"
)

// ifscLength is fixed by the IFSC standard: 4 letters, a zero, 6
// alphanumerics.
const ifscLength = 11

// ValidIFSC reports whether code has the AAAA0BBBBBB shape
func ValidIFSC(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != ifscLength {
		return false
	}
	for i := 0; i < 4; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	if code[4] != '0' {
		return false
	}
	for i := 5; i < ifscLength; i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// Registry maps IFSC bank prefixes (the leading 4 letters) to bank
// names. It is immutable after construction.
type Registry struct {
	byPrefix map[string]string
}

// NewRegistry builds a registry from a prefix-to-name table. The table is
// copied; later mutation of the argument does not affect the registry.
func NewRegistry(entries map[string]string) *Registry {
	byPrefix := make(map[string]string, len(entries))
	for prefix, name := range entries {
		byPrefix[strings.ToUpper(strings.TrimSpace(prefix))] = name
	}
	return &Registry{byPrefix: byPrefix}
}

// DefaultRegistry returns a registry seeded with the major Indian banks
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]string{
		"SBIN": "State Bank of India",
		"HDFC": "HDFC Bank",
		"ICIC": "ICICI Bank",
		"UTIB": "Axis Bank",
		"PUNB": "Punjab National Bank",
		"KKBK": "Kotak Mahindra Bank",
		"YESB": "Yes Bank",
		"IDIB": "Indian Bank",
		"BARB": "Bank of Baroda",
		"CNRB": "Canara Bank",
		"UBIN": "Union Bank of India",
		"IOBA": "Indian Overseas Bank",
	})
}

// LookupIFSC resolves an IFSC code to its bank name. It returns false for
// malformed codes and for prefixes the registry does not know.
func (r *Registry) LookupIFSC(code string) (string, bool) {
	if !ValidIFSC(code) {
		return "", false
	}
	name, ok := r.byPrefix[strings.ToUpper(strings.TrimSpace(code))[:4]]
	return name, ok
}

// AccountConfig identifies the bank account a statement belongs to.
// Required fields are rejected at construction, never discovered missing
// downstream.
type AccountConfig struct {
	AccountNumber string `json:"accountNumber"`
	IFSC          string `json:"ifsc"`
	// BankName is optional; when empty it is resolved from the registry
	BankName string `json:"bankName,omitempty"`
}

// NewAccountConfig validates and builds an account configuration,
// resolving the bank name through the registry when not supplied.
func NewAccountConfig(accountNumber, ifsc, bankName string, registry *Registry) (*AccountConfig, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return nil, fmt.Errorf("account number is required")
	}

	ifsc = strings.ToUpper(strings.TrimSpace(ifsc))
	if ifsc == "" {
		return nil, fmt.Errorf("IFSC code is required")
	}
	if !ValidIFSC(ifsc) {
		return nil, fmt.Errorf("malformed IFSC code: %s", ifsc)
	}

	if bankName == "" && registry != nil {
		if name, ok := registry.LookupIFSC(ifsc); ok {
			bankName = name
		}
	}

	return &AccountConfig{
		AccountNumber: accountNumber,
		IFSC:          ifsc,
		BankName:      bankName,
	}, nil
}
