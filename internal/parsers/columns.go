package parsers

import "strings"

// ColumnMapping holds the resolved column index for each semantic field.
// An index of -1 means the field is absent from the input.
type ColumnMapping struct {
	Date        int
	Description int
	Debit       int
	Credit      int
	Balance     int
	Reference   int
}

// Header synonym sets, scanned case-insensitively as substrings. First
// matching column wins per field.
var (
	dateSynonyms        = []string{"date", "txn date", "transaction date", "posting date", "value date"}
	descriptionSynonyms = []string{"description", "narration", "particulars", "details", "remarks"}
	debitSynonyms       = []string{"debit", "withdrawal", "dr"}
	creditSynonyms      = []string{"credit", "deposit", "cr"}
	balanceSynonyms     = []string{"balance", "running balance", "closing balance"}
	referenceSynonyms   = []string{"reference", "ref", "cheque", "utr", "transaction id"}
)

// MapColumns heuristically maps free-text header names to semantic
// fields. Header cells are matched case-insensitively against a fixed set
// of synonym substrings; the first matching column wins for each field.
func MapColumns(headers []string) ColumnMapping {
	lowered := make([]string, len(headers))
	for i, h := range headers {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	return ColumnMapping{
		Date:        findColumn(lowered, dateSynonyms),
		Description: findColumn(lowered, descriptionSynonyms),
		Debit:       findColumn(lowered, debitSynonyms),
		Credit:      findColumn(lowered, creditSynonyms),
		Balance:     findColumn(lowered, balanceSynonyms),
		Reference:   findColumn(lowered, referenceSynonyms),
	}
}

// PositionalMapping is the fallback when no header row is supplied: a
// fixed column order of date, description, debit, credit, balance.
func PositionalMapping() ColumnMapping {
	return ColumnMapping{
		Date:        0,
		Description: 1,
		Debit:       2,
		Credit:      3,
		Balance:     4,
		Reference:   -1,
	}
}

// findColumn scans synonyms in priority order so that "credit" claims its
// column before the bare "cr" abbreviation gets a chance to land on an
// unrelated header like "Description". Two-letter abbreviations only
// match a whole cell to avoid the same trap.
func findColumn(lowered []string, synonyms []string) int {
	for _, syn := range synonyms {
		for i, cell := range lowered {
			if len(syn) <= 2 {
				if strings.TrimRight(cell, ".") == syn {
					return i
				}
				continue
			}
			if strings.Contains(cell, syn) {
				return i
			}
		}
	}
	return -1
}

// field safely reads a cell from a row; out-of-range or unmapped indices
// yield an empty string.
func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
