package parsers

import "testing"

func TestMapColumns(t *testing.T) {
	mapping := MapColumns([]string{"Date", "Narration", "Debit", "Credit", "Balance"})

	if mapping.Date != 0 {
		t.Errorf("Date column = %d, want 0", mapping.Date)
	}
	if mapping.Description != 1 {
		t.Errorf("Description column = %d, want 1", mapping.Description)
	}
	if mapping.Debit != 2 {
		t.Errorf("Debit column = %d, want 2", mapping.Debit)
	}
	if mapping.Credit != 3 {
		t.Errorf("Credit column = %d, want 3", mapping.Credit)
	}
	if mapping.Balance != 4 {
		t.Errorf("Balance column = %d, want 4", mapping.Balance)
	}
	if mapping.Reference != -1 {
		t.Errorf("Reference column = %d, want -1 (absent)", mapping.Reference)
	}
}

func TestMapColumnsSynonyms(t *testing.T) {
	mapping := MapColumns([]string{"Txn Date", "Particulars", "Withdrawal Amt", "Deposit Amt", "Running Balance", "Cheque No"})

	if mapping.Date != 0 {
		t.Errorf("Date column = %d, want 0", mapping.Date)
	}
	if mapping.Description != 1 {
		t.Errorf("Description column = %d, want 1", mapping.Description)
	}
	if mapping.Debit != 2 {
		t.Errorf("Debit column = %d, want 2", mapping.Debit)
	}
	if mapping.Credit != 3 {
		t.Errorf("Credit column = %d, want 3", mapping.Credit)
	}
	if mapping.Balance != 4 {
		t.Errorf("Balance column = %d, want 4", mapping.Balance)
	}
	if mapping.Reference != 5 {
		t.Errorf("Reference column = %d, want 5", mapping.Reference)
	}
}

// The bare "cr" abbreviation must not land on "Description", which
// contains it as a substring.
func TestMapColumnsCreditVsDescription(t *testing.T) {
	mapping := MapColumns([]string{"Date", "Description", "Debit", "Credit", "Balance"})

	if mapping.Description != 1 {
		t.Errorf("Description column = %d, want 1", mapping.Description)
	}
	if mapping.Credit != 3 {
		t.Errorf("Credit column = %d, want 3", mapping.Credit)
	}
}

func TestMapColumnsAbbreviations(t *testing.T) {
	mapping := MapColumns([]string{"Date", "Narration", "DR", "CR", "Balance"})

	if mapping.Debit != 2 {
		t.Errorf("Debit column = %d, want 2", mapping.Debit)
	}
	if mapping.Credit != 3 {
		t.Errorf("Credit column = %d, want 3", mapping.Credit)
	}
}

func TestPositionalMapping(t *testing.T) {
	mapping := PositionalMapping()

	if mapping.Date != 0 || mapping.Description != 1 || mapping.Debit != 2 ||
		mapping.Credit != 3 || mapping.Balance != 4 {
		t.Errorf("Unexpected positional mapping: %+v", mapping)
	}
	if mapping.Reference != -1 {
		t.Errorf("Reference column = %d, want -1", mapping.Reference)
	}
}
