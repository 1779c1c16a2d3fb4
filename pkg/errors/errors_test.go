package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewError(t *testing.T) {
	err := New(CategoryParse, CodeInvalidFormat, "bad statement")
	if err.Category != CategoryParse {
		t.Errorf("category = %s, want parse", err.Category)
	}
	if err.Code != CodeInvalidFormat {
		t.Errorf("code = %s, want invalid_format", err.Code)
	}
	if err.Error() != "bad statement" {
		t.Errorf("Error() = %q, want bad statement", err.Error())
	}
	if len(err.StackTrace) == 0 {
		t.Error("expected a captured stack trace")
	}
}

func TestErrorWithSuggestion(t *testing.T) {
	err := New(CategoryFile, CodeFileNotFound, "file not found").
		WithSuggestion("check the path")
	if !strings.Contains(err.Error(), "suggestion: check the path") {
		t.Errorf("Error() = %q, want suggestion appended", err.Error())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := Wrap(cause, CategoryInternal, CodeUnexpectedError, "operation failed")

	if err.Unwrap() != cause {
		t.Error("Unwrap should return the original cause")
	}
	if err.Cause != cause {
		t.Error("cause should be retained on the error")
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, CategoryInternal, CodeUnexpectedError, "x"); err != nil {
		t.Errorf("wrapping nil should return nil, got %v", err)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		expected int
	}{
		{CategoryFile, 2},
		{CategoryParse, 3},
		{CategoryValidation, 3},
		{CategoryConfiguration, 4},
		{CategoryReconciliation, 5},
		{CategoryInternal, 5},
		{ErrorCategory("other"), 1},
	}

	for _, tt := range tests {
		err := New(tt.category, CodeUnexpectedError, "x")
		if got := err.GetExitCode(); got != tt.expected {
			t.Errorf("GetExitCode(%s) = %d, want %d", tt.category, got, tt.expected)
		}
	}
}

func TestFileError(t *testing.T) {
	err := FileError(CodeFileNotFound, "/tmp/statement.csv", nil)
	if err.Category != CategoryFile {
		t.Errorf("category = %s, want file", err.Category)
	}
	if !strings.Contains(err.Message, "/tmp/statement.csv") {
		t.Errorf("message should carry the path: %q", err.Message)
	}
	if err.Suggestion == "" {
		t.Error("file errors should carry a suggestion")
	}
	if err.Context["file_path"] != "/tmp/statement.csv" {
		t.Errorf("context file_path = %v", err.Context["file_path"])
	}
}

func TestParseError(t *testing.T) {
	err := ParseError(CodeUnknownFormat, "qif", nil)
	if err.Category != CategoryParse {
		t.Errorf("category = %s, want parse", err.Category)
	}
	if !strings.Contains(err.Suggestion, "csv") {
		t.Errorf("suggestion should list supported formats: %q", err.Suggestion)
	}
}

func TestValidationErrorContext(t *testing.T) {
	err := ValidationError(CodeInvalidAmount, "debit", "abc", nil)
	if err.Context["field"] != "debit" || err.Context["value"] != "abc" {
		t.Errorf("context = %v, want field and value recorded", err.Context)
	}
}

func TestAsReconcilerError(t *testing.T) {
	inner := New(CategoryParse, CodeInvalidData, "row broken")
	wrapped := fmt.Errorf("loading statement: %w", inner)

	extracted, ok := AsReconcilerError(wrapped)
	if !ok {
		t.Fatal("should find the ReconcilerError through the wrap chain")
	}
	if extracted.Code != CodeInvalidData {
		t.Errorf("code = %s, want invalid_data", extracted.Code)
	}

	if _, ok := AsReconcilerError(fmt.Errorf("plain error")); ok {
		t.Error("plain errors should not extract")
	}
	if _, ok := AsReconcilerError(nil); ok {
		t.Error("nil should not extract")
	}
}

func TestIsCategory(t *testing.T) {
	err := ConfigurationError(CodeInvalidConfig, "tolerance", -1, nil)
	if !IsCategory(err, CategoryConfiguration) {
		t.Error("configuration error should match its category")
	}
	if IsCategory(err, CategoryFile) {
		t.Error("configuration error should not match the file category")
	}
	if IsCategory(fmt.Errorf("plain"), CategoryFile) {
		t.Error("plain errors never match")
	}
}
