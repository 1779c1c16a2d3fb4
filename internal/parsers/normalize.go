package parsers

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a locale-formatted currency string into a decimal.
// Every rune that is not a digit, decimal point or minus sign is stripped,
// which handles thousands separators and currency symbols in one pass. An
// empty or lone-minus result parses as zero. The returned value is the
// absolute amount; direction is carried by the column the value came
// from, never by the numeral itself.
func ParseAmount(text string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, nil
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unparseable amount '%s': %w", text, err)
	}
	return d.Abs(), nil
}

// dateLayoutReplacer translates caller-facing date format tokens into Go
// reference-time layouts. Longer tokens first so YYYY is not consumed as
// two YY tokens.
var dateLayoutReplacer = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MMM", "Jan",
	"MM", "01",
	"DD", "02",
)

// DateLayout converts a caller-supplied format string such as
// "DD/MM/YYYY" into a Go time layout.
func DateLayout(format string) string {
	return dateLayoutReplacer.Replace(format)
}

// ParseDate strictly parses a date string against the caller-supplied
// format. A failure is a row-level error for the caller to record, never
// a global one.
func ParseDate(text, format string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("date value is empty")
	}

	t, err := time.Parse(DateLayout(format), text)
	if err != nil {
		return time.Time{}, fmt.Errorf("date '%s' does not match format %s: %w", text, format, err)
	}
	return t, nil
}
