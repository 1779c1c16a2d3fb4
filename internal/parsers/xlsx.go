package parsers

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"statement-reconciliation-service/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// ConvertXLSXToCSV converts the first sheet of an XLSX workbook into CSV
// text so the statement can flow through the CSV parser unchanged. Cell
// values are taken as formatted strings, which matches how exported bank
// statements present dates and amounts.
func ConvertXLSXToCSV(data []byte) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, "xlsx", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ParseError(errors.CodeInvalidFormat, "xlsx",
			fmt.Errorf("workbook contains no sheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, "xlsx", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, errors.InternalError(errors.CodeUnexpectedError, "xlsx conversion", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "xlsx conversion", err)
	}

	return buf.Bytes(), nil
}
