package export

import (
	"encoding/csv"
	"io"

	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

// WriteCSV serialises rows as CSV, one line per record in the given order.
func WriteCSV(w io.Writer, cols []Column, rows []records.Record) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(Headers(cols)); err != nil {
		return err
	}
	for _, rec := range rows {
		if err := writer.Write(Row(cols, rec)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
