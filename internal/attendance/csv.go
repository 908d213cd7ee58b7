package attendance

import (
	"encoding/csv"
	"io"
)

// WriteCSV renders history rows with the fixed export column order:
// Date (ISO-8601), Subject, Time range, Status (Present/Absent).
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Subject", "Time", "Status"}); err != nil {
		return err
	}
	for _, r := range rows {
		status := "Absent"
		if r.Attended {
			status = "Present"
		}
		if err := cw.Write([]string{r.Date, r.Subject, r.TimeRange, status}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
