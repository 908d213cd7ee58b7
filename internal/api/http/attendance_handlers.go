package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/campuskit/examportal/internal/attendance"
	authmw "github.com/campuskit/examportal/internal/auth/middleware"
	"github.com/campuskit/examportal/internal/exam"

	"github.com/go-chi/chi/v5"
)

type markAttendanceReq struct {
	Records []struct {
		StudentID string `json:"student_id"`
		Attended  bool   `json:"attended"`
		CheckIn   string `json:"check_in,omitempty"`  // HH:MM on the schedule date
		CheckOut  string `json:"check_out,omitempty"` // HH:MM on the schedule date
		Notes     string `json:"notes,omitempty"`
	} `json:"records"`
}

// POST /admin/attendance/{scheduleID}
// Check-in/out times arrive as naive HH:MM and are anchored to the schedule
// date in the configured zone before storing.
func MarkAttendanceHandler(store exam.Store, att *attendance.SQLStore, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduleID := chi.URLParam(r, "scheduleID")
		sched, err := store.GetSchedule(r.Context(), scheduleID)
		if err != nil {
			writeErr(w, err)
			return
		}
		var req markAttendanceReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		adminID := authmw.SubjectFromContext(r.Context())
		assigned := make(map[string]bool, len(sched.StudentIDs))
		for _, id := range sched.StudentIDs {
			assigned[id] = true
		}
		for _, rec := range req.Records {
			if !assigned[rec.StudentID] {
				writeErr(w, fmt.Errorf("%w: student %s not assigned to schedule", exam.ErrValidation, rec.StudentID))
				return
			}
			row := attendance.Record{
				ScheduleID: scheduleID,
				StudentID:  rec.StudentID,
				Attended:   rec.Attended,
				MarkedBy:   adminID,
				Notes:      rec.Notes,
			}
			if rec.CheckIn != "" {
				ts, err := clockOnDate(sched.ScheduledDate, rec.CheckIn, loc)
				if err != nil {
					writeErr(w, fmt.Errorf("%w: check_in must be HH:MM", exam.ErrValidation))
					return
				}
				row.CheckIn = &ts
			}
			if rec.CheckOut != "" {
				ts, err := clockOnDate(sched.ScheduledDate, rec.CheckOut, loc)
				if err != nil {
					writeErr(w, fmt.Errorf("%w: check_out must be HH:MM", exam.ErrValidation))
					return
				}
				row.CheckOut = &ts
			}
			if err := att.Mark(r.Context(), row); err != nil {
				writeErr(w, err)
				return
			}
		}
		rep, err := att.Report(r.Context(), scheduleID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

// POST /admin/attendance/{scheduleID}/register — derive attendance from exam
// submissions: present iff a result exists.
func RegisterAttendanceHandler(store exam.Store, att *attendance.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduleID := chi.URLParam(r, "scheduleID")
		if _, err := store.GetSchedule(r.Context(), scheduleID); err != nil {
			writeErr(w, err)
			return
		}
		adminID := authmw.SubjectFromContext(r.Context())
		recs, err := att.RegisterFromResults(r.Context(), scheduleID, adminID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// GET /admin/attendance/{scheduleID}
func AttendanceReportHandler(store exam.Store, att *attendance.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduleID := chi.URLParam(r, "scheduleID")
		if _, err := store.GetSchedule(r.Context(), scheduleID); err != nil {
			writeErr(w, err)
			return
		}
		rep, err := att.Report(r.Context(), scheduleID)
		if err != nil {
			writeErr(w, err)
			return
		}
		recs, err := att.ListBySchedule(r.Context(), scheduleID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"report": rep, "records": recs})
	}
}

// GET /student/attendance?filter=all|last30|term
func StudentAttendanceHandler(att *attendance.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		rows, err := att.StudentRows(r.Context(), studentID, attendanceFilter(r), time.Now())
		if err != nil {
			writeErr(w, err)
			return
		}
		pct, err := att.Percentage(r.Context(), studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"rows":                  rows,
			"attendance_percentage": pct,
		})
	}
}

// GET /student/attendance/export — CSV download, oldest sitting first.
func ExportAttendanceHandler(att *attendance.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		rows, err := att.StudentRows(r.Context(), studentID, attendanceFilter(r), time.Now())
		if err != nil {
			writeErr(w, err)
			return
		}
		// StudentRows is newest-first; the export reads chronologically.
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="attendance_export.csv"`)
		if err := attendance.WriteCSV(w, rows); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func clockOnDate(date, clock string, loc *time.Location) (int64, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, loc)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

func attendanceFilter(r *http.Request) attendance.Filter {
	switch r.URL.Query().Get("filter") {
	case "last30":
		return attendance.FilterLast30
	case "term":
		return attendance.FilterTerm
	default:
		return attendance.FilterAll
	}
}
