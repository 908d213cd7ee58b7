package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/campuskit/examportal/internal/audit"
	authmw "github.com/campuskit/examportal/internal/auth/middleware"
	"github.com/campuskit/examportal/internal/exam"

	"github.com/go-chi/chi/v5"
)

// GET /admin/submissions — schedules with submitted/graded/pending counts.
func SubmissionsListHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListSubmissionCounts(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /admin/submissions/{scheduleID} — every result for one schedule.
func SubmissionsDetailHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "scheduleID")
		if _, err := store.GetSchedule(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		results, err := store.ListResultsBySchedule(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}

// GET /admin/submissions/{scheduleID}/{studentID} — responses paired with the
// stored result, for the grading screen.
func SubmissionHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, breakdown, responses, err := svc.ResultWithBreakdown(r.Context(),
			chi.URLParam(r, "scheduleID"), chi.URLParam(r, "studentID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"result":    result,
			"breakdown": breakdown,
			"responses": responses,
		})
	}
}

type regradeReq struct {
	Marks       map[string]int `json:"marks"`        // question_id -> marks override
	FinalStatus string         `json:"final_status"` // optional: passed|failed
}

// POST /admin/submissions/{scheduleID}/{studentID}/grade
func RegradeHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req regradeReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		adminID := authmw.SubjectFromContext(r.Context())
		result, err := svc.Regrade(r.Context(),
			chi.URLParam(r, "scheduleID"), chi.URLParam(r, "studentID"),
			req.Marks, req.FinalStatus, adminID, time.Now())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// GET /admin/submissions/{scheduleID}/{studentID}/audit — grading trail
// distinguishing automatic from manual writes.
func GradingAuditHandler(events *audit.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "scheduleID") + "|" + chi.URLParam(r, "studentID")
		evs, err := events.ListByKey(r.Context(), key)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, evs)
	}
}
