package http

import (
	"encoding/json"
	"net/http"
	"time"

	authmw "github.com/campuskit/examportal/internal/auth/middleware"
	"github.com/campuskit/examportal/internal/exam"

	"github.com/go-chi/chi/v5"
)

// GET /student/dashboard
func StudentDashboardHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		d, err := svc.Dashboard(r.Context(), studentID, time.Now())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

// GET /student/exams/{scheduleID} — the paper, answer keys stripped. Only
// served to an assigned student inside the exam window.
func TakeExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		paper, err := svc.PaperForStudent(r.Context(), chi.URLParam(r, "scheduleID"), studentID, time.Now())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, paper)
	}
}

// POST /student/exams/{scheduleID}/submit  {"answers": {"<question_id>": "a", ...}}
// Resubmission overwrites: one response row per question, one result row per
// sitting, recomputed from scratch.
func SubmitExamHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		var req struct {
			Answers map[string]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		result, err := svc.Submit(r.Context(), chi.URLParam(r, "scheduleID"), studentID, req.Answers, time.Now())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// GET /student/exams/{scheduleID}/result
func ExamResultHandler(svc *exam.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		result, breakdown, responses, err := svc.ResultWithBreakdown(r.Context(), chi.URLParam(r, "scheduleID"), studentID)
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

// GET /student/results — exam history for the caller.
func ExamHistoryHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		results, err := store.ListResultsByStudent(r.Context(), studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, results)
	}
}
