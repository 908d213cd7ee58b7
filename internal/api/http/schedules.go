package http

import (
	"encoding/json"
	"net/http"

	"github.com/campuskit/examportal/internal/exam"

	"github.com/go-chi/chi/v5"
)

func CreateScheduleHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sc exam.Schedule
		if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		sc.ID = ""
		out, err := store.PutSchedule(r.Context(), sc)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func UpdateScheduleHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "scheduleID")
		if _, err := store.GetSchedule(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		var sc exam.Schedule
		if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		sc.ID = id
		out, err := store.PutSchedule(r.Context(), sc)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func GetScheduleHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := store.GetSchedule(r.Context(), chi.URLParam(r, "scheduleID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sc)
	}
}

// GET /schedules?status=published
func ListSchedulesHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scs, err := store.ListSchedules(r.Context(), exam.ScheduleFilter{
			Status: r.URL.Query().Get("status"),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, scs)
	}
}

func DeleteScheduleHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteSchedule(r.Context(), chi.URLParam(r, "scheduleID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /schedules/{scheduleID}/students  {"student_ids": [...]}
func AssignStudentsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "scheduleID")
		if _, err := store.GetSchedule(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		var req struct {
			StudentIDs []string `json:"student_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.AssignStudents(r.Context(), id, req.StudentIDs); err != nil {
			writeErr(w, err)
			return
		}
		sc, err := store.GetSchedule(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sc)
	}
}
