package http

import (
	"encoding/json"
	"net/http"

	authmw "github.com/campuskit/examportal/internal/auth/middleware"
	"github.com/campuskit/examportal/internal/exam"

	"github.com/go-chi/chi/v5"
)

type paperReq struct {
	Title           string   `json:"title"`
	SubjectID       string   `json:"subject_id"`
	TotalMarks      int      `json:"total_marks"`
	DurationMinutes int      `json:"duration_minutes"`
	PassingMarks    int      `json:"passing_marks"`
	Instructions    string   `json:"instructions"`
	QuestionIDs     []string `json:"question_ids"`
}

func (p paperReq) toPaper(id, createdBy string) exam.QuestionPaper {
	return exam.QuestionPaper{
		ID:              id,
		Title:           p.Title,
		SubjectID:       p.SubjectID,
		TotalMarks:      p.TotalMarks,
		DurationMinutes: p.DurationMinutes,
		PassingMarks:    p.PassingMarks,
		Instructions:    p.Instructions,
		CreatedBy:       createdBy,
	}
}

func CreatePaperHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paperReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		out, err := store.PutPaper(r.Context(), req.toPaper("", authmw.SubjectFromContext(r.Context())), req.QuestionIDs)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func UpdatePaperHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "paperID")
		existing, err := store.GetPaper(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		var req paperReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		out, err := store.PutPaper(r.Context(), req.toPaper(id, existing.CreatedBy), req.QuestionIDs)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func GetPaperHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.GetPaper(r.Context(), chi.URLParam(r, "paperID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func ListPapersHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := store.ListPapers(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ps)
	}
}

func DeletePaperHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeletePaper(r.Context(), chi.URLParam(r, "paperID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
