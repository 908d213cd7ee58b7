package http

import (
	"encoding/json"
	"net/http"
	"path"
	"time"

	authmw "github.com/campuskit/examportal/internal/auth/middleware"
	"github.com/campuskit/examportal/internal/reports"
	"github.com/campuskit/examportal/internal/storage"

	"github.com/go-chi/chi/v5"
)

// POST /admin/projects — assign a project report to a student.
func AssignProjectHandler(store *reports.ProjectStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p reports.ProjectReport
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		out, err := store.Assign(r.Context(), p)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// GET /admin/projects?status=pending|submitted|graded|late
func ListProjectsHandler(store *reports.ProjectStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.List(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type gradeProjectReq struct {
	Marks    int    `json:"marks"`
	Feedback string `json:"feedback"`
}

// POST /admin/projects/{reportID}/grade
func GradeProjectHandler(store *reports.ProjectStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gradeProjectReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		out, err := store.Grade(r.Context(), chi.URLParam(r, "reportID"), req.Marks, req.Feedback)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /student/projects
func StudentProjectsHandler(store *reports.ProjectStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		out, err := store.ListByStudent(r.Context(), studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// POST /student/projects/{reportID}/submit — multipart upload, field "file".
// Extension whitelist only; content is stored as received.
func SubmitProjectHandler(store *reports.ProjectStore, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		reportID := chi.URLParam(r, "reportID")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()
		if err := reports.ValidateUploadName(hdr.Filename); err != nil {
			writeErr(w, err)
			return
		}
		key := path.Join("project_reports", reportID, path.Base(hdr.Filename))
		if _, err := blobs.Put(key, f); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out, err := store.Submit(r.Context(), reportID, studentID, key, time.Now())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GET /student/performance — the on-demand weighted summary.
func StudentPerformanceHandler(agg *reports.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		studentID := authmw.SubjectFromContext(r.Context())
		perf, err := agg.Overall(r.Context(), studentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, perf)
	}
}

// GET /admin/performance/{studentID} — same summary for any student.
func AdminPerformanceHandler(agg *reports.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		perf, err := agg.Overall(r.Context(), chi.URLParam(r, "studentID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, perf)
	}
}
