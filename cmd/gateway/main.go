package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/campuskit/examportal/internal/api/http"
	"github.com/campuskit/examportal/internal/attendance"
	"github.com/campuskit/examportal/internal/audit"
	auth "github.com/campuskit/examportal/internal/auth/middleware"
	"github.com/campuskit/examportal/internal/config"
	"github.com/campuskit/examportal/internal/db"
	"github.com/campuskit/examportal/internal/exam"
	"github.com/campuskit/examportal/internal/grading"
	"github.com/campuskit/examportal/internal/rbac"
	"github.com/campuskit/examportal/internal/reports"
	"github.com/campuskit/examportal/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("bad TIME_ZONE %q: %v", cfg.TimeZone, err)
	}

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	store := exam.NewSQLStore(dbh)
	events := audit.NewEventRepo(dbh)
	attStore := attendance.NewSQLStore(dbh)
	projStore := reports.NewProjectStore(dbh)

	svc := exam.NewService(store, grading.NewDefaultGrader(), events, loc)
	agg := reports.NewAggregator(store, projStore, attStore)

	bs, err := storage.NewFSStore(cfg.UploadBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret, cfg.TokenTTL)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Admin: subjects
		pr.With(rbac.Require("subject:create")).Post("/subjects", api.CreateSubjectHandler(store))
		pr.With(rbac.Require("subject:update")).Put("/subjects/{subjectID}", api.UpdateSubjectHandler(store))
		pr.With(rbac.Require("subject:view")).Get("/subjects/{subjectID}", api.GetSubjectHandler(store))
		pr.With(rbac.Require("subject:view")).Get("/subjects", api.ListSubjectsHandler(store))
		pr.With(rbac.Require("subject:delete")).Delete("/subjects/{subjectID}", api.DeleteSubjectHandler(store))

		// Admin: questions
		pr.With(rbac.Require("question:create")).Post("/questions", api.CreateQuestionHandler(store))
		pr.With(rbac.Require("question:update")).Put("/questions/{questionID}", api.UpdateQuestionHandler(store))
		pr.With(rbac.Require("question:view")).Get("/questions/{questionID}", api.GetQuestionHandler(store))
		pr.With(rbac.Require("question:view")).Get("/questions", api.ListQuestionsHandler(store))
		pr.With(rbac.Require("question:delete")).Delete("/questions/{questionID}", api.DeleteQuestionHandler(store))

		// Admin: question papers
		pr.With(rbac.Require("paper:create")).Post("/papers", api.CreatePaperHandler(store))
		pr.With(rbac.Require("paper:update")).Put("/papers/{paperID}", api.UpdatePaperHandler(store))
		pr.With(rbac.Require("paper:view")).Get("/papers/{paperID}", api.GetPaperHandler(store))
		pr.With(rbac.Require("paper:view")).Get("/papers", api.ListPapersHandler(store))
		pr.With(rbac.Require("paper:delete")).Delete("/papers/{paperID}", api.DeletePaperHandler(store))

		// Admin: schedules
		pr.With(rbac.Require("schedule:create")).Post("/schedules", api.CreateScheduleHandler(store))
		pr.With(rbac.Require("schedule:update")).Put("/schedules/{scheduleID}", api.UpdateScheduleHandler(store))
		pr.With(rbac.Require("schedule:view")).Get("/schedules/{scheduleID}", api.GetScheduleHandler(store))
		pr.With(rbac.Require("schedule:view")).Get("/schedules", api.ListSchedulesHandler(store))
		pr.With(rbac.Require("schedule:delete")).Delete("/schedules/{scheduleID}", api.DeleteScheduleHandler(store))
		pr.With(rbac.Require("schedule:assign")).Post("/schedules/{scheduleID}/students", api.AssignStudentsHandler(store))

		// Admin: dashboard counts
		pr.With(rbac.Require("dashboard:view")).Get("/admin/dashboard", api.DashboardCountsHandler(store))

		// Student flow
		pr.With(rbac.Require("schedule:view-own")).Get("/student/dashboard", api.StudentDashboardHandler(svc))
		pr.With(rbac.Require("exam:take")).Get("/student/exams/{scheduleID}", api.TakeExamHandler(svc))
		pr.With(rbac.Require("exam:take")).Post("/student/exams/{scheduleID}/submit", api.SubmitExamHandler(svc))
		pr.With(rbac.Require("result:view-own")).Get("/student/exams/{scheduleID}/result", api.ExamResultHandler(svc))
		pr.With(rbac.Require("result:view-own")).Get("/student/results", api.ExamHistoryHandler(store))

		// Admin: grading
		pr.With(rbac.Require("grade:view")).Get("/admin/submissions", api.SubmissionsListHandler(store))
		pr.With(rbac.Require("grade:view")).Get("/admin/submissions/{scheduleID}", api.SubmissionsDetailHandler(store))
		pr.With(rbac.Require("grade:view")).Get("/admin/submissions/{scheduleID}/{studentID}", api.SubmissionHandler(svc))
		pr.With(rbac.Require("grade:update")).Post("/admin/submissions/{scheduleID}/{studentID}/grade", api.RegradeHandler(svc))
		pr.With(rbac.Require("grade:view")).Get("/admin/submissions/{scheduleID}/{studentID}/audit", api.GradingAuditHandler(events))

		// Attendance
		pr.With(rbac.Require("attendance:mark")).Post("/admin/attendance/{scheduleID}", api.MarkAttendanceHandler(store, attStore, loc))
		pr.With(rbac.Require("attendance:mark")).Post("/admin/attendance/{scheduleID}/register", api.RegisterAttendanceHandler(store, attStore))
		pr.With(rbac.Require("attendance:view")).Get("/admin/attendance/{scheduleID}", api.AttendanceReportHandler(store, attStore))
		pr.With(rbac.Require("attendance:view-own")).Get("/student/attendance", api.StudentAttendanceHandler(attStore))
		pr.With(rbac.Require("attendance:export-own")).Get("/student/attendance/export", api.ExportAttendanceHandler(attStore))

		// Project reports
		pr.With(rbac.Require("project:assign")).Post("/admin/projects", api.AssignProjectHandler(projStore))
		pr.With(rbac.Require("project:view")).Get("/admin/projects", api.ListProjectsHandler(projStore))
		pr.With(rbac.Require("project:grade")).Post("/admin/projects/{reportID}/grade", api.GradeProjectHandler(projStore))
		pr.With(rbac.Require("project:view-own")).Get("/student/projects", api.StudentProjectsHandler(projStore))
		pr.With(rbac.Require("project:submit")).Post("/student/projects/{reportID}/submit", api.SubmitProjectHandler(projStore, bs))

		// Overall performance
		pr.With(rbac.Require("report:view-own")).Get("/student/performance", api.StudentPerformanceHandler(agg))
		pr.With(rbac.Require("report:view")).Get("/admin/performance/{studentID}", api.AdminPerformanceHandler(agg))

		// Users (admin)
		pr.With(rbac.Require("users:bulk_upsert")).Post("/admin/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).Get("/admin/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (db=%s, tz=%s)", cfg.HTTPAddr, cfg.DBDriver, cfg.TimeZone)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
