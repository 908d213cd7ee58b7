package reports_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/campuskit/examportal/internal/db"
	"github.com/campuskit/examportal/internal/exam"
	"github.com/campuskit/examportal/internal/reports"

	_ "modernc.org/sqlite" // driver for "sqlite"
)

func newProjectStore(t *testing.T) *reports.ProjectStore {
	t.Helper()
	dbh, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	if err := db.EnsureSchema(context.Background(), dbh, db.DriverSQLite); err != nil {
		t.Fatalf("schema: %v", err)
	}
	for _, id := range []string{"stu-1", "stu-2"} {
		if _, err := dbh.Exec(`INSERT INTO users (id,username,role,password_hash,created_at)
			VALUES (?,?,?,?,?)`, id, id, "student", "x", time.Now().Unix()); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return reports.NewProjectStore(dbh)
}

func TestProjectLifecycle(t *testing.T) {
	s := newProjectStore(t)
	ctx := context.Background()

	p, err := s.Assign(ctx, reports.ProjectReport{
		StudentID: "stu-1",
		Title:     "Compiler project",
		DueDate:   "2026-04-01",
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if p.Status != reports.ProjectPending || p.TotalMarks != 100 {
		t.Errorf("new report = %q/%d, want pending/100", p.Status, p.TotalMarks)
	}

	onTime := time.Date(2026, 4, 1, 18, 0, 0, 0, time.UTC)
	p, err = s.Submit(ctx, p.ID, "stu-1", "project_reports/x/report.pdf", onTime)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if p.Status != reports.ProjectSubmitted {
		t.Errorf("due-date submission = %q, want submitted (due date is inclusive)", p.Status)
	}

	p, err = s.Grade(ctx, p.ID, 85, "solid work")
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if p.Status != reports.ProjectGraded || p.MarksObtained == nil || *p.MarksObtained != 85 {
		t.Errorf("graded report = %+v", p)
	}
}

func TestProjectLateSubmission(t *testing.T) {
	s := newProjectStore(t)
	ctx := context.Background()
	p, err := s.Assign(ctx, reports.ProjectReport{StudentID: "stu-1", Title: "T", DueDate: "2026-04-01"})
	if err != nil {
		t.Fatal(err)
	}
	late := time.Date(2026, 4, 3, 9, 0, 0, 0, time.UTC)
	p, err = s.Submit(ctx, p.ID, "stu-1", "k", late)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != reports.ProjectLate {
		t.Errorf("status = %q, want late", p.Status)
	}
}

func TestProjectOwnershipAndBounds(t *testing.T) {
	s := newProjectStore(t)
	ctx := context.Background()
	p, err := s.Assign(ctx, reports.ProjectReport{StudentID: "stu-1", Title: "T", DueDate: "2026-04-01"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Submit(ctx, p.ID, "stu-2", "k", time.Now()); !errors.Is(err, exam.ErrNotEligible) {
		t.Errorf("foreign submit: got %v, want ErrNotEligible", err)
	}
	if _, err := s.Grade(ctx, p.ID, 101, ""); !errors.Is(err, exam.ErrValidation) {
		t.Errorf("marks over total: got %v, want ErrValidation", err)
	}
	if _, err := s.Assign(ctx, reports.ProjectReport{StudentID: "stu-1", Title: "T", DueDate: "soon"}); !errors.Is(err, exam.ErrValidation) {
		t.Errorf("bad due date: got %v, want ErrValidation", err)
	}
}

func TestValidateUploadName(t *testing.T) {
	ok := []string{"report.pdf", "REPORT.PDF", "a.docx", "code.zip", "x.rar", "notes.doc"}
	for _, name := range ok {
		if err := reports.ValidateUploadName(name); err != nil {
			t.Errorf("%s rejected: %v", name, err)
		}
	}
	bad := []string{"script.exe", "report", "shell.sh", "report.pdf.exe"}
	for _, name := range bad {
		if err := reports.ValidateUploadName(name); !errors.Is(err, exam.ErrValidation) {
			t.Errorf("%s: got %v, want ErrValidation", name, err)
		}
	}
}
