package http

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/campuskit/examportal/internal/attendance"
	"github.com/campuskit/examportal/internal/db"
	"github.com/campuskit/examportal/internal/exam"

	"github.com/go-chi/chi/v5"

	_ "modernc.org/sqlite" // driver for "sqlite"
)

func TestMarkAttendanceRecordsCheckTimes(t *testing.T) {
	dbh, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	ctx := context.Background()
	if err := db.EnsureSchema(ctx, dbh, db.DriverSQLite); err != nil {
		t.Fatalf("schema: %v", err)
	}
	store := exam.NewSQLStore(dbh)
	att := attendance.NewSQLStore(dbh)

	if _, err := dbh.Exec(`INSERT INTO users (id,username,role,password_hash,created_at)
		VALUES ('stu-1','stu-1','student','x',?)`, time.Now().Unix()); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	sub, err := store.PutSubject(ctx, exam.Subject{Code: "CS101", Name: "Programming", Credits: 3})
	if err != nil {
		t.Fatal(err)
	}
	paper, err := store.PutPaper(ctx, exam.QuestionPaper{
		Title: "Midterm", SubjectID: sub.ID, DurationMinutes: 60, PassingMarks: 50,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	sched, err := store.PutSchedule(ctx, exam.Schedule{
		PaperID:       paper.ID,
		ScheduledDate: "2026-03-10",
		StartTime:     "09:00",
		EndTime:       "11:00",
		Status:        exam.SchedulePublished,
		StudentIDs:    []string{"stu-1"},
	})
	if err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	r.Post("/admin/attendance/{scheduleID}", MarkAttendanceHandler(store, att, time.UTC))

	body := `{"records":[{"student_id":"stu-1","attended":true,"check_in":"09:05","check_out":"10:55"}]}`
	req := httptest.NewRequest("POST", "/admin/attendance/"+sched.ID, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	recs, err := att.ListBySchedule(ctx, sched.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].CheckIn == nil || recs[0].CheckOut == nil {
		t.Fatalf("record = %+v, want both check times stored", recs[0])
	}
	wantIn := time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC).Unix()
	wantOut := time.Date(2026, 3, 10, 10, 55, 0, 0, time.UTC).Unix()
	if *recs[0].CheckIn != wantIn || *recs[0].CheckOut != wantOut {
		t.Errorf("check times = %d/%d, want %d/%d", *recs[0].CheckIn, *recs[0].CheckOut, wantIn, wantOut)
	}

	bad := `{"records":[{"student_id":"stu-1","attended":true,"check_out":"25:99"}]}`
	req = httptest.NewRequest("POST", "/admin/attendance/"+sched.ID, strings.NewReader(bad))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != 422 {
		t.Errorf("malformed check_out: status = %d, want 422", rec.Code)
	}
}
