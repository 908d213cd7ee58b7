package attendance_test

import (
	"bytes"
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/campuskit/examportal/internal/attendance"
	"github.com/campuskit/examportal/internal/db"

	_ "modernc.org/sqlite" // driver for "sqlite"
)

func newStore(t *testing.T) (*attendance.SQLStore, *sql.DB) {
	t.Helper()
	dbh, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	if err := db.EnsureSchema(context.Background(), dbh, db.DriverSQLite); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return attendance.NewSQLStore(dbh), dbh
}

// seedSitting inserts the subject/paper/schedule chain one attendance row
// hangs off, plus the assigned students.
func seedSitting(t *testing.T, dbh *sql.DB, schedID, subjectName, date string, students ...string) {
	t.Helper()
	now := time.Now().Unix()
	exec := func(q string, args ...any) {
		t.Helper()
		if _, err := dbh.Exec(q, args...); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	exec(`INSERT OR IGNORE INTO subjects (id,code,name,credits,created_at,updated_at)
		VALUES (?,?,?,3,?,?)`, "sub-"+schedID, "C-"+schedID, subjectName, now, now)
	exec(`INSERT INTO question_papers (id,title,subject_id,duration_minutes,passing_marks,created_at,updated_at)
		VALUES (?,?,?,60,40,?,?)`, "pap-"+schedID, "Paper", "sub-"+schedID, now, now)
	exec(`INSERT INTO exam_schedules (id,paper_id,scheduled_date,start_time,end_time,status,created_at,updated_at)
		VALUES (?,?,?,?,?,?,?,?)`, schedID, "pap-"+schedID, date, "09:00", "11:00", "published", now, now)
	for _, sid := range students {
		exec(`INSERT OR IGNORE INTO users (id,username,role,password_hash,created_at)
			VALUES (?,?,?,?,?)`, sid, sid+"-"+schedID, "student", "x", now)
		exec(`INSERT INTO schedule_students (schedule_id,student_id) VALUES (?,?)`, schedID, sid)
	}
}

func TestMarkUpserts(t *testing.T) {
	s, dbh := newStore(t)
	seedSitting(t, dbh, "sched-1", "Maths", "2026-03-10", "stu-1")
	ctx := context.Background()

	if err := s.Mark(ctx, attendance.Record{ScheduleID: "sched-1", StudentID: "stu-1", Attended: false}); err != nil {
		t.Fatal(err)
	}
	// re-marking flips the earlier record
	if err := s.Mark(ctx, attendance.Record{ScheduleID: "sched-1", StudentID: "stu-1", Attended: true, MarkedBy: "admin-1"}); err != nil {
		t.Fatal(err)
	}
	recs, err := s.ListBySchedule(ctx, "sched-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if !recs[0].Attended || recs[0].MarkedBy != "admin-1" {
		t.Errorf("record = %+v, want attended by admin-1", recs[0])
	}
}

func TestPercentage(t *testing.T) {
	s, dbh := newStore(t)
	seedSitting(t, dbh, "sched-1", "Maths", "2026-03-10", "stu-1")
	seedSitting(t, dbh, "sched-2", "Physics", "2026-03-12", "stu-1")
	ctx := context.Background()

	pct, err := s.Percentage(ctx, "stu-1")
	if err != nil {
		t.Fatal(err)
	}
	if pct != 0 {
		t.Errorf("no records: pct = %v, want 0", pct)
	}

	mustMark(t, s, "sched-1", "stu-1", true)
	mustMark(t, s, "sched-2", "stu-1", false)
	pct, err = s.Percentage(ctx, "stu-1")
	if err != nil {
		t.Fatal(err)
	}
	if pct != 50 {
		t.Errorf("pct = %v, want 50", pct)
	}
}

func TestStudentRowsFilterAndOrder(t *testing.T) {
	s, dbh := newStore(t)
	seedSitting(t, dbh, "sched-old", "History", "2025-12-01", "stu-1")
	seedSitting(t, dbh, "sched-new", "Maths", "2026-03-10", "stu-1")
	mustMark(t, s, "sched-old", "stu-1", true)
	mustMark(t, s, "sched-new", "stu-1", false)

	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	rows, err := s.StudentRows(context.Background(), "stu-1", attendance.FilterAll, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("all: got %d rows, want 2", len(rows))
	}
	if rows[0].Date != "2026-03-10" {
		t.Errorf("rows must be newest first, got %s", rows[0].Date)
	}
	if rows[0].Subject != "Maths" || rows[0].TimeRange != "09:00 - 11:00" {
		t.Errorf("row = %+v", rows[0])
	}

	rows, err = s.StudentRows(context.Background(), "stu-1", attendance.FilterLast30, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Date != "2026-03-10" {
		t.Errorf("last30 must drop the December sitting, got %+v", rows)
	}
}

func TestScheduleReportCounts(t *testing.T) {
	s, dbh := newStore(t)
	seedSitting(t, dbh, "sched-1", "Maths", "2026-03-10", "stu-1", "stu-2", "stu-3")
	mustMark(t, s, "sched-1", "stu-1", true)
	mustMark(t, s, "sched-1", "stu-2", false)

	rep, err := s.Report(context.Background(), "sched-1")
	if err != nil {
		t.Fatal(err)
	}
	if rep.TotalStudents != 3 || rep.Present != 1 || rep.Absent != 1 || rep.Unmarked != 1 {
		t.Errorf("report = %+v, want 3/1/1/1", rep)
	}
}

func TestRegisterFromResults(t *testing.T) {
	s, dbh := newStore(t)
	seedSitting(t, dbh, "sched-1", "Maths", "2026-03-10", "stu-1", "stu-2")
	// only stu-1 submitted
	if _, err := dbh.Exec(`INSERT INTO exam_results
		(schedule_id,student_id,total_marks,marks_obtained,percentage,status,graded_at)
		VALUES ('sched-1','stu-1',10,8,80,'passed',?)`, time.Now().Unix()); err != nil {
		t.Fatal(err)
	}

	recs, err := s.RegisterFromResults(context.Background(), "sched-1", "admin-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	byStudent := map[string]bool{}
	for _, r := range recs {
		byStudent[r.StudentID] = r.Attended
	}
	if !byStudent["stu-1"] || byStudent["stu-2"] {
		t.Errorf("attendance = %v, want stu-1 present, stu-2 absent", byStudent)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := attendance.WriteCSV(&buf, []attendance.Row{
		{Date: "2026-03-10", Subject: "Maths", TimeRange: "09:00 - 11:00", Attended: true},
		{Date: "2026-03-12", Subject: "Physics", TimeRange: "14:00 - 16:00", Attended: false},
	})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0] != "Date,Subject,Time,Status" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2026-03-10,Maths,09:00 - 11:00,Present" {
		t.Errorf("row = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "Absent") {
		t.Errorf("row = %q, want Absent status", lines[2])
	}
}

func mustMark(t *testing.T, s *attendance.SQLStore, schedID, studentID string, attended bool) {
	t.Helper()
	if err := s.Mark(context.Background(), attendance.Record{
		ScheduleID: schedID, StudentID: studentID, Attended: attended,
	}); err != nil {
		t.Fatalf("mark: %v", err)
	}
}
