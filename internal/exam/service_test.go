package exam_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/campuskit/examportal/internal/audit"
	"github.com/campuskit/examportal/internal/db"
	"github.com/campuskit/examportal/internal/exam"
	"github.com/campuskit/examportal/internal/grading"

	_ "modernc.org/sqlite" // driver for "sqlite"
)

// duringExam falls inside every window seeded by newEnv.
var duringExam = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

type env struct {
	db     *sql.DB
	store  *exam.SQLStore
	events *audit.EventRepo
	svc    *exam.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dbh, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	if err := db.EnsureSchema(context.Background(), dbh, db.DriverSQLite); err != nil {
		t.Fatalf("schema: %v", err)
	}
	store := exam.NewSQLStore(dbh)
	events := audit.NewEventRepo(dbh)
	return &env{
		db:     dbh,
		store:  store,
		events: events,
		svc:    exam.NewService(store, grading.NewDefaultGrader(), events, time.UTC),
	}
}

func (e *env) seedStudent(t *testing.T, id string) {
	t.Helper()
	if _, err := e.db.Exec(`INSERT INTO users (id,username,role,password_hash,created_at)
		VALUES (?,?,?,?,?)`, id, id, "student", "x", time.Now().Unix()); err != nil {
		t.Fatalf("seed student: %v", err)
	}
}

// seedExam builds a subject, the given questions, a paper with passing_marks
// 50, and a live schedule assigned to stu-1. Returns the schedule and the
// stored questions in paper order.
func (e *env) seedExam(t *testing.T, questions []exam.Question) (exam.Schedule, []exam.Question) {
	t.Helper()
	ctx := context.Background()
	e.seedStudent(t, "stu-1")
	sub, err := e.store.PutSubject(ctx, exam.Subject{Code: "CS101", Name: "Programming", Credits: 3})
	if err != nil {
		t.Fatalf("seed subject: %v", err)
	}
	ids := make([]string, 0, len(questions))
	stored := make([]exam.Question, 0, len(questions))
	for _, q := range questions {
		q.SubjectID = sub.ID
		got, err := e.store.PutQuestion(ctx, q)
		if err != nil {
			t.Fatalf("seed question: %v", err)
		}
		ids = append(ids, got.ID)
		stored = append(stored, got)
	}
	paper, err := e.store.PutPaper(ctx, exam.QuestionPaper{
		Title:           "Midterm",
		SubjectID:       sub.ID,
		DurationMinutes: 60,
		PassingMarks:    50,
	}, ids)
	if err != nil {
		t.Fatalf("seed paper: %v", err)
	}
	sched, err := e.store.PutSchedule(ctx, exam.Schedule{
		PaperID:       paper.ID,
		ScheduledDate: "2026-03-10",
		StartTime:     "09:00",
		EndTime:       "11:00",
		Status:        exam.SchedulePublished,
		StudentIDs:    []string{"stu-1"},
	})
	if err != nil {
		t.Fatalf("seed schedule: %v", err)
	}
	return sched, stored
}

func mcq(text, correct string, marks int) exam.Question {
	return exam.Question{
		Text: text, Type: exam.QuestionMCQ, Marks: marks,
		OptionA: "A", OptionB: "B", OptionC: "C", OptionD: "D",
		CorrectAnswer: correct,
	}
}

func TestSubmitAutoGradesMCQ(t *testing.T) {
	e := newEnv(t)
	sched, qs := e.seedExam(t, []exam.Question{
		mcq("q one", "a", 5),
		mcq("q two", "c", 5),
	})

	answers := map[string]string{qs[0].ID: "a", qs[1].ID: "b"} // one right, one wrong
	res, err := e.svc.Submit(context.Background(), sched.ID, "stu-1", answers, duringExam)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.TotalMarks != 10 || res.MarksObtained != 5 {
		t.Errorf("marks = %d/%d, want 5/10", res.MarksObtained, res.TotalMarks)
	}
	if res.Percentage != 50 {
		t.Errorf("percentage = %v, want 50", res.Percentage)
	}
	if res.Status != exam.ResultPassed {
		t.Errorf("status = %q, want passed (threshold is inclusive)", res.Status)
	}
	if res.Source != exam.SourceAuto {
		t.Errorf("source = %q, want auto", res.Source)
	}

	_, b, responses, err := e.svc.ResultWithBreakdown(context.Background(), sched.ID, "stu-1")
	if err != nil {
		t.Fatalf("breakdown: %v", err)
	}
	if b.Correct != 1 || b.Incorrect != 1 || b.Skipped != 0 {
		t.Errorf("breakdown = %+v, want 1 correct, 1 incorrect", b)
	}
	if len(responses) != 2 {
		t.Errorf("stored %d responses, want 2", len(responses))
	}
}

func TestSubmitMissingAnswersScoreZero(t *testing.T) {
	e := newEnv(t)
	sched, qs := e.seedExam(t, []exam.Question{
		mcq("q one", "a", 5),
		mcq("q two", "c", 5),
	})

	res, err := e.svc.Submit(context.Background(), sched.ID, "stu-1",
		map[string]string{qs[0].ID: "a"}, duringExam)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.MarksObtained != 5 {
		t.Errorf("marks = %d, want 5 (unanswered grades as zero)", res.MarksObtained)
	}
	responses, err := e.store.ListResponses(context.Background(), sched.ID, "stu-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(responses) != 2 {
		t.Errorf("stored %d responses, want 2 (one per paper question)", len(responses))
	}
}

func TestResubmitOverwrites(t *testing.T) {
	e := newEnv(t)
	sched, qs := e.seedExam(t, []exam.Question{mcq("q one", "a", 10)})
	ctx := context.Background()

	if _, err := e.svc.Submit(ctx, sched.ID, "stu-1", map[string]string{qs[0].ID: "b"}, duringExam); err != nil {
		t.Fatal(err)
	}
	res, err := e.svc.Submit(ctx, sched.ID, "stu-1", map[string]string{qs[0].ID: "a"}, duringExam)
	if err != nil {
		t.Fatal(err)
	}
	if res.Percentage != 100 || res.Status != exam.ResultPassed {
		t.Errorf("resubmission must recompute from scratch: got %v %q", res.Percentage, res.Status)
	}
}

func TestSubmitEligibility(t *testing.T) {
	e := newEnv(t)
	sched, qs := e.seedExam(t, []exam.Question{mcq("q one", "a", 5)})
	ctx := context.Background()
	answers := map[string]string{qs[0].ID: "a"}

	e.seedStudent(t, "stu-2") // exists but not assigned
	if _, err := e.svc.Submit(ctx, sched.ID, "stu-2", answers, duringExam); !errors.Is(err, exam.ErrNotEligible) {
		t.Errorf("unassigned: got %v, want ErrNotEligible", err)
	}
	late := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if _, err := e.svc.Submit(ctx, sched.ID, "stu-1", answers, late); !errors.Is(err, exam.ErrNotEligible) {
		t.Errorf("after window: got %v, want ErrNotEligible", err)
	}
	if _, err := e.svc.Submit(ctx, "no-such", "stu-1", answers, duringExam); !errors.Is(err, exam.ErrNotFound) {
		t.Errorf("unknown schedule: got %v, want ErrNotFound", err)
	}
}

func TestDescriptiveContributesZeroUntilRegraded(t *testing.T) {
	e := newEnv(t)
	sched, qs := e.seedExam(t, []exam.Question{
		mcq("q one", "a", 5),
		{Text: "explain", Type: exam.QuestionDescriptive, Marks: 5},
	})
	ctx := context.Background()

	res, err := e.svc.Submit(ctx, sched.ID, "stu-1",
		map[string]string{qs[0].ID: "a", qs[1].ID: "long prose"}, duringExam)
	if err != nil {
		t.Fatal(err)
	}
	// Initial status is the threshold comparison with the descriptive answer
	// counting as zero: 5/10 meets the 50% bar.
	if res.MarksObtained != 5 || res.Percentage != 50 {
		t.Errorf("initial result = %d marks / %v%%, want 5 / 50", res.MarksObtained, res.Percentage)
	}
	if res.Status != exam.ResultPassed {
		t.Fatalf("status = %q, want passed at the threshold", res.Status)
	}

	responses, err := e.store.ListResponses(ctx, sched.ID, "stu-1")
	if err != nil {
		t.Fatal(err)
	}
	ungraded := 0
	for _, r := range responses {
		if r.MarksObtained == nil {
			ungraded++
		}
	}
	if ungraded != 1 {
		t.Errorf("%d ungraded responses, want 1 (the descriptive answer keeps nil marks)", ungraded)
	}
	counts, err := e.store.ListSubmissionCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(counts) != 1 || counts[0].Submitted != 1 || counts[0].Pending != 1 {
		t.Errorf("counts = %+v, want 1 submitted / 1 pending manual grading", counts)
	}

	res, err = e.svc.Regrade(ctx, sched.ID, "stu-1", map[string]int{qs[1].ID: 3}, "", "admin-1", duringExam)
	if err != nil {
		t.Fatalf("regrade: %v", err)
	}
	if res.MarksObtained != 8 || res.Percentage != 80 {
		t.Errorf("got %d marks / %v%%, want 8 / 80", res.MarksObtained, res.Percentage)
	}
	if res.Status != exam.ResultPassed || res.Source != exam.SourceManual {
		t.Errorf("status/source = %q/%q, want passed/manual", res.Status, res.Source)
	}

	trail, err := e.events.ListByKey(ctx, sched.ID+"|stu-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(trail) != 2 {
		t.Fatalf("audit trail has %d events, want 2", len(trail))
	}
	if trail[0].Type != audit.EventResultAutoGraded || trail[1].Type != audit.EventResultManualGraded {
		t.Errorf("trail types = %q,%q", trail[0].Type, trail[1].Type)
	}
	if trail[1].Actor != "admin-1" {
		t.Errorf("manual event actor = %q, want admin-1", trail[1].Actor)
	}

	counts, err = e.store.ListSubmissionCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[0].Pending != 0 || counts[0].Graded != 1 {
		t.Errorf("counts after regrade = %+v, want 0 pending / 1 graded", counts)
	}
}

func TestZeroTotalPaperFailsWithoutDivision(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.seedStudent(t, "stu-1")
	sub, err := e.store.PutSubject(ctx, exam.Subject{Code: "CS101", Name: "Programming", Credits: 3})
	if err != nil {
		t.Fatal(err)
	}
	// A questionless paper with a declared total of 0 can only come from a
	// direct row; the store coerces a 0 declared total to 100 on write.
	now := time.Now().Unix()
	if _, err := e.db.Exec(`INSERT INTO question_papers
		(id,title,subject_id,total_marks,duration_minutes,passing_marks,created_at,updated_at)
		VALUES ('paper-z','Empty',?,0,60,50,?,?)`, sub.ID, now, now); err != nil {
		t.Fatalf("seed paper: %v", err)
	}
	sched, err := e.store.PutSchedule(ctx, exam.Schedule{
		PaperID:       "paper-z",
		ScheduledDate: "2026-03-10",
		StartTime:     "09:00",
		EndTime:       "11:00",
		Status:        exam.SchedulePublished,
		StudentIDs:    []string{"stu-1"},
	})
	if err != nil {
		t.Fatal(err)
	}

	res, err := e.svc.Submit(ctx, sched.ID, "stu-1", nil, duringExam)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.TotalMarks != 0 || res.Percentage != 0 {
		t.Errorf("result = %d total / %v%%, want 0 / 0", res.TotalMarks, res.Percentage)
	}
	if res.Status != exam.ResultFailed {
		t.Errorf("status = %q, want failed (a 0 total can never pass)", res.Status)
	}
}

func TestRegradeForcedStatusKeepsPercentage(t *testing.T) {
	e := newEnv(t)
	sched, qs := e.seedExam(t, []exam.Question{mcq("q one", "a", 10)})
	ctx := context.Background()

	if _, err := e.svc.Submit(ctx, sched.ID, "stu-1", map[string]string{qs[0].ID: "a"}, duringExam); err != nil {
		t.Fatal(err)
	}
	res, err := e.svc.Regrade(ctx, sched.ID, "stu-1", nil, exam.ResultFailed, "admin-1", duringExam)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != exam.ResultFailed {
		t.Errorf("status = %q, want forced failed", res.Status)
	}
	if res.Percentage != 100 {
		t.Errorf("percentage = %v, want 100 preserved alongside the forced status", res.Percentage)
	}
	if res.Source != exam.SourceManual {
		t.Errorf("source = %q, want manual", res.Source)
	}
}

func TestRegradeValidation(t *testing.T) {
	e := newEnv(t)
	sched, qs := e.seedExam(t, []exam.Question{mcq("q one", "a", 10)})
	ctx := context.Background()

	if _, err := e.svc.Regrade(ctx, sched.ID, "stu-1", nil, "", "admin-1", duringExam); !errors.Is(err, exam.ErrNotFound) {
		t.Errorf("regrade before any submission: got %v, want ErrNotFound", err)
	}
	if _, err := e.svc.Submit(ctx, sched.ID, "stu-1", map[string]string{qs[0].ID: "a"}, duringExam); err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.Regrade(ctx, sched.ID, "stu-1", nil, "maybe", "admin-1", duringExam); !errors.Is(err, exam.ErrValidation) {
		t.Errorf("bad final status: got %v, want ErrValidation", err)
	}
	if _, err := e.svc.Regrade(ctx, sched.ID, "stu-1", map[string]int{"other-q": 5}, "", "admin-1", duringExam); !errors.Is(err, exam.ErrValidation) {
		t.Errorf("mark for question off the paper: got %v, want ErrValidation", err)
	}
}

func TestPaperForStudentHidesAnswers(t *testing.T) {
	e := newEnv(t)
	sched, _ := e.seedExam(t, []exam.Question{mcq("q one", "a", 5)})

	paper, err := e.svc.PaperForStudent(context.Background(), sched.ID, "stu-1", duringExam)
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range paper.Questions {
		if q.CorrectAnswer != "" {
			t.Errorf("question %s leaks its correct answer", q.ID)
		}
	}
}
