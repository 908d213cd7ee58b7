package exam

import (
	"errors"
	"testing"
	"time"
)

func testSchedule() Schedule {
	return Schedule{
		ID:            "sched-1",
		PaperID:       "paper-1",
		ScheduledDate: "2026-03-10",
		StartTime:     "09:00",
		EndTime:       "11:00",
		Status:        SchedulePublished,
		StudentIDs:    []string{"stu-1", "stu-2"},
	}
}

func TestWindowUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skipf("zone db unavailable: %v", err)
	}
	start, end, err := testSchedule().Window(loc)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if got := start.In(time.UTC).Format("15:04"); got != "03:30" {
		t.Errorf("start in UTC = %s, want 03:30", got)
	}
	if !end.After(start) {
		t.Error("end must follow start")
	}
}

func TestWindowNilLocationFailsClosed(t *testing.T) {
	if _, _, err := testSchedule().Window(nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
	if testSchedule().Live(time.Now(), nil) {
		t.Error("nil location must read as not live")
	}
}

func TestCheckEligibility(t *testing.T) {
	s := testSchedule()
	inside := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	before := time.Date(2026, 3, 10, 8, 59, 0, 0, time.UTC)
	after := time.Date(2026, 3, 10, 11, 1, 0, 0, time.UTC)

	if err := CheckEligibility(s, "stu-1", inside, time.UTC); err != nil {
		t.Errorf("assigned student inside window: %v", err)
	}
	if err := CheckEligibility(s, "stu-9", inside, time.UTC); !errors.Is(err, ErrNotEligible) {
		t.Errorf("unassigned student: got %v, want ErrNotEligible", err)
	}
	if err := CheckEligibility(s, "stu-1", before, time.UTC); !errors.Is(err, ErrNotEligible) {
		t.Errorf("before window: got %v, want ErrNotEligible", err)
	}
	if err := CheckEligibility(s, "stu-1", after, time.UTC); !errors.Is(err, ErrNotEligible) {
		t.Errorf("after window: got %v, want ErrNotEligible", err)
	}
}

func TestWindowBoundariesInclusive(t *testing.T) {
	s := testSchedule()
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC)
	if !s.Live(start, time.UTC) {
		t.Error("start instant must be live")
	}
	if !s.Live(end, time.UTC) {
		t.Error("end instant must be live")
	}
}

func TestEffectiveTotal(t *testing.T) {
	p := QuestionPaper{TotalMarks: 100, Questions: []Question{{Marks: 5}, {Marks: 5}}}
	if got := p.EffectiveTotal(); got != 10 {
		t.Errorf("sum of question marks = %d, want 10", got)
	}
	empty := QuestionPaper{TotalMarks: 100}
	if got := empty.EffectiveTotal(); got != 100 {
		t.Errorf("empty paper falls back to declared total: got %d, want 100", got)
	}
}
