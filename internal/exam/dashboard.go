package exam

import (
	"context"
	"strconv"
	"time"
)

// ScheduleSummary is the student-facing view of one scheduled sitting.
type ScheduleSummary struct {
	ID         string   `json:"id"`
	Subject    string   `json:"subject"`
	Date       string   `json:"date"`       // YYYY-MM-DD
	TimeRange  string   `json:"time_range"` // "HH:MM - HH:MM"
	Duration   string   `json:"duration"`
	Marks      int      `json:"marks"`
	Live       bool     `json:"is_live"`
	Score      *int     `json:"score,omitempty"`
	Percentage *float64 `json:"percentage,omitempty"`
	Status     string   `json:"status"` // result status, "pending" when unsubmitted
}

type StudentDashboard struct {
	Upcoming           []ScheduleSummary `json:"upcoming_exams"`
	Past               []ScheduleSummary `json:"past_exams"`
	TotalExams         int               `json:"total_exams"`
	ProgressPercentage int               `json:"progress_percentage"`
}

// Dashboard categorises a student's assigned schedules into upcoming and past
// relative to now. A schedule still counts as upcoming while its window has
// not ended, so an ongoing exam never drops off the list early.
func (s *Service) Dashboard(ctx context.Context, studentID string, now time.Time) (StudentDashboard, error) {
	schedules, err := s.store.ListSchedules(ctx, ScheduleFilter{StudentID: studentID})
	if err != nil {
		return StudentDashboard{}, err
	}

	var d StudentDashboard
	d.Upcoming = []ScheduleSummary{}
	d.Past = []ScheduleSummary{}
	for _, sc := range schedules {
		sum, err := s.summarize(ctx, sc, studentID, now)
		if err != nil {
			return StudentDashboard{}, err
		}
		_, end, werr := sc.Window(s.loc)
		if werr == nil && end.Before(now) {
			d.Past = append(d.Past, sum)
		} else {
			d.Upcoming = append(d.Upcoming, sum)
		}
	}
	// ListSchedules orders by date+start; past reads most recent first.
	for i, j := 0, len(d.Past)-1; i < j; i, j = i+1, j-1 {
		d.Past[i], d.Past[j] = d.Past[j], d.Past[i]
	}
	d.TotalExams = len(schedules)
	if d.TotalExams > 0 {
		d.ProgressPercentage = len(d.Past) * 100 / d.TotalExams
	}
	return d, nil
}

func (s *Service) summarize(ctx context.Context, sc Schedule, studentID string, now time.Time) (ScheduleSummary, error) {
	paper, err := s.store.GetPaper(ctx, sc.PaperID)
	if err != nil {
		return ScheduleSummary{}, err
	}
	subject, err := s.store.GetSubject(ctx, paper.SubjectID)
	if err != nil {
		return ScheduleSummary{}, err
	}
	sum := ScheduleSummary{
		ID:        sc.ID,
		Subject:   subject.Name,
		Date:      sc.ScheduledDate,
		TimeRange: sc.StartTime + " - " + sc.EndTime,
		Duration:  durationLabel(paper.DurationMinutes),
		Marks:     paper.EffectiveTotal(),
		Live:      sc.Live(now, s.loc),
		Status:    ResultPending,
	}
	if r, err := s.store.GetResult(ctx, sc.ID, studentID); err == nil {
		score := r.MarksObtained
		pct := r.Percentage
		sum.Score = &score
		sum.Percentage = &pct
		sum.Status = r.Status
	}
	return sum, nil
}

func durationLabel(minutes int) string {
	return strconv.Itoa(minutes) + " min"
}
