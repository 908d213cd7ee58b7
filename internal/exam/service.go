package exam

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campuskit/examportal/internal/audit"
	"github.com/campuskit/examportal/internal/grading"
)

// Service owns the exam lifecycle: eligibility, response recording, automatic
// grading on submit, and admin re-grading. Each call runs within one request
// scope; idempotence comes from the store's keyed upserts, not locking.
type Service struct {
	store  Store
	grader grading.Grader
	events *audit.EventRepo
	loc    *time.Location
}

func NewService(store Store, grader grading.Grader, events *audit.EventRepo, loc *time.Location) *Service {
	return &Service{store: store, grader: grader, events: events, loc: loc}
}

// PaperForStudent returns the schedule's paper for an eligible student with
// correct answers stripped.
func (s *Service) PaperForStudent(ctx context.Context, scheduleID, studentID string, now time.Time) (QuestionPaper, error) {
	sched, err := s.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return QuestionPaper{}, err
	}
	if err := CheckEligibility(sched, studentID, now, s.loc); err != nil {
		return QuestionPaper{}, err
	}
	paper, err := s.store.GetPaper(ctx, sched.PaperID)
	if err != nil {
		return QuestionPaper{}, err
	}
	for i := range paper.Questions {
		paper.Questions[i].CorrectAnswer = ""
	}
	return paper, nil
}

// Submit records a student's answers for a schedule and produces the initial
// auto-graded result. Re-entrant: a repeat submission overwrites responses
// and recomputes the result from scratch.
func (s *Service) Submit(ctx context.Context, scheduleID, studentID string, answers map[string]string, now time.Time) (Result, error) {
	sched, err := s.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return Result{}, err
	}
	if err := CheckEligibility(sched, studentID, now, s.loc); err != nil {
		return Result{}, err
	}
	paper, err := s.store.GetPaper(ctx, sched.PaperID)
	if err != nil {
		return Result{}, err
	}

	obtained := 0
	for _, q := range paper.Questions {
		answer := answers[q.ID] // missing answer grades as empty
		res, err := s.grader.Grade(ctx, grading.Q{Type: q.Type, Marks: q.Marks, CorrectAnswer: q.CorrectAnswer}, answer)
		if err != nil {
			return Result{}, err
		}
		r := Response{
			ScheduleID: scheduleID,
			StudentID:  studentID,
			QuestionID: q.ID,
			Answer:     answer,
			AnsweredAt: now.Unix(),
		}
		// Descriptive answers keep nil marks until an admin grades them;
		// they contribute zero to the initial result.
		if !res.NeedsManual {
			m := res.AutoMarks
			r.MarksObtained = &m
			obtained += m
		}
		if err := s.store.SaveResponse(ctx, r); err != nil {
			return Result{}, err
		}
	}

	result := s.finalize(sched, paper, studentID, obtained, "", "", now)
	if err := s.store.UpsertResult(ctx, result); err != nil {
		return Result{}, err
	}
	s.appendEvent(ctx, audit.EventResultAutoGraded, studentID, result)
	return result, nil
}

// Regrade applies an admin's per-question mark overrides, resums every
// currently awarded mark, and recomputes the result. forceStatus, when
// "passed" or "failed", overrides the threshold comparison and is terminal;
// the recomputed percentage is persisted unchanged either way.
func (s *Service) Regrade(ctx context.Context, scheduleID, studentID string, marks map[string]int, forceStatus, adminID string, now time.Time) (Result, error) {
	switch forceStatus {
	case "", ResultPassed, ResultFailed:
	default:
		return Result{}, fmt.Errorf("%w: final status must be passed or failed", ErrValidation)
	}
	sched, err := s.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return Result{}, err
	}
	if _, err := s.store.GetResult(ctx, scheduleID, studentID); err != nil {
		return Result{}, err
	}
	paper, err := s.store.GetPaper(ctx, sched.PaperID)
	if err != nil {
		return Result{}, err
	}
	onPaper := make(map[string]bool, len(paper.Questions))
	for _, q := range paper.Questions {
		onPaper[q.ID] = true
	}
	for qid, m := range marks {
		if !onPaper[qid] {
			return Result{}, fmt.Errorf("%w: question does not belong to this exam", ErrValidation)
		}
		if err := s.store.SetResponseMarks(ctx, scheduleID, studentID, qid, m); err != nil {
			return Result{}, err
		}
	}

	responses, err := s.store.ListResponses(ctx, scheduleID, studentID)
	if err != nil {
		return Result{}, err
	}
	obtained := 0
	for _, r := range responses {
		if r.MarksObtained != nil {
			obtained += *r.MarksObtained
		}
	}

	result := s.finalize(sched, paper, studentID, obtained, forceStatus, adminID, now)
	if err := s.store.UpsertResult(ctx, result); err != nil {
		return Result{}, err
	}
	s.appendEvent(ctx, audit.EventResultManualGraded, adminID, result)
	return result, nil
}

// finalize computes the full result tuple. Percentage is defined as 0 for an
// empty paper; a 0 total is always a fail regardless of the threshold. Status
// is the threshold comparison unless an admin forces it: ungraded descriptive
// answers contribute zero rather than holding the result open.
func (s *Service) finalize(sched Schedule, paper QuestionPaper, studentID string, obtained int, forceStatus, gradedBy string, now time.Time) Result {
	total := paper.EffectiveTotal()
	pct := 0.0
	if total > 0 {
		pct = float64(obtained) / float64(total) * 100
	}
	status := ResultFailed
	if total > 0 && pct >= float64(paper.PassingMarks) {
		status = ResultPassed
	}
	source := SourceAuto
	if forceStatus != "" {
		status = forceStatus
		source = SourceManual
	} else if gradedBy != "" {
		source = SourceManual
	}
	return Result{
		ScheduleID:    sched.ID,
		StudentID:     studentID,
		TotalMarks:    total,
		MarksObtained: obtained,
		Percentage:    pct,
		Status:        status,
		GradedAt:      now.Unix(),
		GradedBy:      gradedBy,
		Source:        source,
	}
}

// ResultWithBreakdown returns the stored result plus a per-question
// performance summary. Ungraded responses and unanswered questions count as
// skipped; a response earning full marks counts as correct.
func (s *Service) ResultWithBreakdown(ctx context.Context, scheduleID, studentID string) (Result, Breakdown, []Response, error) {
	result, err := s.store.GetResult(ctx, scheduleID, studentID)
	if err != nil {
		return Result{}, Breakdown{}, nil, err
	}
	sched, err := s.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return Result{}, Breakdown{}, nil, err
	}
	paper, err := s.store.GetPaper(ctx, sched.PaperID)
	if err != nil {
		return Result{}, Breakdown{}, nil, err
	}
	responses, err := s.store.ListResponses(ctx, scheduleID, studentID)
	if err != nil {
		return Result{}, Breakdown{}, nil, err
	}

	marksByQ := make(map[string]int, len(paper.Questions))
	for _, q := range paper.Questions {
		marksByQ[q.ID] = q.Marks
	}
	b := Breakdown{TotalQuestions: len(paper.Questions), Attempted: len(responses)}
	for _, r := range responses {
		switch {
		case r.MarksObtained == nil:
			b.Skipped++
		case *r.MarksObtained >= marksByQ[r.QuestionID]:
			b.Correct++
		default:
			b.Incorrect++
		}
	}
	if b.TotalQuestions > b.Attempted {
		b.Skipped += b.TotalQuestions - b.Attempted
	}
	if b.TotalQuestions > 0 {
		b.CorrectPercent = b.Correct * 100 / b.TotalQuestions
		b.IncorrectPercent = b.Incorrect * 100 / b.TotalQuestions
		b.SkippedPercent = b.Skipped * 100 / b.TotalQuestions
	}
	return result, b, responses, nil
}

func (s *Service) appendEvent(ctx context.Context, typ, actor string, r Result) {
	if s.events == nil {
		return
	}
	data, _ := json.Marshal(r)
	// Audit failures are logged by the repo caller chain; they never fail the
	// grading write itself.
	_ = s.events.Append(ctx, audit.Event{
		Type:     typ,
		Key:      r.ScheduleID + "|" + r.StudentID,
		Actor:    actor,
		DataJSON: string(data),
	})
}
