package reports

import (
	"context"
)

// Weights for the overall performance score.
const (
	weightExam       = 0.60
	weightProject    = 0.25
	weightAttendance = 0.15
)

type Performance struct {
	AverageExamScore     float64 `json:"average_exam_score"`
	ProjectScore         float64 `json:"project_score"`
	AttendancePercentage float64 `json:"attendance_percentage"`
	OverallScore         float64 `json:"overall_score"`
	OverallPerformance   string  `json:"overall_performance"`
}

// ExamScores and AttendanceScore are the narrow read surfaces the aggregator
// needs from the exam and attendance stores.
type ExamScores interface {
	Percentages(ctx context.Context, studentID string) ([]float64, error)
}

type AttendanceScore interface {
	Percentage(ctx context.Context, studentID string) (float64, error)
}

type ProjectScores interface {
	ListByStudent(ctx context.Context, studentID string) ([]ProjectReport, error)
}

// Aggregator computes a student's overall performance summary on demand;
// nothing is persisted.
type Aggregator struct {
	exams      ExamScores
	projects   ProjectScores
	attendance AttendanceScore
}

func NewAggregator(exams ExamScores, projects ProjectScores, attendance AttendanceScore) *Aggregator {
	return &Aggregator{exams: exams, projects: projects, attendance: attendance}
}

// Overall is the weighted combination of exam, project, and attendance
// scores. The project term averages raw marks_obtained over graded reports
// (nil as 0) and enters the weighted sum as-is, matching the historical
// behavior; reports graded out of a total other than 100 therefore skew the
// result.
func (a *Aggregator) Overall(ctx context.Context, studentID string) (Performance, error) {
	var p Performance

	pcts, err := a.exams.Percentages(ctx, studentID)
	if err != nil {
		return Performance{}, err
	}
	if len(pcts) > 0 {
		sum := 0.0
		for _, v := range pcts {
			sum += v
		}
		p.AverageExamScore = sum / float64(len(pcts))
	}

	projects, err := a.projects.ListByStudent(ctx, studentID)
	if err != nil {
		return Performance{}, err
	}
	graded := 0
	marks := 0
	for _, pr := range projects {
		if pr.Status != ProjectGraded {
			continue
		}
		graded++
		if pr.MarksObtained != nil {
			marks += *pr.MarksObtained
		}
	}
	if graded > 0 {
		p.ProjectScore = float64(marks) / float64(graded)
	}

	p.AttendancePercentage, err = a.attendance.Percentage(ctx, studentID)
	if err != nil {
		return Performance{}, err
	}

	p.OverallScore = p.AverageExamScore*weightExam +
		p.ProjectScore*weightProject +
		p.AttendancePercentage*weightAttendance
	p.OverallPerformance = Classify(p.OverallScore)
	return p, nil
}

// Classify maps an overall score onto the performance bands, each inclusive
// of its lower bound.
func Classify(score float64) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 80:
		return "good"
	case score >= 70:
		return "average"
	case score >= 60:
		return "pass"
	default:
		return "fail"
	}
}
