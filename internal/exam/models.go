package exam

import "errors"

// Error taxonomy. Handlers map these onto HTTP statuses; everything else is a
// storage failure surfaced as 500.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrNotEligible = errors.New("not eligible")
)

const (
	QuestionMCQ         = "mcq"
	QuestionDescriptive = "descriptive"
)

const (
	ScheduleDraft     = "draft"
	SchedulePublished = "published"
	ScheduleOngoing   = "ongoing"
	ScheduleCompleted = "completed"
)

const (
	ResultPassed  = "passed"
	ResultFailed  = "failed"
	ResultPending = "pending"
)

// Grading provenance for a result row.
const (
	SourceAuto   = "auto"
	SourceManual = "manual"
)

type Subject struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Credits     int    `json:"credits"`
	CreatedAt   int64  `json:"created_at,omitempty"`
	UpdatedAt   int64  `json:"updated_at,omitempty"`
}

type Question struct {
	ID            string `json:"id"`
	SubjectID     string `json:"subject_id"`
	Text          string `json:"question_text"`
	Type          string `json:"question_type"` // mcq | descriptive
	Marks         int    `json:"marks"`
	OptionA       string `json:"option_a,omitempty"`
	OptionB       string `json:"option_b,omitempty"`
	OptionC       string `json:"option_c,omitempty"`
	OptionD       string `json:"option_d,omitempty"`
	CorrectAnswer string `json:"correct_answer,omitempty"` // a|b|c|d, hidden from students
	CreatedBy     string `json:"created_by,omitempty"`
	CreatedAt     int64  `json:"created_at,omitempty"`
	UpdatedAt     int64  `json:"updated_at,omitempty"`
}

// ValidMCQ reports whether an MCQ question carries all four options and a
// correct-answer marker. Non-MCQ questions are always valid.
func (q Question) ValidMCQ() bool {
	if q.Type != QuestionMCQ {
		return true
	}
	return q.OptionA != "" && q.OptionB != "" && q.OptionC != "" &&
		q.OptionD != "" && q.CorrectAnswer != ""
}

type QuestionPaper struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	SubjectID       string     `json:"subject_id"`
	TotalMarks      int        `json:"total_marks"` // declared; see EffectiveTotal
	DurationMinutes int        `json:"duration_minutes"`
	PassingMarks    int        `json:"passing_marks"` // percentage threshold 0-100
	Instructions    string     `json:"instructions,omitempty"`
	CreatedBy       string     `json:"created_by,omitempty"`
	CreatedAt       int64      `json:"created_at,omitempty"`
	UpdatedAt       int64      `json:"updated_at,omitempty"`
	Questions       []Question `json:"questions,omitempty"`
}

// EffectiveTotal is the sum of constituent question marks when positive,
// falling back to the declared total_marks field.
func (p QuestionPaper) EffectiveTotal() int {
	sum := 0
	for _, q := range p.Questions {
		sum += q.Marks
	}
	if sum > 0 {
		return sum
	}
	return p.TotalMarks
}

type Schedule struct {
	ID            string   `json:"id"`
	PaperID       string   `json:"paper_id"`
	ScheduledDate string   `json:"scheduled_date"` // YYYY-MM-DD
	StartTime     string   `json:"start_time"`     // HH:MM
	EndTime       string   `json:"end_time"`       // HH:MM, same day
	Status        string   `json:"status"`
	CreatedAt     int64    `json:"created_at,omitempty"`
	UpdatedAt     int64    `json:"updated_at,omitempty"`
	StudentIDs    []string `json:"student_ids,omitempty"`
}

type Response struct {
	ScheduleID    string `json:"schedule_id"`
	StudentID     string `json:"student_id"`
	QuestionID    string `json:"question_id"`
	Answer        string `json:"answer"`
	MarksObtained *int   `json:"marks_obtained"` // nil until graded
	AnsweredAt    int64  `json:"answered_at"`
}

type Result struct {
	ScheduleID    string  `json:"schedule_id"`
	StudentID     string  `json:"student_id"`
	TotalMarks    int     `json:"total_marks"`
	MarksObtained int     `json:"marks_obtained"`
	Percentage    float64 `json:"percentage"`
	Status        string  `json:"status"`
	GradedAt      int64   `json:"graded_at"`
	GradedBy      string  `json:"graded_by,omitempty"`
	Source        string  `json:"source"` // auto | manual
}

// Breakdown is the per-question performance summary shown alongside a result.
type Breakdown struct {
	TotalQuestions     int `json:"total_questions"`
	Attempted          int `json:"attempted"`
	Correct            int `json:"correct"`
	Incorrect          int `json:"incorrect"`
	Skipped            int `json:"skipped"`
	CorrectPercent     int `json:"correct_percent"`
	IncorrectPercent   int `json:"incorrect_percent"`
	SkippedPercent     int `json:"skipped_percent"`
}
