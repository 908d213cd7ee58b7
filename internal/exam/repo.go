package exam

import "context"

type QuestionFilter struct {
	SubjectID string
	Type      string
}

type ScheduleFilter struct {
	Status    string
	StudentID string // restrict to schedules the student is assigned to
}

// Counts feeds the admin dashboard widgets.
type Counts struct {
	Subjects  int `json:"total_subjects"`
	Questions int `json:"total_questions"`
	Papers    int `json:"total_papers"`
	Schedules int `json:"total_schedules"`
}

// SubmissionCounts summarises grading progress for one schedule.
type SubmissionCounts struct {
	Schedule  Schedule `json:"schedule"`
	Submitted int      `json:"submitted"`
	Graded    int      `json:"graded"`
	Pending   int      `json:"pending"`
}

type Store interface {
	// Subjects
	PutSubject(ctx context.Context, s Subject) (Subject, error)
	GetSubject(ctx context.Context, id string) (Subject, error)
	ListSubjects(ctx context.Context) ([]Subject, error)
	DeleteSubject(ctx context.Context, id string) error

	// Questions
	PutQuestion(ctx context.Context, q Question) (Question, error)
	GetQuestion(ctx context.Context, id string) (Question, error)
	ListQuestions(ctx context.Context, f QuestionFilter) ([]Question, error)
	DeleteQuestion(ctx context.Context, id string) error

	// Question papers. Get loads the question set; the student-safe variant
	// strips correct answers.
	PutPaper(ctx context.Context, p QuestionPaper, questionIDs []string) (QuestionPaper, error)
	GetPaper(ctx context.Context, id string) (QuestionPaper, error)
	ListPapers(ctx context.Context) ([]QuestionPaper, error)
	DeletePaper(ctx context.Context, id string) error

	// Schedules
	PutSchedule(ctx context.Context, s Schedule) (Schedule, error)
	GetSchedule(ctx context.Context, id string) (Schedule, error)
	ListSchedules(ctx context.Context, f ScheduleFilter) ([]Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
	AssignStudents(ctx context.Context, scheduleID string, studentIDs []string) error

	// Responses and results
	SaveResponse(ctx context.Context, r Response) error
	SetResponseMarks(ctx context.Context, scheduleID, studentID, questionID string, marks int) error
	ListResponses(ctx context.Context, scheduleID, studentID string) ([]Response, error)
	UpsertResult(ctx context.Context, r Result) error
	GetResult(ctx context.Context, scheduleID, studentID string) (Result, error)
	ListResultsBySchedule(ctx context.Context, scheduleID string) ([]Result, error)
	ListResultsByStudent(ctx context.Context, studentID string) ([]Result, error)

	// Dashboards
	DashboardCounts(ctx context.Context) (Counts, error)
	ListSubmissionCounts(ctx context.Context) ([]SubmissionCounts, error)
}
