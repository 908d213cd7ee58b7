package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/campuskit/examportal/internal/exam"

	"github.com/google/uuid"
)

const (
	ProjectPending   = "pending"
	ProjectSubmitted = "submitted"
	ProjectGraded    = "graded"
	ProjectLate      = "late"
)

// allowedExtensions whitelists upload types. Validation only; file content is
// never inspected.
var allowedExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".zip": true, ".rar": true,
}

// ValidateUploadName rejects filenames outside the extension whitelist.
func ValidateUploadName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return fmt.Errorf("%w: file type %q not allowed (pdf, doc, docx, zip, rar)", exam.ErrValidation, ext)
	}
	return nil
}

type ProjectReport struct {
	ID            string `json:"id"`
	StudentID     string `json:"student_id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	FileKey       string `json:"file_key,omitempty"`
	DueDate       string `json:"due_date"` // YYYY-MM-DD
	SubmittedAt   *int64 `json:"submitted_at,omitempty"`
	MarksObtained *int   `json:"marks_obtained,omitempty"`
	TotalMarks    int    `json:"total_marks"`
	Status        string `json:"status"`
	Feedback      string `json:"feedback,omitempty"`
	CreatedAt     int64  `json:"created_at,omitempty"`
	UpdatedAt     int64  `json:"updated_at,omitempty"`
}

type ProjectStore struct {
	db *sql.DB
}

func NewProjectStore(db *sql.DB) *ProjectStore { return &ProjectStore{db: db} }

// Assign creates a pending report for a student.
func (s *ProjectStore) Assign(ctx context.Context, p ProjectReport) (ProjectReport, error) {
	if p.StudentID == "" || p.Title == "" {
		return ProjectReport{}, fmt.Errorf("%w: student and title required", exam.ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", p.DueDate); err != nil {
		return ProjectReport{}, fmt.Errorf("%w: due_date must be YYYY-MM-DD", exam.ErrValidation)
	}
	now := time.Now().Unix()
	p.ID = uuid.NewString()
	p.Status = ProjectPending
	if p.TotalMarks == 0 {
		p.TotalMarks = 100
	}
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx, `INSERT INTO project_reports
		(id,student_id,title,description,file_key,due_date,submitted_at,marks_obtained,total_marks,status,feedback,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		p.ID, p.StudentID, p.Title, p.Description, p.FileKey, p.DueDate, nil, nil,
		p.TotalMarks, p.Status, p.Feedback, now, now)
	if err != nil {
		return ProjectReport{}, err
	}
	return p, nil
}

func (s *ProjectStore) Get(ctx context.Context, id string) (ProjectReport, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,student_id,title,description,file_key,due_date,
		submitted_at,marks_obtained,total_marks,status,feedback,created_at,updated_at
		FROM project_reports WHERE id=$1`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ProjectReport{}, fmt.Errorf("project report %w", exam.ErrNotFound)
	}
	return p, err
}

func (s *ProjectStore) List(ctx context.Context, status string) ([]ProjectReport, error) {
	query := `SELECT id,student_id,title,description,file_key,due_date,
		submitted_at,marks_obtained,total_marks,status,feedback,created_at,updated_at
		FROM project_reports`
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += " WHERE status=$1"
	}
	query += " ORDER BY created_at DESC"
	return s.list(ctx, query, args...)
}

func (s *ProjectStore) ListByStudent(ctx context.Context, studentID string) ([]ProjectReport, error) {
	return s.list(ctx, `SELECT id,student_id,title,description,file_key,due_date,
		submitted_at,marks_obtained,total_marks,status,feedback,created_at,updated_at
		FROM project_reports WHERE student_id=$1 ORDER BY created_at DESC`, studentID)
}

// Submit attaches the uploaded file key and flips the status: late when the
// submission lands after the due date, submitted otherwise. Only the owning
// student may submit.
func (s *ProjectStore) Submit(ctx context.Context, id, studentID, fileKey string, now time.Time) (ProjectReport, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return ProjectReport{}, err
	}
	if p.StudentID != studentID {
		return ProjectReport{}, fmt.Errorf("%w: this report does not belong to you", exam.ErrNotEligible)
	}
	due, err := time.Parse("2006-01-02", p.DueDate)
	if err != nil {
		return ProjectReport{}, fmt.Errorf("%w: bad due date on record", exam.ErrValidation)
	}
	status := ProjectSubmitted
	if now.After(due.AddDate(0, 0, 1)) { // due date is inclusive
		status = ProjectLate
	}
	ts := now.Unix()
	_, err = s.db.ExecContext(ctx, `UPDATE project_reports
		SET file_key=$1, submitted_at=$2, status=$3, updated_at=$2 WHERE id=$4`,
		fileKey, ts, status, id)
	if err != nil {
		return ProjectReport{}, err
	}
	return s.Get(ctx, id)
}

// Grade records marks and feedback and finalises the report.
func (s *ProjectStore) Grade(ctx context.Context, id string, marks int, feedback string) (ProjectReport, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return ProjectReport{}, err
	}
	if marks < 0 || marks > p.TotalMarks {
		return ProjectReport{}, fmt.Errorf("%w: marks must be 0-%d", exam.ErrValidation, p.TotalMarks)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE project_reports
		SET marks_obtained=$1, feedback=$2, status=$3, updated_at=$4 WHERE id=$5`,
		marks, feedback, ProjectGraded, time.Now().Unix(), id)
	if err != nil {
		return ProjectReport{}, err
	}
	return s.Get(ctx, id)
}

func (s *ProjectStore) list(ctx context.Context, query string, args ...any) ([]ProjectReport, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ProjectReport{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanProject(r rowScanner) (ProjectReport, error) {
	var p ProjectReport
	var submitted sql.NullInt64
	var marks sql.NullInt64
	err := r.Scan(&p.ID, &p.StudentID, &p.Title, &p.Description, &p.FileKey, &p.DueDate,
		&submitted, &marks, &p.TotalMarks, &p.Status, &p.Feedback, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return ProjectReport{}, err
	}
	if submitted.Valid {
		v := submitted.Int64
		p.SubmittedAt = &v
	}
	if marks.Valid {
		v := int(marks.Int64)
		p.MarksObtained = &v
	}
	return p, nil
}
