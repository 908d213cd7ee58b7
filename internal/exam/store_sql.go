package exam

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// --- Subjects ---

func (s *SQLStore) PutSubject(ctx context.Context, sub Subject) (Subject, error) {
	if sub.Code == "" || sub.Name == "" {
		return Subject{}, fmt.Errorf("%w: code and name required", ErrValidation)
	}
	if sub.Credits < 1 || sub.Credits > 4 {
		return Subject{}, fmt.Errorf("%w: credits must be 1-4", ErrValidation)
	}
	now := time.Now().Unix()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `INSERT INTO subjects (id,code,name,description,credits,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET code=EXCLUDED.code, name=EXCLUDED.name,
			description=EXCLUDED.description, credits=EXCLUDED.credits, updated_at=EXCLUDED.updated_at`,
		sub.ID, sub.Code, sub.Name, sub.Description, sub.Credits, now, now)
	if err != nil {
		return Subject{}, err
	}
	return s.GetSubject(ctx, sub.ID)
}

func (s *SQLStore) GetSubject(ctx context.Context, id string) (Subject, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,code,name,description,credits,created_at,updated_at
		FROM subjects WHERE id=$1`, id)
	var sub Subject
	if err := row.Scan(&sub.ID, &sub.Code, &sub.Name, &sub.Description, &sub.Credits, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Subject{}, fmt.Errorf("subject %w", ErrNotFound)
		}
		return Subject{}, err
	}
	return sub, nil
}

func (s *SQLStore) ListSubjects(ctx context.Context) ([]Subject, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,code,name,description,credits,created_at,updated_at
		FROM subjects ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Subject{}
	for rows.Next() {
		var sub Subject
		if err := rows.Scan(&sub.ID, &sub.Code, &sub.Name, &sub.Description, &sub.Credits, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteSubject(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "subjects", id, "subject")
}

// --- Questions ---

func (s *SQLStore) PutQuestion(ctx context.Context, q Question) (Question, error) {
	if q.SubjectID == "" || q.Text == "" {
		return Question{}, fmt.Errorf("%w: subject and question text required", ErrValidation)
	}
	if q.Type != QuestionMCQ && q.Type != QuestionDescriptive {
		return Question{}, fmt.Errorf("%w: unknown question type %q", ErrValidation, q.Type)
	}
	if q.Marks < 1 {
		return Question{}, fmt.Errorf("%w: marks must be positive", ErrValidation)
	}
	if !q.ValidMCQ() {
		return Question{}, fmt.Errorf("%w: MCQ requires all four options and a correct answer", ErrValidation)
	}
	now := time.Now().Unix()
	if q.ID == "" {
		q.ID = uuid.NewString()
		q.CreatedAt = now
	}
	q.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, `INSERT INTO questions
		(id,subject_id,question_text,question_type,marks,option_a,option_b,option_c,option_d,correct_answer,created_by,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET subject_id=EXCLUDED.subject_id, question_text=EXCLUDED.question_text,
			question_type=EXCLUDED.question_type, marks=EXCLUDED.marks,
			option_a=EXCLUDED.option_a, option_b=EXCLUDED.option_b, option_c=EXCLUDED.option_c, option_d=EXCLUDED.option_d,
			correct_answer=EXCLUDED.correct_answer, updated_at=EXCLUDED.updated_at`,
		q.ID, q.SubjectID, q.Text, q.Type, q.Marks, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.CorrectAnswer, q.CreatedBy, now, now)
	if err != nil {
		return Question{}, err
	}
	return s.GetQuestion(ctx, q.ID)
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,subject_id,question_text,question_type,marks,
		option_a,option_b,option_c,option_d,correct_answer,created_by,created_at,updated_at
		FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, fmt.Errorf("question %w", ErrNotFound)
	}
	return q, err
}

func (s *SQLStore) ListQuestions(ctx context.Context, f QuestionFilter) ([]Question, error) {
	query := `SELECT id,subject_id,question_text,question_type,marks,
		option_a,option_b,option_c,option_d,correct_answer,created_by,created_at,updated_at
		FROM questions WHERE 1=1`
	args := []any{}
	if f.SubjectID != "" {
		args = append(args, f.SubjectID)
		query += fmt.Sprintf(" AND subject_id=$%d", len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		query += fmt.Sprintf(" AND question_type=$%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "questions", id, "question")
}

type rowScanner interface{ Scan(dest ...any) error }

func scanQuestion(r rowScanner) (Question, error) {
	var q Question
	err := r.Scan(&q.ID, &q.SubjectID, &q.Text, &q.Type, &q.Marks,
		&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectAnswer,
		&q.CreatedBy, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

// --- Question papers ---

func (s *SQLStore) PutPaper(ctx context.Context, p QuestionPaper, questionIDs []string) (QuestionPaper, error) {
	if p.Title == "" || p.SubjectID == "" {
		return QuestionPaper{}, fmt.Errorf("%w: title and subject required", ErrValidation)
	}
	if p.DurationMinutes < 15 || p.DurationMinutes > 480 {
		return QuestionPaper{}, fmt.Errorf("%w: duration must be 15-480 minutes", ErrValidation)
	}
	if p.PassingMarks < 0 || p.PassingMarks > 100 {
		return QuestionPaper{}, fmt.Errorf("%w: passing marks is a percentage 0-100", ErrValidation)
	}
	now := time.Now().Unix()
	if p.ID == "" {
		p.ID = uuid.NewString()
		p.CreatedAt = now
	}
	if p.TotalMarks == 0 {
		p.TotalMarks = 100
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return QuestionPaper{}, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO question_papers
		(id,title,subject_id,total_marks,duration_minutes,passing_marks,instructions,created_by,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, subject_id=EXCLUDED.subject_id,
			total_marks=EXCLUDED.total_marks, duration_minutes=EXCLUDED.duration_minutes,
			passing_marks=EXCLUDED.passing_marks, instructions=EXCLUDED.instructions, updated_at=EXCLUDED.updated_at`,
		p.ID, p.Title, p.SubjectID, p.TotalMarks, p.DurationMinutes, p.PassingMarks,
		p.Instructions, p.CreatedBy, now, now)
	if err != nil {
		return QuestionPaper{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM paper_questions WHERE paper_id=$1`, p.ID); err != nil {
		return QuestionPaper{}, err
	}
	for i, qid := range questionIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO paper_questions (paper_id,question_id,position)
			VALUES ($1,$2,$3)`, p.ID, qid, i); err != nil {
			return QuestionPaper{}, fmt.Errorf("%w: unknown question %s", ErrValidation, qid)
		}
	}
	if err := tx.Commit(); err != nil {
		return QuestionPaper{}, err
	}
	return s.GetPaper(ctx, p.ID)
}

func (s *SQLStore) GetPaper(ctx context.Context, id string) (QuestionPaper, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,subject_id,total_marks,duration_minutes,passing_marks,
		instructions,created_by,created_at,updated_at FROM question_papers WHERE id=$1`, id)
	var p QuestionPaper
	if err := row.Scan(&p.ID, &p.Title, &p.SubjectID, &p.TotalMarks, &p.DurationMinutes, &p.PassingMarks,
		&p.Instructions, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QuestionPaper{}, fmt.Errorf("question paper %w", ErrNotFound)
		}
		return QuestionPaper{}, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT q.id,q.subject_id,q.question_text,q.question_type,q.marks,
		q.option_a,q.option_b,q.option_c,q.option_d,q.correct_answer,q.created_by,q.created_at,q.updated_at
		FROM questions q JOIN paper_questions pq ON pq.question_id=q.id
		WHERE pq.paper_id=$1 ORDER BY pq.position`, id)
	if err != nil {
		return QuestionPaper{}, err
	}
	defer rows.Close()
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return QuestionPaper{}, err
		}
		p.Questions = append(p.Questions, q)
	}
	return p, rows.Err()
}

func (s *SQLStore) ListPapers(ctx context.Context) ([]QuestionPaper, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,title,subject_id,total_marks,duration_minutes,passing_marks,
		instructions,created_by,created_at,updated_at FROM question_papers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []QuestionPaper{}
	for rows.Next() {
		var p QuestionPaper
		if err := rows.Scan(&p.ID, &p.Title, &p.SubjectID, &p.TotalMarks, &p.DurationMinutes, &p.PassingMarks,
			&p.Instructions, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeletePaper(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "question_papers", id, "question paper")
}

// --- Schedules ---

func (s *SQLStore) PutSchedule(ctx context.Context, sc Schedule) (Schedule, error) {
	if sc.PaperID == "" {
		return Schedule{}, fmt.Errorf("%w: paper required", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", sc.ScheduledDate); err != nil {
		return Schedule{}, fmt.Errorf("%w: scheduled_date must be YYYY-MM-DD", ErrValidation)
	}
	start, err := time.Parse("15:04", sc.StartTime)
	if err != nil {
		return Schedule{}, fmt.Errorf("%w: start_time must be HH:MM", ErrValidation)
	}
	end, err := time.Parse("15:04", sc.EndTime)
	if err != nil {
		return Schedule{}, fmt.Errorf("%w: end_time must be HH:MM", ErrValidation)
	}
	if !end.After(start) {
		return Schedule{}, fmt.Errorf("%w: end_time must be after start_time", ErrValidation)
	}
	switch sc.Status {
	case "":
		sc.Status = ScheduleDraft
	case ScheduleDraft, SchedulePublished, ScheduleOngoing, ScheduleCompleted:
	default:
		return Schedule{}, fmt.Errorf("%w: unknown status %q", ErrValidation, sc.Status)
	}
	now := time.Now().Unix()
	if sc.ID == "" {
		sc.ID = uuid.NewString()
		sc.CreatedAt = now
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO exam_schedules
		(id,paper_id,scheduled_date,start_time,end_time,status,created_at,updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET paper_id=EXCLUDED.paper_id, scheduled_date=EXCLUDED.scheduled_date,
			start_time=EXCLUDED.start_time, end_time=EXCLUDED.end_time, status=EXCLUDED.status,
			updated_at=EXCLUDED.updated_at`,
		sc.ID, sc.PaperID, sc.ScheduledDate, sc.StartTime, sc.EndTime, sc.Status, now, now)
	if err != nil {
		return Schedule{}, err
	}
	if sc.StudentIDs != nil {
		if err := s.AssignStudents(ctx, sc.ID, sc.StudentIDs); err != nil {
			return Schedule{}, err
		}
	}
	return s.GetSchedule(ctx, sc.ID)
}

func (s *SQLStore) GetSchedule(ctx context.Context, id string) (Schedule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,paper_id,scheduled_date,start_time,end_time,status,created_at,updated_at
		FROM exam_schedules WHERE id=$1`, id)
	var sc Schedule
	if err := row.Scan(&sc.ID, &sc.PaperID, &sc.ScheduledDate, &sc.StartTime, &sc.EndTime, &sc.Status,
		&sc.CreatedAt, &sc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Schedule{}, fmt.Errorf("schedule %w", ErrNotFound)
		}
		return Schedule{}, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT student_id FROM schedule_students WHERE schedule_id=$1 ORDER BY student_id`, id)
	if err != nil {
		return Schedule{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var sid string
		if err := rows.Scan(&sid); err != nil {
			return Schedule{}, err
		}
		sc.StudentIDs = append(sc.StudentIDs, sid)
	}
	return sc, rows.Err()
}

func (s *SQLStore) ListSchedules(ctx context.Context, f ScheduleFilter) ([]Schedule, error) {
	query := `SELECT s.id,s.paper_id,s.scheduled_date,s.start_time,s.end_time,s.status,s.created_at,s.updated_at
		FROM exam_schedules s`
	args := []any{}
	if f.StudentID != "" {
		args = append(args, f.StudentID)
		query += fmt.Sprintf(" JOIN schedule_students ss ON ss.schedule_id=s.id AND ss.student_id=$%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" WHERE s.status=$%d", len(args))
	}
	query += " ORDER BY s.scheduled_date, s.start_time"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Schedule{}
	for rows.Next() {
		var sc Schedule
		if err := rows.Scan(&sc.ID, &sc.PaperID, &sc.ScheduledDate, &sc.StartTime, &sc.EndTime, &sc.Status,
			&sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// attach assigned students
	for i := range out {
		full, err := s.GetSchedule(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].StudentIDs = full.StudentIDs
	}
	return out, nil
}

func (s *SQLStore) DeleteSchedule(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "exam_schedules", id, "schedule")
}

func (s *SQLStore) AssignStudents(ctx context.Context, scheduleID string, studentIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_students WHERE schedule_id=$1`, scheduleID); err != nil {
		return err
	}
	for _, sid := range studentIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO schedule_students (schedule_id,student_id) VALUES ($1,$2)
			ON CONFLICT (schedule_id,student_id) DO NOTHING`, scheduleID, sid); err != nil {
			return fmt.Errorf("%w: unknown student %s", ErrValidation, sid)
		}
	}
	return tx.Commit()
}

// --- Responses & results ---

// SaveResponse upserts by (schedule,student,question): resubmission replaces
// the answer and clears any previously awarded marks.
func (s *SQLStore) SaveResponse(ctx context.Context, r Response) error {
	var onPaper int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM paper_questions pq
		JOIN exam_schedules es ON es.paper_id=pq.paper_id
		WHERE es.id=$1 AND pq.question_id=$2`, r.ScheduleID, r.QuestionID).Scan(&onPaper)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: question does not belong to this exam", ErrValidation)
	}
	if err != nil {
		return err
	}
	if r.AnsweredAt == 0 {
		r.AnsweredAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO exam_responses
		(schedule_id,student_id,question_id,answer,marks_obtained,answered_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (schedule_id,student_id,question_id) DO UPDATE SET
			answer=EXCLUDED.answer, marks_obtained=EXCLUDED.marks_obtained, answered_at=EXCLUDED.answered_at`,
		r.ScheduleID, r.StudentID, r.QuestionID, r.Answer, r.MarksObtained, r.AnsweredAt)
	return err
}

func (s *SQLStore) SetResponseMarks(ctx context.Context, scheduleID, studentID, questionID string, marks int) error {
	if marks < 0 {
		return fmt.Errorf("%w: marks must not be negative", ErrValidation)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE exam_responses SET marks_obtained=$1
		WHERE schedule_id=$2 AND student_id=$3 AND question_id=$4`,
		marks, scheduleID, studentID, questionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("response %w", ErrNotFound)
	}
	return nil
}

func (s *SQLStore) ListResponses(ctx context.Context, scheduleID, studentID string) ([]Response, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT schedule_id,student_id,question_id,answer,marks_obtained,answered_at
		FROM exam_responses WHERE schedule_id=$1 AND student_id=$2`, scheduleID, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Response{}
	for rows.Next() {
		var r Response
		var marks sql.NullInt64
		if err := rows.Scan(&r.ScheduleID, &r.StudentID, &r.QuestionID, &r.Answer, &marks, &r.AnsweredAt); err != nil {
			return nil, err
		}
		if marks.Valid {
			m := int(marks.Int64)
			r.MarksObtained = &m
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO exam_results
		(schedule_id,student_id,total_marks,marks_obtained,percentage,status,graded_at,graded_by,source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (schedule_id,student_id) DO UPDATE SET
			total_marks=EXCLUDED.total_marks, marks_obtained=EXCLUDED.marks_obtained,
			percentage=EXCLUDED.percentage, status=EXCLUDED.status,
			graded_at=EXCLUDED.graded_at, graded_by=EXCLUDED.graded_by, source=EXCLUDED.source`,
		r.ScheduleID, r.StudentID, r.TotalMarks, r.MarksObtained, r.Percentage, r.Status,
		r.GradedAt, r.GradedBy, r.Source)
	return err
}

func (s *SQLStore) GetResult(ctx context.Context, scheduleID, studentID string) (Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT schedule_id,student_id,total_marks,marks_obtained,percentage,status,graded_at,graded_by,source
		FROM exam_results WHERE schedule_id=$1 AND student_id=$2`, scheduleID, studentID)
	var r Result
	if err := row.Scan(&r.ScheduleID, &r.StudentID, &r.TotalMarks, &r.MarksObtained, &r.Percentage,
		&r.Status, &r.GradedAt, &r.GradedBy, &r.Source); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, fmt.Errorf("result %w", ErrNotFound)
		}
		return Result{}, err
	}
	return r, nil
}

func (s *SQLStore) ListResultsBySchedule(ctx context.Context, scheduleID string) ([]Result, error) {
	return s.listResults(ctx, `WHERE schedule_id=$1 ORDER BY student_id`, scheduleID)
}

func (s *SQLStore) ListResultsByStudent(ctx context.Context, studentID string) ([]Result, error) {
	return s.listResults(ctx, `WHERE student_id=$1 ORDER BY graded_at DESC`, studentID)
}

func (s *SQLStore) listResults(ctx context.Context, where string, arg any) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT schedule_id,student_id,total_marks,marks_obtained,percentage,status,graded_at,graded_by,source
		FROM exam_results `+where, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ScheduleID, &r.StudentID, &r.TotalMarks, &r.MarksObtained, &r.Percentage,
			&r.Status, &r.GradedAt, &r.GradedBy, &r.Source); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Percentages feeds the performance aggregator.
func (s *SQLStore) Percentages(ctx context.Context, studentID string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT percentage FROM exam_results WHERE student_id=$1`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []float64{}
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// --- Dashboards ---

func (s *SQLStore) DashboardCounts(ctx context.Context) (Counts, error) {
	var c Counts
	row := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM subjects),
		(SELECT COUNT(*) FROM questions),
		(SELECT COUNT(*) FROM question_papers),
		(SELECT COUNT(*) FROM exam_schedules)`)
	err := row.Scan(&c.Subjects, &c.Questions, &c.Papers, &c.Schedules)
	return c, err
}

func (s *SQLStore) ListSubmissionCounts(ctx context.Context) ([]SubmissionCounts, error) {
	schedules, err := s.ListSchedules(ctx, ScheduleFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]SubmissionCounts, 0, len(schedules))
	for _, sc := range schedules {
		// A submission still counts as pending while any of its responses
		// carries nil marks (descriptive answers awaiting manual grading).
		var submitted, pending int
		if err := s.db.QueryRowContext(ctx, `SELECT
			(SELECT COUNT(*) FROM exam_results WHERE schedule_id=$1),
			(SELECT COUNT(*) FROM exam_results er WHERE er.schedule_id=$1 AND EXISTS (
				SELECT 1 FROM exam_responses r
				WHERE r.schedule_id=er.schedule_id AND r.student_id=er.student_id
					AND r.marks_obtained IS NULL))`, sc.ID).
			Scan(&submitted, &pending); err != nil {
			return nil, err
		}
		out = append(out, SubmissionCounts{
			Schedule:  sc,
			Submitted: submitted,
			Graded:    submitted - pending,
			Pending:   pending,
		})
	}
	return out, nil
}

func (s *SQLStore) deleteByID(ctx context.Context, table, id, what string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return nil
}
