package attendance

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campuskit/examportal/internal/exam"
)

type Record struct {
	ScheduleID string `json:"schedule_id"`
	StudentID  string `json:"student_id"`
	Attended   bool   `json:"attended"`
	CheckIn    *int64 `json:"check_in,omitempty"`
	CheckOut   *int64 `json:"check_out,omitempty"`
	MarkedBy   string `json:"marked_by,omitempty"`
	MarkedAt   int64  `json:"marked_at"`
	Notes      string `json:"notes,omitempty"`
}

// Row is one line of a student's attendance history, shaped for both the
// report view and the CSV export.
type Row struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Subject   string `json:"subject"`
	TimeRange string `json:"time_range"` // "HH:MM - HH:MM"
	Attended  bool   `json:"attended"`
}

// ScheduleReport summarises one sitting's attendance for admins.
type ScheduleReport struct {
	ScheduleID    string `json:"schedule_id"`
	TotalStudents int    `json:"total_students"`
	Present       int    `json:"present"`
	Absent        int    `json:"absent"`
	Unmarked      int    `json:"unmarked"`
}

// Filter limits history rows: "all", "last30" (30 days) or "term" (180 days).
type Filter string

const (
	FilterAll    Filter = "all"
	FilterLast30 Filter = "last30"
	FilterTerm   Filter = "term"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// Mark upserts by (schedule, student): re-marking overwrites the previous
// record, so concurrent admin saves resolve to last write wins.
func (s *SQLStore) Mark(ctx context.Context, r Record) error {
	if r.ScheduleID == "" || r.StudentID == "" {
		return fmt.Errorf("%w: schedule and student required", exam.ErrValidation)
	}
	if r.MarkedAt == 0 {
		r.MarkedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO attendance
		(schedule_id,student_id,attended,check_in,check_out,marked_by,marked_at,notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (schedule_id,student_id) DO UPDATE SET
			attended=EXCLUDED.attended, check_in=EXCLUDED.check_in, check_out=EXCLUDED.check_out,
			marked_by=EXCLUDED.marked_by, marked_at=EXCLUDED.marked_at, notes=EXCLUDED.notes`,
		r.ScheduleID, r.StudentID, r.Attended, r.CheckIn, r.CheckOut, r.MarkedBy, r.MarkedAt, r.Notes)
	return err
}

func (s *SQLStore) ListBySchedule(ctx context.Context, scheduleID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT schedule_id,student_id,attended,check_in,check_out,marked_by,marked_at,notes
		FROM attendance WHERE schedule_id=$1 ORDER BY student_id`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Record{}
	for rows.Next() {
		var r Record
		var in, outT sql.NullInt64
		if err := rows.Scan(&r.ScheduleID, &r.StudentID, &r.Attended, &in, &outT, &r.MarkedBy, &r.MarkedAt, &r.Notes); err != nil {
			return nil, err
		}
		if in.Valid {
			v := in.Int64
			r.CheckIn = &v
		}
		if outT.Valid {
			v := outT.Int64
			r.CheckOut = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// StudentRows returns a student's attendance history joined with schedule and
// subject details, newest sitting first.
func (s *SQLStore) StudentRows(ctx context.Context, studentID string, f Filter, now time.Time) ([]Row, error) {
	query := `SELECT es.scheduled_date, sub.name, es.start_time, es.end_time, a.attended
		FROM attendance a
		JOIN exam_schedules es ON es.id=a.schedule_id
		JOIN question_papers qp ON qp.id=es.paper_id
		JOIN subjects sub ON sub.id=qp.subject_id
		WHERE a.student_id=$1`
	args := []any{studentID}
	if cutoff, ok := cutoffDate(f, now); ok {
		args = append(args, cutoff)
		query += " AND es.scheduled_date >= $2"
	}
	query += " ORDER BY es.scheduled_date DESC, es.start_time DESC"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Row{}
	for rows.Next() {
		var r Row
		var start, end string
		if err := rows.Scan(&r.Date, &r.Subject, &start, &end, &r.Attended); err != nil {
			return nil, err
		}
		r.TimeRange = start + " - " + end
		out = append(out, r)
	}
	return out, rows.Err()
}

// Percentage is attended rows over total rows for the student, 0 when none.
func (s *SQLStore) Percentage(ctx context.Context, studentID string) (float64, error) {
	var total, present int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COUNT(CASE WHEN attended THEN 1 END)
		FROM attendance WHERE student_id=$1`, studentID).Scan(&total, &present)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	return float64(present) / float64(total) * 100, nil
}

func (s *SQLStore) Report(ctx context.Context, scheduleID string) (ScheduleReport, error) {
	var rep ScheduleReport
	rep.ScheduleID = scheduleID
	err := s.db.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM schedule_students WHERE schedule_id=$1),
		(SELECT COUNT(*) FROM attendance WHERE schedule_id=$1 AND attended),
		(SELECT COUNT(*) FROM attendance WHERE schedule_id=$1 AND NOT attended)`, scheduleID).
		Scan(&rep.TotalStudents, &rep.Present, &rep.Absent)
	if err != nil {
		return ScheduleReport{}, err
	}
	rep.Unmarked = rep.TotalStudents - rep.Present - rep.Absent
	if rep.Unmarked < 0 {
		rep.Unmarked = 0
	}
	return rep, nil
}

// RegisterFromResults marks each assigned student present iff they submitted
// the exam (a result row exists), absent otherwise.
func (s *SQLStore) RegisterFromResults(ctx context.Context, scheduleID, markedBy string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ss.student_id,
		EXISTS (SELECT 1 FROM exam_results er WHERE er.schedule_id=ss.schedule_id AND er.student_id=ss.student_id)
		FROM schedule_students ss WHERE ss.schedule_id=$1 ORDER BY ss.student_id`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	recs := []Record{}
	for rows.Next() {
		var sid string
		var submitted bool
		if err := rows.Scan(&sid, &submitted); err != nil {
			return nil, err
		}
		recs = append(recs, Record{
			ScheduleID: scheduleID,
			StudentID:  sid,
			Attended:   submitted,
			MarkedBy:   markedBy,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range recs {
		if err := s.Mark(ctx, recs[i]); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func cutoffDate(f Filter, now time.Time) (string, bool) {
	switch f {
	case FilterLast30:
		return now.AddDate(0, 0, -30).Format("2006-01-02"), true
	case FilterTerm:
		return now.AddDate(0, 0, -180).Format("2006-01-02"), true
	default:
		return "", false
	}
}
