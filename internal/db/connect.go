package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:examportal.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/examportal?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := EnsureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates all tables if missing. Exported so store tests can
// bootstrap an in-memory sqlite database.
func EnsureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  enrollment_no TEXT NOT NULL DEFAULT '',
  department TEXT NOT NULL DEFAULT '',
  semester INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS subjects (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  credits INTEGER NOT NULL DEFAULT 1,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  subject_id TEXT NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
  question_text TEXT NOT NULL,
  question_type TEXT NOT NULL,
  marks INTEGER NOT NULL,
  option_a TEXT NOT NULL DEFAULT '',
  option_b TEXT NOT NULL DEFAULT '',
  option_c TEXT NOT NULL DEFAULT '',
  option_d TEXT NOT NULL DEFAULT '',
  correct_answer TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_questions_subject ON questions(subject_id, question_type);

CREATE TABLE IF NOT EXISTS question_papers (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  subject_id TEXT NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
  total_marks INTEGER NOT NULL DEFAULT 100,
  duration_minutes INTEGER NOT NULL,
  passing_marks INTEGER NOT NULL,
  instructions TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS paper_questions (
  paper_id TEXT NOT NULL REFERENCES question_papers(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  position INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (paper_id, question_id)
);

CREATE TABLE IF NOT EXISTS exam_schedules (
  id TEXT PRIMARY KEY,
  paper_id TEXT NOT NULL REFERENCES question_papers(id) ON DELETE CASCADE,
  scheduled_date TEXT NOT NULL,
  start_time TEXT NOT NULL,
  end_time TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_schedules_date ON exam_schedules(scheduled_date, status);

CREATE TABLE IF NOT EXISTS schedule_students (
  schedule_id TEXT NOT NULL REFERENCES exam_schedules(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  PRIMARY KEY (schedule_id, student_id)
);

CREATE TABLE IF NOT EXISTS exam_responses (
  schedule_id TEXT NOT NULL REFERENCES exam_schedules(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  answer TEXT NOT NULL DEFAULT '',
  marks_obtained INTEGER,
  answered_at INTEGER NOT NULL,
  PRIMARY KEY (schedule_id, student_id, question_id)
);

CREATE TABLE IF NOT EXISTS exam_results (
  schedule_id TEXT NOT NULL REFERENCES exam_schedules(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  total_marks INTEGER NOT NULL,
  marks_obtained INTEGER NOT NULL,
  percentage REAL NOT NULL,
  status TEXT NOT NULL,
  graded_at INTEGER NOT NULL,
  graded_by TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT 'auto',
  PRIMARY KEY (schedule_id, student_id)
);
CREATE INDEX IF NOT EXISTS idx_results_status ON exam_results(status);

CREATE TABLE IF NOT EXISTS attendance (
  schedule_id TEXT NOT NULL REFERENCES exam_schedules(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  attended INTEGER NOT NULL DEFAULT 0,
  check_in INTEGER,
  check_out INTEGER,
  marked_by TEXT NOT NULL DEFAULT '',
  marked_at INTEGER NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (schedule_id, student_id)
);

CREATE TABLE IF NOT EXISTS project_reports (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  file_key TEXT NOT NULL DEFAULT '',
  due_date TEXT NOT NULL,
  submitted_at INTEGER,
  marks_obtained INTEGER,
  total_marks INTEGER NOT NULL DEFAULT 100,
  status TEXT NOT NULL DEFAULT 'pending',
  feedback TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_student ON project_reports(student_id, status);

CREATE TABLE IF NOT EXISTS event_log (
  "offset" INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  typ TEXT NOT NULL,                          -- e.g. ResultGraded
  key TEXT NOT NULL,                          -- natural key: schedule|student
  actor TEXT NOT NULL DEFAULT '',
  data TEXT NOT NULL,                         -- JSON payload
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL DEFAULT '',
  enrollment_no TEXT NOT NULL DEFAULT '',
  department TEXT NOT NULL DEFAULT '',
  semester INTEGER NOT NULL DEFAULT 0,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS subjects (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  credits INTEGER NOT NULL DEFAULT 1,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  subject_id TEXT NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
  question_text TEXT NOT NULL,
  question_type TEXT NOT NULL,
  marks INTEGER NOT NULL,
  option_a TEXT NOT NULL DEFAULT '',
  option_b TEXT NOT NULL DEFAULT '',
  option_c TEXT NOT NULL DEFAULT '',
  option_d TEXT NOT NULL DEFAULT '',
  correct_answer TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_questions_subject ON questions(subject_id, question_type);

CREATE TABLE IF NOT EXISTS question_papers (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  subject_id TEXT NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
  total_marks INTEGER NOT NULL DEFAULT 100,
  duration_minutes INTEGER NOT NULL,
  passing_marks INTEGER NOT NULL,
  instructions TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS paper_questions (
  paper_id TEXT NOT NULL REFERENCES question_papers(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  position INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (paper_id, question_id)
);

CREATE TABLE IF NOT EXISTS exam_schedules (
  id TEXT PRIMARY KEY,
  paper_id TEXT NOT NULL REFERENCES question_papers(id) ON DELETE CASCADE,
  scheduled_date TEXT NOT NULL,
  start_time TEXT NOT NULL,
  end_time TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'draft',
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_schedules_date ON exam_schedules(scheduled_date, status);

CREATE TABLE IF NOT EXISTS schedule_students (
  schedule_id TEXT NOT NULL REFERENCES exam_schedules(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  PRIMARY KEY (schedule_id, student_id)
);

CREATE TABLE IF NOT EXISTS exam_responses (
  schedule_id TEXT NOT NULL REFERENCES exam_schedules(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
  answer TEXT NOT NULL DEFAULT '',
  marks_obtained INTEGER,
  answered_at BIGINT NOT NULL,
  PRIMARY KEY (schedule_id, student_id, question_id)
);

CREATE TABLE IF NOT EXISTS exam_results (
  schedule_id TEXT NOT NULL REFERENCES exam_schedules(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  total_marks INTEGER NOT NULL,
  marks_obtained INTEGER NOT NULL,
  percentage DOUBLE PRECISION NOT NULL,
  status TEXT NOT NULL,
  graded_at BIGINT NOT NULL,
  graded_by TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT 'auto',
  PRIMARY KEY (schedule_id, student_id)
);
CREATE INDEX IF NOT EXISTS idx_results_status ON exam_results(status);

CREATE TABLE IF NOT EXISTS attendance (
  schedule_id TEXT NOT NULL REFERENCES exam_schedules(id) ON DELETE CASCADE,
  student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  attended BOOLEAN NOT NULL DEFAULT FALSE,
  check_in BIGINT,
  check_out BIGINT,
  marked_by TEXT NOT NULL DEFAULT '',
  marked_at BIGINT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (schedule_id, student_id)
);

CREATE TABLE IF NOT EXISTS project_reports (
  id TEXT PRIMARY KEY,
  student_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  file_key TEXT NOT NULL DEFAULT '',
  due_date TEXT NOT NULL,
  submitted_at BIGINT,
  marks_obtained INTEGER,
  total_marks INTEGER NOT NULL DEFAULT 100,
  status TEXT NOT NULL DEFAULT 'pending',
  feedback TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_projects_student ON project_reports(student_id, status);

CREATE TABLE IF NOT EXISTS event_log (
  "offset" BIGSERIAL PRIMARY KEY,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  actor TEXT NOT NULL DEFAULT '',
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
