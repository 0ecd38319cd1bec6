package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	"github.com/noatrans/noatrans-api/config"
)

// ReportingStore runs the admin reporting queries over plain SQL. The
// aggregations join enrollments against courses and users in ways that
// are clumsy to express through the ORM, so it keeps its own read-only
// connection.
type ReportingStore struct {
	db *sql.DB
}

// StartReporting opens the raw PostgreSQL connection for reports
func StartReporting() (*ReportingStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	connectStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnv.DB_HOST, getEnv.DB_PORT, getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD, getEnv.DB_NAME, getEnv.DB_SSL_MODE,
	)

	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		log.Println("Unable to open reporting connection:", err)
		return nil, err
	}

	return &ReportingStore{db: db}, nil
}

// Close closes the reporting connection
func (s *ReportingStore) Close() error {
	return s.db.Close()
}

// CourseEnrollmentReport is one row of the per-course enrollment report
type CourseEnrollmentReport struct {
	CourseID       uint    `json:"course_id"`
	Title          string  `json:"title"`
	Language       string  `json:"language"`
	Facilitator    string  `json:"facilitator"`
	Enrolled       int64   `json:"enrolled"`
	Completed      int64   `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
	AvgProgress    float64 `json:"avg_progress"`
}

// EnrollmentsByCourse aggregates active enrollments per course
func (s *ReportingStore) EnrollmentsByCourse() ([]CourseEnrollmentReport, error) {
	query := `
		SELECT c.id, c.title, c.language, u.full_name,
		       COUNT(e.id) AS enrolled,
		       COUNT(e.id) FILTER (WHERE e.status = 'completed') AS completed,
		       COALESCE(AVG(e.progress_percent), 0) AS avg_progress
		FROM courses c
		JOIN users u ON u.id = c.facilitator_id
		LEFT JOIN enrollments e ON e.course_id = c.id AND e.is_active = true
		WHERE c.deleted_at IS NULL
		GROUP BY c.id, c.title, c.language, u.full_name
		ORDER BY enrolled DESC, c.id;
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []CourseEnrollmentReport{}
	for rows.Next() {
		var r CourseEnrollmentReport
		err := rows.Scan(
			&r.CourseID,
			&r.Title,
			&r.Language,
			&r.Facilitator,
			&r.Enrolled,
			&r.Completed,
			&r.AvgProgress,
		)
		if err != nil {
			return nil, err
		}
		if r.Enrolled > 0 {
			r.CompletionRate = float64(r.Completed) / float64(r.Enrolled)
		}
		reports = append(reports, r)
	}

	return reports, rows.Err()
}

// LanguageReport is one row of the per-language enrollment report
type LanguageReport struct {
	Language  string `json:"language"`
	Courses   int64  `json:"courses"`
	Learners  int64  `json:"learners"`
	Completed int64  `json:"completed"`
}

// EnrollmentsByLanguage aggregates the catalog by course language
func (s *ReportingStore) EnrollmentsByLanguage() ([]LanguageReport, error) {
	query := `
		SELECT c.language,
		       COUNT(DISTINCT c.id) AS courses,
		       COUNT(DISTINCT e.learner_id) AS learners,
		       COUNT(e.id) FILTER (WHERE e.status = 'completed') AS completed
		FROM courses c
		LEFT JOIN enrollments e ON e.course_id = c.id AND e.is_active = true
		WHERE c.deleted_at IS NULL
		GROUP BY c.language
		ORDER BY learners DESC;
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []LanguageReport{}
	for rows.Next() {
		var r LanguageReport
		if err := rows.Scan(&r.Language, &r.Courses, &r.Learners, &r.Completed); err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}

	return reports, rows.Err()
}
