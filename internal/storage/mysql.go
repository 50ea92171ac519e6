package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"ctp/internal/domain"
)

// runsTable holds one row per run; the full document is kept as JSON so
// faills can restore it as is.
const runsTable = "ctp_runs"

const createRunsTable = "CREATE TABLE IF NOT EXISTS `" + runsTable + "` (" +
	"`run_id` CHAR(36) NOT NULL PRIMARY KEY," +
	"`created_at` DATETIME(6) NOT NULL," +
	"`total_tests` INT NOT NULL," +
	"`passed_tests` INT NOT NULL," +
	"`failed_tests` INT NOT NULL," +
	"`errored_tests` INT NOT NULL," +
	"`skipped_tests` INT NOT NULL," +
	"`duration_seconds` DOUBLE NOT NULL," +
	"`document` LONGTEXT NOT NULL," +
	"KEY `idx_created_at` (`created_at`)" +
	")"

// MySQLStorage keeps the history of runs in a MySQL table. Load returns the
// most recent run.
type MySQLStorage struct {
	db *sql.DB
}

// NewMySQLStorage opens the database named by dsn and creates the runs table
// when missing.
func NewMySQLStorage(dsn string) (*MySQLStorage, error) {
	if _, err := mysql.ParseDSN(dsn); err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}
	if _, err := db.Exec(createRunsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create %s table: %w", runsTable, err)
	}
	return &MySQLStorage{db: db}, nil
}

// Close closes the database handle.
func (s *MySQLStorage) Close() error {
	return s.db.Close()
}

// Save stores a new run.
func (s *MySQLStorage) Save(results []domain.TestResult, duration time.Duration, workers int) (*domain.TestResultsOutput, error) {
	output := BuildOutput(results, duration, workers)
	if err := s.SaveOutput(output); err != nil {
		return nil, err
	}
	return output, nil
}

// SaveOutput inserts the run, or replaces it when its run id is known.
func (s *MySQLStorage) SaveOutput(output *domain.TestResultsOutput) error {
	doc, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	created, err := time.Parse(time.RFC3339, output.Meta.Timestamp)
	if err != nil {
		created = time.Now()
	}

	m := output.Meta
	_, err = s.db.Exec("INSERT INTO `"+runsTable+"` "+
		"(run_id, created_at, total_tests, passed_tests, failed_tests, errored_tests, skipped_tests, duration_seconds, document) "+
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) "+
		"ON DUPLICATE KEY UPDATE passed_tests = VALUES(passed_tests), failed_tests = VALUES(failed_tests), "+
		"errored_tests = VALUES(errored_tests), document = VALUES(document)",
		m.RunID, created.UTC(), m.TotalTests, m.PassedTests, m.FailedTests, m.ErroredTests, m.SkippedTests, m.DurationSeconds, string(doc),
	)
	if err != nil {
		return fmt.Errorf("store run %s: %w", m.RunID, err)
	}
	return nil
}

// Load returns the most recent run.
func (s *MySQLStorage) Load() (*domain.TestResultsOutput, error) {
	var doc string
	err := s.db.QueryRow("SELECT document FROM `" + runsTable + "` ORDER BY created_at DESC LIMIT 1").Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoResults
	}
	if err != nil {
		return nil, fmt.Errorf("load last run: %w", err)
	}

	var output domain.TestResultsOutput
	if err := json.Unmarshal([]byte(doc), &output); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &output, nil
}
