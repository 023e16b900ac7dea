package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/skybrief/skybrief/internal/weather"
	"github.com/skybrief/skybrief/pkg/logger"
	_ "modernc.org/sqlite"
)

// ReportRecord is a historical weather report row
type ReportRecord struct {
	ID        int64     `json:"id"`
	Airport   string    `json:"airport"`
	Type      string    `json:"type"`
	Raw       string    `json:"raw"`
	Summary   string    `json:"summary"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NOTAMHistoryRecord is a historical NOTAM row
type NOTAMHistoryRecord struct {
	ID        int64     `json:"id"`
	Number    string    `json:"number"`
	Airport   string    `json:"airport"`
	Text      string    `json:"text"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Status    string    `json:"status"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ReportStorage is a SQLite-based storage for briefing history
type ReportStorage struct {
	db              *sql.DB
	logger          *logger.Logger
	maxReportsInAPI int
}

// NewReportStorage creates a new SQLite-based report storage
func NewReportStorage(dbPath string, maxReportsInAPI int, log *logger.Logger) (*ReportStorage, error) {
	storageLogger := log.Named("sqlite")

	storageLogger.Info("Initializing SQLite storage",
		logger.String("path", dbPath))

	// Open the database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool limits
	db.SetMaxOpenConns(1) // SQLite only supports one writer at a time
	db.SetMaxIdleConns(1)

	// Set pragmas for better performance and concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Create tables if they don't exist
	if err := initDatabase(db, storageLogger); err != nil {
		db.Close()
		return nil, err
	}

	return &ReportStorage{
		db:              db,
		logger:          storageLogger,
		maxReportsInAPI: maxReportsInAPI,
	}, nil
}

// Close closes the database connection
func (s *ReportStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetDB returns the database connection
func (s *ReportStorage) GetDB() *sql.DB {
	return s.db
}

// initDatabase initializes the database schema
func initDatabase(db *sql.DB, log *logger.Logger) error {
	log.Info("Initializing database schema")

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			airport TEXT NOT NULL,
			type TEXT NOT NULL,
			raw TEXT NOT NULL,
			summary TEXT,
			fetched_at TIMESTAMP NOT NULL,
			UNIQUE(airport, type, raw)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS notams (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			number TEXT NOT NULL,
			airport TEXT NOT NULL,
			text TEXT NOT NULL,
			start_date TEXT,
			end_date TEXT,
			status TEXT,
			fetched_at TIMESTAMP NOT NULL,
			UNIQUE(number, airport)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create notams table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reports_airport_type
		ON reports(airport, type, fetched_at DESC)
	`)
	if err != nil {
		return fmt.Errorf("failed to create reports index: %w", err)
	}

	return nil
}

// SaveReport stores a fetched report, ignoring duplicates of the same raw text
func (s *ReportStorage) SaveReport(airport string, reportType string, raw string, summary string, fetchedAt time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO reports (airport, type, raw, summary, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(airport, type, raw) DO NOTHING
	`, airport, reportType, raw, summary, fetchedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// SaveNOTAMs stores a batch of decoded NOTAMs, updating status on conflict
func (s *ReportStorage) SaveNOTAMs(airport string, notams []weather.DecodedNOTAM, fetchedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO notams (number, airport, text, start_date, end_date, status, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(number, airport) DO UPDATE SET
			status = excluded.status,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, n := range notams {
		if _, err := stmt.Exec(n.Number, airport, n.Text, n.StartDate, n.EndDate, string(n.Status.Status), fetchedAt); err != nil {
			return fmt.Errorf("failed to save NOTAM %s: %w", n.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("Saved NOTAM batch",
		logger.String("airport", airport),
		logger.Int("count", len(notams)))
	return nil
}

// GetRecentReports returns the most recent stored reports for an airport,
// newest first. reportType filters to "metar" or "taf" when non-empty.
func (s *ReportStorage) GetRecentReports(airport string, reportType string, limit int) ([]ReportRecord, error) {
	if limit <= 0 || limit > s.maxReportsInAPI {
		limit = s.maxReportsInAPI
	}

	query := `
		SELECT id, airport, type, raw, summary, fetched_at
		FROM reports
		WHERE airport = ?
	`
	args := []any{airport}
	if reportType != "" {
		query += " AND type = ?"
		args = append(args, reportType)
	}
	query += " ORDER BY fetched_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	records := make([]ReportRecord, 0, limit)
	for rows.Next() {
		var rec ReportRecord
		if err := rows.Scan(&rec.ID, &rec.Airport, &rec.Type, &rec.Raw, &rec.Summary, &rec.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetRecentNOTAMs returns the most recently seen NOTAMs for an airport
func (s *ReportStorage) GetRecentNOTAMs(airport string, limit int) ([]NOTAMHistoryRecord, error) {
	if limit <= 0 || limit > s.maxReportsInAPI {
		limit = s.maxReportsInAPI
	}

	rows, err := s.db.Query(`
		SELECT id, number, airport, text, start_date, end_date, status, fetched_at
		FROM notams
		WHERE airport = ?
		ORDER BY fetched_at DESC
		LIMIT ?
	`, airport, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notams: %w", err)
	}
	defer rows.Close()

	records := make([]NOTAMHistoryRecord, 0, limit)
	for rows.Next() {
		var rec NOTAMHistoryRecord
		if err := rows.Scan(&rec.ID, &rec.Number, &rec.Airport, &rec.Text, &rec.StartDate, &rec.EndDate, &rec.Status, &rec.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notam row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
