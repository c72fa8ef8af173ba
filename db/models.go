package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ReliProjectW/bidnet-hvac-scraper/models"
)

// Run represents a single scrape run
type Run struct {
	ID             int
	Keyword        string
	Status         string // "in_progress", "done", "failed"
	ContractsCount int
	PagesCount     int
	ExpectedTotal  sql.NullInt64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateRun records the start of a scrape run
func (db *DB) CreateRun(keyword string) (*Run, error) {
	var run Run
	err := db.conn.QueryRow(`
		INSERT INTO runs (keyword, status)
		VALUES ($1, 'in_progress')
		RETURNING id, keyword, status, contracts_count, pages_count, expected_total, created_at, updated_at
	`, keyword).Scan(
		&run.ID, &run.Keyword, &run.Status, &run.ContractsCount,
		&run.PagesCount, &run.ExpectedTotal, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return &run, nil
}

// FinishRun records the run's final status and counts
func (db *DB) FinishRun(runID int, status string, contractsCount, pagesCount int, expectedTotal *int) error {
	var expectedVal sql.NullInt64
	if expectedTotal != nil {
		expectedVal = sql.NullInt64{Int64: int64(*expectedTotal), Valid: true}
	}

	_, err := db.conn.Exec(`
		UPDATE runs
		SET status = $1, contracts_count = $2, pages_count = $3, expected_total = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = $5
	`, status, contractsCount, pagesCount, expectedVal, runID)
	return err
}

// SaveContracts bulk-inserts the run's contracts in one transaction.
// The (run_id, url) unique constraint backs the run-scoped
// deduplication invariant.
func (db *DB) SaveContracts(runID int, contracts []models.Contract) error {
	if len(contracts) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO contracts (run_id, contract_id, title, agency, location, dates, estimated_value, url, search_keyword, page_number, relevance_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range contracts {
		_, err := stmt.Exec(runID, c.ContractID, c.Title, c.Agency, c.Location,
			c.Dates, c.EstimatedValue, c.URL, c.SearchKeyword, c.PageNumber, c.RelevanceScore)
		if err != nil {
			return fmt.Errorf("failed to insert contract %q: %w", c.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRunByID retrieves a run by ID
func (db *DB) GetRunByID(runID int) (*Run, error) {
	var run Run
	err := db.conn.QueryRow(`
		SELECT id, keyword, status, contracts_count, pages_count, expected_total, created_at, updated_at
		FROM runs
		WHERE id = $1
	`, runID).Scan(
		&run.ID, &run.Keyword, &run.Status, &run.ContractsCount,
		&run.PagesCount, &run.ExpectedTotal, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
