package db

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// Enabled reports whether Postgres persistence is configured
func Enabled() bool {
	return os.Getenv("DATABASE_URL") != "" || os.Getenv("DB_HOST") != ""
}

// NewDB opens the connection described by DATABASE_URL or the DB_*
// variables and ensures the schema exists
func NewDB() (*DB, error) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "hvac_scraper")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "hvac_scraper")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables if they don't exist
func (db *DB) initSchema() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id SERIAL PRIMARY KEY,
			keyword TEXT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'in_progress',
			contracts_count INTEGER DEFAULT 0,
			pages_count INTEGER DEFAULT 0,
			expected_total INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT valid_status CHECK (status IN ('in_progress', 'done', 'failed'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS contracts (
			id SERIAL PRIMARY KEY,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			contract_id TEXT,
			title TEXT NOT NULL,
			agency TEXT,
			location TEXT,
			dates TEXT,
			estimated_value TEXT,
			url TEXT NOT NULL,
			search_keyword TEXT,
			page_number INTEGER,
			relevance_score INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (run_id, url)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create contracts table: %w", err)
	}

	return nil
}
