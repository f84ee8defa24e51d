package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/jhlee0409/selfish-pipeline/internal/config"
)

const fileName = "selfish.db"

var (
	db   *sql.DB
	once sync.Once
)

// Path returns the location of the history database
func Path() (string, error) {
	configDir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, fileName), nil
}

// InitDB initializes the database connection and creates tables if needed
func InitDB() error {
	var err error
	once.Do(func() {
		dbPath, e := Path()
		if e != nil {
			err = e
			return
		}

		// Create config directory
		if e := os.MkdirAll(filepath.Dir(dbPath), 0755); e != nil {
			err = fmt.Errorf("failed to create config directory: %w", e)
			return
		}

		// Open database
		db, e = sql.Open("sqlite", dbPath)
		if e != nil {
			err = fmt.Errorf("failed to open database: %w", e)
			return
		}

		err = createTables()
	})
	return err
}

// GetDB returns the database instance
func GetDB() *sql.DB {
	return db
}

// Close closes the database connection
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// ResetForTesting drops the singleton so the next InitDB opens a fresh database
func ResetForTesting() {
	db = nil
	once = sync.Once{}
}

// createTables creates the necessary database tables
func createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS installs (
		id TEXT PRIMARY KEY,
		scope TEXT NOT NULL DEFAULT '',
		plugin TEXT NOT NULL,
		repo TEXT NOT NULL,
		outcome TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_installs_created ON installs(created_at);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}
