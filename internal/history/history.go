package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jhlee0409/selfish-pipeline/internal/db"
)

// Attempt is one recorded installer run
type Attempt struct {
	ID        string    `yaml:"id"`
	Scope     string    `yaml:"scope,omitempty"`
	Plugin    string    `yaml:"plugin"`
	Repo      string    `yaml:"repo"`
	Outcome   string    `yaml:"outcome"`
	CreatedAt time.Time `yaml:"created_at"`
}

// ExportData represents the structure of exported history
type ExportData struct {
	Version  int       `yaml:"version"`
	Installs []Attempt `yaml:"installs"`
}

// Recorder stores installer outcomes for a fixed plugin and repository
type Recorder struct {
	plugin string
	repo   string
}

// NewRecorder creates a Recorder for plugin (name@marketplace) from repo
func NewRecorder(plugin, repo string) *Recorder {
	return &Recorder{plugin: plugin, repo: repo}
}

// Record stores one outcome
func (r *Recorder) Record(scope, outcome string) error {
	return Add(Attempt{
		Scope:   scope,
		Plugin:  r.plugin,
		Repo:    r.repo,
		Outcome: outcome,
	})
}

// Add inserts an attempt, filling in the ID and timestamp when unset
func Add(a Attempt) error {
	database := db.GetDB()
	if database == nil {
		return fmt.Errorf("database not initialized")
	}

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	_, err := database.Exec(
		"INSERT INTO installs (id, scope, plugin, repo, outcome, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		a.ID, a.Scope, a.Plugin, a.Repo, a.Outcome, a.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert install attempt: %w", err)
	}
	return nil
}

// List returns the most recent attempts, newest first. limit <= 0 returns all.
func List(limit int) ([]Attempt, error) {
	database := db.GetDB()
	if database == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := "SELECT id, scope, plugin, repo, outcome, created_at FROM installs ORDER BY created_at DESC, rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := database.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query installs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var createdAt int64
		if err := rows.Scan(&a.ID, &a.Scope, &a.Plugin, &a.Repo, &a.Outcome, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan install: %w", err)
		}
		a.CreatedAt = time.Unix(createdAt, 0)
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}

// Stats returns the number of attempts per outcome
func Stats() (map[string]int, error) {
	database := db.GetDB()
	if database == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := database.Query("SELECT outcome, COUNT(*) FROM installs GROUP BY outcome")
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := make(map[string]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats[outcome] = count
	}

	return stats, rows.Err()
}

// Clear deletes every recorded attempt and returns how many were removed
func Clear() (int, error) {
	database := db.GetDB()
	if database == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	result, err := database.Exec("DELETE FROM installs")
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}

	count, _ := result.RowsAffected()
	return int(count), nil
}

// Export renders the full history as YAML, newest first
func Export() ([]byte, error) {
	attempts, err := List(0)
	if err != nil {
		return nil, err
	}

	data := ExportData{
		Version:  1,
		Installs: attempts,
	}

	output, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal to YAML: %w", err)
	}
	return output, nil
}
