// Package persistence provides SQLite-based storage for scenario content.
// Only the static catalog lives here; running sessions are never stored.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/civicsim/internal/civic"
	"github.com/talgya/civicsim/internal/scenario"
)

// ErrNoContent is returned when loading from a store with no imported catalog.
var ErrNoContent = errors.New("no scenario content")

// DB wraps a SQLite connection for scenario content.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		context TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS choices (
		id TEXT PRIMARY KEY,
		scenario_id TEXT NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		text TEXT NOT NULL,
		consequence TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS choice_impacts (
		choice_id TEXT NOT NULL REFERENCES choices(id) ON DELETE CASCADE,
		field TEXT NOT NULL,
		delta INTEGER NOT NULL,
		PRIMARY KEY (choice_id, field)
	);

	CREATE TABLE IF NOT EXISTS content_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scenarios_position ON scenarios(position);
	CREATE INDEX IF NOT EXISTS idx_choices_scenario ON choices(scenario_id, position);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type scenarioRow struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Context     string `db:"context"`
}

type choiceRow struct {
	ID          string `db:"id"`
	ScenarioID  string `db:"scenario_id"`
	Text        string `db:"text"`
	Consequence string `db:"consequence"`
}

type impactRow struct {
	ChoiceID string `db:"choice_id"`
	Field    string `db:"field"`
	Delta    int    `db:"delta"`
}

// SaveCatalog replaces all stored content with the given catalog and records
// where it came from, all in one transaction.
func (db *DB) SaveCatalog(ctx context.Context, c *scenario.Catalog, source string) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"choice_impacts", "choices", "scenarios"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	scenarioStmt, err := tx.PreparexContext(ctx, `INSERT INTO scenarios
		(id, position, title, description, context) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer scenarioStmt.Close()

	choiceStmt, err := tx.PreparexContext(ctx, `INSERT INTO choices
		(id, scenario_id, position, text, consequence) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer choiceStmt.Close()

	impactStmt, err := tx.PreparexContext(ctx, `INSERT INTO choice_impacts
		(choice_id, field, delta) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer impactStmt.Close()

	for i, s := range c.Scenarios() {
		if _, err := scenarioStmt.ExecContext(ctx, s.ID, i, s.Title, s.Description, s.Context); err != nil {
			return fmt.Errorf("insert scenario %s: %w", s.ID, err)
		}
		for j, ch := range s.Choices {
			if _, err := choiceStmt.ExecContext(ctx, ch.ID, s.ID, j, ch.Text, ch.Consequence); err != nil {
				return fmt.Errorf("insert choice %s: %w", ch.ID, err)
			}
			// Absent fields mean zero, so only declared deltas are stored.
			for _, d := range ch.Impact.NonZero() {
				if _, err := impactStmt.ExecContext(ctx, ch.ID, d.Field.String(), d.Delta); err != nil {
					return fmt.Errorf("insert impact %s/%s: %w", ch.ID, d.Field, err)
				}
			}
		}
	}

	meta := map[string]string{
		"imported_at":    time.Now().UTC().Format(time.RFC3339),
		"scenario_count": strconv.Itoa(c.Len()),
		"source":         source,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR REPLACE INTO content_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("scenario content saved", "scenarios", c.Len(), "source", source)
	return nil
}

// LoadCatalog rebuilds the stored catalog in play order.
func (db *DB) LoadCatalog(ctx context.Context) (*scenario.Catalog, error) {
	var scenarioRows []scenarioRow
	if err := db.conn.SelectContext(ctx, &scenarioRows,
		"SELECT id, title, description, context FROM scenarios ORDER BY position"); err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}
	if len(scenarioRows) == 0 {
		return nil, ErrNoContent
	}

	var choiceRows []choiceRow
	if err := db.conn.SelectContext(ctx, &choiceRows,
		"SELECT id, scenario_id, text, consequence FROM choices ORDER BY scenario_id, position"); err != nil {
		return nil, fmt.Errorf("load choices: %w", err)
	}

	var impactRows []impactRow
	if err := db.conn.SelectContext(ctx, &impactRows,
		"SELECT choice_id, field, delta FROM choice_impacts"); err != nil {
		return nil, fmt.Errorf("load impacts: %w", err)
	}

	impacts := make(map[string]civic.ChoiceImpact)
	for _, r := range impactRows {
		f, err := civic.ParseField(r.Field)
		if err != nil {
			return nil, fmt.Errorf("impact for choice %s: %w", r.ChoiceID, err)
		}
		impact := impacts[r.ChoiceID]
		impact.Set(f, r.Delta)
		impacts[r.ChoiceID] = impact
	}

	choices := make(map[string][]scenario.Choice)
	for _, r := range choiceRows {
		choices[r.ScenarioID] = append(choices[r.ScenarioID], scenario.Choice{
			ID:          r.ID,
			Text:        r.Text,
			Impact:      impacts[r.ID],
			Consequence: r.Consequence,
		})
	}

	scenarios := make([]scenario.Scenario, 0, len(scenarioRows))
	for _, r := range scenarioRows {
		scenarios = append(scenarios, scenario.Scenario{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Context:     r.Context,
			Choices:     choices[r.ID],
		})
	}

	c, err := scenario.NewCatalog(scenarios)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

// HasContent reports whether a catalog has been imported.
func (db *DB) HasContent(ctx context.Context) (bool, error) {
	var count int
	if err := db.conn.GetContext(ctx, &count, "SELECT COUNT(*) FROM scenarios"); err != nil {
		return false, err
	}
	return count > 0, nil
}

// SaveMeta stores a key-value pair in content metadata.
func (db *DB) SaveMeta(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO content_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. A missing key returns sql.ErrNoRows.
func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.GetContext(ctx, &value, "SELECT value FROM content_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %q: %w", key, err)
	}
	return value, err
}
