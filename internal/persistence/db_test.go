package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/civicsim/internal/civic"
	"github.com/talgya/civicsim/internal/scenario"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "content.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadCatalogEmptyStore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	has, err := db.HasContent(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = db.LoadCatalog(ctx)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestCatalogRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	original := scenario.Default()

	require.NoError(t, db.SaveCatalog(ctx, original, "embedded"))

	has, err := db.HasContent(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	loaded, err := db.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, original.Scenarios(), loaded.Scenarios())

	count, err := db.GetMeta(ctx, "scenario_count")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(original.Len()), count)

	_, err = db.GetMeta(ctx, "imported_at")
	assert.NoError(t, err)

	source, err := db.GetMeta(ctx, "source")
	require.NoError(t, err)
	assert.Equal(t, "embedded", source)
}

func TestSaveCatalogReplacesContent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.SaveCatalog(ctx, scenario.Default(), "embedded"))

	small, err := scenario.NewCatalog([]scenario.Scenario{{
		ID:    "only",
		Title: "Only Scenario",
		Choices: []scenario.Choice{
			{ID: "up", Text: "Up", Impact: civic.ChoiceImpact{Empathy: 3, CooperationLevel: -2}},
			{ID: "down", Text: "Down"},
		},
	}})
	require.NoError(t, err)
	require.NoError(t, db.SaveCatalog(ctx, small, "small.yaml"))

	loaded, err := db.LoadCatalog(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, small.Scenarios(), loaded.Scenarios())

	source, err := db.GetMeta(ctx, "source")
	require.NoError(t, err)
	assert.Equal(t, "small.yaml", source)
}

func TestSaveCatalogFailureKeepsPreviousContentAndSource(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.SaveCatalog(ctx, scenario.Default(), "embedded"))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, db.SaveCatalog(cancelled, scenario.Default(), "other.yaml"))

	source, err := db.GetMeta(ctx, "source")
	require.NoError(t, err)
	assert.Equal(t, "embedded", source)

	loaded, err := db.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, scenario.Default().Len(), loaded.Len())
}

func TestLoadCatalogRejectsUnknownField(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.SaveCatalog(ctx, scenario.Default(), "embedded"))

	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO choice_impacts (choice_id, field, delta) VALUES (?, ?, ?)",
		"queue-accept", "karma", 4)
	require.NoError(t, err)

	_, err = db.LoadCatalog(ctx)
	assert.ErrorIs(t, err, civic.ErrUnknownField)
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.GetMeta(ctx, "source")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, db.SaveMeta(ctx, "source", "embedded"))
	require.NoError(t, db.SaveMeta(ctx, "source", "file"))
	v, err := db.GetMeta(ctx, "source")
	require.NoError(t, err)
	assert.Equal(t, "file", v)
}
