package xgtable

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTestDatabase points the shared connection at a throwaway sqlite file
func useTestDatabase(t *testing.T) {
	t.Helper()
	original := Config.DbPath
	Config.DbPath = filepath.Join(t.TempDir(), "xgtable-test.db")
	require.NoError(t, CloseDatabase())
	t.Cleanup(func() {
		CloseDatabase()
		Config.DbPath = original
	})
	require.NoError(t, CreateTables())
}

func TestSaveAndFindMatch(t *testing.T) {
	useTestDatabase(t)

	m := testMatch("2024-08-17", "Arsenal", "Wolves", 2, 0, 10, 3, 5, 2)
	EnrichMatches([]*Match{m})
	require.NoError(t, Save(m))

	exists, err := Exists(m)
	require.NoError(t, err)
	assert.True(t, exists)

	results, err := FindWhere(&Match{}, "homeTeam = ?", "Arsenal")
	require.NoError(t, err)
	require.Len(t, results, 1)

	loaded, ok := results[0].(*Match)
	require.True(t, ok)
	assert.Equal(t, m.ID, loaded.ID)
	assert.Equal(t, 2, loaded.HomeGoals)
	assert.InDelta(t, m.HomeXgScored, loaded.HomeXgScored, 1e-9)
}

func TestSaveUpdatesExistingMatch(t *testing.T) {
	useTestDatabase(t)

	m := testMatch("2024-08-17", "Arsenal", "Wolves", 2, 0, 10, 3, 5, 2)
	require.NoError(t, Save(m))

	m.HomeGoals = 3
	require.NoError(t, Save(m))

	results, err := FindAll(&Match{})
	require.NoError(t, err)
	require.Len(t, results, 1, "saving the same key twice should update, not duplicate")
	assert.Equal(t, 3, results[0].(*Match).HomeGoals)
}

func TestBulkSaveTable(t *testing.T) {
	useTestDatabase(t)

	matches := twoTeamSeason(t)
	table := AggregateTeamStats(matches, "2425")
	require.NoError(t, SaveTable(table))

	results, err := FindWhere(&TeamRow{}, "season = ? ORDER BY rank", "2425")
	require.NoError(t, err)
	require.Len(t, results, 2)

	first := results[0].(*TeamRow)
	assert.Equal(t, "Arsenal", first.Team)
	assert.Equal(t, 1, first.Rank)
}

// abortRow refuses to save, forcing a mid-batch failure
type abortRow struct {
	TeamRow
}

func (a *abortRow) BeforeSave() error {
	return assert.AnError
}

func TestBulkSaveRollsBackOnFailure(t *testing.T) {
	useTestDatabase(t)

	good := &TeamRow{Team: "Arsenal", Season: "2425", Points: 4}
	err := BulkSave([]Persistable{good, &abortRow{}})
	require.Error(t, err)

	// The batch is atomic: the row saved before the failure must be gone
	results, err := FindAll(&TeamRow{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSaveTableEmpty(t *testing.T) {
	useTestDatabase(t)
	assert.NoError(t, SaveTable([]*TeamRow{}))
	assert.NoError(t, SaveMatches([]*Match{}))
}
