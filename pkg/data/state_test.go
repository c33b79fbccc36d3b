package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSummary_Empty(t *testing.T) {
	s := setupTestDB(t)
	sum, err := s.GetSummary(t.Context())
	require.NoError(t, err)
	assert.True(t, sum.Empty())
	assert.Equal(t, 0.0, sum.AttritionRate)
	assert.Empty(t, sum.Source)
}

func TestGetSummary_AfterImport(t *testing.T) {
	s := setupTestDB(t)
	seedTestData(t, s)

	sum, err := s.GetSummary(t.Context())
	require.NoError(t, err)
	assert.False(t, sum.Empty())
	assert.Equal(t, int64(6), sum.Employees)
	assert.Equal(t, int64(2), sum.Leavers)
	assert.InDelta(t, 1.0/3.0, sum.AttritionRate, 1e-9)
	assert.Equal(t, "test.csv", sum.Source)
	assert.Equal(t, int64(6), sum.ImportedRows)
	assert.NotEmpty(t, sum.ImportedAt)
}

func TestGetSummary_SkipsNilRecords(t *testing.T) {
	s := setupTestDB(t)

	list := testRecords()
	withGaps := []*Record{nil, list[0], list[1], nil, list[2]}
	require.NoError(t, s.ReplaceEmployees(t.Context(), "gaps.csv", withGaps))

	sum, err := s.GetSummary(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(3), sum.Employees)
	assert.Equal(t, int64(3), sum.ImportedRows)
	assert.Equal(t, sum.Employees, sum.ImportedRows)

	var maxID int64
	require.NoError(t, s.db.QueryRowContext(t.Context(), "SELECT MAX(id) FROM employee").Scan(&maxID))
	assert.Equal(t, int64(3), maxID)
}

func TestSummary_NilIsEmpty(t *testing.T) {
	var sum *Summary
	assert.True(t, sum.Empty())
}

func TestClear(t *testing.T) {
	s := setupTestDB(t)
	seedTestData(t, s)

	require.NoError(t, s.Clear(t.Context()))

	sum, err := s.GetSummary(t.Context())
	require.NoError(t, err)
	assert.True(t, sum.Empty())
	assert.Empty(t, sum.Source)

	_, err = s.GetEmployee(t.Context(), 101)
	assert.ErrorIs(t, err, ErrNotFound)
}
