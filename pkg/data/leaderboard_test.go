package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func riskNumbers(list []*RiskEntry) []int64 {
	out := make([]int64, 0, len(list))
	for _, e := range list {
		out = append(out, e.EmployeeNumber)
	}
	return out
}

func TestHighRisk(t *testing.T) {
	s := setupTestDB(t)
	seedTestData(t, s)

	list, err := s.HighRisk(t.Context(), 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{102, 104, 101, 103, 105, 106}, riskNumbers(list))
	assert.Equal(t, 1, list[0].AttritionRisk)
	assert.Equal(t, 4, list[0].PerformanceRating)
	assert.Equal(t, 0, list[2].AttritionRisk)

	list, err = s.HighRisk(t.Context(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{102, 104}, riskNumbers(list))
}

func TestHighSatisfaction(t *testing.T) {
	s := setupTestDB(t)
	seedTestData(t, s)

	list, err := s.HighSatisfaction(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, list, 3)

	nums := []int64{list[0].EmployeeNumber, list[1].EmployeeNumber, list[2].EmployeeNumber}
	assert.Equal(t, []int64{101, 103, 106}, nums)
	for _, e := range list {
		assert.Equal(t, 4, e.JobSatisfaction)
		assert.Equal(t, 0, e.AttritionRisk)
	}
}

func TestTopPerformers(t *testing.T) {
	s := setupTestDB(t)
	seedTestData(t, s)

	list, err := s.TopPerformers(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, list, 6)

	nums := make([]int64, 0, len(list))
	for _, e := range list {
		nums = append(nums, e.EmployeeNumber)
	}
	assert.Equal(t, []int64{102, 103, 106, 101, 104, 105}, nums)
	assert.Equal(t, 4, list[0].PerformanceRating)
	assert.Equal(t, 1, list[0].JobSatisfaction)
}

func TestGetLeaderboards(t *testing.T) {
	s := setupTestDB(t)
	seedTestData(t, s)

	lb, err := s.GetLeaderboards(t.Context(), 3)
	require.NoError(t, err)
	assert.Len(t, lb.HighRisk, 3)
	assert.Len(t, lb.HighSatisfaction, 3)
	assert.Len(t, lb.TopPerformers, 3)
}

func TestGetLeaderboards_Empty(t *testing.T) {
	s := setupTestDB(t)
	lb, err := s.GetLeaderboards(t.Context(), 10)
	require.NoError(t, err)
	assert.Empty(t, lb.HighRisk)
	assert.Empty(t, lb.HighSatisfaction)
	assert.Empty(t, lb.TopPerformers)
}

func TestGetLeaderboards_LimitAboveRows(t *testing.T) {
	s := setupTestDB(t)
	require.NoError(t, s.ReplaceEmployees(t.Context(), "gen", Generate(25, 7)))

	lb, err := s.GetLeaderboards(t.Context(), LeaderboardLimitDefault)
	require.NoError(t, err)
	assert.Len(t, lb.HighRisk, LeaderboardLimitDefault)
	assert.Len(t, lb.TopPerformers, LeaderboardLimitDefault)
	assert.LessOrEqual(t, len(lb.HighSatisfaction), LeaderboardLimitDefault)

	for i := 1; i < len(lb.HighRisk); i++ {
		assert.GreaterOrEqual(t, lb.HighRisk[i-1].AttritionRisk, lb.HighRisk[i].AttritionRisk)
	}
	for i := 1; i < len(lb.TopPerformers); i++ {
		assert.GreaterOrEqual(t, lb.TopPerformers[i-1].PerformanceRating, lb.TopPerformers[i].PerformanceRating)
	}
}
