//go:build integration

package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupPostgresStore(t *testing.T) *Store {
	t.Helper()
	ctx := t.Context()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("attrition"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.True(t, IsPostgres(dsn))

	s, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresStore(t *testing.T) {
	s := setupPostgresStore(t)
	seedTestData(t, s)

	sum, err := s.GetSummary(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(6), sum.Employees)
	assert.Equal(t, int64(2), sum.Leavers)

	lb, err := s.GetLeaderboards(t.Context(), 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{102, 104, 101, 103, 105, 106}, riskNumbers(lb.HighRisk))
	assert.Len(t, lb.HighSatisfaction, 3)
	assert.Equal(t, int64(102), lb.TopPerformers[0].EmployeeNumber)

	roles, err := s.JobRoles(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Sales Executive", roles[0])

	a, err := s.GetEmployeeAttributes(t.Context(), 101)
	require.NoError(t, err)
	assert.NoError(t, a.Validate())
}
