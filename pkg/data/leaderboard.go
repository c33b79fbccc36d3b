package data

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

const (
	// LeaderboardLimitDefault is the number of rows shown per leaderboard.
	LeaderboardLimitDefault = 10

	selectHighRiskSQL = `SELECT
			employee_number,
			CASE WHEN attrition = 'Yes' THEN 1 ELSE 0 END AS attrition_risk,
			performance_rating
		FROM employee
		ORDER BY attrition_risk DESC, id
		LIMIT ?
	`

	selectHighSatisfactionSQL = `SELECT
			employee_number,
			job_satisfaction,
			CASE WHEN attrition = 'Yes' THEN 1 ELSE 0 END AS attrition_risk
		FROM employee
		WHERE job_satisfaction = 4
		ORDER BY id
		LIMIT ?
	`

	selectTopPerformersSQL = `SELECT
			employee_number,
			performance_rating,
			job_satisfaction
		FROM employee
		ORDER BY performance_rating DESC, id
		LIMIT ?
	`
)

type RiskEntry struct {
	EmployeeNumber    int64 `json:"employee_number" yaml:"employee_number"`
	AttritionRisk     int   `json:"attrition_risk" yaml:"attrition_risk"`
	PerformanceRating int   `json:"performance_rating" yaml:"performance_rating"`
}

type SatisfactionEntry struct {
	EmployeeNumber  int64 `json:"employee_number" yaml:"employee_number"`
	JobSatisfaction int   `json:"job_satisfaction" yaml:"job_satisfaction"`
	AttritionRisk   int   `json:"attrition_risk" yaml:"attrition_risk"`
}

type PerformanceEntry struct {
	EmployeeNumber    int64 `json:"employee_number" yaml:"employee_number"`
	PerformanceRating int   `json:"performance_rating" yaml:"performance_rating"`
	JobSatisfaction   int   `json:"job_satisfaction" yaml:"job_satisfaction"`
}

// Leaderboards groups the three dashboard tables.
type Leaderboards struct {
	HighRisk         []*RiskEntry         `json:"high_risk" yaml:"high_risk"`
	HighSatisfaction []*SatisfactionEntry `json:"high_satisfaction" yaml:"high_satisfaction"`
	TopPerformers    []*PerformanceEntry  `json:"top_performers" yaml:"top_performers"`
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return LeaderboardLimitDefault
	}
	return limit
}

// HighRisk lists employees who left first, in file order.
func (s *Store) HighRisk(ctx context.Context, limit int) ([]*RiskEntry, error) {
	return queryEntries(ctx, s, selectHighRiskSQL, limit, func(e *RiskEntry) []any {
		return []any{&e.EmployeeNumber, &e.AttritionRisk, &e.PerformanceRating}
	})
}

// HighSatisfaction lists employees with the top job satisfaction score.
func (s *Store) HighSatisfaction(ctx context.Context, limit int) ([]*SatisfactionEntry, error) {
	return queryEntries(ctx, s, selectHighSatisfactionSQL, limit, func(e *SatisfactionEntry) []any {
		return []any{&e.EmployeeNumber, &e.JobSatisfaction, &e.AttritionRisk}
	})
}

// TopPerformers lists employees by performance rating, highest first.
func (s *Store) TopPerformers(ctx context.Context, limit int) ([]*PerformanceEntry, error) {
	return queryEntries(ctx, s, selectTopPerformersSQL, limit, func(e *PerformanceEntry) []any {
		return []any{&e.EmployeeNumber, &e.PerformanceRating, &e.JobSatisfaction}
	})
}

// GetLeaderboards runs the three leaderboard queries concurrently.
func (s *Store) GetLeaderboards(ctx context.Context, limit int) (*Leaderboards, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	lb := &Leaderboards{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		lb.HighRisk, err = s.HighRisk(gCtx, limit)
		return err
	})
	g.Go(func() error {
		var err error
		lb.HighSatisfaction, err = s.HighSatisfaction(gCtx, limit)
		return err
	})
	g.Go(func() error {
		var err error
		lb.TopPerformers, err = s.TopPerformers(gCtx, limit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lb, nil
}

func queryEntries[T any](ctx context.Context, s *Store, q string, limit int, fields func(*T) []any) ([]*T, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(q), normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	list := make([]*T, 0)
	for rows.Next() {
		e := new(T)
		if err := rows.Scan(fields(e)...); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard rows: %w", err)
	}

	return list, nil
}
