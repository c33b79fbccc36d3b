package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	selectCountsSQL = `SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN attrition = 'Yes' THEN 1 ELSE 0 END), 0)
		FROM employee
	`

	selectImportStateSQL = `SELECT source, row_count, imported_at FROM import_state WHERE id = 1`
)

// Summary describes the currently imported dataset.
type Summary struct {
	Employees     int64   `json:"employees" yaml:"employees"`
	Leavers       int64   `json:"leavers" yaml:"leavers"`
	AttritionRate float64 `json:"attrition_rate" yaml:"attrition_rate"`
	Source        string  `json:"source,omitempty" yaml:"source,omitempty"`
	ImportedRows  int64   `json:"imported_rows,omitempty" yaml:"imported_rows,omitempty"`
	ImportedAt    string  `json:"imported_at,omitempty" yaml:"imported_at,omitempty"`
}

// Empty reports whether no dataset has been imported.
func (s *Summary) Empty() bool {
	return s == nil || s.Employees == 0
}

// GetSummary returns the counts and import metadata of the dataset.
func (s *Store) GetSummary(ctx context.Context) (*Summary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	sum := &Summary{}
	if err := s.db.QueryRowContext(ctx, selectCountsSQL).Scan(&sum.Employees, &sum.Leavers); err != nil {
		return nil, fmt.Errorf("failed to query employee counts: %w", err)
	}

	if sum.Employees > 0 {
		sum.AttritionRate = float64(sum.Leavers) / float64(sum.Employees)
	}

	err := s.db.QueryRowContext(ctx, selectImportStateSQL).Scan(&sum.Source, &sum.ImportedRows, &sum.ImportedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query import state: %w", err)
	}

	return sum, nil
}
