package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mchmarny/attrition/pkg/attrition"
)

const (
	AttritionYes = "Yes"
	AttritionNo  = "No"

	deleteEmployeesSQL   = `DELETE FROM employee`
	deleteImportStateSQL = `DELETE FROM import_state`

	insertEmployeeSQL = `INSERT INTO employee (
			id,
			employee_number,
			attrition,
			performance_rating,
			job_satisfaction,
			job_role,
			age,
			monthly_income,
			distance_from_home,
			over_time,
			work_life_balance,
			department,
			gender,
			years_at_company,
			marital_status,
			total_working_years,
			num_companies_worked,
			environment_satisfaction,
			relationship_satisfaction
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectEmployeeSQL = `SELECT
			employee_number,
			attrition,
			performance_rating,
			job_satisfaction,
			job_role,
			age,
			monthly_income,
			distance_from_home,
			over_time,
			work_life_balance,
			department,
			gender,
			years_at_company,
			marital_status,
			total_working_years,
			num_companies_worked,
			environment_satisfaction,
			relationship_satisfaction
		FROM employee
		WHERE employee_number = ?
		ORDER BY id
		LIMIT 1
	`

	selectJobRolesSQL = `SELECT job_role, MIN(id) AS first_seen
		FROM employee
		GROUP BY job_role
		ORDER BY first_seen
	`

	upsertImportStateSQL = `INSERT INTO import_state (id, source, row_count, imported_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			row_count = excluded.row_count,
			imported_at = excluded.imported_at
	`
)

var (
	// ErrNotFound is returned when no employee has the requested number.
	ErrNotFound = errors.New("employee not found")

	// ErrIncompleteRecord is returned when a stored employee lacks some of
	// the raw attributes required for a prediction.
	ErrIncompleteRecord = errors.New("employee record is missing prediction attributes")
)

// Record is one row of the dataset. Attributes is nil when the source CSV
// did not carry every raw prediction attribute.
type Record struct {
	Number            int64               `json:"employee_number" yaml:"employee_number"`
	Attrition         string              `json:"attrition" yaml:"attrition"`
	PerformanceRating int                 `json:"performance_rating" yaml:"performance_rating"`
	JobSatisfaction   int                 `json:"job_satisfaction" yaml:"job_satisfaction"`
	JobRole           string              `json:"job_role" yaml:"job_role"`
	Attributes        *attrition.Employee `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// AttritionRisk is 1 for employees who left and 0 otherwise.
func (r *Record) AttritionRisk() int {
	if r.Attrition == AttritionYes {
		return 1
	}
	return 0
}

func (r *Record) args(id int) []any {
	args := []any{id, r.Number, r.Attrition, r.PerformanceRating, r.JobSatisfaction, r.JobRole}
	a := r.Attributes
	if a == nil {
		for range 13 {
			args = append(args, nil)
		}
		return args
	}
	return append(args,
		a.Age,
		a.MonthlyIncome,
		a.DistanceFromHome,
		a.OverTime,
		a.WorkLifeBalance,
		a.Department,
		a.Gender,
		a.YearsAtCompany,
		a.MaritalStatus,
		a.TotalWorkingYears,
		a.NumCompaniesWorked,
		a.EnvironmentSatisfaction,
		a.RelationshipSatisfaction,
	)
}

// ReplaceEmployees atomically replaces the imported dataset with list.
// Record order is kept as the tie-break order of the leaderboards.
func (s *Store) ReplaceEmployees(ctx context.Context, source string, list []*Record) (retErr error) {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if retErr != nil {
			if err := tx.Rollback(); err != nil {
				retErr = fmt.Errorf("%w (rollback failed: %v)", retErr, err)
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, deleteEmployeesSQL); err != nil {
		return fmt.Errorf("failed to clear employees: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.rebind(insertEmployeeSQL))
	if err != nil {
		return fmt.Errorf("failed to prepare employee insert statement: %w", err)
	}
	defer stmt.Close()

	// rows are numbered in insert order, nil records take no number
	n := 0
	for _, r := range list {
		if r == nil {
			continue
		}
		n++
		if _, err := stmt.ExecContext(ctx, r.args(n)...); err != nil {
			return fmt.Errorf("failed to insert employee %d: %w", r.Number, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, s.rebind(upsertImportStateSQL), source, n, now); err != nil {
		return fmt.Errorf("failed to save import state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Clear removes the imported dataset and its import metadata.
func (s *Store) Clear(ctx context.Context) (retErr error) {
	if err := s.ready(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if retErr != nil {
			tx.Rollback()
		}
	}()

	for _, q := range []string{deleteEmployeesSQL, deleteImportStateSQL} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to clear data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetEmployee returns the first imported employee with the given number.
func (s *Store) GetEmployee(ctx context.Context, number int64) (*Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var (
		r                                              Record
		age, income, distance, wlb, years, total, comp sql.NullInt64
		env, rel                                       sql.NullInt64
		overTime, dept, gender, marital                sql.NullString
	)

	err := s.db.QueryRowContext(ctx, s.rebind(selectEmployeeSQL), number).Scan(
		&r.Number,
		&r.Attrition,
		&r.PerformanceRating,
		&r.JobSatisfaction,
		&r.JobRole,
		&age,
		&income,
		&distance,
		&overTime,
		&wlb,
		&dept,
		&gender,
		&years,
		&marital,
		&total,
		&comp,
		&env,
		&rel,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, number)
		}
		return nil, fmt.Errorf("failed to scan employee: %w", err)
	}

	ints := []sql.NullInt64{age, income, distance, wlb, years, total, comp, env, rel}
	strs := []sql.NullString{overTime, dept, gender, marital}
	for _, v := range ints {
		if !v.Valid {
			return &r, nil
		}
	}
	for _, v := range strs {
		if !v.Valid {
			return &r, nil
		}
	}

	r.Attributes = &attrition.Employee{
		Age:                      int(age.Int64),
		MonthlyIncome:            int(income.Int64),
		DistanceFromHome:         int(distance.Int64),
		JobSatisfaction:          r.JobSatisfaction,
		OverTime:                 overTime.String,
		WorkLifeBalance:          int(wlb.Int64),
		JobRole:                  r.JobRole,
		Department:               dept.String,
		Gender:                   gender.String,
		YearsAtCompany:           int(years.Int64),
		MaritalStatus:            marital.String,
		TotalWorkingYears:        int(total.Int64),
		NumCompaniesWorked:       int(comp.Int64),
		EnvironmentSatisfaction:  int(env.Int64),
		RelationshipSatisfaction: int(rel.Int64),
	}
	return &r, nil
}

// GetEmployeeAttributes returns the raw prediction attributes of an
// imported employee.
func (s *Store) GetEmployeeAttributes(ctx context.Context, number int64) (*attrition.Employee, error) {
	r, err := s.GetEmployee(ctx, number)
	if err != nil {
		return nil, err
	}
	if r.Attributes == nil {
		return nil, fmt.Errorf("%w: %d", ErrIncompleteRecord, number)
	}
	return r.Attributes, nil
}

// JobRoles returns the distinct job roles in the order they first appear.
func (s *Store) JobRoles(ctx context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, selectJobRolesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query job roles: %w", err)
	}
	defer rows.Close()

	list := make([]string, 0)
	for rows.Next() {
		var role string
		var first int64
		if err := rows.Scan(&role, &first); err != nil {
			return nil, fmt.Errorf("failed to scan job role: %w", err)
		}
		list = append(list, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job roles: %w", err)
	}

	return list, nil
}
