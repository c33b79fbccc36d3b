package attrition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

const (
	OverTimeYes = "Yes"
	OverTimeNo  = "No"

	DepartmentSales    = "Sales"
	DepartmentResearch = "Research & Development"
	DepartmentHR       = "Human Resources"

	GenderMale   = "Male"
	GenderFemale = "Female"

	MaritalSingle   = "Single"
	MaritalMarried  = "Married"
	MaritalDivorced = "Divorced"

	DefaultJobRole = "Sales Executive"
)

var (
	// KnownJobRoles are the roles present in the reference HR dataset.
	KnownJobRoles = []string{
		"Sales Executive",
		"Research Scientist",
		"Laboratory Technician",
		"Manufacturing Director",
		"Healthcare Representative",
		"Manager",
		"Sales Representative",
		"Research Director",
		"Human Resources",
	}

	OverTimeValues      = []string{OverTimeYes, OverTimeNo}
	DepartmentValues    = []string{DepartmentSales, DepartmentResearch, DepartmentHR}
	GenderValues        = []string{GenderMale, GenderFemale}
	MaritalStatusValues = []string{MaritalSingle, MaritalMarried, MaritalDivorced}
)

// Employee holds the 15 raw attributes collected for a single prediction.
type Employee struct {
	Age                      int    `json:"age" yaml:"age"`
	MonthlyIncome            int    `json:"monthly_income" yaml:"monthly_income"`
	DistanceFromHome         int    `json:"distance_from_home" yaml:"distance_from_home"`
	JobSatisfaction          int    `json:"job_satisfaction" yaml:"job_satisfaction"`
	OverTime                 string `json:"over_time" yaml:"over_time"`
	WorkLifeBalance          int    `json:"work_life_balance" yaml:"work_life_balance"`
	JobRole                  string `json:"job_role" yaml:"job_role"`
	Department               string `json:"department" yaml:"department"`
	Gender                   string `json:"gender" yaml:"gender"`
	YearsAtCompany           int    `json:"years_at_company" yaml:"years_at_company"`
	MaritalStatus            string `json:"marital_status" yaml:"marital_status"`
	TotalWorkingYears        int    `json:"total_working_years" yaml:"total_working_years"`
	NumCompaniesWorked       int    `json:"num_companies_worked" yaml:"num_companies_worked"`
	EnvironmentSatisfaction  int    `json:"environment_satisfaction" yaml:"environment_satisfaction"`
	RelationshipSatisfaction int    `json:"relationship_satisfaction" yaml:"relationship_satisfaction"`
}

// DefaultEmployee returns the values the input form starts with.
func DefaultEmployee() Employee {
	return Employee{
		Age:                      30,
		MonthlyIncome:            5000,
		DistanceFromHome:         5,
		JobSatisfaction:          1,
		OverTime:                 OverTimeYes,
		WorkLifeBalance:          1,
		JobRole:                  DefaultJobRole,
		Department:               DepartmentSales,
		Gender:                   GenderMale,
		YearsAtCompany:           5,
		MaritalStatus:            MaritalSingle,
		TotalWorkingYears:        10,
		NumCompaniesWorked:       2,
		EnvironmentSatisfaction:  1,
		RelationshipSatisfaction: 1,
	}
}

// FieldError describes a single attribute outside of its domain.
type FieldError struct {
	Field  string `json:"field"`
	Value  any    `json:"value"`
	Reason string `json:"reason"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s=%v: %s", e.Field, e.Value, e.Reason)
}

// ValidationError lists every invalid attribute of an Employee.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

type validator struct {
	fields []FieldError
}

func (v *validator) between(name string, val, min, max int) {
	if val < min || val > max {
		v.fields = append(v.fields, FieldError{
			Field:  name,
			Value:  val,
			Reason: fmt.Sprintf("must be between %d and %d", min, max),
		})
	}
}

func (v *validator) oneOf(name, val string, allowed []string) {
	if !slices.Contains(allowed, val) {
		v.fields = append(v.fields, FieldError{
			Field:  name,
			Value:  val,
			Reason: fmt.Sprintf("must be one of [%s]", strings.Join(allowed, ", ")),
		})
	}
}

// RequiredKeys are the serialized names of all Employee attributes.
// None of them has a default.
var RequiredKeys = []string{
	"age",
	"monthly_income",
	"distance_from_home",
	"job_satisfaction",
	"over_time",
	"work_life_balance",
	"job_role",
	"department",
	"gender",
	"years_at_company",
	"marital_status",
	"total_working_years",
	"num_companies_worked",
	"environment_satisfaction",
	"relationship_satisfaction",
}

// RequireKeys returns a ValidationError naming every key of RequiredKeys
// absent from doc. Keys set to null count as absent.
func RequireKeys(doc map[string]json.RawMessage) error {
	v := &validator{}
	for _, k := range RequiredKeys {
		raw, ok := doc[k]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			v.fields = append(v.fields, FieldError{Field: k, Reason: "required"})
		}
	}
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// Validate checks every attribute against its domain using KnownJobRoles.
func (e Employee) Validate() error {
	return e.validate(KnownJobRoles)
}

func (e Employee) validate(roles []string) error {
	v := &validator{}

	v.between(ColAge, e.Age, 18, 60)
	v.between(ColMonthlyIncome, e.MonthlyIncome, 1000, 20000)
	v.between(ColDistanceFromHome, e.DistanceFromHome, 1, 30)
	v.between(ColJobSatisfaction, e.JobSatisfaction, 1, 4)
	v.oneOf(ColOverTime, e.OverTime, OverTimeValues)
	v.between(ColWorkLifeBalance, e.WorkLifeBalance, 1, 4)
	v.oneOf(ColJobRole, e.JobRole, roles)
	v.oneOf(ColDepartment, e.Department, DepartmentValues)
	v.oneOf(ColGender, e.Gender, GenderValues)
	v.between(ColYearsAtCompany, e.YearsAtCompany, 0, 40)
	v.oneOf(ColMaritalStatus, e.MaritalStatus, MaritalStatusValues)
	v.between(ColTotalWorkingYears, e.TotalWorkingYears, 0, 40)
	v.between(ColNumCompaniesWorked, e.NumCompaniesWorked, 0, 9)
	v.between(ColEnvironmentSatisfaction, e.EnvironmentSatisfaction, 1, 4)
	v.between(ColRelationshipSatisfaction, e.RelationshipSatisfaction, 1, 4)

	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}
