package attrition

import (
	"fmt"
	"strconv"
)

// Column names, as the classifier was fit on them.
const (
	ColAge                      = "Age"
	ColMonthlyIncome            = "MonthlyIncome"
	ColDistanceFromHome         = "DistanceFromHome"
	ColJobSatisfaction          = "JobSatisfaction"
	ColOverTime                 = "OverTime"
	ColWorkLifeBalance          = "WorkLifeBalance"
	ColJobRole                  = "JobRole"
	ColDepartment               = "Department"
	ColGender                   = "Gender"
	ColYearsAtCompany           = "YearsAtCompany"
	ColMaritalStatus            = "MaritalStatus"
	ColTotalWorkingYears        = "TotalWorkingYears"
	ColNumCompaniesWorked       = "NumCompaniesWorked"
	ColEnvironmentSatisfaction  = "EnvironmentSatisfaction"
	ColRelationshipSatisfaction = "RelationshipSatisfaction"
	ColYearsPerJob              = "YearsPerJob"
	ColDistancePerIncome        = "DistancePerIncome"
	ColSatisfactionIndex        = "Satisfaction_Index"
	ColExperienceGap            = "Experience_Gap"

	FeatureCount = 19
)

// FeatureOrder is the exact column sequence of a FeatureVector.
// The classifier silently misreads a reordered row.
var FeatureOrder = [FeatureCount]string{
	ColAge,
	ColMonthlyIncome,
	ColDistanceFromHome,
	ColJobSatisfaction,
	ColOverTime,
	ColWorkLifeBalance,
	ColJobRole,
	ColDepartment,
	ColGender,
	ColYearsAtCompany,
	ColMaritalStatus,
	ColTotalWorkingYears,
	ColNumCompaniesWorked,
	ColEnvironmentSatisfaction,
	ColRelationshipSatisfaction,
	ColYearsPerJob,
	ColDistancePerIncome,
	ColSatisfactionIndex,
	ColExperienceGap,
}

// Derived holds the engineered features.
type Derived struct {
	YearsPerJob       float64 `json:"years_per_job" yaml:"years_per_job"`
	DistancePerIncome float64 `json:"distance_per_income" yaml:"distance_per_income"`
	SatisfactionIndex float64 `json:"satisfaction_index" yaml:"satisfaction_index"`
	ExperienceGap     float64 `json:"experience_gap" yaml:"experience_gap"`
}

// Derive computes the engineered features without validating e.
// A NumCompaniesWorked of zero is treated as one. A non-positive
// MonthlyIncome returns ErrDivisionByZero.
func Derive(e Employee) (Derived, error) {
	if e.MonthlyIncome <= 0 {
		return Derived{}, fmt.Errorf("%s / %s with %s=%d: %w",
			ColDistanceFromHome, ColMonthlyIncome, ColMonthlyIncome, e.MonthlyIncome, ErrDivisionByZero)
	}

	denom := e.NumCompaniesWorked
	if denom == 0 {
		denom = 1
	}

	return Derived{
		YearsPerJob:       float64(e.TotalWorkingYears) / float64(denom),
		DistancePerIncome: float64(e.DistanceFromHome) / float64(e.MonthlyIncome),
		SatisfactionIndex: float64(e.JobSatisfaction+e.EnvironmentSatisfaction+e.RelationshipSatisfaction) / 3,
		ExperienceGap:     float64(e.TotalWorkingYears - e.YearsAtCompany),
	}, nil
}

// Feature is a single named column of a FeatureVector.
type Feature struct {
	Name        string  `json:"name" yaml:"name"`
	Categorical bool    `json:"categorical" yaml:"categorical"`
	Number      float64 `json:"number,omitempty" yaml:"number,omitempty"`
	Category    string  `json:"category,omitempty" yaml:"category,omitempty"`
}

// String returns the value of the feature as it would be displayed.
func (f Feature) String() string {
	if f.Categorical {
		return f.Category
	}
	return strconv.FormatFloat(f.Number, 'g', -1, 64)
}

func num(name string, v float64) Feature {
	return Feature{Name: name, Number: v}
}

func cat(name, v string) Feature {
	return Feature{Name: name, Categorical: true, Category: v}
}

// FeatureVector is the ordered row submitted to the classifier.
type FeatureVector []Feature

// Names returns the column names in vector order.
func (v FeatureVector) Names() []string {
	names := make([]string, len(v))
	for i, f := range v {
		names[i] = f.Name
	}
	return names
}

// Get returns the feature with the given column name.
func (v FeatureVector) Get(name string) (Feature, bool) {
	for _, f := range v {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// BuildFeatureVector derives the engineered features of e and assembles
// the 19 columns in FeatureOrder.
func BuildFeatureVector(e Employee) (FeatureVector, error) {
	d, err := Derive(e)
	if err != nil {
		return nil, err
	}

	return FeatureVector{
		num(ColAge, float64(e.Age)),
		num(ColMonthlyIncome, float64(e.MonthlyIncome)),
		num(ColDistanceFromHome, float64(e.DistanceFromHome)),
		num(ColJobSatisfaction, float64(e.JobSatisfaction)),
		cat(ColOverTime, e.OverTime),
		num(ColWorkLifeBalance, float64(e.WorkLifeBalance)),
		cat(ColJobRole, e.JobRole),
		cat(ColDepartment, e.Department),
		cat(ColGender, e.Gender),
		num(ColYearsAtCompany, float64(e.YearsAtCompany)),
		cat(ColMaritalStatus, e.MaritalStatus),
		num(ColTotalWorkingYears, float64(e.TotalWorkingYears)),
		num(ColNumCompaniesWorked, float64(e.NumCompaniesWorked)),
		num(ColEnvironmentSatisfaction, float64(e.EnvironmentSatisfaction)),
		num(ColRelationshipSatisfaction, float64(e.RelationshipSatisfaction)),
		num(ColYearsPerJob, d.YearsPerJob),
		num(ColDistancePerIncome, d.DistancePerIncome),
		num(ColSatisfactionIndex, d.SatisfactionIndex),
		num(ColExperienceGap, d.ExperienceGap),
	}, nil
}

// CheckColumns verifies that cols is exactly FeatureOrder.
func CheckColumns(cols []string) error {
	if len(cols) != FeatureCount {
		return fmt.Errorf("expected %d columns, got %d: %w", FeatureCount, len(cols), ErrColumnOrder)
	}
	for i, c := range cols {
		if c != FeatureOrder[i] {
			return fmt.Errorf("column %d is %q, expected %q: %w", i, c, FeatureOrder[i], ErrColumnOrder)
		}
	}
	return nil
}
