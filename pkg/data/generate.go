package data

import (
	"github.com/brianvoe/gofakeit/v7"
	"github.com/mchmarny/attrition/pkg/attrition"
)

const (
	// GenerateRowsDefault is the size of the reference dataset.
	GenerateRowsDefault = 1470

	attritionRate = 0.16
)

var departmentRoles = map[string][]string{
	attrition.DepartmentSales: {
		"Sales Executive",
		"Sales Representative",
		"Manager",
	},
	attrition.DepartmentResearch: {
		"Research Scientist",
		"Laboratory Technician",
		"Manufacturing Director",
		"Healthcare Representative",
		"Research Director",
		"Manager",
	},
	attrition.DepartmentHR: {
		"Human Resources",
		"Manager",
	},
}

// Generate returns rows synthetic employees in the reference dataset
// shape. The same seed always yields the same records.
func Generate(rows int, seed uint64) []*Record {
	if rows <= 0 {
		rows = GenerateRowsDefault
	}

	f := gofakeit.New(seed)
	list := make([]*Record, 0, rows)
	number := int64(0)

	for range rows {
		number += int64(f.IntRange(1, 3))

		dept := f.RandomString(attrition.DepartmentValues)
		total := f.IntRange(0, 40)
		age := f.IntRange(18, 60)
		if age-18 < total {
			total = age - 18
		}

		a := &attrition.Employee{
			Age:                      age,
			MonthlyIncome:            f.IntRange(1000, 20000),
			DistanceFromHome:         f.IntRange(1, 30),
			JobSatisfaction:          f.IntRange(1, 4),
			OverTime:                 f.RandomString(attrition.OverTimeValues),
			WorkLifeBalance:          f.IntRange(1, 4),
			JobRole:                  f.RandomString(departmentRoles[dept]),
			Department:               dept,
			Gender:                   f.RandomString(attrition.GenderValues),
			YearsAtCompany:           f.IntRange(0, total),
			MaritalStatus:            f.RandomString(attrition.MaritalStatusValues),
			TotalWorkingYears:        total,
			NumCompaniesWorked:       f.IntRange(0, 9),
			EnvironmentSatisfaction:  f.IntRange(1, 4),
			RelationshipSatisfaction: f.IntRange(1, 4),
		}

		left := AttritionNo
		if f.Float64() < attritionRate {
			left = AttritionYes
		}

		list = append(list, &Record{
			Number:            number,
			Attrition:         left,
			PerformanceRating: f.IntRange(3, 4),
			JobSatisfaction:   a.JobSatisfaction,
			JobRole:           a.JobRole,
			Attributes:        a,
		})
	}

	return list
}
