package data

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mchmarny/attrition/pkg/attrition"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	minimalCSV = `EmployeeNumber,Attrition,PerformanceRating,JobSatisfaction,JobRole,Extra
1,Yes,3,4,Sales Executive,x
2,No,4,2,Research Scientist,y
`

	fullCSV = "\ufeffAge,Attrition,BusinessTravel,Department,DistanceFromHome,EmployeeNumber,EnvironmentSatisfaction,Gender,JobRole,JobSatisfaction,MaritalStatus,MonthlyIncome,NumCompaniesWorked,OverTime,PerformanceRating,RelationshipSatisfaction,TotalWorkingYears,WorkLifeBalance,YearsAtCompany\n" +
		"41,Yes,Travel_Rarely,Sales,1,1,2,Female,Sales Executive,4,Single,5993,8,Yes,3,1,8,1,6\n" +
		"49,No,Travel_Frequently,Research & Development,8,2,3,Male,Research Scientist,2,Married,5130,1,No,4,4,10,3,10\n"
)

func TestReadCSV_Minimal(t *testing.T) {
	list, err := ReadCSV(strings.NewReader(minimalCSV))
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, int64(1), list[0].Number)
	assert.Equal(t, AttritionYes, list[0].Attrition)
	assert.Equal(t, 3, list[0].PerformanceRating)
	assert.Equal(t, 4, list[0].JobSatisfaction)
	assert.Equal(t, "Sales Executive", list[0].JobRole)
	assert.Nil(t, list[0].Attributes)
}

func TestReadCSV_Full(t *testing.T) {
	list, err := ReadCSV(strings.NewReader(fullCSV))
	require.NoError(t, err)
	require.Len(t, list, 2)

	a := list[0].Attributes
	require.NotNil(t, a)
	assert.Equal(t, attrition.Employee{
		Age:                      41,
		MonthlyIncome:            5993,
		DistanceFromHome:         1,
		JobSatisfaction:          4,
		OverTime:                 "Yes",
		WorkLifeBalance:          1,
		JobRole:                  "Sales Executive",
		Department:               "Sales",
		Gender:                   "Female",
		YearsAtCompany:           6,
		MaritalStatus:            "Single",
		TotalWorkingYears:        8,
		NumCompaniesWorked:       8,
		EnvironmentSatisfaction:  2,
		RelationshipSatisfaction: 1,
	}, *a)
	assert.NoError(t, a.Validate())
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("EmployeeNumber,Attrition,JobSatisfaction,JobRole\n1,No,3,Manager\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PerformanceRating")
}

func TestReadCSV_BadValue(t *testing.T) {
	doc := "EmployeeNumber,Attrition,PerformanceRating,JobSatisfaction,JobRole\n1,No,3,3,Manager\n2,No,high,3,Manager\n"
	_, err := ReadCSV(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "PerformanceRating")
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, errEmptyCSV)
}

func TestReadCSV_RaggedRow(t *testing.T) {
	doc := "EmployeeNumber,Attrition,PerformanceRating,JobSatisfaction,JobRole\n1,No,3\n"
	_, err := ReadCSV(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	list := Generate(20, 42)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, list))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, list, got)
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(minimalCSV), 0600))

	list, err := ReadCSVFile(path)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = ReadCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
