package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mchmarny/attrition/pkg/attrition"
)

const (
	colAttrition         = "Attrition"
	colEmployeeNumber    = "EmployeeNumber"
	colPerformanceRating = "PerformanceRating"

	utf8BOM = "\ufeff"
)

var (
	// RequiredColumns must be present in every dataset.
	RequiredColumns = []string{
		colAttrition,
		colEmployeeNumber,
		colPerformanceRating,
		attrition.ColJobSatisfaction,
		attrition.ColJobRole,
	}

	// csvColumns is the layout written by WriteCSV.
	csvColumns = []string{
		attrition.ColAge,
		colAttrition,
		attrition.ColDepartment,
		attrition.ColDistanceFromHome,
		colEmployeeNumber,
		attrition.ColEnvironmentSatisfaction,
		attrition.ColGender,
		attrition.ColJobRole,
		attrition.ColJobSatisfaction,
		attrition.ColMaritalStatus,
		attrition.ColMonthlyIncome,
		attrition.ColNumCompaniesWorked,
		attrition.ColOverTime,
		colPerformanceRating,
		attrition.ColRelationshipSatisfaction,
		attrition.ColTotalWorkingYears,
		attrition.ColWorkLifeBalance,
		attrition.ColYearsAtCompany,
	}

	errEmptyCSV = errors.New("csv has no header")
)

type csvRow struct {
	line   int
	header map[string]int
	values []string
	err    error
}

func (r *csvRow) str(col string) string {
	if r.err != nil {
		return ""
	}
	return strings.TrimSpace(r.values[r.header[col]])
}

func (r *csvRow) integer(col string) int {
	s := r.str(col)
	if r.err != nil {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		r.err = fmt.Errorf("line %d: invalid %s value %q: %w", r.line, col, s, err)
		return 0
	}
	return v
}

// ReadCSVFile parses the dataset at path.
func ReadCSVFile(path string) ([]*Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening dataset %s: %w", path, err)
	}
	defer file.Close()
	return ReadCSV(file)
}

// ReadCSV parses a dataset CSV. Columns are located by header name so
// any additional columns are ignored. Prediction attributes are kept
// only when the file carries all of them.
func ReadCSV(in io.Reader) ([]*Record, error) {
	reader := csv.NewReader(in)
	reader.ReuseRecord = false

	head, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyCSV
		}
		return nil, fmt.Errorf("error reading csv header: %w", err)
	}

	header := make(map[string]int, len(head))
	for i, h := range head {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		header[strings.TrimSpace(h)] = i
	}

	for _, c := range RequiredColumns {
		if _, ok := header[c]; !ok {
			return nil, fmt.Errorf("csv is missing required column %s", c)
		}
	}

	full := true
	for _, c := range attrition.FeatureOrder[:15] {
		if _, ok := header[c]; !ok {
			full = false
			break
		}
	}

	list := make([]*Record, 0)
	for line := 2; ; line++ {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading csv: %w", err)
		}

		row := &csvRow{line: line, header: header, values: values}
		rec := parseRecord(row, full)
		if row.err != nil {
			return nil, row.err
		}
		list = append(list, rec)
	}

	return list, nil
}

func parseRecord(row *csvRow, full bool) *Record {
	r := &Record{
		Number:            int64(row.integer(colEmployeeNumber)),
		Attrition:         row.str(colAttrition),
		PerformanceRating: row.integer(colPerformanceRating),
		JobSatisfaction:   row.integer(attrition.ColJobSatisfaction),
		JobRole:           row.str(attrition.ColJobRole),
	}
	if !full {
		return r
	}

	r.Attributes = &attrition.Employee{
		Age:                      row.integer(attrition.ColAge),
		MonthlyIncome:            row.integer(attrition.ColMonthlyIncome),
		DistanceFromHome:         row.integer(attrition.ColDistanceFromHome),
		JobSatisfaction:          r.JobSatisfaction,
		OverTime:                 row.str(attrition.ColOverTime),
		WorkLifeBalance:          row.integer(attrition.ColWorkLifeBalance),
		JobRole:                  r.JobRole,
		Department:               row.str(attrition.ColDepartment),
		Gender:                   row.str(attrition.ColGender),
		YearsAtCompany:           row.integer(attrition.ColYearsAtCompany),
		MaritalStatus:            row.str(attrition.ColMaritalStatus),
		TotalWorkingYears:        row.integer(attrition.ColTotalWorkingYears),
		NumCompaniesWorked:       row.integer(attrition.ColNumCompaniesWorked),
		EnvironmentSatisfaction:  row.integer(attrition.ColEnvironmentSatisfaction),
		RelationshipSatisfaction: row.integer(attrition.ColRelationshipSatisfaction),
	}
	return r
}

// WriteCSV writes list in the reference dataset layout. Records without
// prediction attributes are written with empty attribute cells.
func WriteCSV(out io.Writer, list []*Record) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvColumns); err != nil {
		return fmt.Errorf("error writing csv header: %w", err)
	}

	for _, r := range list {
		if err := w.Write(recordValues(r)); err != nil {
			return fmt.Errorf("error writing employee %d: %w", r.Number, err)
		}
	}

	w.Flush()
	return w.Error()
}

func recordValues(r *Record) []string {
	vals := map[string]string{
		colAttrition:                 r.Attrition,
		colEmployeeNumber:            strconv.FormatInt(r.Number, 10),
		colPerformanceRating:         strconv.Itoa(r.PerformanceRating),
		attrition.ColJobSatisfaction: strconv.Itoa(r.JobSatisfaction),
		attrition.ColJobRole:         r.JobRole,
	}

	if a := r.Attributes; a != nil {
		vals[attrition.ColAge] = strconv.Itoa(a.Age)
		vals[attrition.ColDepartment] = a.Department
		vals[attrition.ColDistanceFromHome] = strconv.Itoa(a.DistanceFromHome)
		vals[attrition.ColEnvironmentSatisfaction] = strconv.Itoa(a.EnvironmentSatisfaction)
		vals[attrition.ColGender] = a.Gender
		vals[attrition.ColMaritalStatus] = a.MaritalStatus
		vals[attrition.ColMonthlyIncome] = strconv.Itoa(a.MonthlyIncome)
		vals[attrition.ColNumCompaniesWorked] = strconv.Itoa(a.NumCompaniesWorked)
		vals[attrition.ColOverTime] = a.OverTime
		vals[attrition.ColRelationshipSatisfaction] = strconv.Itoa(a.RelationshipSatisfaction)
		vals[attrition.ColTotalWorkingYears] = strconv.Itoa(a.TotalWorkingYears)
		vals[attrition.ColWorkLifeBalance] = strconv.Itoa(a.WorkLifeBalance)
		vals[attrition.ColYearsAtCompany] = strconv.Itoa(a.YearsAtCompany)
	}

	out := make([]string, len(csvColumns))
	for i, c := range csvColumns {
		out[i] = vals[c]
	}
	return out
}
