package cli

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/mchmarny/attrition/pkg/attrition"
)

const noDataNotice = "Dashboard data not available. Import a dataset with: attrition import --file <csv>"

var (
	templateFuncs = template.FuncMap{
		"scale": func(name, label string, value int) scaleField {
			return scaleField{Name: name, Label: label, Value: value, Levels: []int{1, 2, 3, 4}}
		},
		"choice": func(selected string, options []string) []any {
			return []any{selected, options}
		},
		"pct": func(v float64) string {
			return fmt.Sprintf("%.2f%%", v*100)
		},
	}
)

type scaleField struct {
	Name   string
	Label  string
	Value  int
	Levels []int
}

type page struct {
	Version string
	Notice  string
	Error   string
}

type homePage struct {
	page
	Board *BoardResult
}

type predictPage struct {
	page
	Available   bool
	Employee    attrition.Employee
	Roles       []string
	OverTime    []string
	Departments []string
	Genders     []string
	Marital     []string
	Fields      []attrition.FieldError
	Result      *PredictResponse
}

func render(w http.ResponseWriter, tmpl *template.Template, name string, d any) {
	if err := tmpl.ExecuteTemplate(w, name, d); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func homeViewHandler(tmpl *template.Template, cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := &homePage{page: page{Version: version}}

		b, err := loadBoard(r.Context(), cfg.Store, cfg.Config.LeaderboardLimit)
		switch {
		case err != nil:
			slog.Error("failed to load leaderboards", "error", err)
			d.Error = "failed to load dashboard data"
		case b.Summary.Empty():
			d.Notice = noDataNotice
		default:
			d.Board = b
		}

		render(w, tmpl, "home", d)
	}
}

func (a *appConfig) newPredictPage(ctx context.Context, e attrition.Employee) *predictPage {
	d := &predictPage{
		page:        page{Version: version},
		Available:   a.Predictor.Available(),
		Employee:    e,
		Roles:       a.formRoles(ctx),
		OverTime:    attrition.OverTimeValues,
		Departments: attrition.DepartmentValues,
		Genders:     attrition.GenderValues,
		Marital:     attrition.MaritalStatusValues,
	}
	if !d.Available {
		d.Notice = "Prediction is disabled: the model could not be loaded."
	}
	return d
}

// formRoles offers the roles of the imported dataset the predictor
// accepts. Without any it falls back to the default role.
func (a *appConfig) formRoles(ctx context.Context) []string {
	accepted := a.Predictor.JobRoles()

	roles, err := a.Store.JobRoles(ctx)
	if err != nil {
		slog.Error("failed to load job roles", "error", err)
	}

	offered := make([]string, 0, len(roles))
	for _, r := range roles {
		if !slices.Contains(accepted, r) {
			slog.Debug("job role not accepted by the model", "role", r)
			continue
		}
		offered = append(offered, r)
	}
	if len(offered) > 0 {
		return offered
	}
	if slices.Contains(accepted, attrition.DefaultJobRole) {
		return []string{attrition.DefaultJobRole}
	}
	return accepted
}

func predictViewHandler(tmpl *template.Template, cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, tmpl, "predict", cfg.newPredictPage(r.Context(), attrition.DefaultEmployee()))
	}
}

func predictSubmitHandler(tmpl *template.Template, cfg *appConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		e, err := employeeFromForm(r)
		d := cfg.newPredictPage(r.Context(), e)
		if err == nil {
			d.Result, err = cfg.predict(r.Context(), e)
		}

		if err != nil {
			d.Error = err.Error()
			var ve *attrition.ValidationError
			if errors.As(err, &ve) {
				d.Error = "Some values are outside of their allowed range."
				d.Fields = ve.Fields
			}
			w.WriteHeader(predictErrorStatus(err))
		}

		render(w, tmpl, "predict", d)
	}
}

func employeeFromForm(r *http.Request) (attrition.Employee, error) {
	var fields []attrition.FieldError

	num := func(name string) int {
		s := r.PostFormValue(name)
		v, err := strconv.Atoi(s)
		if err != nil {
			fields = append(fields, attrition.FieldError{Field: name, Value: s, Reason: "must be an integer"})
		}
		return v
	}

	e := attrition.Employee{
		Age:                      num("age"),
		MonthlyIncome:            num("monthly_income"),
		DistanceFromHome:         num("distance_from_home"),
		JobSatisfaction:          num("job_satisfaction"),
		OverTime:                 r.PostFormValue("over_time"),
		WorkLifeBalance:          num("work_life_balance"),
		JobRole:                  r.PostFormValue("job_role"),
		Department:               r.PostFormValue("department"),
		Gender:                   r.PostFormValue("gender"),
		YearsAtCompany:           num("years_at_company"),
		MaritalStatus:            r.PostFormValue("marital_status"),
		TotalWorkingYears:        num("total_working_years"),
		NumCompaniesWorked:       num("num_companies_worked"),
		EnvironmentSatisfaction:  num("environment_satisfaction"),
		RelationshipSatisfaction: num("relationship_satisfaction"),
	}

	if len(fields) > 0 {
		return e, &attrition.ValidationError{Fields: fields}
	}
	return e, nil
}
