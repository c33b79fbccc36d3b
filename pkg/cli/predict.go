package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mchmarny/attrition/pkg/attrition"
	"github.com/urfave/cli/v3"
)

const (
	flagEmployee                 = "employee"
	flagAge                      = "age"
	flagMonthlyIncome            = "monthly-income"
	flagDistanceFromHome         = "distance-from-home"
	flagJobSatisfaction          = "job-satisfaction"
	flagOverTime                 = "over-time"
	flagWorkLifeBalance          = "work-life-balance"
	flagJobRole                  = "job-role"
	flagDepartment               = "department"
	flagGender                   = "gender"
	flagYearsAtCompany           = "years-at-company"
	flagMaritalStatus            = "marital-status"
	flagTotalWorkingYears        = "total-working-years"
	flagNumCompaniesWorked       = "num-companies-worked"
	flagEnvironmentSatisfaction  = "environment-satisfaction"
	flagRelationshipSatisfaction = "relationship-satisfaction"

	messageLeave = "High attrition risk: the employee is predicted to leave."
	messageStay  = "Low attrition risk: the employee is likely to stay."
)

// PredictResponse is the printed and served form of a prediction.
type PredictResponse struct {
	ID          string                  `json:"id" yaml:"id"`
	Probability float64                 `json:"probability" yaml:"probability"`
	Label       attrition.Label         `json:"label" yaml:"label"`
	Threshold   float64                 `json:"threshold" yaml:"threshold"`
	Message     string                  `json:"message" yaml:"message"`
	Employee    attrition.Employee      `json:"employee" yaml:"employee"`
	Features    attrition.FeatureVector `json:"features" yaml:"features"`
}

// Percent is the probability of leaving formatted for display.
func (p *PredictResponse) Percent() string {
	return fmt.Sprintf("%.2f%%", p.Probability*100)
}

func (p *PredictResponse) Leave() bool {
	return p.Label == attrition.LabelLeave
}

func (p *PredictResponse) tables() []table.Writer {
	res := newTable("Prediction")
	res.AppendRows([]table.Row{
		{"Probability of leaving", p.Percent()},
		{"Prediction", p.Label},
		{"Threshold", p.Threshold},
	})
	res.AppendFooter(table.Row{p.Message})

	feat := newTable("Model input", "#", "Feature", "Value")
	for i, f := range p.Features {
		feat.AppendRow(table.Row{i + 1, f.Name, f.String()})
	}
	return []table.Writer{res, feat}
}

func newPredictResponse(e attrition.Employee, r *attrition.Result) *PredictResponse {
	msg := messageStay
	if r.Leave() {
		msg = messageLeave
	}
	return &PredictResponse{
		ID:          uuid.NewString(),
		Probability: r.Probability,
		Label:       r.Label,
		Threshold:   r.Threshold,
		Message:     msg,
		Employee:    e,
		Features:    r.Features,
	}
}

func (a *appConfig) predict(ctx context.Context, e attrition.Employee) (*PredictResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Config.PredictTimeout)
	defer cancel()

	r, err := a.Predictor.Predict(ctx, e)
	if err != nil {
		return nil, err
	}
	return newPredictResponse(e, r), nil
}

func newPredictCmd() *cli.Command {
	d := attrition.DefaultEmployee()
	return &cli.Command{
		Name:    "predict",
		Aliases: []string{"p"},
		Usage:   "Predict whether an employee is likely to leave",
		UsageText: `attrition predict --age 45 --monthly-income 12000 --over-time No   # score entered attributes
   attrition predict --employee 1042                                    # score an imported employee`,
		Action: cmdPredict,
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  flagEmployee,
				Usage: "EmployeeNumber of an imported employee to score instead of the attribute flags",
			},
			&cli.IntFlag{Name: flagAge, Usage: "Age [18-60]", Value: d.Age},
			&cli.IntFlag{Name: flagMonthlyIncome, Usage: "Monthly income [1000-20000]", Value: d.MonthlyIncome},
			&cli.IntFlag{Name: flagDistanceFromHome, Usage: "Distance from home in miles [1-30]", Value: d.DistanceFromHome},
			&cli.IntFlag{Name: flagJobSatisfaction, Usage: "Job satisfaction [1-4]", Value: d.JobSatisfaction},
			&cli.StringFlag{Name: flagOverTime, Usage: oneOfUsage("Works overtime", attrition.OverTimeValues), Value: d.OverTime},
			&cli.IntFlag{Name: flagWorkLifeBalance, Usage: "Work-life balance [1-4]", Value: d.WorkLifeBalance},
			&cli.StringFlag{Name: flagJobRole, Usage: oneOfUsage("Job role", attrition.KnownJobRoles), Value: d.JobRole},
			&cli.StringFlag{Name: flagDepartment, Usage: oneOfUsage("Department", attrition.DepartmentValues), Value: d.Department},
			&cli.StringFlag{Name: flagGender, Usage: oneOfUsage("Gender", attrition.GenderValues), Value: d.Gender},
			&cli.IntFlag{Name: flagYearsAtCompany, Usage: "Years at company [0-40]", Value: d.YearsAtCompany},
			&cli.StringFlag{Name: flagMaritalStatus, Usage: oneOfUsage("Marital status", attrition.MaritalStatusValues), Value: d.MaritalStatus},
			&cli.IntFlag{Name: flagTotalWorkingYears, Usage: "Total working years [0-40]", Value: d.TotalWorkingYears},
			&cli.IntFlag{Name: flagNumCompaniesWorked, Usage: "Number of companies worked at, excluding the current one [0-9]", Value: d.NumCompaniesWorked},
			&cli.IntFlag{Name: flagEnvironmentSatisfaction, Usage: "Environment satisfaction [1-4]", Value: d.EnvironmentSatisfaction},
			&cli.IntFlag{Name: flagRelationshipSatisfaction, Usage: "Relationship satisfaction [1-4]", Value: d.RelationshipSatisfaction},
		},
	}
}

func oneOfUsage(label string, values []string) string {
	return fmt.Sprintf("%s [%s]", label, strings.Join(values, ", "))
}

func employeeFromFlags(cmd *cli.Command) attrition.Employee {
	return attrition.Employee{
		Age:                      cmd.Int(flagAge),
		MonthlyIncome:            cmd.Int(flagMonthlyIncome),
		DistanceFromHome:         cmd.Int(flagDistanceFromHome),
		JobSatisfaction:          cmd.Int(flagJobSatisfaction),
		OverTime:                 cmd.String(flagOverTime),
		WorkLifeBalance:          cmd.Int(flagWorkLifeBalance),
		JobRole:                  cmd.String(flagJobRole),
		Department:               cmd.String(flagDepartment),
		Gender:                   cmd.String(flagGender),
		YearsAtCompany:           cmd.Int(flagYearsAtCompany),
		MaritalStatus:            cmd.String(flagMaritalStatus),
		TotalWorkingYears:        cmd.Int(flagTotalWorkingYears),
		NumCompaniesWorked:       cmd.Int(flagNumCompaniesWorked),
		EnvironmentSatisfaction:  cmd.Int(flagEnvironmentSatisfaction),
		RelationshipSatisfaction: cmd.Int(flagRelationshipSatisfaction),
	}
}

func cmdPredict(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	e := employeeFromFlags(cmd)
	if cmd.IsSet(flagEmployee) {
		n := cmd.Int64(flagEmployee)
		a, err := cfg.Store.GetEmployeeAttributes(ctx, n)
		if err != nil {
			return fmt.Errorf("loading employee %d: %w", n, err)
		}
		e = *a
	}

	res, err := cfg.predict(ctx, e)
	if err != nil {
		return fmt.Errorf("predicting attrition: %w", err)
	}

	return cfg.encode(res)
}
