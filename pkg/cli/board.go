package cli

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mchmarny/attrition/pkg/data"
	"github.com/urfave/cli/v3"
)

const flagLimit = "limit"

// BoardResult is the dashboard content: dataset summary plus leaderboards.
type BoardResult struct {
	Summary      *data.Summary      `json:"summary" yaml:"summary"`
	Leaderboards *data.Leaderboards `json:"leaderboards" yaml:"leaderboards"`
}

func (b *BoardResult) tables() []table.Writer {
	risk := newTable("High Attrition Risk", "EmployeeNumber", "AttritionRisk", "PerformanceRating")
	for _, e := range b.Leaderboards.HighRisk {
		risk.AppendRow(table.Row{e.EmployeeNumber, e.AttritionRisk, e.PerformanceRating})
	}

	sat := newTable("High Job Satisfaction", "EmployeeNumber", "JobSatisfaction", "AttritionRisk")
	for _, e := range b.Leaderboards.HighSatisfaction {
		sat.AppendRow(table.Row{e.EmployeeNumber, e.JobSatisfaction, e.AttritionRisk})
	}

	perf := newTable("High Performance Score", "EmployeeNumber", "PerformanceRating", "JobSatisfaction")
	for _, e := range b.Leaderboards.TopPerformers {
		perf.AppendRow(table.Row{e.EmployeeNumber, e.PerformanceRating, e.JobSatisfaction})
	}

	return []table.Writer{risk, sat, perf}
}

func newBoardCmd() *cli.Command {
	return &cli.Command{
		Name:    "board",
		Aliases: []string{"b"},
		Usage:   "Print the high risk, high satisfaction and top performer leaderboards",
		Action:  cmdBoard,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  flagLimit,
				Usage: "Number of employees per leaderboard (default: config leaderboard_limit)",
			},
		},
	}
}

func cmdBoard(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	limit := cfg.Config.LeaderboardLimit
	if cmd.IsSet(flagLimit) {
		limit = cmd.Int(flagLimit)
	}

	b, err := loadBoard(ctx, cfg.Store, limit)
	if err != nil {
		return err
	}
	if b.Summary.Empty() {
		return fmt.Errorf("no dataset imported, run: %s import --file <csv>", appName)
	}

	return cfg.encode(b)
}

func loadBoard(ctx context.Context, store *data.Store, limit int) (*BoardResult, error) {
	sum, err := store.GetSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading summary: %w", err)
	}

	lb, err := store.GetLeaderboards(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("loading leaderboards: %w", err)
	}

	return &BoardResult{Summary: sum, Leaderboards: lb}, nil
}
