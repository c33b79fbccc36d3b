package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mchmarny/attrition/pkg/data"
	"github.com/mchmarny/attrition/pkg/net"
	"github.com/urfave/cli/v3"
)

const (
	flagFile = "file"
	flagURL  = "url"
)

type ImportResult struct {
	Source   string        `json:"source" yaml:"source"`
	Rows     int           `json:"rows" yaml:"rows"`
	Summary  *data.Summary `json:"summary" yaml:"summary"`
	Duration string        `json:"duration" yaml:"duration"`
}

func (r *ImportResult) tables() []table.Writer {
	t := newTable("Import")
	t.AppendRows([]table.Row{
		{"Source", r.Source},
		{"Rows", r.Rows},
		{"Leavers", r.Summary.Leavers},
		{"Attrition rate", fmt.Sprintf("%.1f%%", r.Summary.AttritionRate*100)},
		{"Duration", r.Duration},
	})
	return []table.Writer{t}
}

func newImportCmd() *cli.Command {
	return &cli.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Import an HR dataset CSV, replacing the previously imported one",
		UsageText: `attrition import --file Employee-Attrition.csv
   attrition import --url https://example.com/Employee-Attrition.csv`,
		Action: cmdImport,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagFile,
				Usage: "Path to the dataset CSV file",
			},
			&cli.StringFlag{
				Name:  flagURL,
				Usage: "URL of the dataset CSV file",
			},
		},
	}
}

func cmdImport(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	file := cmd.String(flagFile)
	url := cmd.String(flagURL)

	if (file == "") == (url == "") {
		return errors.New("exactly one of --file or --url is required")
	}

	cfg := getConfig(cmd)

	source := file
	if url != "" {
		slog.Info("downloading dataset", "url", url)
		path, err := net.DownloadTemp(ctx, url)
		if err != nil {
			return fmt.Errorf("downloading dataset: %w", err)
		}
		defer os.Remove(path)
		file, source = path, url
	}

	res, err := importFile(ctx, cfg.Store, file, source)
	if err != nil {
		return err
	}
	res.Duration = time.Since(start).String()

	return cfg.encode(res)
}

func importFile(ctx context.Context, store *data.Store, path, source string) (*ImportResult, error) {
	list, err := data.ReadCSVFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	slog.Info("importing employees", "source", source, "rows", len(list))
	if err := store.ReplaceEmployees(ctx, source, list); err != nil {
		return nil, fmt.Errorf("importing dataset: %w", err)
	}

	sum, err := store.GetSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarizing dataset: %w", err)
	}

	return &ImportResult{
		Source:  source,
		Rows:    len(list),
		Summary: sum,
	}, nil
}
