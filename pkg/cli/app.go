package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mchmarny/attrition/pkg/attrition"
	"github.com/mchmarny/attrition/pkg/config"
	"github.com/mchmarny/attrition/pkg/data"
	"github.com/mchmarny/attrition/pkg/logging"
	"github.com/mchmarny/attrition/pkg/model"
	"github.com/urfave/cli/v3"
)

const (
	appName      = "attrition"
	appConfigKey = "app-config"

	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"

	flagDebug     = "debug"
	flagDB        = "db"
	flagModel     = "model"
	flagFormat    = "format"
	flagThreshold = "threshold"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().Run(ctx, os.Args)
	stop()

	if err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Config    *config.Config
	Store     *data.Store
	Pipeline  *model.Pipeline
	Predictor *attrition.Predictor
	Format    string
	Debug     bool
	Out       io.Writer
	In        io.Reader
}

func getConfig(cmd *cli.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Employee attrition risk predictor and HR dashboard",
		Metadata:              map[string]any{},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Usage:   "Prints verbose logs (optional, default: false)",
				Sources: cli.EnvVars("ATTRITION_DEBUG"),
			},
			&cli.StringFlag{
				Name:    flagDB,
				Usage:   "Path to the sqlite database file or a postgres:// URL (default: $HOME/.attrition/data.db)",
				Sources: cli.EnvVars("ATTRITION_DB"),
			},
			&cli.StringFlag{
				Name:    flagModel,
				Usage:   "Path to the model pipeline file (default: built-in pipeline)",
				Sources: cli.EnvVars("ATTRITION_MODEL"),
			},
			&cli.StringFlag{
				Name:    flagFormat,
				Usage:   "Output format [json, yaml, table]",
				Value:   formatJSON,
				Sources: cli.EnvVars("ATTRITION_FORMAT"),
			},
			&cli.FloatFlag{
				Name:    flagThreshold,
				Usage:   "Probability at or above which an employee is predicted to leave",
				Value:   attrition.DefaultThreshold,
				Sources: cli.EnvVars("ATTRITION_THRESHOLD"),
			},
		},
		Commands: []*cli.Command{
			newPredictCmd(),
			newImportCmd(),
			newBoardCmd(),
			newGenerateCmd(),
			newServerCmd(),
			newResetCmd(),
		},
		Before: before,
		After: func(_ context.Context, cmd *cli.Command) error {
			if cfg, ok := cmd.Metadata[appConfigKey].(*appConfig); ok && cfg.Store != nil {
				return cfg.Store.Close()
			}
			return nil
		},
	}
}

func before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	debug := cmd.Bool(flagDebug)
	if debug {
		logging.SetDefaultCLILogger("debug")
	}

	format, err := parseFormat(cmd.String(flagFormat))
	if err != nil {
		return ctx, err
	}

	dir, created, err := config.GetOrCreateHomeDir(appName)
	if err != nil {
		return ctx, fmt.Errorf("resolving home dir: %w", err)
	}
	if created {
		slog.Info("created app directory", "path", dir)
	}

	conf, err := config.ReadOrCreate(dir)
	if err != nil {
		return ctx, fmt.Errorf("reading config: %w", err)
	}

	if cmd.IsSet(flagDB) {
		conf.DB = cmd.String(flagDB)
	}
	if cmd.IsSet(flagModel) {
		conf.Model = cmd.String(flagModel)
	}
	if cmd.IsSet(flagThreshold) {
		conf.Threshold = cmd.Float(flagThreshold)
	}
	if err := conf.Validate(); err != nil {
		return ctx, err
	}

	store, err := data.Open(conf.DB)
	if err != nil {
		return ctx, fmt.Errorf("opening database: %w", err)
	}

	pipeline, predictor, err := loadPredictor(conf.Model, conf.Threshold)
	if err != nil {
		store.Close()
		return ctx, err
	}

	cmd.Metadata[appConfigKey] = &appConfig{
		Config:    conf,
		Store:     store,
		Pipeline:  pipeline,
		Predictor: predictor,
		Format:    format,
		Debug:     debug,
		Out:       cmd.Root().Writer,
		In:        cmd.Root().Reader,
	}
	return ctx, nil
}

// loadPredictor never fails on a missing or mismatched model: prediction
// is disabled and the rest of the app keeps working. An empty path selects
// the built-in pipeline.
func loadPredictor(path string, threshold float64) (*model.Pipeline, *attrition.Predictor, error) {
	var clf attrition.Classifier
	opts := []attrition.Option{attrition.WithThreshold(threshold)}

	var p *model.Pipeline
	var err error
	if path == "" {
		path = "built-in"
		p, err = model.Default()
	} else {
		p, err = model.Load(path)
	}

	if err != nil {
		slog.Warn("prediction disabled", "model", path, "error", err)
		p = nil
	} else if err := attrition.CheckColumns(p.Columns()); err != nil {
		slog.Warn("prediction disabled, model columns do not match", "model", path, "error", err)
		p = nil
	} else {
		slog.Debug("model loaded", "model", p.String())
		clf = p
		if roles := p.Levels(attrition.ColJobRole); len(roles) > 0 {
			opts = append(opts, attrition.WithJobRoles(roles))
		}
	}

	pred, err := attrition.NewPredictor(clf, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating predictor: %w", err)
	}
	return p, pred, nil
}

func parseFormat(f string) (string, error) {
	switch f = strings.ToLower(strings.TrimSpace(f)); f {
	case "", formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	case formatTable:
		return formatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", f)
	}
}
