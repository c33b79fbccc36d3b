package cli

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mchmarny/attrition/pkg/logging"
	"github.com/urfave/cli/v3"
)

const (
	serverShutdownWaitSeconds = 5
	serverTimeoutSeconds      = 300
	serverMaxHeaderBytes      = 20
	requestTimeoutSeconds     = 60

	flagPort      = "port"
	flagNoBrowser = "no-browser"
	flagJSONLogs  = "json-logs"
)

var (
	//go:embed assets/* templates/*
	embedFS embed.FS
)

func newServerCmd() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"serve"},
		Usage:   "Start local HTTP dashboard",
		Action:  cmdStartServer,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    flagPort,
				Usage:   "Port on which the server will listen (default: config port)",
				Sources: cli.EnvVars("ATTRITION_PORT"),
			},
			&cli.BoolFlag{
				Name:    flagNoBrowser,
				Aliases: []string{"nb"},
				Usage:   "Do not open browser automatically",
			},
			&cli.BoolFlag{
				Name:    flagJSONLogs,
				Usage:   "Write structured JSON logs to stderr",
				Sources: cli.EnvVars("ATTRITION_JSON_LOGS"),
			},
		},
	}
}

func cmdStartServer(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	if cmd.Bool(flagJSONLogs) {
		level := "info"
		if cfg.Debug {
			level = "debug"
		}
		slog.SetDefault(logging.NewJSONLogger(os.Stderr, level))
	}

	port := cfg.Config.Port
	if cmd.IsSet(flagPort) {
		port = cmd.Int(flagPort)
	}
	address := fmt.Sprintf("127.0.0.1:%d", port)

	handler, err := makeRouter(cfg)
	if err != nil {
		return err
	}

	s := &http.Server{
		Addr:           address,
		Handler:        handler,
		ReadTimeout:    serverTimeoutSeconds * time.Second,
		WriteTimeout:   serverTimeoutSeconds * time.Second,
		MaxHeaderBytes: 1 << serverMaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	url := fmt.Sprintf("http://%s", address)
	slog.Info("server started", "address", url, "prediction", cfg.Predictor.Available())

	if !cmd.Bool(flagNoBrowser) {
		openBrowser(url)
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownWaitSeconds*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error shutting down server", "error", err)
	}
	slog.Info("server stopped")
	return nil
}

func makeRouter(cfg *appConfig) (http.Handler, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(embedFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	assets, err := fs.Sub(embedFS, "assets")
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(slog.Default().Handler(), slog.LevelDebug),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeoutSeconds * time.Second))

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(assets)))

	// Views
	r.Get("/", homeViewHandler(tmpl, cfg))
	r.Get("/predict", predictViewHandler(tmpl, cfg))
	r.Post("/predict", predictSubmitHandler(tmpl, cfg))

	// Data API
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthAPIHandler(cfg))
		r.Get("/leaderboards", leaderboardsAPIHandler(cfg))
		r.Get("/roles", rolesAPIHandler(cfg))
		r.Post("/predict", predictAPIHandler(cfg))
	})

	return r, nil
}

func openBrowser(url string) {
	var cmd string
	args := make([]string, 0, 1)

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
	case "linux":
		cmd = "xdg-open"
	default: // windows
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler"}
	}

	args = append(args, url)
	if err := exec.Command(cmd, args...).Start(); err != nil {
		slog.Error("failed to open browser", "error", err)
	}
}
