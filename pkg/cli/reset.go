package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/urfave/cli/v3"
)

const flagYes = "yes"

func newResetCmd() *cli.Command {
	return &cli.Command{
		Name:   "reset",
		Usage:  "Delete all imported data and start fresh",
		Action: cmdReset,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagYes,
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
	}
}

func cmdReset(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	if !cmd.Bool(flagYes) {
		fmt.Fprintf(cfg.Out, "This will permanently delete all data in %s\n", redactDSN(cfg.Config.DB))
		fmt.Fprint(cfg.Out, "Are you sure? [y/N]: ")

		answer, err := bufio.NewReader(cfg.In).ReadString('\n')
		if err != nil && answer == "" {
			return fmt.Errorf("reading input: %w", err)
		}

		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(cfg.Out, "Aborted.")
			return nil
		}
	}

	if err := cfg.Store.Clear(ctx); err != nil {
		return fmt.Errorf("deleting data: %w", err)
	}

	slog.Info("data deleted", "db", redactDSN(cfg.Config.DB))
	fmt.Fprintln(cfg.Out, "Reset complete.")
	return nil
}

// redactDSN hides the password of a postgres URL.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}
	return u.Redacted()
}
