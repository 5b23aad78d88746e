package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ballotbox/internal/app/bootstrap"
	"ballotbox/internal/platform/config"

	"github.com/spf13/cobra"
)

const programName = "ballotctl"

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Administer voter credentials, ballots and results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		// Admin output goes to stdout; logs stay on stderr.
		bootstrap.NewLogger(os.Stderr, globalFlags.debug)
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	rootCmd.AddCommand(migrateCommand())
	rootCmd.AddCommand(ballotCommand())
	rootCmd.AddCommand(issueTokensCommand())
	rootCmd.AddCommand(checkTokenCommand())
	rootCmd.AddCommand(tallyCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		stop()
		os.Exit(1)
	}
}

// withCore opens the database-backed module for a single admin command.
func withCore(cmd *cobra.Command, fn func(core *bootstrap.Core) error) error {
	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		return fmt.Errorf("no config found in context")
	}
	core, err := bootstrap.BuildCore(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if err := core.Close(); err != nil {
			slog.Warn("close database failed", "error", err.Error())
		}
	}()
	return fn(core)
}
