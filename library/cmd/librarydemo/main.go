// Command librarydemo drives the library use cases against the configured engine.
//
//	librarydemo migrate              create or upgrade the schema of the SQL engines
//	librarydemo seed                 add a small catalog, members and staff
//	librarydemo scenario             run the fine, missing librarian and concurrent registration scenarios
//
// Configuration comes from LIBRARY_* environment variables or an env file (see package config).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	envFile     string
	metricsAddr string
	logLevel    string
	tracing     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "librarydemo",
		Short:         "Run library use cases on the entity store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "env file with LIBRARY_* settings (default .env)")
	root.PersistentFlags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "debug, info, warn or error")
	root.PersistentFlags().BoolVar(&flags.tracing, "tracing", false, "record OpenTelemetry spans")

	root.AddCommand(
		newMigrateCommand(flags),
		newSeedCommand(flags),
		newScenarioCommand(flags),
	)

	return root
}

func newMigrateCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the schema of the configured SQL engine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer app.Close()

			app.logger.InfoContext(cmd.Context(), "schema is up to date", "engine", app.cfg.Engine)

			return nil
		},
	}
}

func newSeedCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add a small catalog, members and staff",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.seed(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func newScenarioCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario",
		Short: "Run the demo scenarios and print their outcome",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.runScenarios(cmd.Context(), cmd.OutOrStdout())
		},
	}
}
