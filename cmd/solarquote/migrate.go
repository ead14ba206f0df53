package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bher20/solarquote/internal/cron"
	"github.com/bher20/solarquote/internal/migrate"
	"github.com/bher20/solarquote/internal/storage"
)

func newMigrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or inspect the SQL schema",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			db := opts.cfg.DB
			if db.Driver == "" || db.Driver == "memory" {
				return fmt.Errorf("migrate needs db.driver sqlite or postgres (got %q)", db.Driver)
			}
			ctx := cmd.Context()
			switch args[0] {
			case "up":
				return migrate.Up(ctx, db.Driver, db.DSN, opts.logger)
			case "down":
				return migrate.Down(ctx, db.Driver, db.DSN, opts.logger)
			case "status":
				return migrate.Status(ctx, db.Driver, db.DSN, opts.logger)
			default:
				return fmt.Errorf("unknown migrate action %q", args[0])
			}
		},
	}
	return cmd
}

func newJanitorCmd(opts *options) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "janitor",
		Short: "Prune quote snapshots older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			ctx := cmd.Context()
			st, err := openStorage(ctx, opts)
			if err != nil {
				return err
			}
			defer st.Close()

			j := cron.NewJanitor(st, opts.logger, cfg.Janitor.Schedule, cfg.Janitor.Retention)
			if once {
				pruned, _, err := j.RunOnce(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pruned %d snapshots\n", pruned)
				return nil
			}
			opts.logger.Info("janitor running until interrupted", zap.String("schedule", cfg.Janitor.Schedule))
			return ignoreCanceled(j.Run(ctx))
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single pass and exit")

	cmd.AddCommand(
		&cobra.Command{
			Use:     "set-schedule SECONDS|CRON",
			Short:   "Override the janitor schedule for running instances",
			Example: "  solarquote janitor set-schedule 900\n  solarquote janitor set-schedule \"0 3 * * *\"",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStorage(cmd, opts, func(st storage.Storage) error {
					if err := cron.SetSchedule(cmd.Context(), st, args[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "janitor schedule set to %q\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "set-retention DURATION",
			Short: "Override how long quote snapshots are kept (e.g. 168h)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := time.ParseDuration(args[0])
				if err != nil {
					return fmt.Errorf("parse retention: %w", err)
				}
				return withStorage(cmd, opts, func(st storage.Storage) error {
					if err := cron.SetRetention(cmd.Context(), st, d); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "janitor retention set to %s\n", d)
					return nil
				})
			},
		},
	)
	return cmd
}

// withStorage opens the configured storage for the duration of fn.
func withStorage(cmd *cobra.Command, opts *options, fn func(storage.Storage) error) error {
	st, err := openStorage(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}
