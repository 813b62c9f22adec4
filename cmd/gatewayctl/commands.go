package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/josh-kwaku/cryptogate/internal/app"
	"github.com/josh-kwaku/cryptogate/internal/config"
	"github.com/josh-kwaku/cryptogate/internal/repository"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [id-or-alias]",
		Short: "Print the public view of a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				p, err := a.Service.GetStatus(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(a.Projector.Project(p))
			})
		},
	}
}

func resweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resweep [payment-id]",
		Short: "Retry the sweep of one FAILED payment, or of a batch when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				if len(args) == 0 {
					n := a.Monitor.PollFailed(cmd.Context())
					fmt.Fprintf(cmd.OutOrStdout(), "resweep attempted for %d payments\n", n)
					return nil
				}

				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid payment id: %w", err)
				}
				status, err := a.Service.Tick(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", id, status)
				return nil
			})
		},
	}
}
