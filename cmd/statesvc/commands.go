package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/utafrali/EcommerceGo/clientstate/internal/app"
	"github.com/utafrali/EcommerceGo/clientstate/internal/config"
	"github.com/utafrali/EcommerceGo/clientstate/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "statesvc",
		Short:         "Client state service: carts, wishlists and favorites with undo history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newInspectCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Load configuration from environment variables.
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := logger.New(app.ServiceName, cfg.LogLevel)
			log.Info("starting state service",
				slog.String("environment", cfg.Environment),
				slog.Int("http_port", cfg.HTTPPort),
				slog.String("storage", cfg.Storage),
			)

			application, err := app.NewApp(cfg, log)
			if err != nil {
				return fmt.Errorf("initialize application: %w", err)
			}

			// Cancelled on SIGINT or SIGTERM.
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := application.Run(ctx); err != nil {
				return err
			}
			log.Info("state service stopped")
			return nil
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <key>",
		Short: "Print the decoded state stored under a key",
		Example: `  statesvc inspect cart-storage:3f6c...
  STATE_STORAGE=redis statesvc inspect wishlist-storage`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd.Context(), func(ctx context.Context, s *app.Storage) error {
				blob, err := s.Raw.Load(ctx, args[0])
				if err != nil {
					return fmt.Errorf("load %s: %w", args[0], err)
				}
				view, err := inspectBlob(args[0], blob)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			})
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <key>",
		Short: "Rewrite a legacy blob at the current schema version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd.Context(), func(ctx context.Context, s *app.Storage) error {
				blob, err := s.Raw.Load(ctx, args[0])
				if err != nil {
					return fmt.Errorf("load %s: %w", args[0], err)
				}
				migrated, from, err := migrateBlob(args[0], blob, time.Now())
				if err != nil {
					return err
				}
				if migrated == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is already at schema %d\n", args[0], from)
					return nil
				}
				if err := s.Raw.Save(ctx, args[0], migrated); err != nil {
					return fmt.Errorf("save %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s migrated from schema %d\n", args[0], from)
				return nil
			})
		},
	}
}

// withStorage opens the configured backend for a one-shot command.
func withStorage(parent context.Context, fn func(context.Context, *app.Storage) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(app.ServiceName, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(parent, 30*time.Second)
	defer cancel()

	s, err := app.OpenStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}
