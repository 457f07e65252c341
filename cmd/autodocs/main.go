// @title                       Auto Docs API
// @version                     1.0
// @description                 University document-request portal: registration, email verification, approvals and serial numbers.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"autodocs/internal/app"
	"autodocs/internal/config"
	"autodocs/internal/migrations"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:          "autodocs",
		Short:        "Auto Docs portal backend",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config-dir", "config", "directory with config.<env>.yaml")

	load := func() (*config.Config, error) { return config.Load(configDir) }

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newCreateAdminCmd(load),
	)
	return root
}

type loader func() (*config.Config, error)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, cfg)
		},
	}
}

func newMigrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema and reference seed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != "postgres" {
				return fmt.Errorf("migrate requires database.driver=postgres, got %q", cfg.Database.Driver)
			}
			db, err := sql.Open("postgres", cfg.Database.DSN)
			if err != nil {
				return fmt.Errorf("open postgres: %w", err)
			}
			defer db.Close()
			return migrations.Apply(cmd.Context(), db)
		},
	}
}

func newCreateAdminCmd(load loader) *cobra.Command {
	var (
		email     string
		studentID int64
		password  string
	)
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an active administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			repos, cleanup, err := app.OpenRepositories(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			a := app.New(cfg, app.Deps{Repos: repos})
			u, err := a.Users.CreateAdmin(ctx, email, studentID, password)
			if err != nil {
				return err
			}
			log.Printf("[cli][create-admin] created id=%d email=%s", u.ID, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().Int64Var(&studentID, "student-id", 0, "unique numeric id")
	cmd.Flags().StringVar(&password, "password", "", "admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("student-id")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
