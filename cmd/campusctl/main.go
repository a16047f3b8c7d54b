// Command campusctl runs operator tasks against the campus database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yigit/campus/internal/app/repositories/postgres"
	"github.com/yigit/campus/internal/app/services"
	"github.com/yigit/campus/internal/bootstrap"
	"github.com/yigit/campus/internal/config"
	"github.com/yigit/campus/internal/db"
	"github.com/yigit/campus/internal/seed"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is the loaded configuration plus an open, migrated database.
type env struct {
	cfg    *config.Config
	db     *db.PostgresDB
	logger zerolog.Logger
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "campusctl",
		Short:         "Operator tasks for the campus scheduling service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to the YAML config file")

	open := func(ctx context.Context) (*env, error) {
		cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
		if err != nil {
			return nil, err
		}
		if cfg.Store != config.StorePostgres {
			return nil, errors.New("campusctl needs store: postgres")
		}
		database, err := bootstrap.ConnectDatabase(ctx, cfg, lgr)
		if err != nil {
			return nil, err
		}
		return &env{cfg: cfg, db: database, logger: lgr}, nil
	}

	cmd.AddCommand(
		migrateCmd(open),
		seedCmd(open),
		semesterCmd(open),
		tokenCmd(open),
	)
	return cmd
}

type opener func(ctx context.Context) (*env, error)

func migrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close()
			e.logger.Info().Str("dir", e.cfg.Database.MigrationsDir).Msg("Migrations are up to date")
			return nil
		},
	}
}

func seedCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create demo users, subjects and an active semester",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close()
			opts := seed.Options{Password: e.cfg.Seed.Password, BcryptCost: e.cfg.Seed.BcryptCost}
			return seed.CreateDefaultData(cmd.Context(), postgres.NewStore(e.db), opts, e.logger)
		},
	}
}

func semesterCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "semester",
		Short: "Manage the active semester",
	}

	toggle := func(use, short string, activate bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <semester-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				e, err := open(cmd.Context())
				if err != nil {
					return err
				}
				defer e.db.Close()

				svc := services.NewSemesterService(postgres.NewStore(e.db))
				apply := svc.DeactivateSemester
				if activate {
					apply = svc.ActivateSemester
				}
				semester, err := apply(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd, semester)
			},
		}
	}

	cmd.AddCommand(
		toggle("activate", "Make a semester the active one", true),
		toggle("deactivate", "Clear the active flag of a semester", false),
	)
	return cmd
}

func tokenCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue an access token for a user without a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close()

			store := postgres.NewStore(e.db)
			auth := services.NewAuthService(store.Users(), bootstrap.NewJWTService(e.cfg))
			resp, err := auth.IssueFor(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, resp.Token)
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
