package cli

import (
	"context"
	"fmt"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds the resources commands open on demand
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     database.Service
}

func (a *app) database() (database.Service, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := database.New(a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.logger != nil {
		a.logger.Sync()
	}
}

// NewRootCommand builds the storectl command tree
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "storectl",
		Short:         "Operator tooling for the storefront backend",
		Long:          "storectl applies schema migrations, bootstraps admin accounts and cleans up unreferenced product images.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			a.cfg = config.Load()

			log, err := logger.New(a.cfg.Server.Env, a.cfg.Server.LogLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	root.AddCommand(newMigrateCommand(a))
	root.AddCommand(newAccountsCommand(a))
	root.AddCommand(newAssetsCommand(a))

	return root
}

// Execute runs the CLI
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}
