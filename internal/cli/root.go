// Package cli implements the backupctl command-line interface.
package cli

import (
	"context"
	"fmt"

	"cowrite/internal/app"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// appOpener connects to the backing services. The returned func releases them.
type appOpener func(ctx context.Context, cmd *cobra.Command) (*app.App, func(), error)

// openApp loads configuration from the environment and wires the service.
// Logs go to stderr so command output stays clean.
func openApp(ctx context.Context, cmd *cobra.Command) (*app.App, func(), error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, logFile, err := app.NewLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logFile.Close()
		return nil, nil, err
	}
	return a, func() {
		a.Close()
		logFile.Close()
	}, nil
}

// newRootCmd builds the command tree.
func newRootCmd(open appOpener) *cobra.Command {
	root := &cobra.Command{
		Use:   "backupctl",
		Short: "Export, restore and inspect cowrite project backups",
		Long: `backupctl runs the project backup service from the command line.

It reads the same environment as the server (DATABASE_URL, BLOB_BACKEND, ...),
including a .env file in the working directory.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	root.AddCommand(newExportCmd(open))
	root.AddCommand(newImportCmd(open))
	root.AddCommand(newMigrateCmd(open))
	root.AddCommand(newInspectCmd())
	return root
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd(openApp).Execute()
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
