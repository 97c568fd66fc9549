package cli

import (
	"cowrite/internal/repository/postgres/migrations"

	"github.com/spf13/cobra"
)

func newMigrateCmd(open appOpener) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply pending schema migrations for the configured TABLE_PREFIX.

Examples:
  backupctl migrate
  backupctl migrate --status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer done()

			if status {
				return migrations.Status(cmd.Context(), a.Pool, a.Config.TablePrefix)
			}
			if err := migrations.Up(cmd.Context(), a.Pool, a.Config.TablePrefix); err != nil {
				return err
			}
			printf(cmd, "migrations applied (prefix %q)\n", a.Config.TablePrefix)
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "show applied and pending migrations instead")
	return cmd
}
