package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

func newImportCmd(open appOpener) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "import <archive>",
		Short: "Restore an archive as a new project",
		Long: `Restore a zip archive (or a bare backup.json) as a new project owned by
the given user. Every record gets a fresh id; the source project is untouched.

Examples:
  backupctl import --user 9a1b... novel_backup_20250102030405.zip`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read archive: %w", err)
			}

			a, done, err := open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer done()

			res, err := a.Backup.ImportArchive(cmd.Context(), userID, data)
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}

			printf(cmd, "created project %s\n", res.ProjectID)
			printCounts(cmd, "created", res.Summary.Created)
			if len(res.Summary.Dropped) > 0 {
				printCounts(cmd, "dropped", res.Summary.Dropped)
			}
			printf(cmd, "media restored: %d\n", res.Summary.MediaRestored)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id that will own the new project")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// printCounts prints non-zero counts sorted by entity name.
func printCounts[K ~string](cmd *cobra.Command, label string, counts map[K]int) {
	keys := make([]string, 0, len(counts))
	for k, n := range counts {
		if n > 0 {
			keys = append(keys, string(k))
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		printf(cmd, "  %s %-18s %d\n", label, k, counts[K(k)])
	}
}
