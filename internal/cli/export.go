package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(open appOpener) *cobra.Command {
	var projectID, userID, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a project to a zip archive",
		Long: `Export a project graph and its media to a zip archive.

The user must own or be a member of the project.

Examples:
  backupctl export --project 3f0c... --user 9a1b...
  backupctl export --project 3f0c... --user 9a1b... -o novel.zip`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer done()

			res, err := a.Backup.ExportProject(cmd.Context(), userID, projectID)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			path := output
			if path == "" {
				path = res.Filename
			}
			if err := os.WriteFile(path, res.Content, 0o644); err != nil {
				return fmt.Errorf("write archive: %w", err)
			}
			printf(cmd, "wrote %s (%d bytes, %d media files)\n", path, len(res.Content), res.MediaCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "project id to export")
	cmd.Flags().StringVar(&userID, "user", "", "user id performing the export")
	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path (default: <title>_backup_<timestamp>.zip)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
