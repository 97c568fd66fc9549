package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"cowrite/internal/config"
	models "cowrite/internal/domain/models/backup"
	"cowrite/internal/service/backup/archive"

	"github.com/spf13/cobra"
)

// inspectReport is the --json output of inspect.
type inspectReport struct {
	Version      int                       `json:"version"`
	ExportedAt   time.Time                 `json:"exportedAt"`
	ProjectID    string                    `json:"projectId"`
	Title        string                    `json:"title"`
	Zip          bool                      `json:"zip"`
	Counts       map[models.EntityType]int `json:"counts"`
	MediaBundled int                       `json:"mediaBundled"`
	MediaMissing []string                  `json:"mediaMissing,omitempty"`
}

func newInspectCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "Describe an archive without touching the database",
		Long: `Read an archive and print its manifest version, project and record counts.
Media listed in the manifest without bundled bytes are reported as missing.

Examples:
  backupctl inspect novel_backup_20250102030405.zip
  backupctl inspect --json backup.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read archive: %w", err)
			}
			arc, err := archive.Read(data, config.MaxArchiveEntryBytes)
			if err != nil {
				return err
			}

			m := arc.Manifest
			report := inspectReport{
				Version:    m.Version,
				ExportedAt: m.ExportedAt,
				ProjectID:  m.Project.ID,
				Title:      m.Project.Title,
				Zip:        arc.IsZip(),
				Counts:     m.Counts(),
			}
			for _, media := range m.MediaAssets {
				if arc.HasMedia(media.ID) {
					report.MediaBundled++
				} else {
					report.MediaMissing = append(report.MediaMissing, media.ID)
				}
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			printf(cmd, "version:     %d\n", report.Version)
			printf(cmd, "exported at: %s\n", report.ExportedAt.Format(time.RFC3339))
			printf(cmd, "project:     %s (%s)\n", report.Title, report.ProjectID)
			printf(cmd, "format:      %s\n", map[bool]string{true: "zip", false: "json"}[report.Zip])
			printCounts(cmd, "records", report.Counts)
			printf(cmd, "media bundled: %d, missing: %d\n", report.MediaBundled, len(report.MediaMissing))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
