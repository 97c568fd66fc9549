package backup

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const maxFilenameStem = 80

var (
	unsafeFilenameChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
)

// SafeFilename turns a project title into something every filesystem accepts.
func SafeFilename(title string) string {
	s := strings.TrimSpace(title)
	s = unsafeFilenameChars.ReplaceAllString(s, "_")
	s = whitespaceRun.ReplaceAllString(s, "_")
	if utf8.RuneCountInString(s) > maxFilenameStem {
		s = string([]rune(s)[:maxFilenameStem])
	}
	if s == "" {
		return "cowrite"
	}
	return s
}

// ArchiveFilename is the download name for an export taken at t.
func ArchiveFilename(title string, t time.Time) string {
	return SafeFilename(title) + "_backup_" + t.Format("20060102150405") + ".zip"
}
