package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	logFilePrefix = "cowrite-"
	logFileSuffix = ".log"
	logTimeLayout = "2006-01-02T15-04-05"
)

// SetupLogFile opens a fresh timestamped log file in dir and prunes the
// directory down to maxFiles logs. The caller closes the file.
func SetupLogFile(dir string, maxFiles int) (*os.File, error) {
	return openLogFile(dir, maxFiles, time.Now())
}

func openLogFile(dir string, maxFiles int, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := filepath.Join(dir, logFilePrefix+now.Format(logTimeLayout)+logFileSuffix)
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	// A failed prune leaves extra files behind; logging itself still works.
	if err := pruneLogs(dir, maxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "warning: prune old logs: %v\n", err)
	}
	return f, nil
}

// pruneLogs keeps the newest maxFiles logs. Names sort chronologically.
func pruneLogs(dir string, maxFiles int) error {
	if maxFiles <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var logs []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasPrefix(e.Name(), logFilePrefix) && strings.HasSuffix(e.Name(), logFileSuffix) {
			logs = append(logs, e.Name())
		}
	}
	if len(logs) <= maxFiles {
		return nil
	}
	slices.Sort(logs)

	var errs []error
	for _, name := range logs[:len(logs)-maxFiles] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
