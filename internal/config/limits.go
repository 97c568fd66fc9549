package config

import "time"

const (
	// MaxProjectTitleLength is the maximum length for project titles.
	// Fits the VARCHAR(255) column including the import suffix.
	MaxProjectTitleLength = 255

	// MaxBackupUploadBytes is the largest archive accepted for import.
	MaxBackupUploadBytes int64 = 50 << 20

	// MaxArchiveEntryBytes caps a single decompressed zip entry.
	// Uploads are bounded by MaxBackupUploadBytes, but compression can hide
	// arbitrarily large entries.
	MaxArchiveEntryBytes int64 = 200 << 20

	// MaxImportMediaBytes caps the decompressed media of one import, summed
	// over every bundled file.
	MaxImportMediaBytes int64 = 512 << 20

	// DefaultImportTimeout bounds an import once it is detached from the request.
	DefaultImportTimeout = 5 * time.Minute
)

// MaxImportRecords caps each record collection of an imported archive.
const MaxImportRecords = 100_000
