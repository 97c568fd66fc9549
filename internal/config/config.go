package config

import (
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Blob store backends
const (
	BlobBackendLocal = "local"
	BlobBackendS3    = "s3"
	BlobBackendGCS   = "gcs"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	AuthURL     string
	JWKSURL     string // Defaults to AuthURL + /auth/v1/.well-known/jwks.json
	CORSOrigins string
	TablePrefix string
	LogDir      string
	LogMaxFiles int

	// Media storage
	BlobBackend        string
	MediaDir           string
	S3Bucket           string
	S3Region           string
	S3Endpoint         string
	S3AccessKey        string
	S3SecretKey        string
	GCSBucket          string
	GCSCredentialsFile string

	// Search indexing (disabled when ElasticsearchURL is empty)
	ElasticsearchURL    string
	ElasticsearchAPIKey string
	SearchTimeout       time.Duration

	// Backup tuning
	ImportTimeout         time.Duration
	ImportsPerMinute      int
	MediaFetchConcurrency int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	authURL := getEnv("SUPABASE_URL", "")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", getEnv("SUPABASE_DB_URL", "")),
		AuthURL:     authURL,
		JWKSURL:     getEnv("JWKS_URL", authURL+"/auth/v1/.well-known/jwks.json"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),

		BlobBackend:        getEnv("BLOB_BACKEND", BlobBackendLocal),
		MediaDir:           getEnv("MEDIA_DIR", "./uploads"),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Region:           getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3AccessKey:        getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:        getEnv("S3_SECRET_KEY", ""),
		GCSBucket:          getEnv("GCS_BUCKET", ""),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),

		ElasticsearchURL:    getEnv("ELASTICSEARCH_URL", ""),
		ElasticsearchAPIKey: getEnv("ELASTICSEARCH_API_KEY", ""),
		SearchTimeout:       getEnvDuration("SEARCH_TIMEOUT", 10*time.Second),

		ImportTimeout:         getEnvDuration("IMPORT_TIMEOUT", DefaultImportTimeout),
		ImportsPerMinute:      getEnvInt("IMPORTS_PER_MINUTE", 6),
		MediaFetchConcurrency: getEnvInt("MEDIA_FETCH_CONCURRENCY", 8),
	}
}

// Validate checks that the loaded configuration is usable.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.Environment, validation.Required, validation.In("dev", "test", "prod")),
		validation.Field(&c.DatabaseURL, validation.Required),
		validation.Field(&c.BlobBackend, validation.Required,
			validation.In(BlobBackendLocal, BlobBackendS3, BlobBackendGCS)),
		validation.Field(&c.MediaDir, validation.When(c.BlobBackend == BlobBackendLocal, validation.Required)),
		validation.Field(&c.S3Bucket, validation.When(c.BlobBackend == BlobBackendS3, validation.Required)),
		validation.Field(&c.GCSBucket, validation.When(c.BlobBackend == BlobBackendGCS, validation.Required)),
		validation.Field(&c.ElasticsearchURL, is.URL),
		validation.Field(&c.ImportTimeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.ImportsPerMinute, validation.Required, validation.Min(1)),
		validation.Field(&c.MediaFetchConcurrency, validation.Required, validation.Min(1), validation.Max(64)),
	)
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}
