package config

// StorageConfig selects and configures the campaign document backend.
// Mode is one of "local", "s3", or "postgres".
type StorageConfig struct {
	Mode        string
	DataDir     string
	S3Bucket    string
	S3Prefix    string
	AWSRegion   string
	DatabaseURL string

	// SeedFile optionally points at a JSON document used to seed the
	// campaign state on first boot instead of the built-in starter.
	SeedFile string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Mode:        getEnv("STORAGE_MODE", "local"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		S3Bucket:    getEnv("S3_BUCKET", "fateweaver-campaigns"),
		S3Prefix:    getEnv("S3_PREFIX", ""),
		AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SeedFile:    getEnv("STATE_SEED_FILE", ""),
	}
}
