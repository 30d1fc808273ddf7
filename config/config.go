// Package config loads service configuration from the environment.
// A .env file in the working directory is honored when present.
package config

import (
	"errors"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Store backend identifiers.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Backup target identifiers.
const (
	TargetFilesystem = "filesystem"
	TargetS3         = "s3"
)

// ErrNoSecret indicates the operator secret is missing. Every encryption and
// decryption operation depends on it, so loading fails outright.
var ErrNoSecret = errors.New("config: FIELDSEAL_SECRET is not set")

// Config holds all service settings. The operator secret is required;
// everything else has a default or is optional.
type Config struct {
	Secret string `env:"FIELDSEAL_SECRET"`

	Store      string `env:"FIELDSEAL_STORE"       env-default:"sqlite"`
	SQLitePath string `env:"FIELDSEAL_SQLITE_PATH" env-default:"fieldseal.db"`
	MongoURI   string `env:"FIELDSEAL_MONGO_URI"   env-default:"mongodb://localhost:27017"`
	MongoDB    string `env:"FIELDSEAL_MONGO_DB"    env-default:"fieldseal"`

	BackupTarget string `env:"FIELDSEAL_BACKUP_TARGET" env-default:"filesystem"`
	BackupDir    string `env:"FIELDSEAL_BACKUP_DIR"    env-default:"backups"`

	S3Bucket          string `env:"FIELDSEAL_S3_BUCKET"`
	S3Prefix          string `env:"FIELDSEAL_S3_PREFIX"`
	S3Region          string `env:"FIELDSEAL_S3_REGION"`
	S3AccessKeyID     string `env:"FIELDSEAL_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"FIELDSEAL_S3_SECRET_ACCESS_KEY"`

	// Optional age key material for encrypting snapshot archives.
	AgeRecipientPath string `env:"FIELDSEAL_AGE_RECIPIENT_PATH"`
	AgeIdentityPath  string `env:"FIELDSEAL_AGE_IDENTITY_PATH"`
}

// Load reads configuration from the environment (and .env, if present) and
// validates it.
func Load() (Config, error) {
	// A missing .env is the normal case, not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: reading environment: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Secret == "" {
		return ErrNoSecret
	}
	switch c.Store {
	case StoreSQLite, StoreMongo:
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	switch c.BackupTarget {
	case TargetFilesystem:
	case TargetS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("config: s3 backup target requires FIELDSEAL_S3_BUCKET")
		}
	default:
		return fmt.Errorf("config: unknown backup target %q", c.BackupTarget)
	}
	return nil
}
