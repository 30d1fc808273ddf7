package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("FIELDSEAL_SECRET", "s3cr3t")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "s3cr3t", cfg.Secret)
	require.Equal(t, StoreSQLite, cfg.Store)
	require.Equal(t, "fieldseal.db", cfg.SQLitePath)
	require.Equal(t, TargetFilesystem, cfg.BackupTarget)
	require.Equal(t, "backups", cfg.BackupDir)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("FIELDSEAL_SECRET", "")

	_, err := Load()
	require.ErrorIs(t, err, ErrNoSecret)
}

func TestLoad_UnknownStore(t *testing.T) {
	setRequired(t)
	t.Setenv("FIELDSEAL_STORE", "cassandra")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	setRequired(t)
	t.Setenv("FIELDSEAL_BACKUP_TARGET", "s3")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("FIELDSEAL_S3_BUCKET", "agency-backups")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "agency-backups", cfg.S3Bucket)
}

func TestLoad_Mongo(t *testing.T) {
	setRequired(t)
	t.Setenv("FIELDSEAL_STORE", "mongo")
	t.Setenv("FIELDSEAL_MONGO_URI", "mongodb://db:27017")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StoreMongo, cfg.Store)
	require.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	require.Equal(t, "fieldseal", cfg.MongoDB)
}
