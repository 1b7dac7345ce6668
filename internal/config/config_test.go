package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FILECRYPT_PASSPHRASE", "local-dev-passphrase")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Address())
	assert.Equal(t, "badger", cfg.Storage.MetadataBackend)
	assert.Equal(t, "local", cfg.Storage.BlobBackend)
	assert.Equal(t, "./uploads/catalog", cfg.Storage.BadgerDir)
	assert.Equal(t, int64(50*1024*1024), cfg.Upload.MaxFileSize)
	assert.Nil(t, cfg.Upload.AllowedExtensions)
	assert.Equal(t, 100_000, cfg.Crypto.Iterations)
	assert.Equal(t, "/metrics", cfg.Metrics.PrometheusPath)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FILECRYPT_KEY", "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff")
	t.Setenv("FILECRYPT_API_PORT", "9090")
	t.Setenv("FILECRYPT_API_READ_TIMEOUT", "5s")
	t.Setenv("FILECRYPT_METADATA_BACKEND", "Postgres")
	t.Setenv("FILECRYPT_BLOB_BACKEND", "minio")
	t.Setenv("FILECRYPT_ALLOWED_EXTENSIONS", "mp3, .PNG,,json")
	t.Setenv("FILECRYPT_MAX_FILE_SIZE", "1024")
	t.Setenv("MINIO_USE_SSL", "yes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres", cfg.Storage.MetadataBackend)
	assert.Equal(t, "minio", cfg.Storage.BlobBackend)
	assert.Equal(t, []string{"mp3", "png", "json"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, int64(1024), cfg.Upload.MaxFileSize)
	assert.True(t, cfg.MinIO.UseSSL)
}

func TestLoadRequiresKeySource(t *testing.T) {
	t.Setenv("FILECRYPT_KEY", "")
	t.Setenv("FILECRYPT_PASSPHRASE", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("FILECRYPT_PASSPHRASE", "x")
	t.Setenv("FILECRYPT_METADATA_BACKEND", "sqlite")

	_, err := Load()
	assert.Error(t, err)
}
