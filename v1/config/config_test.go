package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/vecmigrate/v1/checkpoint"
	"github.com/Aleph-Alpha/vecmigrate/v1/migration"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Weaviate.Endpoint)
	assert.Equal(t, migration.DefaultBackupBackend, cfg.Migration.BackupBackend)
	assert.Equal(t, migration.DefaultPageSize, cfg.Migration.PageSize)
	assert.Equal(t, 30, cfg.Migration.Restore.MaxAttempts)
	assert.Equal(t, checkpoint.BackendFile, cfg.Checkpoint.Backend)
	assert.Equal(t, ServiceName, cfg.Logger.ServiceName)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "vecmigrate.yaml", `
weaviate:
  endpoint: http://weaviate:8080
  api_key: secret
  timeout: 45s
migration:
  collection: Vector_index_abc_Node
  backup_id: dify-backup-before-upgrade
  pagination: cursor
  restore:
    max_attempts: 10
    timeout: 5m
checkpoint:
  backend: minio
  minio:
    endpoint: minio:9000
    bucket: checkpoints
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "http://weaviate:8080", cfg.Weaviate.Endpoint)
	assert.Equal(t, "secret", cfg.Weaviate.ApiKey)
	assert.Equal(t, 45*time.Second, cfg.Weaviate.Timeout)
	assert.Equal(t, "Vector_index_abc_Node", cfg.Migration.Collection)
	assert.Equal(t, migration.PaginationCursor, cfg.Migration.Pagination)
	assert.Equal(t, 10, cfg.Migration.Restore.MaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Migration.Restore.Timeout)
	// untouched keys keep their defaults
	assert.Equal(t, 2*time.Second, cfg.Migration.Restore.InitialInterval)
	assert.Equal(t, migration.DefaultPageSize, cfg.Migration.PageSize)
	assert.Equal(t, "checkpoints", cfg.Checkpoint.Minio.Bucket)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "vecmigrate.yaml", "migration:\n  collection: FromFile\n  page_size: 50\n")
	t.Setenv("MIGRATION_COLLECTION", "FromEnv")
	t.Setenv("MIGRATION_RESTORE_TIMEOUT", "90s")
	t.Setenv("MIGRATION_VERIFY", "true")

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "FromEnv", cfg.Migration.Collection)
	assert.Equal(t, 50, cfg.Migration.PageSize)
	assert.Equal(t, 90*time.Second, cfg.Migration.Restore.Timeout)
	assert.True(t, cfg.Migration.Verify)
}

func TestLoad_EnvFile(t *testing.T) {
	envFile := writeFile(t, ".env", "MIGRATION_BACKUP_ID=from-dotenv\nWEAVIATE_API_KEY=dotenv-key\n")
	t.Setenv("WEAVIATE_API_KEY", "process-key")
	// godotenv sets variables it loads; make sure they do not leak
	t.Setenv("MIGRATION_BACKUP_ID", "")
	require.NoError(t, os.Unsetenv("MIGRATION_BACKUP_ID"))

	cfg, err := Load("", envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Migration.BackupID)
	assert.Equal(t, "process-key", cfg.Weaviate.ApiKey)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing yaml", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), "")
		assert.Error(t, err)
	})
	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.yaml", "migration: [unclosed"), "")
		assert.Error(t, err)
	})
	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("MIGRATION_PAGE_SIZE", "many")
		_, err := Load("", "")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Migration.Collection = "Foo"
		cfg.Migration.BackupID = "b1"
		return cfg
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Weaviate.Endpoint = ""
	cfg.Migration.Collection = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint")
	assert.Contains(t, err.Error(), "collection")

	cfg = valid()
	cfg.Checkpoint.Backend = "redis"
	assert.ErrorContains(t, cfg.Validate(), "redis")

	cfg = valid()
	cfg.Checkpoint.Backend = checkpoint.BackendMinio
	assert.ErrorContains(t, cfg.Validate(), "bucket")

	cfg = valid()
	cfg.Migration.Collection = ""
	assert.NoError(t, cfg.ValidateConnection())
}
