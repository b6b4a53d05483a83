package migration

import (
	"fmt"
	"time"
)

const (
	PaginationOffset = "offset"
	PaginationCursor = "cursor"

	ImportSingle = "single"
	ImportBatch  = "batch"

	DefaultBackupBackend = "filesystem"
	DefaultTempSuffix    = "_NEW"
	DefaultPageSize      = 100
	DefaultBatchSize     = 100
	DefaultInspectPrefix = "Vector_index_"
)

// Config describes one migration run.
type Config struct {
	// Collection is the collection to migrate.
	Collection string `yaml:"collection" env:"MIGRATION_COLLECTION"`

	// BackupID identifies the backup that holds the pre-upgrade collection.
	BackupID string `yaml:"backup_id" env:"MIGRATION_BACKUP_ID"`

	// BackupBackend is the backup module, e.g. "filesystem" or "s3".
	BackupBackend string `yaml:"backup_backend" env:"MIGRATION_BACKUP_BACKEND"`

	// TempSuffix names the intermediate collection, <Collection><TempSuffix>.
	TempSuffix string `yaml:"temp_suffix" env:"MIGRATION_TEMP_SUFFIX"`

	// PageSize is the number of objects fetched per export request.
	PageSize int `yaml:"page_size" env:"MIGRATION_PAGE_SIZE"`

	// Pagination is "offset" (limit/offset) or "cursor" (after=<last id>).
	Pagination string `yaml:"pagination" env:"MIGRATION_PAGINATION"`

	// ImportMode is "single" (one POST per object) or "batch".
	ImportMode string `yaml:"import_mode" env:"MIGRATION_IMPORT_MODE"`

	// BatchSize is the number of objects per batch request in batch mode.
	BatchSize int `yaml:"batch_size" env:"MIGRATION_BATCH_SIZE"`

	Restore RestoreConfig `yaml:"restore"`

	// Verify re-exports the promoted collection and compares it with the
	// imported records.
	Verify bool `yaml:"verify" env:"MIGRATION_VERIFY"`

	// Resume continues from a stored checkpoint instead of starting over.
	Resume bool `yaml:"resume" env:"MIGRATION_RESUME"`

	// All migrates every legacy collection under InspectPrefix in place,
	// from the live data instead of a backup. Collection and BackupID are
	// ignored then.
	All bool `yaml:"all" env:"MIGRATION_ALL"`

	// InspectPrefix limits Inspect to collections with this name prefix.
	InspectPrefix string `yaml:"inspect_prefix" env:"MIGRATION_INSPECT_PREFIX"`
}

// RestoreConfig bounds the wait for a backup restore.
type RestoreConfig struct {
	InitialInterval time.Duration `yaml:"initial_interval" env:"MIGRATION_RESTORE_INITIAL_INTERVAL"`
	MaxInterval     time.Duration `yaml:"max_interval" env:"MIGRATION_RESTORE_MAX_INTERVAL"`

	// MaxAttempts caps the number of status polls.
	MaxAttempts int `yaml:"max_attempts" env:"MIGRATION_RESTORE_MAX_ATTEMPTS"`

	// Timeout caps the total time spent polling.
	Timeout time.Duration `yaml:"timeout" env:"MIGRATION_RESTORE_TIMEOUT"`
}

// DefaultConfig returns the settings the migration was originally run with:
// filesystem backups, pages of 100, and a restore budget of 30 polls.
func DefaultConfig() Config {
	return Config{
		BackupBackend: DefaultBackupBackend,
		TempSuffix:    DefaultTempSuffix,
		PageSize:      DefaultPageSize,
		Pagination:    PaginationOffset,
		ImportMode:    ImportSingle,
		BatchSize:     DefaultBatchSize,
		Restore: RestoreConfig{
			InitialInterval: 2 * time.Second,
			MaxInterval:     10 * time.Second,
			MaxAttempts:     30,
			Timeout:         2 * time.Minute,
		},
		Resume:        true,
		InspectPrefix: DefaultInspectPrefix,
	}
}

// withDefaults fills zero values from DefaultConfig. Flags are left alone.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BackupBackend == "" {
		c.BackupBackend = d.BackupBackend
	}
	if c.TempSuffix == "" {
		c.TempSuffix = d.TempSuffix
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.Pagination == "" {
		c.Pagination = d.Pagination
	}
	if c.ImportMode == "" {
		c.ImportMode = d.ImportMode
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.Restore.InitialInterval <= 0 {
		c.Restore.InitialInterval = d.Restore.InitialInterval
	}
	if c.Restore.MaxInterval <= 0 {
		c.Restore.MaxInterval = d.Restore.MaxInterval
	}
	if c.Restore.MaxAttempts <= 0 {
		c.Restore.MaxAttempts = d.Restore.MaxAttempts
	}
	if c.Restore.Timeout <= 0 {
		c.Restore.Timeout = d.Restore.Timeout
	}
	if c.InspectPrefix == "" {
		c.InspectPrefix = d.InspectPrefix
	}
	return c
}

// TempName returns the name of the intermediate collection.
func (c Config) TempName() string {
	return c.Collection + c.TempSuffix
}

// Validate checks the settings a run cannot do without.
func (c Config) Validate() error {
	if !c.All {
		if c.Collection == "" {
			return fmt.Errorf("migration collection is required")
		}
		if c.BackupID == "" {
			return fmt.Errorf("migration backup id is required")
		}
	}
	if c.BackupBackend == "" {
		return fmt.Errorf("migration backup backend is required")
	}
	if c.TempSuffix == "" {
		return fmt.Errorf("migration temp suffix cannot be empty")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("migration page size must be positive, got %d", c.PageSize)
	}
	switch c.Pagination {
	case PaginationOffset, PaginationCursor:
	default:
		return fmt.Errorf("unknown pagination %q, want %s or %s", c.Pagination, PaginationOffset, PaginationCursor)
	}
	switch c.ImportMode {
	case ImportSingle:
	case ImportBatch:
		if c.BatchSize <= 0 {
			return fmt.Errorf("migration batch size must be positive, got %d", c.BatchSize)
		}
	default:
		return fmt.Errorf("unknown import mode %q, want %s or %s", c.ImportMode, ImportSingle, ImportBatch)
	}
	if c.Restore.MaxAttempts <= 0 {
		return fmt.Errorf("restore max attempts must be positive, got %d", c.Restore.MaxAttempts)
	}
	if c.Restore.InitialInterval <= 0 || c.Restore.Timeout <= 0 {
		return fmt.Errorf("restore interval and timeout must be positive")
	}
	return nil
}
