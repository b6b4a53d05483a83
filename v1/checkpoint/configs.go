package checkpoint

const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendMinio = "minio"

	DefaultDir = ".vecmigrate"
)

// Config selects and configures the checkpoint backend.
type Config struct {
	// Backend is one of none, file, minio. Empty means none.
	Backend string `yaml:"backend" env:"CHECKPOINT_BACKEND"`

	// Dir is the directory of the file backend.
	Dir string `yaml:"dir" env:"CHECKPOINT_DIR"`

	Minio MinioConfig `yaml:"minio"`
}

// MinioConfig holds the connection of the minio backend.
type MinioConfig struct {
	// Endpoint is host:port of the S3 compatible server, without scheme.
	Endpoint string `yaml:"endpoint" env:"CHECKPOINT_MINIO_ENDPOINT"`

	AccessKeyID     string `yaml:"access_key_id" env:"CHECKPOINT_MINIO_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"CHECKPOINT_MINIO_SECRET_ACCESS_KEY"`
	UseSSL          bool   `yaml:"use_ssl" env:"CHECKPOINT_MINIO_USE_SSL"`
	Region          string `yaml:"region" env:"CHECKPOINT_MINIO_REGION"`

	// Bucket holds the checkpoint objects.
	Bucket string `yaml:"bucket" env:"CHECKPOINT_MINIO_BUCKET"`

	// Prefix is prepended to every object key, e.g. "vecmigrate/".
	Prefix string `yaml:"prefix" env:"CHECKPOINT_MINIO_PREFIX"`

	// CreateBucket creates Bucket on startup when it does not exist.
	CreateBucket bool `yaml:"create_bucket" env:"CHECKPOINT_MINIO_CREATE_BUCKET"`
}
