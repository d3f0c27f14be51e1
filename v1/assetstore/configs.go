package assetstore

const (
	// KindDir reads assets from a local directory.
	KindDir = "dir"

	// KindMinio reads assets from a MinIO (or any S3 compatible) bucket.
	KindMinio = "minio"
)

// Config selects and configures the asset store holding the preprocessing
// profiles (feature extractor and tokenizer configuration) of every model.
type Config struct {
	// Kind is either "dir" (default) or "minio".
	Kind string `yaml:"kind" envconfig:"KIND"`

	// Dir is the base directory for the "dir" kind. Model client directories
	// such as "bria_attribution_model_client" live directly below it.
	Dir string `yaml:"dir" envconfig:"DIR"`

	// Minio configures the "minio" kind.
	Minio MinioConfig `yaml:"minio" envconfig:"MINIO"`
}

// MinioConfig contains MinIO connection details and the location of the
// assets inside the bucket.
type MinioConfig struct {
	Endpoint        string `yaml:"endpoint" envconfig:"ENDPOINT"`                   // e.g. "localhost:9000"
	AccessKeyID     string `yaml:"access_key_id" envconfig:"ACCESS_KEY_ID"`         // MinIO access key
	SecretAccessKey string `yaml:"secret_access_key" envconfig:"SECRET_ACCESS_KEY"` // MinIO secret key
	UseSSL          bool   `yaml:"use_ssl" envconfig:"USE_SSL"`                     // https when true
	BucketName      string `yaml:"bucket_name" envconfig:"BUCKET_NAME"`             // bucket holding the assets
	Region          string `yaml:"region" envconfig:"REGION"`                       // e.g. "us-east-1"
	Prefix          string `yaml:"prefix" envconfig:"PREFIX"`                       // key prefix playing the role of the base directory
}

// DefaultConfig reads assets from the current working directory.
func DefaultConfig() Config {
	return Config{
		Kind: KindDir,
		Dir:  ".",
	}
}
