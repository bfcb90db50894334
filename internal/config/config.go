package config

import "time"

type Duration struct {
	time.Duration
}

type Config struct {
	// Env is the logger mode: "development", "prod" or "test".
	Env string `yaml:"env"`

	HTTP     HTTPConfig     `yaml:"http"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Storage  StorageConfig  `yaml:"storage"`
	Export   ExportConfig   `yaml:"export"`
	Render   RenderConfig   `yaml:"render"`

	// ScriptVersion is stamped on every appended event.
	ScriptVersion string `yaml:"script_version"`
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `yaml:"max_request_bytes"`
	CORSOrigins       []string `yaml:"cors_origins"`
}

// UpstreamConfig points at the catalog site that receives rating changes.
type UpstreamConfig struct {
	BaseURL   string   `yaml:"base_url"`
	UserAgent string   `yaml:"user_agent"`
	Timeout   Duration `yaml:"timeout"`
}

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type StorageConfig struct {
	Driver string `yaml:"driver"`
	// Key names the slot holding the log.
	Key  string `yaml:"key"`
	Path string `yaml:"path"`
	DSN  string `yaml:"dsn"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

const (
	SinkNone = "none"
	SinkDir  = "dir"
	SinkGCS  = "gcs"
)

type ExportConfig struct {
	Prefix string `yaml:"prefix"`
	Sink   string `yaml:"sink"`
	Dir    string `yaml:"dir"`

	Bucket            string `yaml:"bucket"`
	KeyPrefix         string `yaml:"key_prefix"`
	ObjectStorageMode string `yaml:"object_storage_mode"`
	EmulatorHost      string `yaml:"emulator_host"`
	PublicBaseURL     string `yaml:"public_base_url"`
	CDNDomain         string `yaml:"cdn_domain"`
	Credentials       string `yaml:"credentials"`
}

type RenderConfig struct {
	// FontPath is a TTF used for bar labels; empty uses the bundled Go font.
	FontPath string `yaml:"font_path"`
}
