package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/advanced-rating/internal/domain/rating"
	"github.com/yungbote/advanced-rating/internal/platform/envutil"
	"github.com/yungbote/advanced-rating/internal/platform/gcp"
)

// UnmarshalYAML accepts "15s"-style strings or integer seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimSpace(value.Value)
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, got kind %d", value.Kind)
	}
	if s == "" || s == "null" || s == "~" {
		d.Duration = 0
		return nil
	}
	if dd, err := time.ParseDuration(s); err == nil {
		d.Duration = dd
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a string like \"5s\" or integer seconds: %q", s)
	}
	d.Duration = time.Duration(n) * time.Second
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

func Default() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              "127.0.0.1:8787",
			ReadHeaderTimeout: Duration{5 * time.Second},
			IdleTimeout:       Duration{2 * time.Minute},
			ShutdownTimeout:   Duration{15 * time.Second},
			MaxRequestBytes:   4 << 20,
			CORSOrigins:       []string{"https://musicbrainz.org", "https://beta.musicbrainz.org"},
		},
		Upstream: UpstreamConfig{
			BaseURL:   "https://musicbrainz.org",
			UserAgent: "advanced-rating/" + rating.DefaultScriptVersion,
			Timeout:   Duration{15 * time.Second},
		},
		Storage: StorageConfig{
			Driver: DriverFile,
			Key:    "rating_events",
			Path:   filepath.Join("data", "rating_events.json"),
		},
		Export: ExportConfig{
			Prefix: "musicbrainz_ratings",
			Sink:   SinkNone,
			Dir:    "exports",
		},
		ScriptVersion: rating.DefaultScriptVersion,
	}
}

// Load applies defaults, then the YAML file at RATING_CONFIG_PATH (or
// ./config/config.yaml when present), then environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	cfgPath := envutil.String("RATING_CONFIG_PATH", "")
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}
	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = envutil.String("LOG_MODE", cfg.Env)
	cfg.ScriptVersion = envutil.String("RATING_SCRIPT_VERSION", cfg.ScriptVersion)

	cfg.HTTP.Addr = envutil.String("RATING_HTTP_ADDR", cfg.HTTP.Addr)
	cfg.HTTP.ShutdownTimeout.Duration = envutil.Duration("RATING_HTTP_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout.Duration)
	if v := envutil.String("RATING_CORS_ORIGINS", ""); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}

	cfg.Upstream.BaseURL = envutil.String("RATING_UPSTREAM_BASE_URL", cfg.Upstream.BaseURL)
	cfg.Upstream.UserAgent = envutil.String("RATING_UPSTREAM_USER_AGENT", cfg.Upstream.UserAgent)
	cfg.Upstream.Timeout.Duration = envutil.Duration("RATING_UPSTREAM_TIMEOUT", cfg.Upstream.Timeout.Duration)

	cfg.Storage.Driver = envutil.String("RATING_STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.Key = envutil.String("RATING_STORAGE_KEY", cfg.Storage.Key)
	cfg.Storage.Path = envutil.String("RATING_STORAGE_PATH", cfg.Storage.Path)
	cfg.Storage.DSN = envutil.String("RATING_STORAGE_DSN", cfg.Storage.DSN)
	cfg.Storage.RedisAddr = envutil.String("REDIS_ADDR", cfg.Storage.RedisAddr)
	cfg.Storage.RedisPassword = envutil.String("REDIS_PASSWORD", cfg.Storage.RedisPassword)
	cfg.Storage.RedisDB = envutil.Int("REDIS_DB", cfg.Storage.RedisDB)

	cfg.Export.Prefix = envutil.String("RATING_EXPORT_PREFIX", cfg.Export.Prefix)
	cfg.Export.Sink = envutil.String("RATING_EXPORT_SINK", cfg.Export.Sink)
	cfg.Export.Dir = envutil.String("RATING_EXPORT_DIR", cfg.Export.Dir)
	cfg.Export.Bucket = envutil.String("EXPORT_GCS_BUCKET_NAME", cfg.Export.Bucket)
	cfg.Export.KeyPrefix = envutil.String("EXPORT_GCS_KEY_PREFIX", cfg.Export.KeyPrefix)
	cfg.Export.ObjectStorageMode = envutil.String("OBJECT_STORAGE_MODE", cfg.Export.ObjectStorageMode)
	cfg.Export.EmulatorHost = envutil.String("STORAGE_EMULATOR_HOST", cfg.Export.EmulatorHost)
	cfg.Export.PublicBaseURL = envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", cfg.Export.PublicBaseURL)
	cfg.Export.CDNDomain = envutil.String("EXPORT_CDN_DOMAIN", cfg.Export.CDNDomain)

	cfg.Render.FontPath = envutil.String("RATING_FONT_PATH", cfg.Render.FontPath)
}

func (cfg *Config) normalize() error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.ScriptVersion) == "" {
		cfg.ScriptVersion = rating.DefaultScriptVersion
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return errors.New("http.addr is required")
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 4 << 20
	}
	if cfg.HTTP.ShutdownTimeout.Duration <= 0 {
		cfg.HTTP.ShutdownTimeout = Duration{15 * time.Second}
	}

	cfg.Upstream.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Upstream.BaseURL), "/")
	if cfg.Upstream.BaseURL == "" {
		return errors.New("upstream.base_url is required")
	}
	if cfg.Upstream.Timeout.Duration <= 0 {
		cfg.Upstream.Timeout = Duration{15 * time.Second}
	}

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if strings.TrimSpace(cfg.Storage.Key) == "" {
		cfg.Storage.Key = "rating_events"
	}
	switch cfg.Storage.Driver {
	case DriverMemory:
	case DriverFile, DriverSQLite:
		if strings.TrimSpace(cfg.Storage.Path) == "" && strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("storage driver %q needs storage.path", cfg.Storage.Driver)
		}
	case DriverPostgres:
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return errors.New("storage driver \"postgres\" needs storage.dsn")
		}
	case DriverRedis:
		if strings.TrimSpace(cfg.Storage.RedisAddr) == "" {
			return errors.New("storage driver \"redis\" needs storage.redis_addr")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	cfg.Export.Sink = strings.ToLower(strings.TrimSpace(cfg.Export.Sink))
	if cfg.Export.Sink == "" {
		cfg.Export.Sink = SinkNone
	}
	switch cfg.Export.Sink {
	case SinkNone:
	case SinkDir:
		if strings.TrimSpace(cfg.Export.Dir) == "" {
			return errors.New("export sink \"dir\" needs export.dir")
		}
	case SinkGCS:
		if strings.TrimSpace(cfg.Export.Bucket) == "" {
			return errors.New("export sink \"gcs\" needs export.bucket")
		}
		if _, err := cfg.ObjectStorage(); err != nil {
			return fmt.Errorf("export object storage: %w", err)
		}
	default:
		return fmt.Errorf("unknown export sink %q", cfg.Export.Sink)
	}
	return nil
}

// ObjectStorage resolves the export bucket's storage mode.
func (cfg *Config) ObjectStorage() (gcp.ObjectStorageConfig, error) {
	return gcp.ResolveObjectStorageConfig(cfg.Export.ObjectStorageMode, cfg.Export.EmulatorHost)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
