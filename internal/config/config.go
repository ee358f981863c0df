package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	pkglogger "github.com/gtuventures/ventures-backend/pkg/logger"
	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Storage drivers
const (
	StorageLocal = "local"
	StorageS3    = "s3"
	StorageMinIO = "minio"
)

// Config is the application configuration
type Config struct {
	Env           string              `yaml:"-"`
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	JWT           JWTConfig           `yaml:"jwt"`
	CORS          CORSConfig          `yaml:"cors"`
	Storage       StorageConfig       `yaml:"storage"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
}

type ServerConfig struct {
	Port            int    `yaml:"port"`
	Mode            string `yaml:"mode"`
	MaxUploadMB     int64  `yaml:"max_upload_mb"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec"`
}

type DatabaseConfig struct {
	Driver          string `yaml:"driver"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Name            string `yaml:"name"`
	Path            string `yaml:"path"` // sqlite file
	SSLMode         string `yaml:"ssl_mode"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

// GetDSN builds the driver specific DSN
func (d DatabaseConfig) GetDSN() string {
	switch d.Driver {
	case DriverPostgres:
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.User, d.Password, d.Name, sslMode)
	case DriverSQLite:
		if d.Path == "" {
			return "file:ventures.db?_foreign_keys=on"
		}
		return d.Path
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.Name)
	}
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret"`
	Issuer    string `yaml:"issuer"`
	ExpiresIn int    `yaml:"expires_in"` // seconds
}

type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

type StorageConfig struct {
	Driver          string `yaml:"driver"`
	LocalRoot       string `yaml:"local_root"`
	PublicBaseURL   string `yaml:"public_base_url"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	CDNURL          string `yaml:"cdn_url"`
	BasePath        string `yaml:"base_path"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	UseSSL          bool   `yaml:"use_ssl"`
}

type ElasticsearchConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Addresses   []string `yaml:"addresses"`
	Username    string   `yaml:"username"`
	Password    string   `yaml:"password"`
	IndexPrefix string   `yaml:"index_prefix"`
}

type SchedulerConfig struct {
	AutoPublish bool   `yaml:"auto_publish"`
	Spec        string `yaml:"spec"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Env: "local",
		Server: ServerConfig{
			Port:            8080,
			Mode:            "debug",
			MaxUploadMB:     20,
			ReadTimeoutSec:  30,
			WriteTimeoutSec: 60,
		},
		Database: DatabaseConfig{
			Driver:          DriverMySQL,
			Host:            "localhost",
			Port:            3306,
			User:            "root",
			Name:            "gtu_ventures",
			MaxIdleConns:    5,
			MaxOpenConns:    20,
			ConnMaxLifetime: 300,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			PoolSize: 10,
		},
		JWT: JWTConfig{
			Issuer:    "gtu-ventures",
			ExpiresIn: 86400,
		},
		CORS: CORSConfig{AllowOrigins: "http://localhost:3000"},
		Storage: StorageConfig{
			Driver:        StorageLocal,
			LocalRoot:     "uploads",
			PublicBaseURL: "/uploads",
			Region:        "us-east-1",
		},
		Elasticsearch: ElasticsearchConfig{IndexPrefix: "gtu-ventures"},
		Scheduler:     SchedulerConfig{Spec: "@every 1m"},
	}
}

// Load reads the YAML file at path (missing file = defaults) and applies env overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		pkglogger.Warn("config file %s not found, using defaults + env", path)
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.Env = env
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late at runtime
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case StorageLocal, StorageS3, StorageMinIO:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver != StorageLocal && c.Storage.Bucket == "" {
		return fmt.Errorf("storage driver %q requires a bucket", c.Storage.Driver)
	}
	if c.JWT.Secret == "" && !c.IsDevelopment() {
		return errors.New("jwt secret must be set outside development")
	}
	return nil
}

// IsDevelopment reports whether the app runs in a development environment
func (c *Config) IsDevelopment() bool {
	return pkglogger.IsDevelopment(c.Env)
}

// LogResolved prints the effective config without secrets
func LogResolved(c *Config) {
	pkglogger.GetLogger().Info().
		Str("env", c.Env).
		Int("port", c.Server.Port).
		Str("db_driver", c.Database.Driver).
		Str("db_host", c.Database.Host).
		Bool("redis", c.Redis.Enabled).
		Str("storage", c.Storage.Driver).
		Bool("elasticsearch", c.Elasticsearch.Enabled).
		Bool("auto_publish", c.Scheduler.AutoPublish).
		Msg("config resolved")
}

func applyEnv(c *Config) {
	setInt(&c.Server.Port, "SERVER_PORT")
	setString(&c.Server.Mode, "GIN_MODE")

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.Host, "DB_HOST")
	setInt(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.Database.Path, "DB_PATH")

	setBool(&c.Redis.Enabled, "REDIS_ENABLED")
	setString(&c.Redis.Host, "REDIS_HOST")
	setInt(&c.Redis.Port, "REDIS_PORT")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	setString(&c.JWT.Secret, "JWT_SECRET")
	setString(&c.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")

	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Storage.LocalRoot, "STORAGE_LOCAL_ROOT")
	setString(&c.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&c.Storage.Region, "STORAGE_REGION")
	setString(&c.Storage.AccessKeyID, "STORAGE_ACCESS_KEY_ID")
	setString(&c.Storage.SecretAccessKey, "STORAGE_SECRET_ACCESS_KEY")
	setString(&c.Storage.Bucket, "STORAGE_BUCKET")
	setString(&c.Storage.CDNURL, "STORAGE_CDN_URL")

	setBool(&c.Elasticsearch.Enabled, "ES_ENABLED")
	if v := os.Getenv("ES_ADDRESSES"); v != "" {
		c.Elasticsearch.Addresses = splitAndTrim(v, ",")
	}
	setString(&c.Elasticsearch.Username, "ES_USERNAME")
	setString(&c.Elasticsearch.Password, "ES_PASSWORD")

	setBool(&c.Scheduler.AutoPublish, "SCHEDULER_AUTO_PUBLISH")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// SplitOrigins splits the comma separated CORS origin list
func (c CORSConfig) SplitOrigins() []string {
	return splitAndTrim(c.AllowOrigins, ",")
}

func splitAndTrim(s, sep string) []string {
	parts := []string{}
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
