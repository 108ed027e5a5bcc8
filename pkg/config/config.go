package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Required fields
	BackupDir    string `mapstructure:"backup_dir"`
	JWTSecretKey string `mapstructure:"jwt_secret_key"`

	// Optional API settings
	APIHost string `mapstructure:"api_host"`
	APIPort int    `mapstructure:"api_port"`

	// Optional CORS settings
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Optional logging settings
	LogLevel string `mapstructure:"log_level"`

	// Optional JWT settings
	JWTTokenTTL time.Duration `mapstructure:"jwt_token_ttl"`

	// Optional scheduler settings
	ScheduleInterval time.Duration `mapstructure:"schedule_interval"`

	// Optional dump settings
	DumpTimeout  time.Duration `mapstructure:"dump_timeout"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`

	// Static paths
	ConfigPath string
	DBPath     string `mapstructure:"db_path"`
}

const (
	DefaultConfigPath       = "/etc/safebase/config.yml"
	DefaultDBPath           = "/var/lib/safebase/db.sqlite3"
	DefaultAPIHost          = "0.0.0.0"
	DefaultAPIPort          = 8080
	DefaultLogLevel         = "info"
	DefaultJWTTokenTTL      = 24 * time.Hour
	DefaultScheduleInterval = time.Minute
	DefaultDumpTimeout      = 30 * time.Minute
	DefaultProbeTimeout     = 5 * time.Second
)

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// Set defaults
	viper.SetDefault("api_host", DefaultAPIHost)
	viper.SetDefault("api_port", DefaultAPIPort)
	viper.SetDefault("log_level", DefaultLogLevel)
	viper.SetDefault("jwt_token_ttl", DefaultJWTTokenTTL)
	viper.SetDefault("schedule_interval", DefaultScheduleInterval)
	viper.SetDefault("dump_timeout", DefaultDumpTimeout)
	viper.SetDefault("probe_timeout", DefaultProbeTimeout)
	viper.SetDefault("db_path", DefaultDBPath)

	// Allow environment variable overrides
	viper.AutomaticEnv()
	viper.SetEnvPrefix("SAFEBASE")

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine when the environment supplies the
		// required values.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ConfigPath = configPath

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.BackupDir == "" {
		return fmt.Errorf("backup_dir is required")
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("jwt_secret_key is required")
	}
	if _, err := os.Stat(c.BackupDir); os.IsNotExist(err) {
		return fmt.Errorf("backup_dir does not exist: %s", c.BackupDir)
	}
	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("api_port must be between 1 and 65535")
	}
	return nil
}

func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}
