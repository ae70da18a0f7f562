package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Import   ImportConfig   `mapstructure:"import"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuthConfig holds administrator authentication configuration
type AuthConfig struct {
	JWTSecret              string `mapstructure:"jwt_secret"`
	TokenTTLHours          int    `mapstructure:"token_ttl_hours"`
	LoginRequestsPerMinute int    `mapstructure:"login_requests_per_minute"`
	LoginBurst             int    `mapstructure:"login_burst"`

	// TrustedProxies lists addresses or CIDR ranges allowed to set X-Forwarded-For
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// ImportConfig holds client import configuration
type ImportConfig struct {
	ReferenceFieldName string `mapstructure:"reference_field_name"`
	UpdateExisting     bool   `mapstructure:"update_existing"`
	RemoveNotInFile    bool   `mapstructure:"remove_not_in_file"`
	StagingTTL         int    `mapstructure:"staging_ttl"`
	StagingBackend     string `mapstructure:"staging_backend"`
	UploadDir          string `mapstructure:"upload_dir"`
	MaxUploadMB        int    `mapstructure:"max_upload_mb"`
}

// LoadConfig loads configuration from environment and config files
func LoadConfig() (*Config, error) {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 120)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "feedback")
	viper.SetDefault("database.dbname", "feedback")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("auth.jwt_secret", "change-me")
	viper.SetDefault("auth.token_ttl_hours", 24)
	viper.SetDefault("auth.login_requests_per_minute", 10)
	viper.SetDefault("auth.login_burst", 5)
	viper.SetDefault("auth.trusted_proxies", []string{})
	viper.SetDefault("import.reference_field_name", "Client Reference")
	viper.SetDefault("import.update_existing", false)
	viper.SetDefault("import.remove_not_in_file", false)
	viper.SetDefault("import.staging_ttl", 1800)
	viper.SetDefault("import.staging_backend", "redis")
	viper.SetDefault("import.upload_dir", "./uploads")
	viper.SetDefault("import.max_upload_mb", 10)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
