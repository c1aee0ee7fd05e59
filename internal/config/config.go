package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Directory DirectoryConfig
	RabbitMQ  RabbitMQConfig
	CORS      CORSConfig
	Logging   LoggingConfig

	GeminiAPIKey string
}

type ServerConfig struct {
	Host         string
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	RoleCacheTTL time.Duration
}

type JWTConfig struct {
	Secret    string
	Issuer    string
	ExpiryMin int
}

type DirectoryConfig struct {
	PageSize int
}

type RabbitMQConfig struct {
	URL string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	config := fromViper(v)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("ENV", "production")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ROLE_CACHE_TTL", "5m")
	v.SetDefault("JWT_ISSUER", "lisiobuddy")
	v.SetDefault("JWT_TTL_MIN", 60)
	v.SetDefault("DIRECTORY_PAGE_SIZE", 10)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		Redis: RedisConfig{
			Host:         v.GetString("REDIS_HOST"),
			Port:         v.GetInt("REDIS_PORT"),
			Password:     v.GetString("REDIS_PASSWORD"),
			DB:           v.GetInt("REDIS_DB"),
			RoleCacheTTL: v.GetDuration("ROLE_CACHE_TTL"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("JWT_SECRET"),
			Issuer:    v.GetString("JWT_ISSUER"),
			ExpiryMin: v.GetInt("JWT_TTL_MIN"),
		},
		Directory: DirectoryConfig{
			PageSize: v.GetInt("DIRECTORY_PAGE_SIZE"),
		},
		RabbitMQ: RabbitMQConfig{
			URL: v.GetString("RABBITMQ_URL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Logging: LoggingConfig{
			Level: strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		},
		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.ExpiryMin <= 0 {
		return fmt.Errorf("JWT expiry must be positive")
	}
	if c.Directory.PageSize <= 0 {
		return fmt.Errorf("directory page size must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error")
	}
	return nil
}

func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// GinMode picks the gin engine mode; debug output only in development or at
// debug level.
func (c *Config) GinMode() string {
	if c.Server.IsDevelopment() || c.Logging.IsDebug() {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}

func (c *LoggingConfig) IsDebug() bool {
	return c.Level == "debug"
}

// LogsRequests reports whether every HTTP request gets an access log line.
func (c *LoggingConfig) LogsRequests() bool {
	return c.Level == "debug" || c.Level == "info"
}

func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpiryMin) * time.Minute
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
