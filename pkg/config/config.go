package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Supported document store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
	DriverMemory   = "memory"
)

type Config struct {
	Env            string
	Port           int
	APIPrefix      string
	RequestTimeout time.Duration

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Security      SecurityConfig
	Analytics     AnalyticsConfig
	Notifications NotificationsConfig
	Mail          MailConfig
	Exports       ExportsConfig
	ErrorTracking ErrorTrackingConfig
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig verifies access tokens minted by the identity provider.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SecurityConfig seeds the low-assurance codes gating checkout and sign-out.
type SecurityConfig struct {
	CheckoutPIN        string
	SleepoverFixedCode string
	CodeLength         int
}

// AnalyticsConfig governs bucketing and cache behaviour for dashboard series.
type AnalyticsConfig struct {
	CacheTTL time.Duration
	Timezone string
}

// NotificationsConfig controls the outbound delivery of persisted notifications.
type NotificationsConfig struct {
	DeliveryEnabled bool
	Workers         int
	MaxRetries      int
	RetryDelay      time.Duration
}

// MailConfig configures the SendGrid client.
type MailConfig struct {
	APIKey    string
	FromName  string
	FromEmail string
}

// ExportsConfig controls report export storage and signed downloads.
type ExportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// ErrorTrackingConfig configures Rollbar reporting. An empty token disables it.
type ErrorTrackingConfig struct {
	RollbarToken string
	CodeVersion  string
	ServerHost   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.RequestTimeout = parseDuration(v.GetString("REQUEST_TIMEOUT"), 10*time.Second)

	cfg.Database = DatabaseConfig{
		Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		SQLitePath:   v.GetString("DB_SQLITE_PATH"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	codeLength := v.GetInt("SECURITY_CODE_LENGTH")
	if codeLength < 4 || codeLength > 12 {
		codeLength = 4
	}
	cfg.Security = SecurityConfig{
		CheckoutPIN:        v.GetString("CHECKOUT_PIN"),
		SleepoverFixedCode: v.GetString("SLEEPOVER_FIXED_CODE"),
		CodeLength:         codeLength,
	}

	cfg.Analytics = AnalyticsConfig{
		CacheTTL: parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 5*time.Minute),
		Timezone: v.GetString("ANALYTICS_TIMEZONE"),
	}

	cfg.Notifications = NotificationsConfig{
		DeliveryEnabled: v.GetBool("ENABLE_NOTIFICATION_DELIVERY"),
		Workers:         v.GetInt("NOTIFICATION_WORKERS"),
		MaxRetries:      v.GetInt("NOTIFICATION_MAX_RETRIES"),
		RetryDelay:      parseDuration(v.GetString("NOTIFICATION_RETRY_DELAY"), 5*time.Second),
	}

	cfg.Mail = MailConfig{
		APIKey:    v.GetString("SENDGRID_API_KEY"),
		FromName:  v.GetString("MAIL_FROM_NAME"),
		FromEmail: v.GetString("MAIL_FROM_EMAIL"),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:      v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), time.Hour),
	}

	cfg.ErrorTracking = ErrorTrackingConfig{
		RollbarToken: v.GetString("ROLLBAR_TOKEN"),
		CodeVersion:  v.GetString("BUILD_VERSION"),
		ServerHost:   v.GetString("SERVER_HOST"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("REQUEST_TIMEOUT", "10s")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "residence_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_SQLITE_PATH", "./residence.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CHECKOUT_PIN", "1005")
	v.SetDefault("SLEEPOVER_FIXED_CODE", "")
	v.SetDefault("SECURITY_CODE_LENGTH", 4)

	v.SetDefault("ANALYTICS_CACHE_TTL", "5m")
	v.SetDefault("ANALYTICS_TIMEZONE", "UTC")

	v.SetDefault("ENABLE_NOTIFICATION_DELIVERY", false)
	v.SetDefault("NOTIFICATION_WORKERS", 2)
	v.SetDefault("NOTIFICATION_MAX_RETRIES", 3)
	v.SetDefault("NOTIFICATION_RETRY_DELAY", "5s")

	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM_NAME", "Residence Portal")
	v.SetDefault("MAIL_FROM_EMAIL", "no-reply@residence.local")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "1h")

	v.SetDefault("ROLLBAR_TOKEN", "")
	v.SetDefault("BUILD_VERSION", "dev")
	v.SetDefault("SERVER_HOST", "")
}

// Location resolves the analytics time zone, falling back to UTC.
func (c AnalyticsConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
