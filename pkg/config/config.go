package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Auth        AuthConfig
	Persistence PersistenceConfig
	Proposals   ProposalConfig
	Planner     PlannerConfig
	Exports     ExportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AuthConfig toggles bearer token checks on plan mutation routes.
type AuthConfig struct {
	Enabled bool
}

// PersistenceConfig gates the PostgreSQL backed study plan routes.
type PersistenceConfig struct {
	Enabled bool
}

// ProposalConfig controls how long generated previews are kept and where.
type ProposalConfig struct {
	CacheEnabled bool
	TTL          time.Duration
}

// PlannerConfig holds the defaults applied to requests that omit planner parameters.
type PlannerConfig struct {
	Alpha          float64
	Beta           float64
	Floor          float64
	StepHours      float64
	BlockHours     float64
	MinBlockHours  float64
	WeekdayHours   float64
	WeekendHours   float64
	TotalHours     float64
	Policy         string
	MaxSubjects    int
	MaxWindowDays  int
	CalendarAnchor string
}

// ExportsConfig configures file exports and the asynchronous export workers.
type ExportsConfig struct {
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
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

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Auth = AuthConfig{Enabled: v.GetBool("ENABLE_AUTH")}
	cfg.Persistence = PersistenceConfig{Enabled: v.GetBool("ENABLE_PERSISTENCE")}

	cfg.Proposals = ProposalConfig{
		CacheEnabled: v.GetBool("ENABLE_PROPOSAL_CACHE"),
		TTL:          parseDuration(v.GetString("PROPOSAL_TTL"), 30*time.Minute),
	}

	cfg.Planner = PlannerConfig{
		Alpha:          v.GetFloat64("PLANNER_ALPHA"),
		Beta:           v.GetFloat64("PLANNER_BETA"),
		Floor:          v.GetFloat64("PLANNER_FLOOR"),
		StepHours:      positiveOr(v.GetFloat64("PLANNER_STEP_HOURS"), 0.5),
		BlockHours:     positiveOr(v.GetFloat64("PLANNER_BLOCK_HOURS"), 1),
		MinBlockHours:  positiveOr(v.GetFloat64("PLANNER_MIN_BLOCK_HOURS"), 0.25),
		WeekdayHours:   v.GetFloat64("PLANNER_WEEKDAY_HOURS"),
		WeekendHours:   v.GetFloat64("PLANNER_WEEKEND_HOURS"),
		TotalHours:     v.GetFloat64("PLANNER_TOTAL_HOURS"),
		Policy:         v.GetString("PLANNER_POLICY"),
		MaxSubjects:    v.GetInt("PLANNER_MAX_SUBJECTS"),
		MaxWindowDays:  v.GetInt("PLANNER_MAX_WINDOW_DAYS"),
		CalendarAnchor: v.GetString("CALENDAR_ANCHOR"),
	}

	cfg.Exports = ExportsConfig{
		StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "study_planner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_AUTH", false)
	v.SetDefault("ENABLE_PERSISTENCE", false)
	v.SetDefault("ENABLE_PROPOSAL_CACHE", false)
	v.SetDefault("PROPOSAL_TTL", "30m")

	v.SetDefault("PLANNER_ALPHA", 1.0)
	v.SetDefault("PLANNER_BETA", 1.0)
	v.SetDefault("PLANNER_FLOOR", 0.2)
	v.SetDefault("PLANNER_STEP_HOURS", 0.5)
	v.SetDefault("PLANNER_BLOCK_HOURS", 1.0)
	v.SetDefault("PLANNER_MIN_BLOCK_HOURS", 0.25)
	v.SetDefault("PLANNER_WEEKDAY_HOURS", 2.0)
	v.SetDefault("PLANNER_WEEKEND_HOURS", 4.0)
	v.SetDefault("PLANNER_TOTAL_HOURS", 40.0)
	v.SetDefault("PLANNER_POLICY", "proportional")
	v.SetDefault("PLANNER_MAX_SUBJECTS", 50)
	v.SetDefault("PLANNER_MAX_WINDOW_DAYS", 366)
	v.SetDefault("CALENDAR_ANCHOR", "18:00")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)
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

func positiveOr(v, fallback float64) float64 {
	if v <= 0 {
		return fallback
	}
	return v
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
