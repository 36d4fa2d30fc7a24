package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Driver names accepted by backend.driver
const (
	DriverPostgREST = "postgrest"
	DriverPostgres  = "postgres"
)

// Identity provider names accepted by auth.provider
const (
	ProviderSupabase = "supabase"
	ProviderLocal    = "local"
)

// Config is the application-wide configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Rules    RulesConfig    `mapstructure:"rules"`
	Export   ExportConfig   `mapstructure:"export"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig cross-origin settings
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// BackendConfig describes the row store the occurrence dataset is read from
type BackendConfig struct {
	Driver         string        `mapstructure:"driver"` // postgrest | postgres
	URL            string        `mapstructure:"url"`
	AnonKey        string        `mapstructure:"anon_key"`
	Table          string        `mapstructure:"table"`
	ReferenceTable string        `mapstructure:"reference_table"`
	BatchSize      int           `mapstructure:"batch_size"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig direct PostgreSQL connection (backend.driver = postgres)
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"sslmode"`
	Timezone     string `mapstructure:"timezone"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"` // creates the dev schema
}

// DSN builds the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig cache settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig session token and identity provider settings
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
	Provider        string        `mapstructure:"provider"` // supabase | local
	LocalUsers      []LocalUser   `mapstructure:"local_users"`
	LoginRateLimit  int           `mapstructure:"login_rate_limit"`
	LoginWindow     time.Duration `mapstructure:"login_window"`
}

// LocalUser is an account of the local identity provider
type LocalUser struct {
	ID           string `mapstructure:"id"`
	Email        string `mapstructure:"email"`
	PasswordHash string `mapstructure:"password_hash"` // bcrypt
}

// RulesConfig special-occurrence classification constants.
// The lunch tolerances come from operations and still wait for confirmation;
// there is no tolerance for shifts between 6h and 8h.
type RulesConfig struct {
	OvertimeThresholdHours float64 `mapstructure:"overtime_threshold_hours"`
	ShortShiftMinutes      int     `mapstructure:"short_shift_minutes"`
	ShortShiftLunchMinutes int     `mapstructure:"short_shift_lunch_minutes"`
	LongShiftMinMinutes    int     `mapstructure:"long_shift_min_minutes"`
	LongShiftLunchMinutes  int     `mapstructure:"long_shift_lunch_minutes"`
}

// ExportConfig file export settings
type ExportConfig struct {
	Timezone string `mapstructure:"timezone"` // used for filename timestamps
}

// LogConfig logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment.
// Precedence: environment > config file > defaults.
func Load(path string) (*Config, error) {
	// .env is optional; variables already set in the environment win
	_ = godotenv.Load()

	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("backend.driver", DriverPostgREST)
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.anon_key", "")
	v.SetDefault("backend.table", "ocorrencias_ponto")
	v.SetDefault("backend.reference_table", "ativos")
	v.SetDefault("backend.batch_size", 1000)
	v.SetDefault("backend.timeout", "30s")

	v.SetDefault("db.host", "")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "America/Sao_Paulo")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.auto_migrate", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// every key needs a default so AutomaticEnv can see it during Unmarshal
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl", "24h")
	v.SetDefault("auth.provider", ProviderSupabase)
	v.SetDefault("auth.login_rate_limit", 10)
	v.SetDefault("auth.login_window", "1m")

	v.SetDefault("rules.overtime_threshold_hours", 6.0)
	v.SetDefault("rules.short_shift_minutes", 360)
	v.SetDefault("rules.short_shift_lunch_minutes", 15)
	v.SetDefault("rules.long_shift_min_minutes", 480)
	v.SetDefault("rules.long_shift_lunch_minutes", 60)

	v.SetDefault("export.timezone", "America/Sao_Paulo")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("OCORRENCIAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// no file: defaults and environment only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the service cannot start without
func (c *Config) Validate() error {
	switch c.Backend.Driver {
	case DriverPostgREST:
		if c.Backend.URL == "" {
			return fmt.Errorf("invalid config: backend.url is required")
		}
		if c.Backend.AnonKey == "" {
			return fmt.Errorf("invalid config: backend.anon_key is required")
		}
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("invalid config: db.host and db.name are required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid config: unknown backend.driver %q", c.Backend.Driver)
	}
	if c.Backend.Table == "" {
		return fmt.Errorf("invalid config: backend.table is required")
	}
	if c.Backend.BatchSize <= 0 {
		return fmt.Errorf("invalid config: backend.batch_size must be positive")
	}

	switch c.Auth.Provider {
	case ProviderSupabase:
		if c.Backend.URL == "" || c.Backend.AnonKey == "" {
			return fmt.Errorf("invalid config: supabase auth needs backend.url and backend.anon_key")
		}
	case ProviderLocal:
		if len(c.Auth.LocalUsers) == 0 {
			return fmt.Errorf("invalid config: auth.local_users is empty")
		}
	default:
		return fmt.Errorf("invalid config: unknown auth.provider %q", c.Auth.Provider)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("invalid config: auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("invalid config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be within 1-65535")
	}
	return nil
}
