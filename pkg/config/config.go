package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Cart         CartConfig
	Orders       OrdersConfig
	Admin        AdminConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RETRADE_APP_ENV" required:"true"`
	Port         string `envconfig:"RETRADE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RETRADE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RETRADE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RETRADE_DB_DSN"`
	Driver string `envconfig:"RETRADE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RETRADE_DB_HOST"`
	LegacyPort     int    `envconfig:"RETRADE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RETRADE_DB_USER"`
	LegacyPassword string `envconfig:"RETRADE_DB_PASSWORD"`
	LegacyName     string `envconfig:"RETRADE_DB_NAME"`
	LegacySSLMode  string `envconfig:"RETRADE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RETRADE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RETRADE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RETRADE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RETRADE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RETRADE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RETRADE_REDIS_ADDR"`
	Password     string        `envconfig:"RETRADE_REDIS_PASSWORD"`
	DB           int           `envconfig:"RETRADE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RETRADE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RETRADE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RETRADE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RETRADE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RETRADE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CartConfig bounds the per-session quote cart and its persisted snapshot.
type CartConfig struct {
	MaxItems    int           `envconfig:"RETRADE_CART_MAX_ITEMS" default:"50"`
	SnapshotTTL time.Duration `envconfig:"RETRADE_CART_SNAPSHOT_TTL" default:"720h"`
	Backend     string        `envconfig:"RETRADE_CART_BACKEND" default:"redis"`
	FileDir     string        `envconfig:"RETRADE_CART_FILE_DIR" default:"/var/lib/retrade/carts"`
}

type OrdersConfig struct {
	NumberPrefix string `envconfig:"RETRADE_ORDER_NUMBER_PREFIX" default:"RT"`
}

// AdminConfig gates the pricing/status management endpoints behind a shared token.
type AdminConfig struct {
	Token string `envconfig:"RETRADE_ADMIN_TOKEN"`
}

type RateLimitConfig struct {
	SubmitWindow  time.Duration `envconfig:"RETRADE_RATE_LIMIT_SUBMIT_WINDOW" default:"1m"`
	SubmitLimit   int           `envconfig:"RETRADE_RATE_LIMIT_SUBMIT_LIMIT" default:"5"`
	SubmitIPLimit int           `envconfig:"RETRADE_RATE_LIMIT_SUBMIT_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"RETRADE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RETRADE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RETRADE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
