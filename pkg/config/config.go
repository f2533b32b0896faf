package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	RateLimit     RateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Policy        PolicyConfig
	Webhook       WebhookConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
}

// Load reads the process environment into a Config. Callers that want .env
// support should run godotenv before calling Load.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite && cfg.App.IsProd() {
		return nil, fmt.Errorf("%s is not allowed in %s", EnvUseSQLite, AppEnvProd)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GIVEHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"GIVEHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GIVEHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GIVEHUB_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"GIVEHUB_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GIVEHUB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN  string `envconfig:"GIVEHUB_DB_DSN"`
	Path string `envconfig:"GIVEHUB_DB_SQLITE_PATH" default:"file:givehub.db?cache=shared&_busy_timeout=5000"`

	LegacyHost     string `envconfig:"GIVEHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"GIVEHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GIVEHUB_DB_USER"`
	LegacyPassword string `envconfig:"GIVEHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"GIVEHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"GIVEHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GIVEHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GIVEHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GIVEHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GIVEHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GIVEHUB_REDIS_URL" required:"true"`
	Password     string        `envconfig:"GIVEHUB_REDIS_PASSWORD"`
	PoolSize     int           `envconfig:"GIVEHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GIVEHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GIVEHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GIVEHUB_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"GIVEHUB_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GIVEHUB_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GIVEHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GIVEHUB_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GIVEHUB_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GIVEHUB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GIVEHUB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GIVEHUB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GIVEHUB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GIVEHUB_ARGON_KEY_LEN" default:"32"`
}

// RateLimitConfig throttles the unauthenticated write surfaces. A zero window
// disables the policy.
type RateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GIVEHUB_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"GIVEHUB_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GIVEHUB_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"GIVEHUB_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"GIVEHUB_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"GIVEHUB_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	DonationWindow     time.Duration `envconfig:"GIVEHUB_RATE_LIMIT_DONATION_WINDOW" default:"10m"`
	DonationEmailLimit int           `envconfig:"GIVEHUB_RATE_LIMIT_DONATION_EMAIL_LIMIT" default:"10"`
	DonationIPLimit    int           `envconfig:"GIVEHUB_RATE_LIMIT_DONATION_IP_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GIVEHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GIVEHUB_AUTO_MIGRATE" default:"false"`
}

// PolicyConfig holds the product decisions that change core behaviour.
type PolicyConfig struct {
	RequireApprovedCampaign bool `envconfig:"GIVEHUB_DONATIONS_REQUIRE_APPROVED_CAMPAIGN" default:"true"`
	AutoRejectSiblings      bool `envconfig:"GIVEHUB_BOUTIQUE_AUTO_REJECT_SIBLINGS" default:"true"`
}

type WebhookConfig struct {
	PaymentSecret string `envconfig:"GIVEHUB_PAYMENT_WEBHOOK_SECRET"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"GIVEHUB_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"GIVEHUB_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	DomainTopic string `envconfig:"GIVEHUB_PUBSUB_DOMAIN_TOPIC" default:"givehub-domain-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"GIVEHUB_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"GIVEHUB_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"GIVEHUB_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"GIVEHUB_OUTBOX_RETENTION_DAYS" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"GIVEHUB_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"GIVEHUB_CRON_LOCK_TTL" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	var missing []string
	for _, key := range legacyDBEnvVars {
		if legacyValues[key] == "" {
			missing = append(missing, key)
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
