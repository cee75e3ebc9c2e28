package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Auth      AuthConfig
	Contact   ContactConfig
	Turnstile TurnstileConfig
	Email     EmailConfig
	Directory DirectoryConfig
	Stripe    StripeConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings. Redis is optional; when no
// host is configured the webhook idempotency store falls back to memory.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Enabled reports whether a Redis host has been configured
func (r *RedisConfig) Enabled() bool {
	return r.Host != ""
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// AuthConfig holds settings for validating artist bearer tokens
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// ContactConfig holds the contact pipeline settings: the identity pepper and
// the 24h rate-limit thresholds counted against the audit table.
type ContactConfig struct {
	Pepper            string
	Window            time.Duration
	MaxPerEmail       int
	MaxPerEmailArtist int
	MaxPerIP          int
	MaxPerIPArtist    int
	PublicRateLimit   int           // outer per-IP request cap on the public endpoint
	PublicRateWindow  time.Duration // window for the outer cap
}

// TurnstileConfig holds Cloudflare Turnstile verification settings
type TurnstileConfig struct {
	Secret         string
	Endpoint       string
	TimeoutSeconds int
}

// EmailConfig holds transactional email delivery settings
type EmailConfig struct {
	APIKey         string
	Endpoint       string
	FromAddress    string
	TimeoutSeconds int
}

// DirectoryConfig holds the admin identity lookup API settings used to
// resolve an artist's auth user ID to their real email address.
type DirectoryConfig struct {
	BaseURL        string
	ServiceKey     string
	TimeoutSeconds int
}

// StripeConfig holds Stripe billing settings
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	PriceIDs      map[string]string // plan name -> Stripe price ID
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with SUNROAD_ prefix (e.g. SUNROAD_CONTACT_PEPPER)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults and env vars apply
	}

	v.SetEnvPrefix("SUNROAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			Issuer:    v.GetString("auth.issuer"),
		},
		Contact: ContactConfig{
			Pepper:            v.GetString("contact.pepper"),
			Window:            v.GetDuration("contact.window"),
			MaxPerEmail:       v.GetInt("contact.max_per_email"),
			MaxPerEmailArtist: v.GetInt("contact.max_per_email_artist"),
			MaxPerIP:          v.GetInt("contact.max_per_ip"),
			MaxPerIPArtist:    v.GetInt("contact.max_per_ip_artist"),
			PublicRateLimit:   v.GetInt("contact.public_rate_limit"),
			PublicRateWindow:  v.GetDuration("contact.public_rate_window"),
		},
		Turnstile: TurnstileConfig{
			Secret:         v.GetString("turnstile.secret"),
			Endpoint:       v.GetString("turnstile.endpoint"),
			TimeoutSeconds: v.GetInt("turnstile.timeout_seconds"),
		},
		Email: EmailConfig{
			APIKey:         v.GetString("email.api_key"),
			Endpoint:       v.GetString("email.endpoint"),
			FromAddress:    v.GetString("email.from_address"),
			TimeoutSeconds: v.GetInt("email.timeout_seconds"),
		},
		Directory: DirectoryConfig{
			BaseURL:        v.GetString("directory.base_url"),
			ServiceKey:     v.GetString("directory.service_key"),
			TimeoutSeconds: v.GetInt("directory.timeout_seconds"),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("stripe.secret_key"),
			WebhookSecret: v.GetString("stripe.webhook_secret"),
			SuccessURL:    v.GetString("stripe.success_url"),
			CancelURL:     v.GetString("stripe.cancel_url"),
			PriceIDs:      v.GetStringMapString("stripe.price_ids"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "sunroad-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "sunroad"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 64 << 10 // 64KB, contact payloads are small
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// CORS origins deliberately have no fallback: an empty list rejects all
	// cross-origin requests until origins are configured explicitly.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "sunroad"
	}
	if cfg.Contact.Window == 0 {
		cfg.Contact.Window = 24 * time.Hour
	}
	if cfg.Contact.MaxPerEmail == 0 {
		cfg.Contact.MaxPerEmail = 5
	}
	if cfg.Contact.MaxPerEmailArtist == 0 {
		cfg.Contact.MaxPerEmailArtist = 2
	}
	if cfg.Contact.MaxPerIP == 0 {
		cfg.Contact.MaxPerIP = 10
	}
	if cfg.Contact.MaxPerIPArtist == 0 {
		cfg.Contact.MaxPerIPArtist = 3
	}
	if cfg.Contact.PublicRateLimit == 0 {
		cfg.Contact.PublicRateLimit = 20
	}
	if cfg.Contact.PublicRateWindow == 0 {
		cfg.Contact.PublicRateWindow = time.Minute
	}
	if cfg.Turnstile.Endpoint == "" {
		cfg.Turnstile.Endpoint = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	}
	if cfg.Turnstile.TimeoutSeconds == 0 {
		cfg.Turnstile.TimeoutSeconds = 10
	}
	if cfg.Email.Endpoint == "" {
		cfg.Email.Endpoint = "https://api.resend.com/emails"
	}
	if cfg.Email.TimeoutSeconds == 0 {
		cfg.Email.TimeoutSeconds = 15
	}
	if cfg.Email.FromAddress == "" {
		cfg.Email.FromAddress = "Sun Road <contact@sunroad.example.com>"
	}
	if cfg.Directory.TimeoutSeconds == 0 {
		cfg.Directory.TimeoutSeconds = 10
	}
	if cfg.Stripe.SuccessURL == "" {
		cfg.Stripe.SuccessURL = "https://sunroad.example.com/billing/success"
	}
	if cfg.Stripe.CancelURL == "" {
		cfg.Stripe.CancelURL = "https://sunroad.example.com/billing/cancelled"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.Contact.Pepper == "" {
			return fmt.Errorf("contact.pepper is required in production")
		}
		if len(c.Contact.Pepper) < 32 {
			return fmt.Errorf("contact.pepper must be at least 32 characters in production")
		}
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required in production")
		}
		if c.Turnstile.Secret == "" {
			return fmt.Errorf("turnstile.secret is required in production")
		}
		if c.Email.APIKey == "" {
			return fmt.Errorf("email.api_key is required in production")
		}
		if c.Stripe.SecretKey == "" {
			return fmt.Errorf("stripe.secret_key is required in production")
		}
		if c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("stripe.webhook_secret is required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
