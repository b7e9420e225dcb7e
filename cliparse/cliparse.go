package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"3000"`
	DatabaseURL string `env:"DATABASE_URL"`

	PostgresHost     string `env:"POSTGRES_HOST"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDB       string `env:"POSTGRES_DB"`

	AuthSecret          string `env:"AUTH_SECRET"`
	GithubClientID      string `env:"GITHUB_CLIENT_ID"`
	GithubClientSecret  string `env:"GITHUB_CLIENT_SECRET"`
	DiscordClientID     string `env:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET"`
	PublicBaseURL       string `env:"PUBLIC_BASE_URL"`

	CORSOrigins   []string `env:"CORS_ORIGINS" envSeparator:","`
	MaxUploadSize int64    `env:"MAX_UPLOAD_SIZE" envDefault:"104857600"`

	APIServiceURL    string        `env:"API_SERVICE_URL"`
	PublicAPIBaseURL string        `env:"PUBLIC_API_BASE_URL"`
	APIRateLimit     float64       `env:"API_RATE_LIMIT" envDefault:"20"`
	APITimeout       time.Duration `env:"API_TIMEOUT" envDefault:"30s"`

	UploadDir    string `env:"UPLOAD_DIR" envDefault:"./uploads"`
	AppEnv       string `env:"APP_ENV" envDefault:"development"`
	S3Enabled    bool   `env:"AWS_S3_ENABLED"`
	S3Bucket     string `env:"AWS_S3_BUCKET"`
	S3BucketName string `env:"S3_BUCKET_NAME"`
	AWSRegion    string `env:"AWS_REGION" envDefault:"us-east-1"`
	S3Endpoint   string `env:"AWS_S3_ENDPOINT"`
	AWSAccessKey string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey string `env:"AWS_SECRET_ACCESS_KEY"`

	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"text"`
	FeatureCacheTTL time.Duration `env:"FEATURE_CACHE_TTL" envDefault:"30s"`
}

// DefaultAPIServiceURL is used when neither API_SERVICE_URL nor PUBLIC_API_BASE_URL is set
const DefaultAPIServiceURL = "http://odr-api:31100/api/v1"

// Production reports whether the server runs with APP_ENV=production
func (c Config) Production() bool {
	return c.AppEnv == "production"
}

// S3Active reports whether uploads go to the S3 bucket instead of UPLOAD_DIR
func (c Config) S3Active() bool {
	return c.Production() && c.S3Enabled && c.S3Bucket != ""
}

// ParseEnv reads the environment into cfg
func ParseEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from path without overriding the environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseFlags reads .env and the environment, then applies CLI overrides
func ParseFlags(args []string) (Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fset := flag.NewFlagSet("odr", flag.ContinueOnError)

	// Environment values become flag defaults so CLI wins
	fset.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fset.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fset.StringVar(&cfg.UploadDir, "upload-dir", cfg.UploadDir, "Local upload directory")
	fset.Int64Var(&cfg.MaxUploadSize, "max-upload", cfg.MaxUploadSize, "Largest accepted upload request in bytes")
	fset.StringVar(&cfg.APIServiceURL, "api", cfg.APIServiceURL, "Remote API base URL")
	fset.StringVar(&cfg.AppEnv, "env", cfg.AppEnv, "Application environment (development or production)")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fset.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text or json)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fset.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "Session secret (prefer env)")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, errors.New("invalid port: must be between 1 and 65535")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = cfg.postgresDSN()
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d, DATABASE_URL or POSTGRES_* env)")
	}

	if cfg.AuthSecret == "" {
		return Config{}, errors.New("AUTH_SECRET required")
	}

	if cfg.MaxUploadSize <= 0 {
		return Config{}, errors.New("invalid max upload size: must be positive")
	}

	if cfg.APIServiceURL == "" {
		cfg.APIServiceURL = cfg.PublicAPIBaseURL
	}
	if cfg.APIServiceURL == "" {
		cfg.APIServiceURL = DefaultAPIServiceURL
	}

	if cfg.S3Bucket == "" {
		cfg.S3Bucket = cfg.S3BucketName
	}

	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + strconv.Itoa(cfg.Port)
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{cfg.PublicBaseURL}
	}

	return cfg, nil
}

// postgresDSN composes a connection string from the POSTGRES_* settings
func (c Config) postgresDSN() string {
	if c.PostgresHost == "" || c.PostgresUser == "" || c.PostgresDB == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     c.PostgresHost + ":" + strconv.Itoa(c.PostgresPort),
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
