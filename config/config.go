package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the API reads from the environment.
type Config struct {
	Port    string
	LogMode string

	DatabaseURL string

	JWTSecret       string
	TokenTTL        time.Duration
	GuestTokenTTL   time.Duration
	APIKey          string
	SuperAdminEmail string

	FirebaseCredentials string
	FirebaseProjectID   string

	CORSOrigins []string

	StoreLocation       *time.Location
	StoreWhatsAppNumber string
	StoreName           string
	PublicBaseURL       string
	LowStockThreshold   int

	StorageDriver   string // local | s3 | gcs
	UploadsDir      string
	UploadsURL      string
	BackupDir       string
	BackupRetention time.Duration
	S3Bucket        string
	S3Region        string
	S3PublicURL     string
	GCSBucket       string

	SendGridAPIKey string
	MailFrom       string
	MailFromName   string

	AMQPURL      string
	AMQPExchange string

	RedisAddr     string
	RedisPassword string

	RateLimitRPS   float64
	RateLimitBurst int

	OTLPEndpoint string
	OTELStdout   bool
	ServiceName  string

	NewsletterTokenTTL time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:    getenv("PORT", "8080"),
		LogMode: getenv("LOG_MODE", "dev"),

		DatabaseURL: databaseURL(),

		JWTSecret:       os.Getenv("JWT_SECRET"),
		APIKey:          os.Getenv("API_KEY"),
		SuperAdminEmail: strings.ToLower(strings.TrimSpace(os.Getenv("SUPER_ADMIN_EMAIL"))),

		FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS"),
		FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),

		CORSOrigins: splitCSV(getenv("CORS_ORIGINS", "*")),

		StoreWhatsAppNumber: os.Getenv("STORE_WHATSAPP_NUMBER"),
		StoreName:           getenv("STORE_NAME", "Storefront"),
		PublicBaseURL:       strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),

		StorageDriver: strings.ToLower(getenv("STORAGE_DRIVER", "local")),
		UploadsDir:    getenv("UPLOADS_DIR", "./uploads"),
		BackupDir:     os.Getenv("BACKUP_DIR"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      os.Getenv("S3_REGION"),
		S3PublicURL:   os.Getenv("S3_PUBLIC_URL"),
		GCSBucket:     os.Getenv("GCS_BUCKET"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getenv("MAIL_FROM", "no-reply@localhost"),
		MailFromName:   getenv("MAIL_FROM_NAME", "Storefront"),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getenv("AMQP_EXCHANGE", "storefront.events"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:  getenv("OTEL_SERVICE_NAME", "storefront-api"),
	}
	cfg.UploadsURL = getenv("UPLOADS_URL", cfg.PublicBaseURL+"/uploads")

	var errs []error
	var err error

	if cfg.TokenTTL, err = parseDuration("TOKEN_TTL", "1440h"); err != nil {
		errs = append(errs, err)
	}
	if cfg.GuestTokenTTL, err = parseDuration("GUEST_TOKEN_TTL", "720h"); err != nil {
		errs = append(errs, err)
	}
	if cfg.BackupRetention, err = parseDuration("BACKUP_RETENTION", "96h"); err != nil {
		errs = append(errs, err)
	}
	if cfg.NewsletterTokenTTL, err = parseDuration("NEWSLETTER_TOKEN_TTL", "24h"); err != nil {
		errs = append(errs, err)
	}
	if cfg.LowStockThreshold, err = parseInt("LOW_STOCK_THRESHOLD", "5"); err != nil {
		errs = append(errs, err)
	}
	if cfg.RateLimitBurst, err = parseInt("RATE_LIMIT_BURST", "10"); err != nil {
		errs = append(errs, err)
	}
	if cfg.RateLimitRPS, err = strconv.ParseFloat(getenv("RATE_LIMIT_RPS", "2"), 64); err != nil {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS: %w", err))
	}
	if cfg.OTELStdout, err = strconv.ParseBool(getenv("OTEL_STDOUT", "false")); err != nil {
		errs = append(errs, fmt.Errorf("OTEL_STDOUT: %w", err))
	}
	if cfg.StoreLocation, err = time.LoadLocation(getenv("STORE_TIMEZONE", "UTC")); err != nil {
		errs = append(errs, fmt.Errorf("STORE_TIMEZONE: %w", err))
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch cfg.StorageDriver {
	case "local":
	case "s3":
		if cfg.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 storage driver"))
		}
	case "gcs":
		if cfg.GCSBucket == "" {
			errs = append(errs, errors.New("GCS_BUCKET is required for the gcs storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver))
	}

	return cfg, errors.Join(errs...)
}

// databaseURL prefers DATABASE_URL and falls back to the DB_* parts.
func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		getenv("DB_HOST", "localhost"),
		getenv("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		getenv("DB_NAME", "storefront"),
		getenv("DB_PORT", "5432"),
		getenv("DB_SSLMODE", "disable"),
	)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func parseDuration(k, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenv(k, def))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}

func parseInt(k, def string) (int, error) {
	n, err := strconv.Atoi(getenv(k, def))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
