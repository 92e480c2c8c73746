package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"adscreen-service/internal/pkg/jwt"
)

type AppConfig struct {
	// Server
	Env            string
	HTTPAddr       string
	PublicBaseURL  string
	AllowedOrigins []string
	CookieName     string
	CookieDomain   string
	CookieSecure   bool

	// Storage
	DatabaseURL    string
	DBMaxConns     int32
	RunMigrations  bool
	RedisAddr      string
	RedisPass      string
	RedisDB        int
	RabbitMQURL    string
	UploadDir      string
	UploadsURLPath string

	// JWT
	JWT jwt.Config

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SMTPFrom     string
	SMTPFromName string
	SMTPSecure   bool

	// Moyasar
	MoyasarSecretKey      string
	MoyasarPublishableKey string
	MoyasarWebhookSecret  string
	MoyasarCallbackURL    string

	// Invoices
	SellerName      string
	SellerVATNumber string

	// AI analysis
	AnalyzerURL     string
	AnalyzerKey     string
	AnalyzerTimeout time.Duration

	// Scheduler
	OverdueInterval      time.Duration
	SubscriptionInterval time.Duration
	OfferExpiryInterval  time.Duration

	// Bootstrap admin
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		Env:            getEnv("APP_ENV", "production"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8000"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8000"), "/"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		CookieName:     getEnv("SESSION_COOKIE_NAME", "adscreen_session"),
		CookieDomain:   getEnv("SESSION_COOKIE_DOMAIN", ""),
		CookieSecure:   getEnvBool("SESSION_COOKIE_SECURE", true),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DBMaxConns:     int32(getEnvInt("DB_MAX_CONNS", 20)),
		RunMigrations:  getEnvBool("RUN_MIGRATIONS", true),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:      getEnv("REDIS_PASS", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		UploadsURLPath: getEnv("UPLOADS_URL_PATH", "/uploads"),

		JWT: jwt.Config{
			PrivPath: getEnv("JWT_PRIVATE_KEY_PATH", "/app/secrets/jwt_private.pem"),
			PubPath:  getEnv("JWT_PUBLIC_KEY_PATH", "/app/secrets/jwt_public.pem"),
			Issuer:   getEnv("JWT_ISSUER", "adscreen"),
			Audience: getEnv("JWT_AUDIENCE", "adscreen-users"),
			TTL:      getEnvDuration("SESSION_TTL", 7*24*time.Hour),
			KID:      getEnv("JWT_KID", "adscreen-key"),
		},

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 465),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPass:     getEnv("SMTP_PASS", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "AdScreen"),
		SMTPSecure:   getEnvBool("SMTP_SECURE", true),

		MoyasarSecretKey:      getEnv("MOYASAR_SECRET_KEY", ""),
		MoyasarPublishableKey: getEnv("MOYASAR_PUBLISHABLE_KEY", ""),
		MoyasarWebhookSecret:  getEnv("MOYASAR_WEBHOOK_SECRET", ""),
		MoyasarCallbackURL:    getEnv("MOYASAR_CALLBACK_URL", ""),

		SellerName:      getEnv("SELLER_NAME", "AdScreen"),
		SellerVATNumber: getEnv("SELLER_VAT_NUMBER", ""),

		AnalyzerURL:     getEnv("ANALYZER_URL", ""),
		AnalyzerKey:     getEnv("ANALYZER_API_KEY", ""),
		AnalyzerTimeout: getEnvDuration("ANALYZER_TIMEOUT", 30*time.Second),

		OverdueInterval:      getEnvDuration("JOB_OVERDUE_INTERVAL", time.Hour),
		SubscriptionInterval: getEnvDuration("JOB_SUBSCRIPTION_INTERVAL", 15*time.Minute),
		OfferExpiryInterval:  getEnvDuration("JOB_OFFER_EXPIRY_INTERVAL", 15*time.Minute),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
	}
}

// Validate fails startup when a required secret is missing.
func (c AppConfig) Validate() error {
	var errs []error
	required := map[string]string{
		"DATABASE_URL":           c.DatabaseURL,
		"MOYASAR_SECRET_KEY":     c.MoyasarSecretKey,
		"MOYASAR_WEBHOOK_SECRET": c.MoyasarWebhookSecret,
		"JWT_PRIVATE_KEY_PATH":   c.JWT.PrivPath,
		"JWT_PUBLIC_KEY_PATH":    c.JWT.PubPath,
	}
	for _, key := range []string{"DATABASE_URL", "MOYASAR_SECRET_KEY", "MOYASAR_WEBHOOK_SECRET", "JWT_PRIVATE_KEY_PATH", "JWT_PUBLIC_KEY_PATH"} {
		if strings.TrimSpace(required[key]) == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}
	if c.AdminEmail != "" && len(c.AdminPassword) < 8 {
		errs = append(errs, errors.New("ADMIN_PASSWORD must be at least 8 characters"))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// SMTPConfigured reports whether emails can be sent at all.
func (c AppConfig) SMTPConfigured() bool {
	return c.SMTPHost != ""
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
