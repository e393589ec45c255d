package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr             string
	PublicBaseURL        string
	DatabaseURL          string
	StoreDriver          string // postgres | memory
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	JWTSecret string
	LogLevel  string

	SettleDelay       time.Duration
	CaptureScale      float64
	CaptureLimit      int
	Rasterizer        string // rod | off
	ChromeBin         string
	ChromeDebuggerURL string

	StorageDriver string // s3 | local
	UploadDir     string
	S3AccessKey   string
	S3SecretKey   string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3PublicURL   string

	ResendAPIKey string
	MailFrom     string
	NotifyURL    string
}

// Load reads .env (if present), the optional YAML file named by CONFIG_FILE,
// and finally the process environment. Environment values win.
func Load() (Config, error) {
	_ = godotenv.Load()

	if path := getenv("CONFIG_FILE", ""); path != "" {
		if err := applyFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		PublicBaseURL:        strings.TrimRight(getenv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		DatabaseURL:          getenv("DATABASE_URL", ""),
		StoreDriver:          strings.ToLower(getenv("STORE_DRIVER", "postgres")),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",

		JWTSecret: getenv("JWT_SECRET", ""),
		LogLevel:  getenv("LOG_LEVEL", "info"),

		Rasterizer:        strings.ToLower(getenv("RASTERIZER", "rod")),
		ChromeBin:         getenv("CHROME_BIN", ""),
		ChromeDebuggerURL: getenv("CHROME_DEBUGGER_URL", ""),

		StorageDriver: strings.ToLower(getenv("STORAGE_DRIVER", "local")),
		UploadDir:     getenv("UPLOAD_DIR", "./uploads"),
		S3AccessKey:   getenv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getenv("S3_SECRET_KEY", ""),
		S3Bucket:      getenv("S3_BUCKET", "screenshots"),
		S3Region:      getenv("S3_REGION", "us-east-1"),
		S3Endpoint:    getenv("S3_ENDPOINT", ""),
		S3PublicURL:   strings.TrimRight(getenv("S3_PUBLIC_URL", ""), "/"),

		ResendAPIKey: getenv("RESEND_API_KEY", ""),
		MailFrom:     getenv("MAIL_FROM", "Valentine Notifications <onboarding@resend.dev>"),
		NotifyURL:    getenv("NOTIFY_URL", ""),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	var err error
	if cfg.SettleDelay, err = time.ParseDuration(getenv("SETTLE_DELAY", "500ms")); err != nil {
		return Config{}, fmt.Errorf("invalid SETTLE_DELAY: %w", err)
	}
	if cfg.CaptureScale, err = strconv.ParseFloat(getenv("CAPTURE_SCALE", "2"), 64); err != nil {
		return Config{}, fmt.Errorf("invalid CAPTURE_SCALE: %w", err)
	}
	if cfg.CaptureLimit, err = strconv.Atoi(getenv("CAPTURE_CONCURRENCY", "2")); err != nil {
		return Config{}, fmt.Errorf("invalid CAPTURE_CONCURRENCY: %w", err)
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("missing env: DATABASE_URL")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.StorageDriver {
	case "s3", "local":
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.Rasterizer {
	case "rod", "off":
	default:
		return fmt.Errorf("unknown RASTERIZER %q", c.Rasterizer)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("missing env: JWT_SECRET")
	}
	if c.CaptureScale <= 0 {
		return fmt.Errorf("CAPTURE_SCALE must be positive")
	}
	if c.CaptureLimit <= 0 {
		return fmt.Errorf("CAPTURE_CONCURRENCY must be positive")
	}
	return nil
}

// applyFile copies the keys of a flat YAML map into the environment unless
// the environment already sets them.
func applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var values map[string]string
	if err := yaml.Unmarshal(b, &values); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	for k, v := range values {
		key := strings.ToUpper(strings.TrimSpace(k))
		if _, ok := os.LookupEnv(key); ok {
			continue
		}
		if err := os.Setenv(key, v); err != nil {
			return err
		}
	}
	return nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
