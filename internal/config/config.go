package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host        string   `yaml:"host"`
		Port        int      `yaml:"port"`
		Env         string   `yaml:"env"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Database struct {
		DSN          string `yaml:"url"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	JWT struct {
		Secret     string        `yaml:"secret"`
		AccessTTL  time.Duration `yaml:"access_ttl"`
		RefreshTTL time.Duration `yaml:"refresh_ttl"`
		ResetTTL   time.Duration `yaml:"reset_ttl"`
		VerifyTTL  time.Duration `yaml:"verify_ttl"`
	} `yaml:"jwt"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
		FrontendURL  string `yaml:"frontend_url"`
	} `yaml:"email"`

	AI struct {
		Provider string        `yaml:"provider"`
		APIKey   string        `yaml:"api_key"`
		Model    string        `yaml:"model"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"ai"`

	OAuth struct {
		Google   OAuthClient `yaml:"google"`
		LinkedIn OAuthClient `yaml:"linkedin"`
	} `yaml:"oauth"`

	Storage struct {
		Type      string `yaml:"type"` // local, s3, cloudflare_r2
		BasePath  string `yaml:"base_path"`
		BaseURL   string `yaml:"base_url"`
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Endpoint  string `yaml:"endpoint"`
	} `yaml:"storage"`

	RateLimit struct {
		Auth RateRule `yaml:"auth"`
		API  RateRule `yaml:"api"`
		AI   RateRule `yaml:"ai"`
	} `yaml:"ratelimit"`

	Workers struct {
		Enabled           bool          `yaml:"enabled"`
		ReminderInterval  time.Duration `yaml:"reminder_interval"`
		AnalyticsInterval time.Duration `yaml:"analytics_interval"`
	} `yaml:"workers"`
}

type OAuthClient struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Enabled reports whether the provider has credentials.
func (o OAuthClient) Enabled() bool {
	return o.ClientID != "" && o.ClientSecret != ""
}

type RateRule struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

var AppConfig *Config

// LoadConfig fills AppConfig. With DATABASE_URL set the configuration comes
// from the environment only; otherwise from CONFIG_PATH (config/config.yaml).
func LoadConfig() {
	_ = godotenv.Load()

	var (
		cfg *Config
		err error
	)

	if os.Getenv("DATABASE_URL") == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}
		log.Printf("loading configuration from %s", configPath)

		cfg, err = Load(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	} else {
		log.Println("loading configuration from environment")
		cfg = &Config{}
		cfg.Database.DSN = os.Getenv("DATABASE_URL")
		cfg.Storage.Type = "local"
		cfg.Storage.BasePath = "./uploads"
		cfg.Storage.BaseURL = "/files"
		cfg.Workers.Enabled = true
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	AppConfig = cfg
}

// Load reads a YAML file without touching the environment.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "" || c.Server.Env == "development"
}

// Address is the listen address for gin.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Env, "SERVER_ENV")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = strings.Split(origins, ",")
	}

	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")

	setString(&cfg.Email.SMTPHost, "SMTP_HOST")
	setInt(&cfg.Email.SMTPPort, "SMTP_PORT")
	setString(&cfg.Email.SMTPUsername, "SMTP_USER")
	setString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	setString(&cfg.Email.FromEmail, "SMTP_FROM")
	setString(&cfg.Email.FrontendURL, "FRONTEND_URL")

	setString(&cfg.AI.APIKey, "GEMINI_API_KEY")
	setString(&cfg.AI.Model, "GEMINI_MODEL")

	setString(&cfg.OAuth.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.OAuth.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&cfg.OAuth.Google.RedirectURL, "GOOGLE_REDIRECT_URL")
	setString(&cfg.OAuth.LinkedIn.ClientID, "LINKEDIN_CLIENT_ID")
	setString(&cfg.OAuth.LinkedIn.ClientSecret, "LINKEDIN_CLIENT_SECRET")
	setString(&cfg.OAuth.LinkedIn.RedirectURL, "LINKEDIN_REDIRECT_URL")

	if v, err := strconv.ParseBool(os.Getenv("WORKERS_ENABLED")); err == nil {
		cfg.Workers.Enabled = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}

	setDuration(&cfg.JWT.AccessTTL, 15*time.Minute)
	setDuration(&cfg.JWT.RefreshTTL, 7*24*time.Hour)
	setDuration(&cfg.JWT.ResetTTL, time.Hour)
	setDuration(&cfg.JWT.VerifyTTL, 24*time.Hour)

	if cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = "Job Tracker"
	}
	if cfg.Email.FrontendURL == "" {
		cfg.Email.FrontendURL = "http://localhost:3000"
	}

	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "googleai"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-2.5-flash"
	}
	setDuration(&cfg.AI.Timeout, 60*time.Second)

	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}

	setRule(&cfg.RateLimit.Auth, 5, 15*time.Minute)
	setRule(&cfg.RateLimit.API, 100, 15*time.Minute)
	setRule(&cfg.RateLimit.AI, 20, time.Hour)

	setDuration(&cfg.Workers.ReminderInterval, 5*time.Minute)
	setDuration(&cfg.Workers.AnalyticsInterval, time.Hour)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, def time.Duration) {
	if *dst <= 0 {
		*dst = def
	}
}

func setRule(dst *RateRule, limit int, window time.Duration) {
	if dst.Limit <= 0 {
		dst.Limit = limit
	}
	if dst.Window <= 0 {
		dst.Window = window
	}
}
