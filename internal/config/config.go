package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction = "production"
	EnvLocal      = "local"
)

type OTPConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type VerificationConfig struct {
	OTPTTL  time.Duration `yaml:"otp_ttl"`
	LinkTTL time.Duration `yaml:"link_ttl"`
	// базовый URL, из которого строится ссылка в письме
	PublicURL string `yaml:"public_url"`
}

type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	AccessTTL  time.Duration `yaml:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl"`
}

type TelegramConfig struct {
	BotToken    string `yaml:"bot_token"`
	AdminChatID int64  `yaml:"admin_chat_id"`
}

type FilesConfig struct {
	FontPath string `yaml:"font_path"`
}

type Config struct {
	Env string `yaml:"-"`

	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"` // postgres | memory
		DSN    string `yaml:"url"`
	} `yaml:"database"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	OTP          OTPConfig          `yaml:"otp"`
	Verification VerificationConfig `yaml:"verification"`
	JWT          JWTConfig          `yaml:"jwt"`
	Pricing      struct {
		FlatUnitPrice int `yaml:"flat_unit_price"`
	} `yaml:"pricing"`
	Telegram TelegramConfig `yaml:"telegram"`
	Files    FilesConfig    `yaml:"files"`
}

// Load читает .env (если есть), выбирает профиль по APP_ENV
// и декодирует config/config.<env>.yaml из dir.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	env := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))
	if env != EnvProduction {
		env = EnvLocal
	}

	path := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Env = env
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Printf("[config] loaded profile=%s from %s", env, path)
	return &cfg, nil
}

// секреты переопределяются из окружения
func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Email.SMTPPassword = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.OTP.Min == 0 && c.OTP.Max == 0 {
		c.OTP.Min, c.OTP.Max = 100000, 999999
	}
	if c.Verification.OTPTTL <= 0 {
		c.Verification.OTPTTL = 5 * time.Minute
	}
	if c.Verification.LinkTTL <= 0 {
		c.Verification.LinkTTL = 15 * time.Minute
	}
	if c.JWT.AccessTTL <= 0 {
		c.JWT.AccessTTL = 15 * time.Minute
	}
	if c.JWT.RefreshTTL <= 0 {
		c.JWT.RefreshTTL = 30 * 24 * time.Hour
	}
	if c.Pricing.FlatUnitPrice == 0 {
		c.Pricing.FlatUnitPrice = 100
	}
	if c.Files.FontPath == "" {
		c.Files.FontPath = "assets/fonts/DejaVuSans.ttf"
	}
}

func (c *Config) Validate() error {
	if c.OTP.Min < 0 || c.OTP.Max < c.OTP.Min {
		return fmt.Errorf("config: invalid otp range [%d, %d]", c.OTP.Min, c.OTP.Max)
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return fmt.Errorf("config: jwt.secret is required")
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("config: database.url is required for postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	return nil
}
