package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"transfers24/internal/payment"
	"transfers24/internal/pkg/logger"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Bot         BotConfig
	Log         logger.Config
	Transfers24 Transfers24Config
}

type ServerConfig struct {
	Port   int
	Env    string // "development", "production"
	APIKey string
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr     string
	Pass     string
	DB       int
	DedupTTL time.Duration
}

type BotConfig struct {
	Token   string
	AdminID int64
}

// Transfers24Config holds the gateway credentials and callback URLs.
type Transfers24Config struct {
	MerchantID string
	PosID      string
	CRC        string
	TestMode   bool
	// PerCallCredentials makes every call supply its own credentials.
	PerCallCredentials bool
	BaseURL            string
	Timeout            time.Duration
	ReturnURL          string
	StatusURL          string
	HealthCron         string
}

// CredentialsScope implements payment.ConfigProvider.
func (c Transfers24Config) CredentialsScope() bool {
	return c.PerCallCredentials
}

// Credentials implements payment.ConfigProvider.
func (c Transfers24Config) Credentials() payment.Credentials {
	env := payment.EnvironmentLive
	if c.TestMode {
		env = payment.EnvironmentSandbox
	}
	return payment.Credentials{
		PosID:       c.PosID,
		MerchantID:  c.MerchantID,
		CRC:         c.CRC,
		Environment: env,
	}
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_CHARSET", "utf8mb4")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_DEDUP_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_MAX_SIZE", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE", 28)
	v.SetDefault("LOG_COMPRESS", true)
	v.SetDefault("P24_TEST_MODE", true)
	v.SetDefault("P24_CREDENTIALS_SCOPE", false)
	v.SetDefault("P24_TIMEOUT", "30s")
	v.SetDefault("P24_HEALTH_CRON", "0 */15 * * * *")

	cfg := &Config{
		Server: ServerConfig{
			Port:   v.GetInt("APP_PORT"),
			Env:    v.GetString("APP_ENV"),
			APIKey: v.GetString("APP_API_KEY"),
		},
		Database: DatabaseConfig{
			Host:    v.GetString("DB_HOST"),
			Port:    v.GetString("DB_PORT"),
			Name:    v.GetString("DB_NAME"),
			User:    v.GetString("DB_USER"),
			Pass:    v.GetString("DB_PASS"),
			Charset: v.GetString("DB_CHARSET"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Pass:     v.GetString("REDIS_PASS"),
			DB:       v.GetInt("REDIS_DB"),
			DedupTTL: parseDuration(v.GetString("REDIS_DEDUP_TTL"), 24*time.Hour),
		},
		Bot: BotConfig{
			Token:   v.GetString("BOT_TOKEN"),
			AdminID: v.GetInt64("BOT_ADMIN_ID"),
		},
		Log: logger.Config{
			Level:      v.GetString("LOG_LEVEL"),
			Filename:   v.GetString("LOG_FILENAME"),
			MaxSize:    v.GetInt("LOG_MAX_SIZE"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAge:     v.GetInt("LOG_MAX_AGE"),
			Compress:   v.GetBool("LOG_COMPRESS"),
		},
		Transfers24: Transfers24Config{
			MerchantID:         v.GetString("P24_MERCHANT_ID"),
			PosID:              v.GetString("P24_POS_ID"),
			CRC:                v.GetString("P24_CRC"),
			TestMode:           v.GetBool("P24_TEST_MODE"),
			PerCallCredentials: v.GetBool("P24_CREDENTIALS_SCOPE"),
			BaseURL:            v.GetString("P24_BASE_URL"),
			Timeout:            parseDuration(v.GetString("P24_TIMEOUT"), 30*time.Second),
			ReturnURL:          v.GetString("P24_RETURN_URL"),
			StatusURL:          v.GetString("P24_STATUS_URL"),
			HealthCron:         v.GetString("P24_HEALTH_CRON"),
		},
	}

	if cfg.Transfers24.PosID == "" {
		cfg.Transfers24.PosID = cfg.Transfers24.MerchantID
	}
	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}
	if cfg.Server.APIKey == "" {
		log.Println("WARNING: APP_API_KEY is not set, the payments API is unauthenticated")
	}
	if !cfg.Transfers24.PerCallCredentials && cfg.Transfers24.MerchantID == "" {
		log.Println("WARNING: P24_MERCHANT_ID is not set")
	}

	return cfg, nil
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
