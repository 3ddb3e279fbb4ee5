package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Gateway  GatewayConfig
	Booking  BookingConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
	BaseURL string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type GatewayConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

type BookingConfig struct {
	// CommissionRate is the default stamped onto new payout accounts. The
	// account-level rate is authoritative at settlement time.
	CommissionRate float64
	PendingTimeout time.Duration
	ReaperInterval time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("CURRENCY", "usd")
	viper.SetDefault("COMMISSION_RATE", 0.15)
	viper.SetDefault("PENDING_BOOKING_TIMEOUT_MINUTES", 30)
	viper.SetDefault("REAPER_INTERVAL_MINUTES", 5)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
			BaseURL: viper.GetString("BASE_URL"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Gateway: GatewayConfig{
			SecretKey:     viper.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: viper.GetString("STRIPE_WEBHOOK_SECRET"),
			Currency:      viper.GetString("CURRENCY"),
		},
		Booking: BookingConfig{
			CommissionRate: viper.GetFloat64("COMMISSION_RATE"),
			PendingTimeout: time.Duration(viper.GetInt("PENDING_BOOKING_TIMEOUT_MINUTES")) * time.Minute,
			ReaperInterval: time.Duration(viper.GetInt("REAPER_INTERVAL_MINUTES")) * time.Minute,
		},
	}

	return config, nil
}
