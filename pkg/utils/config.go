package utils

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Midtrans MidtransConfig
	Order    OrderConfig
	Admin    AdminConfig
}

type AppConfig struct {
	Name           string
	Port           string
	Debug          bool
	LogPath        string
	Timezone       string
	BaseURL        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type MidtransConfig struct {
	ServerKey  string
	Production bool
}

type OrderConfig struct {
	SLAHours     int
	DefaultPrice int64
	Currency     string
}

type AdminConfig struct {
	KeyHash string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("TIMEZONE", "Asia/Jakarta")
	viper.SetDefault("APP_BASE_URL", "http://localhost:3001")
	viper.SetDefault("SLA_HOURS", 24)
	viper.SetDefault("ORDER_DEFAULT_PRICE", 250000)
	viper.SetDefault("ORDER_CURRENCY", "IDR")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:           viper.GetString("APP_NAME"),
			Port:           viper.GetString("PORT"),
			Debug:          viper.GetBool("DEBUG"),
			LogPath:        viper.GetString("LOG_PATH"),
			Timezone:       viper.GetString("TIMEZONE"),
			BaseURL:        viper.GetString("APP_BASE_URL"),
			AllowedOrigins: splitOrigins(viper.GetString("ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Midtrans: MidtransConfig{
			ServerKey:  viper.GetString("MIDTRANS_SERVER_KEY"),
			Production: viper.GetBool("MIDTRANS_PRODUCTION"),
		},
		Order: OrderConfig{
			SLAHours:     viper.GetInt("SLA_HOURS"),
			DefaultPrice: viper.GetInt64("ORDER_DEFAULT_PRICE"),
			Currency:     viper.GetString("ORDER_CURRENCY"),
		},
		Admin: AdminConfig{
			KeyHash: viper.GetString("ADMIN_KEY_HASH"),
		},
	}

	return config, nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
