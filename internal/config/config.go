/**
 * @description
 * This file handles the configuration management for the portal. It uses the
 * 'viper' library to load configuration from environment variables,
 * providing a centralized and consistent way to manage application settings.
 */
package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort        string `mapstructure:"SERVER_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	AdminEmail        string `mapstructure:"ADMIN_EMAIL"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`
	StripeSecretKey   string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeReturnURL   string `mapstructure:"STRIPE_RETURN_URL"`
	AMQPURL           string `mapstructure:"AMQP_URL"`

	// Fixed-window rate limits, keyed separately so reads do not starve
	// mutations.
	MutationRateLimit int `mapstructure:"MUTATION_RATE_LIMIT"`
	ReadRateLimit     int `mapstructure:"READ_RATE_LIMIT"`
	RateWindowSeconds int `mapstructure:"RATE_WINDOW_SECONDS"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("MUTATION_RATE_LIMIT", 30)
	viper.SetDefault("READ_RATE_LIMIT", 120)
	viper.SetDefault("RATE_WINDOW_SECONDS", 60)
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("ADMIN_EMAIL")
	_ = viper.BindEnv("ADMIN_PASSWORD_HASH")
	_ = viper.BindEnv("STRIPE_SECRET_KEY")
	_ = viper.BindEnv("STRIPE_RETURN_URL")
	_ = viper.BindEnv("AMQP_URL")
	_ = viper.BindEnv("MUTATION_RATE_LIMIT")
	_ = viper.BindEnv("READ_RATE_LIMIT")
	_ = viper.BindEnv("RATE_WINDOW_SECONDS")

	err = viper.Unmarshal(&config)
	return
}
