package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the phonebook web application.
type Config struct {
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Web UI service
	WebUIServicePort int `mapstructure:"WEBUI_SERVICE_PORT"`

	// External contact repository (Hasura-style GraphQL endpoint)
	GraphQLEndpoint    string `mapstructure:"GRAPHQL_ENDPOINT"`
	GraphQLAdminSecret string `mapstructure:"GRAPHQL_ADMIN_SECRET"`

	// Client-local favorites store: a single serialized collection under one fixed path.
	FavoritesPath string `mapstructure:"FAVORITES_PATH"`

	PageSize                 int `mapstructure:"PAGE_SIZE"`
	HTTPClientTimeoutSeconds int `mapstructure:"HTTP_CLIENT_TIMEOUT_SECONDS"`
}

// Load reads configuration from configs/config.defaults.yaml (if present)
// and the environment. Environment variables use the APP_ prefix,
// e.g. APP_GRAPHQL_ENDPOINT.
func Load(serviceName string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config.defaults")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")    // For running from cmd/phonebook_web
	v.AddConfigPath("../../configs") // For running tests inside internal packages
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetEnvPrefix("APP")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WEBUI_SERVICE_PORT", 8080)
	v.SetDefault("GRAPHQL_ENDPOINT", "http://localhost:8085/v1/graphql")
	v.SetDefault("GRAPHQL_ADMIN_SECRET", "")
	v.SetDefault("FAVORITES_PATH", "phonebook-favorites.json")
	v.SetDefault("PAGE_SIZE", 10)
	v.SetDefault("HTTP_CLIENT_TIMEOUT_SECONDS", 30)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Configuration file not found for %s; using defaults and environment variables.", serviceName)
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
