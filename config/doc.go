// Package config loads service configuration and answers whether the process
// runs in production.
//
// It uses Viper to read a YAML file and environment variables, and godotenv
// to load a .env file into the process environment first.
//
//	var cfg MyConfig
//	err := config.LoadConfig("errdemo", &cfg)
//
// Nested keys bind from upper-case environment names, e.g. SERVER_PORT sets
// server.port. IsProduction reads ENVIRONMENT, then APP_ENV.
package config
