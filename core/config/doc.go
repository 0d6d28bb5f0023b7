// Package config loads environment variables into typed structs.
//
// A .env file is read once on first use (github.com/joho/godotenv), then
// github.com/caarlos0/env/v11 parses `env` and `envDefault` struct tags.
// Each configuration type is parsed once per process and cached:
//
//	type Config struct {
//		Server  server.Config
//		Storage string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Nested structs without a prefix share the flat variable namespace, which is
// how component configs (server, pg, redis, ...) are composed.
package config
