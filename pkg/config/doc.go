// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
//	type AppConfig struct {
//	    Env string `env:"APP_ENV" envDefault:"development"`
//	}
//
//	var cfg AppConfig
//	config.MustLoad(&cfg)
//
// Struct tags follow github.com/caarlos0/env conventions: `env:"NAME"`,
// `env:"NAME,required"` and `envDefault:"value"`.
package config
