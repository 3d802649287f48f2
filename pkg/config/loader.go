package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrNilConfig is returned when Load receives a nil pointer.
	ErrNilConfig = errors.New("config: nil config pointer")

	// ErrParseFailed wraps environment parsing failures.
	ErrParseFailed = errors.New("config: failed to parse environment")
)

var loadDotEnv sync.Once

// Load fills the given struct from environment variables using `env` field
// tags. A .env file in the working directory is loaded once per process if
// present; a missing file is not an error.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}
	loadDotEnv.Do(func() {
		_ = godotenv.Load()
	})
	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParseFailed, err)
	}
	return nil
}

// MustLoad is Load that panics on failure, for process initialization where
// a bad environment should prevent startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}
