package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    APIURL   string `env:"STOREFRONT_API_URL" envDefault:"http://localhost:5000/api"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadWithDotEnv behaves like Load but first reads the given dotenv files.
// Real environment variables take precedence over file values and missing
// files are skipped. The process environment is not modified.
func LoadWithDotEnv(cfg any, files ...string) error {
	vars := env.ToMap(os.Environ())

	for _, file := range files {
		fileVars, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("read %s: %w", file, err)
		}
		for k, v := range fileVars {
			if _, ok := vars[k]; !ok {
				vars[k] = v
			}
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
