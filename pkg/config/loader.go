package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from process environment variables. cfg must be a pointer
// to a struct annotated with `env` tags; fields without a matching variable
// fall back to their `envDefault`, and fields tagged `required` produce an
// error when the variable is absent.
//
//	type HTTPConfig struct {
//	    Port int    `env:"HTTP_PORT" envDefault:"8000"`
//	    Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
