package internal

import "github.com/starford/presswork/internal/logger"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config      *Config
	logger      logger.Logger
	development bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l logger.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}

// WithDevelopment forces development mode regardless of the configuration.
func WithDevelopment(dev bool) Option {
	return func(a *application) {
		a.development = dev
	}
}
