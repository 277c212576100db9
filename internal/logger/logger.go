// Package logger builds the service's zap loggers.
package logger

import (
	"go.uber.org/zap"
)

// New builds a logger for the given environment: human-readable development
// output in development, JSON elsewhere.
func New(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// NewNamed builds a logger annotated with the service name.
func NewNamed(env, service string) (*zap.Logger, error) {
	log, err := New(env)
	if err != nil {
		return nil, err
	}
	return log.Named(service), nil
}
