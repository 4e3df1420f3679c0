package main

import (
	"time"

	"github.com/rise-and-shine/catalog/cache"
	"github.com/rise-and-shine/catalog/logger"
	"github.com/rise-and-shine/catalog/pg"
	"github.com/rise-and-shine/catalog/tracing"
)

const (
	storageMemory   = "memory"
	storagePostgres = "postgres"
)

type Config struct {
	ServiceName    string `yaml:"service_name"    default:"catalog"`
	ServiceVersion string `yaml:"service_version" default:"dev"`

	// Storage is "memory" for a throwaway catalog filled with demo data or
	// "postgres" for a real database.
	Storage string `yaml:"storage" validate:"oneof=memory postgres" default:"memory"`

	// RequestTimeout bounds every dispatched request. Zero disables it.
	RequestTimeout time.Duration `yaml:"request_timeout" default:"30s"`

	Logger  logger.Config  `yaml:"logger"`
	Tracing tracing.Config `yaml:"tracing"`
	Cache   cache.Config   `yaml:"cache"`

	Postgres *pg.Config `yaml:"postgres" validate:"required_if=Storage postgres"`
}
