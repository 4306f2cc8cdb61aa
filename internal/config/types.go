package config

import "github.com/ivantomicic/gweilo-elo-new-sub002/internal/rating"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Turso         TursoConfig
	Rating        rating.Config
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
