package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"summary_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"summary_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"summary_api" description:"Database name"`

	// Application configuration
	Port        string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	Environment string `long:"environment" env:"ENVIRONMENT" default:"dev" description:"Deployment environment name reported by /ping"`
	WorkerCount int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for summary generation"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Summary API/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:      raw.DBHost,
		DBPort:      raw.DBPort,
		DBUser:      raw.DBUser,
		DBPassword:  raw.DBPassword,
		DBName:      raw.DBName,
		Port:        raw.Port,
		Environment: raw.Environment,
		WorkerCount: raw.WorkerCount,
		UserAgent:   raw.UserAgent,
		Debug:       raw.Debug,
		Version:     GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
