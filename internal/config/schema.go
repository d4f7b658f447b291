// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for covbot.
package config

import (
	"github.com/flemzord/covbot/internal/messaging"
	"github.com/flemzord/covbot/internal/telemetry"
)

// Config is the top-level configuration structure.
type Config struct {
	DataSource DataSourceConfig        `yaml:"data_source"`
	Messaging  messaging.TwilioConfig  `yaml:"messaging"`
	Store      StoreConfig             `yaml:"store"`
	Gateway    GatewayConfig           `yaml:"gateway"`
	Jobs       JobsConfig              `yaml:"jobs"`
	Telemetry  telemetry.TracingConfig `yaml:"telemetry"`
}

// DataSourceConfig points at the COVID-19 statistics API.
type DataSourceConfig struct {
	BaseURL string `yaml:"base_url"`
}

// StoreConfig locates the snapshot database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// GatewayConfig controls the HTTP surface.
type GatewayConfig struct {
	Listen string `yaml:"listen"`
}

// JobsConfig carries the 5-field cron expressions for the two background
// jobs. Aggressive deployments set purge_schedule to "* * * * *".
type JobsConfig struct {
	IngestSchedule string `yaml:"ingest_schedule"`
	PurgeSchedule  string `yaml:"purge_schedule"`
}

// Defaults applies default values to unset fields.
func (c *Config) Defaults() {
	if c.DataSource.BaseURL == "" {
		c.DataSource.BaseURL = "https://api.covid19api.com"
	}
	if c.Store.Path == "" {
		c.Store.Path = "covbot.db"
	}
	if c.Gateway.Listen == "" {
		c.Gateway.Listen = ":4000"
	}
	if c.Jobs.IngestSchedule == "" {
		c.Jobs.IngestSchedule = "*/2 * * * *"
	}
	if c.Jobs.PurgeSchedule == "" {
		c.Jobs.PurgeSchedule = "0 * * * *"
	}
}
