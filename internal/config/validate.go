package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/robfig/cron/v3"
)

// scheduleParser accepts the same 5-field cron grammar the scheduler uses.
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate checks the configuration for structural errors. It assumes
// Defaults has already been applied.
func Validate(cfg *Config) error {
	var errs []error

	if u, err := url.Parse(cfg.DataSource.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("config: data_source.base_url must be a valid http/https URL, got %q", cfg.DataSource.BaseURL))
	}

	if cfg.Messaging.AccountSID == "" {
		errs = append(errs, errors.New("config: messaging.account_sid is required"))
	}
	if cfg.Messaging.AuthToken == "" {
		errs = append(errs, errors.New("config: messaging.auth_token is required"))
	}
	if cfg.Messaging.From == "" {
		errs = append(errs, errors.New("config: messaging.from is required"))
	}

	if _, err := scheduleParser.Parse(cfg.Jobs.IngestSchedule); err != nil {
		errs = append(errs, fmt.Errorf("config: jobs.ingest_schedule %q: %w", cfg.Jobs.IngestSchedule, err))
	}
	if _, err := scheduleParser.Parse(cfg.Jobs.PurgeSchedule); err != nil {
		errs = append(errs, fmt.Errorf("config: jobs.purge_schedule %q: %w", cfg.Jobs.PurgeSchedule, err))
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		errs = append(errs, errors.New("config: telemetry.endpoint is required when telemetry is enabled"))
	}

	return errors.Join(errs...)
}
