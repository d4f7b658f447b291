package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/flemzord/covbot/internal/covid"
	"github.com/flemzord/covbot/internal/snapshot"
	"github.com/flemzord/covbot/internal/telemetry"
)

// IngestJob refreshes the per-country snapshot store from the data source.
// A failure fetching the country catalogue aborts the whole run; a failure
// for a single country is logged and must not stop the remaining countries.
type IngestJob struct {
	Source       covid.DataSource
	Store        snapshot.Store
	Metrics      *telemetry.Metrics
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/2 * * * *"
}

// Compile-time interface check.
var _ Job = (*IngestJob)(nil)

// Name implements Job.
func (j *IngestJob) Name() string { return "snapshot_ingest" }

// Schedule implements Job.
func (j *IngestJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/2 * * * *"
}

// Run fetches the country catalogue, then walks it sequentially (the
// upstream API rate-limits, so no fan-out) upserting each country's latest
// active count. Countries are committed independently — a purge tick racing
// this run may interleave, which is accepted.
func (j *IngestJob) Run(ctx context.Context) error {
	ctx, span := otel.Tracer("covbot/cron").Start(ctx, "snapshot_ingest")
	defer span.End()

	countries, err := j.Source.Countries(ctx)
	if err != nil {
		j.Metrics.IngestRuns.WithLabelValues("failed").Inc()
		return fmt.Errorf("cron: fetch country catalogue: %w", err)
	}

	now := time.Now().UTC()
	var upserted, failed int

	for _, country := range countries {
		series, err := j.Source.TotalByCountry(ctx, country.Slug)
		if err != nil {
			failed++
			j.Metrics.CountriesFailed.Inc()
			j.Logger.Error("cron: country fetch failed, skipping",
				"country", country.Slug,
				"error", err,
			)
			continue
		}

		// Last record by time; an empty series, or a record the source
		// published without an active figure, means the count is unknown,
		// which is distinct from zero.
		var active *int64
		if len(series) > 0 {
			active = series[len(series)-1].Active
		}

		snap := snapshot.CountrySnapshot{
			Country:     country.Slug,
			ActiveCases: active,
			UpdatedAt:   now,
		}
		if err := j.Store.Upsert(ctx, snap); err != nil {
			failed++
			j.Metrics.CountriesFailed.Inc()
			j.Logger.Error("cron: snapshot upsert failed, skipping",
				"country", country.Slug,
				"error", err,
			)
			continue
		}

		upserted++
		j.Metrics.CountriesUpserted.Inc()
	}

	j.Metrics.IngestRuns.WithLabelValues("ok").Inc()
	j.Logger.Info("cron: ingest run complete",
		"countries", len(countries),
		"upserted", upserted,
		"failed", failed,
	)
	return nil
}

// PurgeJob unconditionally clears the snapshot store. It runs on its own
// timer, independent of the ingest job's success or failure.
type PurgeJob struct {
	Store        snapshot.Store
	Metrics      *telemetry.Metrics
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 * * * *"
}

// Compile-time interface check.
var _ Job = (*PurgeJob)(nil)

// Name implements Job.
func (j *PurgeJob) Name() string { return "snapshot_purge" }

// Schedule implements Job.
func (j *PurgeJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 * * * *"
}

// Run deletes every snapshot.
func (j *PurgeJob) Run(ctx context.Context) error {
	ctx, span := otel.Tracer("covbot/cron").Start(ctx, "snapshot_purge")
	defer span.End()

	if err := j.Store.DeleteAll(ctx); err != nil {
		j.Metrics.PurgeRuns.WithLabelValues("failed").Inc()
		return fmt.Errorf("cron: purge snapshots: %w", err)
	}

	j.Metrics.PurgeRuns.WithLabelValues("ok").Inc()
	j.Logger.Info("cron: purge run complete")
	return nil
}
