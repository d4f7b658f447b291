package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flemzord/covbot/internal/covid"
)

// Calculator computes reply text for parsed commands. World totals are
// fetched per query; country lookups read the latest series record fresh
// from the data source rather than the snapshot store.
type Calculator struct {
	source covid.DataSource
	logger *slog.Logger
}

// NewCalculator creates a Calculator backed by the given data source.
func NewCalculator(source covid.DataSource, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{source: source, logger: logger}
}

// Reply produces the reply text for a command. Data-source failures are
// logged and answered with the raw value+source concatenation — the reply
// contract never propagates an error to the webhook caller.
func (c *Calculator) Reply(ctx context.Context, cmd Command) string {
	switch cmd.Kind {
	case KindInvalid:
		return HelpText

	case KindCasesTotal, KindDeathsTotal:
		totals, err := c.source.WorldTotals(ctx)
		if err != nil {
			c.logger.Error("query: world totals fetch failed", "error", err)
			return cmd.Value + cmd.Source
		}
		if cmd.Kind == KindCasesTotal {
			return fmt.Sprintf("Total Active Cases %d", totals.Active())
		}
		return fmt.Sprintf("Total Deaths %d", totals.Deaths)

	case KindCasesByCountry, KindDeathsByCountry:
		latest, iso2, err := c.latestForCountry(ctx, cmd.ISO2)
		if err != nil {
			c.logger.Error("query: country lookup failed", "iso2", cmd.ISO2, "error", err)
			return cmd.Value + cmd.Source
		}
		if cmd.Kind == KindCasesByCountry {
			if latest.Active == nil {
				return fmt.Sprintf("%s Active Cases unknown", iso2)
			}
			return fmt.Sprintf("%s Active Cases %d", iso2, *latest.Active)
		}
		return fmt.Sprintf("%s Deaths %d", iso2, latest.Deaths)
	}

	// Unreachable given the parser grammar; kept as the compatibility
	// fallback for commands that match none of the cases above.
	return cmd.Value + cmd.Source
}

// latestForCountry resolves the ISO2 code against the country catalogue and
// returns the last record of that country's time series.
func (c *Calculator) latestForCountry(ctx context.Context, iso2 string) (covid.DayTotal, string, error) {
	countries, err := c.source.Countries(ctx)
	if err != nil {
		return covid.DayTotal{}, "", fmt.Errorf("fetch countries: %w", err)
	}

	var match *covid.Country
	for i := range countries {
		if countries[i].ISO2 == iso2 {
			match = &countries[i]
			break
		}
	}
	if match == nil {
		return covid.DayTotal{}, "", fmt.Errorf("no country with ISO2 %q", iso2)
	}

	series, err := c.source.TotalByCountry(ctx, match.Slug)
	if err != nil {
		return covid.DayTotal{}, "", fmt.Errorf("fetch totals for %q: %w", match.Slug, err)
	}
	if len(series) == 0 {
		return covid.DayTotal{}, "", fmt.Errorf("empty series for %q", match.Slug)
	}

	return series[len(series)-1], match.ISO2, nil
}
