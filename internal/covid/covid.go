// Package covid implements the client for the COVID-19 statistics API
// consumed by the ingest job and the query calculator. The API exposes a
// country catalogue, a cumulative per-country time series, and world totals.
package covid

import "context"

// Country is one entry of the country catalogue. Slug is the stable
// machine identifier used in per-country requests; ISO2 is the two-letter
// code users type in queries.
type Country struct {
	Name string `json:"Country"`
	Slug string `json:"Slug"`
	ISO2 string `json:"ISO2"`
}

// DayTotal is one cumulative record of a country's time series. The source
// sometimes records an object without a usable Active field; Active is nil
// then, which is distinct from a real zero.
type DayTotal struct {
	Date      string `json:"Date"`
	Confirmed int64  `json:"Confirmed"`
	Deaths    int64  `json:"Deaths"`
	Recovered int64  `json:"Recovered"`
	Active    *int64 `json:"Active"`
}

// WorldTotals are the global cumulative counters.
type WorldTotals struct {
	Confirmed int64 `json:"TotalConfirmed"`
	Deaths    int64 `json:"TotalDeaths"`
	Recovered int64 `json:"TotalRecovered"`
}

// Active derives the active case count. It is computed per query and
// never stored.
func (w WorldTotals) Active() int64 {
	return w.Confirmed - (w.Deaths + w.Recovered)
}

// DataSource is the read interface the rest of covbot consumes. *Client
// implements it; tests substitute fakes.
type DataSource interface {
	// Countries returns the full country catalogue.
	Countries(ctx context.Context) ([]Country, error)

	// TotalByCountry returns the country's cumulative time series in
	// ascending date order. The series may be empty.
	TotalByCountry(ctx context.Context, slug string) ([]DayTotal, error)

	// WorldTotals returns the global counters.
	WorldTotals(ctx context.Context) (WorldTotals, error)
}
