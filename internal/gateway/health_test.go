package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flemzord/covbot/internal/query"
	"github.com/flemzord/covbot/internal/telemetry"
)

// staticStore reports fixed health data.
type staticStore struct {
	emptyStore
	count int
	last  time.Time
}

func (s staticStore) Len() int { return s.count }
func (s staticStore) LastUpdated(context.Context) (time.Time, error) {
	return s.last, nil
}

func TestHealth(t *testing.T) {
	t.Parallel()

	logger := testLogger()
	last := time.Date(2021, 4, 1, 12, 0, 0, 0, time.UTC)
	g := New(
		query.NewCalculator(&fakeSource{}, logger),
		&recordingSender{},
		staticStore{count: 42, last: last},
		telemetry.NewMetrics(),
		logger,
	)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	g.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.Snapshots != 42 {
		t.Errorf("snapshots = %d, want 42", resp.Snapshots)
	}
	if resp.LastIngest != "2021-04-01T12:00:00Z" {
		t.Errorf("last_ingest = %q", resp.LastIngest)
	}
}

func TestHealth_EmptyStoreIsOK(t *testing.T) {
	t.Parallel()

	logger := testLogger()
	g := New(
		query.NewCalculator(&fakeSource{}, logger),
		&recordingSender{},
		emptyStore{},
		telemetry.NewMetrics(),
		logger,
	)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	g.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.LastIngest != "" {
		t.Errorf("last_ingest = %q, want empty", resp.LastIngest)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	logger := testLogger()
	g := New(
		query.NewCalculator(&fakeSource{}, logger),
		&recordingSender{},
		emptyStore{},
		telemetry.NewMetrics(),
		logger,
	)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	g.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}
