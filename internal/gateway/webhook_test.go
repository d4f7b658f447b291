package gateway

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/flemzord/covbot/internal/covid"
	"github.com/flemzord/covbot/internal/query"
	"github.com/flemzord/covbot/internal/snapshot"
	"github.com/flemzord/covbot/internal/telemetry"
)

// recordingSender captures Send calls.
type recordingSender struct {
	to   string
	body string
	err  error
}

func (s *recordingSender) Send(_ context.Context, to, body string) error {
	s.to = to
	s.body = body
	return s.err
}

// fakeSource implements covid.DataSource.
type fakeSource struct {
	world    covid.WorldTotals
	worldErr error
}

func (f *fakeSource) Countries(_ context.Context) ([]covid.Country, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSource) TotalByCountry(_ context.Context, _ string) ([]covid.DayTotal, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSource) WorldTotals(_ context.Context) (covid.WorldTotals, error) {
	return f.world, f.worldErr
}

// emptyStore implements snapshot.Store for handler tests.
type emptyStore struct{}

func (emptyStore) Upsert(context.Context, snapshot.CountrySnapshot) error { return nil }
func (emptyStore) Get(context.Context, string) (snapshot.CountrySnapshot, error) {
	return snapshot.CountrySnapshot{}, snapshot.ErrNotFound
}
func (emptyStore) All(context.Context) ([]snapshot.CountrySnapshot, error) { return nil, nil }
func (emptyStore) DeleteAll(context.Context) error                         { return nil }
func (emptyStore) Len() int                                                { return 0 }
func (emptyStore) LastUpdated(context.Context) (time.Time, error)          { return time.Time{}, nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newTestGateway(source covid.DataSource, sender *recordingSender) *Gateway {
	logger := testLogger()
	return New(
		query.NewCalculator(source, logger),
		sender,
		emptyStore{},
		telemetry.NewMetrics(),
		logger,
	)
}

func postQuery(t *testing.T, g *Gateway, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/query", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	g.Router().ServeHTTP(rr, req)
	return rr
}

func TestWebhook_ValidQuery(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	g := newTestGateway(&fakeSource{world: covid.WorldTotals{Confirmed: 100, Deaths: 10, Recovered: 50}}, sender)

	rr := postQuery(t, g, url.Values{
		"Body": {"CASES TOTAL"},
		"From": {"whatsapp:+491701234567"},
	})

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if sender.to != "whatsapp:+491701234567" {
		t.Errorf("to = %q", sender.to)
	}
	if sender.body != "Total Active Cases 40" {
		t.Errorf("reply = %q, want %q", sender.body, "Total Active Cases 40")
	}
}

func TestWebhook_InvalidQueryGetsHelpText(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	g := newTestGateway(&fakeSource{}, sender)

	rr := postQuery(t, g, url.Values{
		"Body": {"HELP"},
		"From": {"whatsapp:+1"},
	})

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if sender.body != query.HelpText {
		t.Errorf("reply = %q, want help text", sender.body)
	}
}

func TestWebhook_DeliveryFailureStillAcks(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{err: errors.New("provider down")}
	g := newTestGateway(&fakeSource{world: covid.WorldTotals{Confirmed: 1}}, sender)

	rr := postQuery(t, g, url.Values{
		"Body": {"DEATHS TOTAL"},
		"From": {"whatsapp:+1"},
	})

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 even when delivery fails", rr.Code)
	}
}

func TestWebhook_DataSourceFailureStillAcks(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	g := newTestGateway(&fakeSource{worldErr: errors.New("api down")}, sender)

	rr := postQuery(t, g, url.Values{
		"Body": {"CASES TOTAL"},
		"From": {"whatsapp:+1"},
	})

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if sender.body != "CASESTOTAL" {
		t.Errorf("reply = %q, want fallback concatenation", sender.body)
	}
}

func TestWebhook_MissingSenderDropped(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	g := newTestGateway(&fakeSource{}, sender)

	rr := postQuery(t, g, url.Values{"Body": {"CASES TOTAL"}})

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if sender.to != "" {
		t.Error("no delivery should be attempted without a sender")
	}
}

func TestWebhook_MalformedFormStillAcks(t *testing.T) {
	t.Parallel()

	// A body that fails URL decoding is acked without a reply attempt.
	sender := &recordingSender{}
	g := newTestGateway(&fakeSource{}, sender)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/query", strings.NewReader("Body=%zz&From=%"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	g.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if sender.to != "" || sender.body != "" {
		t.Error("no delivery should be attempted for an undecodable form")
	}
}

func TestWebhook_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	g := newTestGateway(&fakeSource{}, &recordingSender{})

	req := httptest.NewRequest(http.MethodGet, "/webhooks/query", nil)
	rr := httptest.NewRecorder()
	g.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}
