package gateway

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/flemzord/covbot/internal/query"
)

// commandLabels maps command kinds to the metrics label values.
var commandLabels = map[query.Kind]string{
	query.KindInvalid:         "invalid",
	query.KindCasesTotal:      "cases_total",
	query.KindDeathsTotal:     "deaths_total",
	query.KindCasesByCountry:  "cases_by_country",
	query.KindDeathsByCountry: "deaths_by_country",
}

// handleQuery processes one inbound message from the messaging provider's
// webhook (form fields Body and From). The caller always receives 200: parse
// failures are answered with the help text and delivery failures are logged,
// never surfaced — the ack only means "received".
func (g *Gateway) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("covbot/gateway").Start(r.Context(), "webhook_query")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		g.logger.Warn("webhook: malformed form payload", "error", err)
		ack(w)
		return
	}

	body := r.PostForm.Get("Body")
	sender := r.PostForm.Get("From")
	if sender == "" {
		g.logger.Warn("webhook: payload without sender, dropping")
		ack(w)
		return
	}

	cmd := query.Parse(body)
	g.metrics.Queries.WithLabelValues(commandLabels[cmd.Kind]).Inc()
	span.SetAttributes(attribute.String("query.command", commandLabels[cmd.Kind]))

	reply := query.HelpText
	if cmd.Kind != query.KindInvalid {
		reply = g.calculator.Reply(ctx, cmd)
	}

	// Exactly one delivery attempt, no retries.
	if err := g.sender.Send(ctx, sender, reply); err != nil {
		g.metrics.RepliesFailed.Inc()
		g.logger.Error("webhook: reply delivery failed",
			"sender", sender,
			"error", err,
		)
	}

	ack(w)
}

func ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}
