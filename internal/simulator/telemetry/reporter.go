// Package telemetry speaks the fleet wire protocol: it publishes vehicle
// events and decodes inbound route assignments and anomaly injections.
package telemetry

import (
	"context"
	"encoding/json"

	"github.com/autopeer-io/vfleet/internal/pkg/bus"
	"github.com/autopeer-io/vfleet/internal/pkg/metrics"
	"github.com/autopeer-io/vfleet/internal/simulator/core"
	"github.com/autopeer-io/vfleet/pkg/log"
)

// Message is an outbound message as seen by observers.
type Message struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Observer receives a copy of every published message. Observe must not block.
type Observer interface {
	Observe(m Message)
}

// Reporter publishes vehicle events over a bus session. Publishing is fire
// and forget: failures are logged and counted, never returned.
type Reporter struct {
	bus       bus.Bus
	topics    Topics
	logger    log.Logger
	observers []Observer
}

var _ core.Reporter = (*Reporter)(nil)

// NewReporter creates a Reporter.
func NewReporter(b bus.Bus, topics Topics, logger log.Logger, observers ...Observer) *Reporter {
	return &Reporter{bus: b, topics: topics, logger: logger, observers: observers}
}

func (r *Reporter) ReportLocation(ctx context.Context, t core.Telemetry) {
	r.publish(ctx, r.topics.UpdateLocation, NewLocationMessage(t))
}

func (r *Reporter) ReportStatus(ctx context.Context, vehicleID int, status core.Status) {
	r.publish(ctx, r.topics.UpdateStatus, NewStatusMessage(vehicleID, status))
}

func (r *Reporter) ReportAnomaly(ctx context.Context, vehicleID int, description string) {
	r.publish(ctx, r.topics.ReportAnomaly, NewAnomalyReport(vehicleID, description))
}

func (r *Reporter) publish(ctx context.Context, topic string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error(err, "Failed to encode message", "topic", topic)
		metrics.MessagesPublished.WithLabelValues(topic, "failed").Inc()
		return
	}

	if err := r.bus.Publish(ctx, topic, payload); err != nil {
		r.logger.Error(err, "Failed to publish message", "topic", topic)
		metrics.MessagesPublished.WithLabelValues(topic, "failed").Inc()
	} else {
		metrics.MessagesPublished.WithLabelValues(topic, "ok").Inc()
	}

	for _, o := range r.observers {
		o.Observe(Message{Topic: topic, Payload: payload})
	}
}
