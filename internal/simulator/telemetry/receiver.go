package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/autopeer-io/vfleet/internal/pkg/bus"
	"github.com/autopeer-io/vfleet/internal/pkg/metrics"
	"github.com/autopeer-io/vfleet/internal/simulator/core"
	"github.com/autopeer-io/vfleet/pkg/log"
)

// Target is the vehicle a Receiver feeds. The setters return false when the
// vehicle no longer accepts input.
type Target interface {
	ID() int
	AssignRoute(route core.Route) bool
	InjectAnomaly(kind core.AnomalyKind) bool
}

// Receiver subscribes a vehicle to its inbound topics and hands accepted
// messages over to it. Malformed messages are logged and dropped.
type Receiver struct {
	bus    bus.Bus
	topics Topics
	target Target
	logger log.Logger
}

// NewReceiver creates a Receiver.
func NewReceiver(b bus.Bus, topics Topics, target Target, logger log.Logger) *Receiver {
	return &Receiver{bus: b, topics: topics, target: target, logger: logger}
}

// Subscribe registers the inbound handlers. They keep running until the bus
// session is closed.
func (r *Receiver) Subscribe(ctx context.Context) error {
	if err := r.bus.Subscribe(ctx, r.topics.StartRoute, r.HandleStartRoute); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.topics.StartRoute, err)
	}
	if err := r.bus.Subscribe(ctx, r.topics.Anomaly, r.HandleAnomaly); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.topics.Anomaly, err)
	}
	return nil
}

// HandleStartRoute accepts a route iff the message targets this vehicle, has
// order 1 and carries a non-empty route.
func (r *Receiver) HandleStartRoute(_ context.Context, topic string, payload []byte) {
	id, order, text, err := DecodeStartRoute(payload)
	if err != nil {
		r.malformed(topic, err)
		return
	}
	if id != r.target.ID() {
		metrics.MessagesReceived.WithLabelValues(topic, "ignored").Inc()
		return
	}
	if order != 1 {
		r.logger.Info("Ignoring route assignment", "order", order)
		metrics.MessagesReceived.WithLabelValues(topic, "ignored").Inc()
		return
	}

	route, err := core.ParseRoute(text)
	if err != nil {
		r.malformed(topic, err)
		return
	}

	if !r.target.AssignRoute(route) {
		r.logger.Warn("Vehicle halted, dropping route assignment")
		metrics.MessagesReceived.WithLabelValues(topic, "dropped").Inc()
		return
	}

	r.logger.Info("Route received", "vertices", len(route))
	metrics.MessagesReceived.WithLabelValues(topic, "accepted").Inc()
}

// HandleAnomaly hands an anomaly for this vehicle over to it.
func (r *Receiver) HandleAnomaly(_ context.Context, topic string, payload []byte) {
	req, err := DecodeAnomaly(payload)
	if err != nil {
		r.malformed(topic, err)
		return
	}
	if req.VehicleID != r.target.ID() {
		metrics.MessagesReceived.WithLabelValues(topic, "ignored").Inc()
		return
	}

	if !r.target.InjectAnomaly(req.Kind) {
		r.logger.Warn("Vehicle halted, dropping anomaly", "kind", req.Kind)
		metrics.MessagesReceived.WithLabelValues(topic, "dropped").Inc()
		return
	}

	r.logger.Info("Anomaly received", "kind", req.Kind)
	metrics.MessagesReceived.WithLabelValues(topic, "accepted").Inc()
}

func (r *Receiver) malformed(topic string, err error) {
	if errors.Is(err, core.ErrEmptyRoute) {
		r.logger.Warn("Dropping route assignment with an empty route", "topic", topic)
	} else {
		r.logger.Warn("Dropping malformed message", "topic", topic, "reason", err.Error())
	}
	metrics.MessagesReceived.WithLabelValues(topic, "malformed").Inc()
}
