package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/vfleet/internal/pkg/bus"
	"github.com/autopeer-io/vfleet/internal/simulator/core"
	"github.com/autopeer-io/vfleet/pkg/log"
)

var topics = NewTopics("PTIN2023")

type captured struct {
	mu   sync.Mutex
	msgs []Message
}

func (c *captured) Observe(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m)
}

func (c *captured) handle(_ context.Context, topic string, payload []byte) {
	c.Observe(Message{Topic: topic, Payload: payload})
}

func (c *captured) all() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.msgs...)
}

type failingBus struct{}

func (failingBus) Start(context.Context) error { return nil }
func (failingBus) Publish(context.Context, string, []byte) error {
	return errors.New("broker unreachable")
}
func (failingBus) Subscribe(context.Context, string, bus.Handler) error { return nil }
func (failingBus) Close(context.Context) error                        { return nil }

type fakeTarget struct {
	id      int
	halted  bool
	routes  []core.Route
	anomaly []core.AnomalyKind
}

func (f *fakeTarget) ID() int { return f.id }

func (f *fakeTarget) AssignRoute(r core.Route) bool {
	if f.halted {
		return false
	}
	f.routes = append(f.routes, r)
	return true
}

func (f *fakeTarget) InjectAnomaly(k core.AnomalyKind) bool {
	if f.halted {
		return false
	}
	f.anomaly = append(f.anomaly, k)
	return true
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "PTIN2023/CAR/STARTROUTE", topics.StartRoute)
	assert.Equal(t, "PTIN2023/CAR/ANOMALIA", topics.Anomaly)
	assert.Equal(t, "PTIN2023/CAR/UPDATELOCATION", topics.UpdateLocation)
	assert.Equal(t, "PTIN2023/CAR/UPDATESTATUS", topics.UpdateStatus)
	assert.Equal(t, "PTIN2023/CAR/REPORTANOMALIA", topics.ReportAnomaly)
}

func TestReporterMessageShapes(t *testing.T) {
	ctx := context.Background()
	broker := bus.NewMemoryBroker()
	sink := &captured{}
	require.NoError(t, broker.Session().Subscribe(ctx, "PTIN2023/#", sink.handle))

	r := NewReporter(broker.Session(), topics, log.NewNopLogger())
	r.ReportLocation(ctx, core.Telemetry{
		VehicleID: 5,
		Position:  core.Coordinate{Lon: 2.0, Lat: 41.0},
		Status:    core.StatusDelivering,
		Battery:   99.5,
		Autonomy:  1999,
	})
	r.ReportStatus(ctx, 5, core.StatusWaiting)
	r.ReportAnomaly(ctx, 5, "CRITICAL: something")

	msgs := sink.all()
	require.Len(t, msgs, 3)

	assert.Equal(t, topics.UpdateLocation, msgs[0].Topic)
	assert.JSONEq(t, `{"id_car":5,"location_act":{"latitude":41,"longitude":2},
		"status_num":3,"status":"delivering","battery":99.5,"autonomy":1999}`, string(msgs[0].Payload))

	assert.Equal(t, topics.UpdateStatus, msgs[1].Topic)
	assert.JSONEq(t, `{"id_car":5,"status_num":5,"status":"waits"}`, string(msgs[1].Payload))

	assert.Equal(t, topics.ReportAnomaly, msgs[2].Topic)
	assert.JSONEq(t, `{"id_car":5,"result":"ok","description":"CRITICAL: something"}`, string(msgs[2].Payload))
}

func TestReporterIsFireAndForget(t *testing.T) {
	obs := &captured{}
	r := NewReporter(failingBus{}, topics, log.NewNopLogger(), obs)

	assert.NotPanics(t, func() {
		r.ReportStatus(context.Background(), 1, core.StatusLoading)
	})
	assert.Len(t, obs.all(), 1, "observers still see the message")
}

func TestReceiverStartRoute(t *testing.T) {
	ctx := context.Background()
	target := &fakeTarget{id: 5}
	rc := NewReceiver(nil, topics, target, log.NewNopLogger())

	tests := []struct {
		name     string
		payload  string
		accepted bool
	}{
		{"accepted", `{"id_car":5,"order":1,"route":"[[2.0,41.0],[2.1,41.1]]"}`, true},
		{"other vehicle", `{"id_car":6,"order":1,"route":"[[2.0,41.0],[2.1,41.1]]"}`, false},
		{"order not 1", `{"id_car":5,"order":2,"route":"[[2.0,41.0],[2.1,41.1]]"}`, false},
		{"not json", `{"id_car":5`, false},
		{"missing route", `{"id_car":5,"order":1}`, false},
		{"empty route", `{"id_car":5,"order":1,"route":"[]"}`, false},
		{"route not json", `{"id_car":5,"order":1,"route":"nowhere"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target.routes = nil
			rc.HandleStartRoute(ctx, topics.StartRoute, []byte(tt.payload))
			if tt.accepted {
				require.Len(t, target.routes, 1)
				assert.Equal(t, core.Route{{Lon: 2.0, Lat: 41.0}, {Lon: 2.1, Lat: 41.1}}, target.routes[0])
			} else {
				assert.Empty(t, target.routes)
			}
		})
	}
}

func TestReceiverAnomaly(t *testing.T) {
	ctx := context.Background()
	target := &fakeTarget{id: 5}
	rc := NewReceiver(nil, topics, target, log.NewNopLogger())

	rc.HandleAnomaly(ctx, topics.Anomaly, []byte(`{"id_car":5,"hehe":"breakdown"}`))
	rc.HandleAnomaly(ctx, topics.Anomaly, []byte(`{"id_car":6,"hehe":"breakdown"}`))
	rc.HandleAnomaly(ctx, topics.Anomaly, []byte(`{"id_car":5}`))
	rc.HandleAnomaly(ctx, topics.Anomaly, []byte(`garbage`))

	assert.Equal(t, []core.AnomalyKind{core.AnomalyBreakdown}, target.anomaly)
}

func TestReceiverDropsInputForHaltedVehicle(t *testing.T) {
	ctx := context.Background()
	target := &fakeTarget{id: 5, halted: true}
	rc := NewReceiver(nil, topics, target, log.NewNopLogger())

	rc.HandleStartRoute(ctx, topics.StartRoute, []byte(`{"id_car":5,"order":1,"route":"[[2.0,41.0],[2.1,41.1]]"}`))
	rc.HandleAnomaly(ctx, topics.Anomaly, []byte(`{"id_car":5,"hehe":"set_battery_5"}`))

	assert.Empty(t, target.routes)
	assert.Empty(t, target.anomaly)
}

func TestReceiverSubscribe(t *testing.T) {
	ctx := context.Background()
	broker := bus.NewMemoryBroker()
	target := &fakeTarget{id: 5}
	rc := NewReceiver(broker.Session(), topics, target, log.NewNopLogger())
	require.NoError(t, rc.Subscribe(ctx))

	sender := broker.Session()
	payload, err := EncodeStartRoute(core.RouteAssignment{
		VehicleID: 5,
		Order:     1,
		Route:     core.Route{{Lon: 2.0, Lat: 41.0}, {Lon: 2.1, Lat: 41.1}},
	})
	require.NoError(t, err)
	require.NoError(t, sender.Publish(ctx, topics.StartRoute, payload))

	payload, err = EncodeAnomaly(core.AnomalyRequest{VehicleID: 5, Kind: "unncomunicate"})
	require.NoError(t, err)
	require.NoError(t, sender.Publish(ctx, topics.Anomaly, payload))

	require.Len(t, target.routes, 1)
	assert.Len(t, target.routes[0], 2)
	require.Len(t, target.anomaly, 1)
	assert.True(t, target.anomaly[0].IsTerminal())
}
