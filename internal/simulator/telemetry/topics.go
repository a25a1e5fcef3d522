package telemetry

import (
	"github.com/autopeer-io/vfleet/internal/pkg/mqtt/paths"
	"github.com/autopeer-io/vfleet/pkg/mqtt/topic"
)

// Topics holds the full topic names of the fleet protocol.
type Topics struct {
	StartRoute     string
	Anomaly        string
	UpdateLocation string
	UpdateStatus   string
	ReportAnomaly  string
}

// NewTopics resolves the protocol topics under namespace.
func NewTopics(namespace string) Topics {
	b := topic.NewBuilder(namespace)
	return Topics{
		StartRoute:     b.Build(paths.StartRoute),
		Anomaly:        b.Build(paths.Anomaly),
		UpdateLocation: b.Build(paths.UpdateLocation),
		UpdateStatus:   b.Build(paths.UpdateStatus),
		ReportAnomaly:  b.Build(paths.ReportAnomaly),
	}
}
