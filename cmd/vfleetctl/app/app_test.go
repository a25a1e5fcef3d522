package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/vfleet/internal/simulator/core"
	"github.com/autopeer-io/vfleet/internal/simulator/telemetry"
	"github.com/autopeer-io/vfleet/internal/simulator/vehicle"
)

func writeRoute(t *testing.T, text string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "route.json")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestRenderRoute(t *testing.T) {
	var buf bytes.Buffer
	route := core.Route{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 3}, {Lon: 4, Lat: 3}}
	renderRoute(&buf, route, 0.5)

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Contains(t, lines[0], "HEADING")
	assert.Contains(t, lines[2], "3.000000")
	assert.Contains(t, lines[3], "7.000000")
	assert.Contains(t, out, "~14 ticks per leg")
	assert.Contains(t, out, "battery after round trip -40.00%")
}

func TestInspectCommand(t *testing.T) {
	path := writeRoute(t, `[[2.0, 41.0], [2.1, 41.1]]`)

	cmd := NewApp().Command()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"inspect", "--file", path})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "41.100000")
	assert.Contains(t, out.String(), "ticks per leg")
}

func TestRouteCommandNeedsSource(t *testing.T) {
	writeRoute(t, `[]`)

	cmd := NewApp().Command()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"route", "--vehicle", "5"})
	assert.Error(t, cmd.Execute())
}

func TestRouteCommandRejectsEmptyRoute(t *testing.T) {
	path := writeRoute(t, `[]`)

	cmd := NewApp().Command()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"route", "--vehicle", "5", "--file", path})
	err := cmd.Execute()
	assert.ErrorIs(t, err, core.ErrEmptyRoute)
}

func TestMemoryBackendRejected(t *testing.T) {
	path := writeRoute(t, `[[0, 0], [0, 1]]`)

	cmd := NewApp().Command()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"route", "--vehicle", "5", "--file", path, "--bus.backend", "memory"})
	assert.Error(t, cmd.Execute())
}

func TestFormatUpdate(t *testing.T) {
	marshal := func(v any) []byte {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return b
	}

	location := telemetry.NewLocationMessage(core.Telemetry{
		VehicleID: 5,
		Position:  core.Coordinate{Lon: 2.1, Lat: 41.1},
		Status:    core.StatusDelivering,
		Battery:   97.5,
		Autonomy:  48.75,
	})
	line, id, err := formatUpdate("PTIN2023/CAR/UPDATELOCATION", marshal(location))
	require.NoError(t, err)
	assert.Equal(t, 5, id)
	assert.Contains(t, line, "lon=2.100000 lat=41.100000")
	assert.Contains(t, line, "battery=97.50")

	line, id, err = formatUpdate("PTIN2023/CAR/UPDATESTATUS", marshal(telemetry.NewStatusMessage(3, core.StatusAlert)))
	require.NoError(t, err)
	assert.Equal(t, 3, id)
	assert.Contains(t, line, "(7)")

	report := telemetry.NewAnomalyReport(3, vehicle.Description(core.AnomalyBreakdown))
	line, _, err = formatUpdate("PTIN2023/CAR/REPORTANOMALIA", marshal(report))
	require.NoError(t, err)
	assert.Contains(t, line, "technician")

	_, _, err = formatUpdate("PTIN2023/CAR/UPDATESTATUS", []byte(`{"id_car": 3}`))
	assert.Error(t, err)
	_, _, err = formatUpdate("PTIN2023/CAR/UPDATESTATUS", []byte(`not json`))
	assert.Error(t, err)
}
