package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSetStatus(t *testing.T) {
	all := []string{"loading", "delivering", "waits"}

	before := testutil.ToFloat64(StatusTransitions.WithLabelValues("delivering"))
	SetStatus(901, "delivering", all)

	assert.Equal(t, 1.0, testutil.ToFloat64(VehicleStatus.WithLabelValues("901", "delivering")))
	assert.Equal(t, 0.0, testutil.ToFloat64(VehicleStatus.WithLabelValues("901", "loading")))
	assert.Equal(t, before+1, testutil.ToFloat64(StatusTransitions.WithLabelValues("delivering")))
}

func TestSetPower(t *testing.T) {
	SetPower(902, 42.5, -3)
	assert.Equal(t, 42.5, testutil.ToFloat64(VehicleBattery.WithLabelValues("902")))
	assert.Equal(t, -3.0, testutil.ToFloat64(VehicleAutonomy.WithLabelValues("902")))
}

func TestRegistryGathers(t *testing.T) {
	SetPower(903, 1, 1)
	n, err := testutil.GatherAndCount(Registry, "vfleet_vehicle_battery_percent")
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
}
