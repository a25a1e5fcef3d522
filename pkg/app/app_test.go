package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/vfleet/pkg/options"
)

type testOptions struct {
	Sim *options.SimOptions `json:"sim" mapstructure:"sim"`
	Bus *options.BusOptions `json:"bus" mapstructure:"bus"`

	completed bool
}

func (o *testOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.Sim.AddFlags(fss.FlagSet("sim"))
	o.Bus.AddFlags(fss.FlagSet("bus"))
	return fss
}

func (o *testOptions) Complete() error {
	o.completed = true
	return nil
}

func (o *testOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.Sim.Validate()...)
	errs = append(errs, o.Bus.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func newTestOptions() *testOptions {
	return &testOptions{Sim: options.NewSimOptions(), Bus: options.NewBusOptions()}
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestAppMergesFlagsEnvAndConfig(t *testing.T) {
	dir := chdirTemp(t)
	cfg := filepath.Join(dir, "sim.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("bus:\n  namespace: TESTNS\nsim:\n  speed: 0.2\n"), 0o600))
	t.Setenv("VFLEET_SIM_VEHICLES", "3")

	opts := newTestOptions()
	ran := false
	a := NewApp("vfleet-test", "test",
		WithOptions(opts),
		WithDefaultValidArgs(),
		WithRunFunc(func() error {
			ran = true
			return nil
		}),
	)

	cmd := a.Command()
	cmd.SetArgs([]string{"--config", cfg, "--sim.anomaly-policy=cycle"})
	require.NoError(t, cmd.Execute())

	assert.True(t, ran)
	assert.True(t, opts.completed)
	assert.Equal(t, 3, opts.Sim.Vehicles)
	assert.Equal(t, 0.2, opts.Sim.Speed)
	assert.Equal(t, "cycle", opts.Sim.AnomalyPolicy)
	assert.Equal(t, "TESTNS", opts.Bus.Namespace)
}

func TestAppRejectsInvalidOptions(t *testing.T) {
	chdirTemp(t)

	ran := false
	a := NewApp("vfleet-test", "test",
		WithOptions(newTestOptions()),
		WithRunFunc(func() error {
			ran = true
			return nil
		}),
	)

	cmd := a.Command()
	cmd.SetArgs([]string{"--sim.vehicles=0"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--sim.vehicles")
	assert.False(t, ran)
}

func TestAppLoadsDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VFLEET_BUS_BACKEND=memory\n"), 0o600))
	t.Setenv("VFLEET_BUS_BACKEND", "")
	os.Unsetenv("VFLEET_BUS_BACKEND")

	opts := newTestOptions()
	a := NewApp("vfleet-test", "test", WithOptions(opts), WithRunFunc(func() error { return nil }))

	cmd := a.Command()
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, options.BusMemory, opts.Bus.Backend)
}

func TestDefaultValidArgs(t *testing.T) {
	chdirTemp(t)

	a := NewApp("vfleet-test", "test", WithDefaultValidArgs(), WithRunFunc(func() error { return nil }))
	cmd := a.Command()
	cmd.SetArgs([]string{"unexpected"})
	assert.Error(t, cmd.Execute())
}
