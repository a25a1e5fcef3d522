package app

import (
	"fmt"

	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/autopeer-io/vfleet/cmd/vfleet-sim/app/options"
	"github.com/autopeer-io/vfleet/pkg/app"
	"github.com/autopeer-io/vfleet/pkg/log"
)

const (
	commandName = "vfleet-sim"
	commandDesc = `vfleet-sim runs a fleet of simulated autonomous delivery vehicles.
Each vehicle waits for a route on the message bus, drives it out and back,
and reports its position, battery and status on every tick. Anomalies can be
injected over the bus to drain the battery or break a vehicle down.`
)

func NewApp() *app.App {
	opts := options.NewSimulatorOptions()
	application := app.NewApp(
		commandName,
		"Run a fleet of simulated delivery vehicles",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithLogOptions(func() *log.Options { return opts.Log }),
		app.WithWatchConfig(),
		app.WithDefaultValidArgs(),
		app.WithRunFunc(run(opts)),
	)
	return application
}

func run(opts *options.SimulatorOptions) app.RunFunc {
	return func() error {
		defer log.Sync()
		ctx := genericapiserver.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		fleet, err := cfg.NewFleet()
		if err != nil {
			return fmt.Errorf("failed to create fleet: %w", err)
		}

		return fleet.Run(ctx)
	}
}
