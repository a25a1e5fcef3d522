package app

import (
	"github.com/autopeer-io/vfleet/cmd/vfleetctl/app/options"
	"github.com/autopeer-io/vfleet/pkg/app"
	"github.com/autopeer-io/vfleet/pkg/log"
)

const (
	commandName = "vfleetctl"
	commandDesc = `vfleetctl sends one-shot commands to a running vfleet-sim fleet:
route assignments and anomaly injections. It can also watch the updates the
fleet publishes, inspect route files and upload them to the route bucket.`
)

func NewApp() *app.App {
	opts := options.NewCtlOptions()
	return app.NewApp(
		commandName,
		"Send commands to simulated delivery vehicles",
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithLogOptions(func() *log.Options { return opts.Log }),
		app.WithSubCommands(
			newRouteCommand(opts),
			newAnomalyCommand(opts),
			newInspectCommand(opts),
			newUploadCommand(opts),
			newWatchCommand(opts),
		),
	)
}
