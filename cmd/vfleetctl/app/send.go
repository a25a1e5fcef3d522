package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/autopeer-io/vfleet/cmd/vfleetctl/app/options"
	"github.com/autopeer-io/vfleet/internal/routestore"
	"github.com/autopeer-io/vfleet/internal/simulator/core"
	"github.com/autopeer-io/vfleet/internal/simulator/telemetry"
	"github.com/autopeer-io/vfleet/pkg/log"
)

const sendTimeout = 30 * time.Second

// routeSource selects where a route is read from.
type routeSource struct {
	file     string
	s3Object string
}

func (s *routeSource) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.file, "file", "", "Local JSON file with the route: [[lon, lat], ...].")
	cmd.Flags().StringVar(&s.s3Object, "s3-object", "", "Key of the route object in the S3 bucket.")
	cmd.MarkFlagsMutuallyExclusive("file", "s3-object")
	cmd.MarkFlagsOneRequired("file", "s3-object")
}

func (s *routeSource) load(ctx context.Context, opts *options.CtlOptions) (core.Route, error) {
	if s.file != "" {
		return routestore.File{}.Load(ctx, s.file)
	}
	store, err := opts.Store()
	if err != nil {
		return nil, err
	}
	return store.Load(ctx, s.s3Object)
}

func newRouteCommand(opts *options.CtlOptions) *cobra.Command {
	var (
		vehicle int
		order   int
		src     routeSource
	)

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Assign a route to a vehicle",
		Example: `  vfleetctl route --vehicle 5 --file route.json
  vfleetctl route --vehicle 5 --s3-object depot-a/route-1.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout)
			defer cancel()

			route, err := src.load(ctx, opts)
			if err != nil {
				return err
			}
			payload, err := telemetry.EncodeStartRoute(core.RouteAssignment{VehicleID: vehicle, Order: order, Route: route})
			if err != nil {
				return err
			}

			topic := telemetry.NewTopics(opts.BusOptions.Namespace).StartRoute
			if err := send(ctx, opts, topic, payload); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "route with %d vertices sent to vehicle %d\n", len(route), vehicle)
			return nil
		},
	}

	cmd.Flags().IntVar(&vehicle, "vehicle", 0, "Id of the target vehicle.")
	cmd.Flags().IntVar(&order, "order", 1, "Order number; vehicles only start on order 1.")
	_ = cmd.MarkFlagRequired("vehicle")
	src.addFlags(cmd)
	return cmd
}

func newAnomalyCommand(opts *options.CtlOptions) *cobra.Command {
	var (
		vehicle int
		kind    string
	)

	cmd := &cobra.Command{
		Use:   "anomaly",
		Short: "Inject an anomaly into a vehicle",
		Long: `Inject an anomaly into a vehicle. Known kinds are set_battery_10,
set_battery_5, breakdown and uncommunicative; any other kind is acknowledged
by the vehicle without effect.`,
		Example: "  vfleetctl anomaly --vehicle 5 --kind breakdown",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout)
			defer cancel()

			payload, err := telemetry.EncodeAnomaly(core.AnomalyRequest{VehicleID: vehicle, Kind: core.AnomalyKind(kind)})
			if err != nil {
				return err
			}

			topic := telemetry.NewTopics(opts.BusOptions.Namespace).Anomaly
			if err := send(ctx, opts, topic, payload); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "anomaly %q sent to vehicle %d\n", kind, vehicle)
			return nil
		},
	}

	cmd.Flags().IntVar(&vehicle, "vehicle", 0, "Id of the target vehicle.")
	cmd.Flags().StringVar(&kind, "kind", "", "Anomaly kind.")
	_ = cmd.MarkFlagRequired("vehicle")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

// send publishes one message on a short-lived session.
func send(ctx context.Context, opts *options.CtlOptions, topic string, payload []byte) error {
	session, err := opts.Session()
	if err != nil {
		return err
	}
	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("failed to connect to the bus: %w", err)
	}
	defer func() {
		if err := session.Close(context.Background()); err != nil {
			log.Error(err, "Failed to close bus session")
		}
	}()

	if err := session.Publish(ctx, topic, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	log.Debug("Message sent", "topic", topic, "bytes", len(payload))
	return nil
}
