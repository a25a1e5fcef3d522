package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/autopeer-io/vfleet/cmd/vfleetctl/app/options"
	"github.com/autopeer-io/vfleet/internal/simulator/telemetry"
	"github.com/autopeer-io/vfleet/pkg/log"
)

func newWatchCommand(opts *options.CtlOptions) *cobra.Command {
	var (
		vehicle int
		count   int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the updates published by the fleet",
		Long: `Subscribe to the location, status and anomaly report topics and print
one line per message until interrupted.`,
		Example: `  vfleetctl watch
  vfleetctl watch --vehicle 5 --count 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, opts, cmd.OutOrStdout(), vehicle, count)
		},
	}

	cmd.Flags().IntVar(&vehicle, "vehicle", 0, "Only print updates of this vehicle. 0 prints every vehicle.")
	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many messages. 0 never exits.")
	return cmd
}

func watch(ctx context.Context, opts *options.CtlOptions, out io.Writer, vehicle, count int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session, err := opts.Session()
	if err != nil {
		return err
	}
	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("failed to connect to the bus: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := session.Close(closeCtx); err != nil {
			log.Error(err, "Failed to close bus session")
		}
	}()

	var (
		mu      sync.Mutex
		printed int
	)
	handler := func(_ context.Context, topic string, payload []byte) {
		line, id, err := formatUpdate(topic, payload)
		if err != nil {
			log.Warn("Skipping malformed update", "topic", topic, "error", err)
			return
		}
		if vehicle != 0 && id != vehicle {
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if count > 0 && printed >= count {
			return
		}
		fmt.Fprintln(out, line)
		printed++
		if count > 0 && printed == count {
			cancel()
		}
	}

	topics := telemetry.NewTopics(opts.BusOptions.Namespace)
	for _, t := range []string{topics.UpdateLocation, topics.UpdateStatus, topics.ReportAnomaly} {
		if err := session.Subscribe(ctx, t, handler); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", t, err)
		}
	}

	<-ctx.Done()
	return nil
}

// formatUpdate renders one outbound fleet message as a single line and
// returns the vehicle it belongs to.
func formatUpdate(topic string, payload []byte) (string, int, error) {
	var probe struct {
		VehicleID int             `json:"id_car"`
		Location  json.RawMessage `json:"location_act"`
		Result    string          `json:"result"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return "", 0, err
	}

	switch {
	case probe.Location != nil:
		var m telemetry.LocationMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return "", 0, err
		}
		return fmt.Sprintf("[%d] %-10s lon=%.6f lat=%.6f battery=%.2f autonomy=%.2f",
			m.VehicleID, m.Status, m.Location.Longitude, m.Location.Latitude, m.Battery, m.Autonomy), m.VehicleID, nil
	case probe.Result != "":
		var m telemetry.AnomalyReport
		if err := json.Unmarshal(payload, &m); err != nil {
			return "", 0, err
		}
		return fmt.Sprintf("[%d] anomaly    %s", m.VehicleID, m.Description), m.VehicleID, nil
	default:
		var m telemetry.StatusMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			return "", 0, err
		}
		if m.Status == "" {
			return "", 0, fmt.Errorf("unknown update on %s", topic)
		}
		return fmt.Sprintf("[%d] status     %s (%d)", m.VehicleID, m.Status, m.StatusNum), m.VehicleID, nil
	}
}
