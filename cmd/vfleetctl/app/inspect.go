package app

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/autopeer-io/vfleet/cmd/vfleetctl/app/options"
	"github.com/autopeer-io/vfleet/internal/simulator/core"
	"github.com/autopeer-io/vfleet/internal/simulator/geometry"
	"github.com/autopeer-io/vfleet/internal/simulator/power"
	pkgoptions "github.com/autopeer-io/vfleet/pkg/options"
)

func newInspectCommand(opts *options.CtlOptions) *cobra.Command {
	var (
		src  routeSource
		step float64
	)
	sim := pkgoptions.NewSimOptions()

	cmd := &cobra.Command{
		Use:     "inspect",
		Short:   "Print the vertices, distances and headings of a route",
		Example: "  vfleetctl inspect --file route.json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout)
			defer cancel()

			route, err := src.load(ctx, opts)
			if err != nil {
				return err
			}
			renderRoute(cmd.OutOrStdout(), route, step)
			return nil
		},
	}

	src.addFlags(cmd)
	cmd.Flags().Float64Var(&step, "step", sim.Speed*sim.StepDelta, "Distance covered per tick, for the tick estimate.")
	return cmd
}

// renderRoute prints one row per vertex followed by a round trip estimate.
func renderRoute(w io.Writer, route core.Route, step float64) {
	table := uitable.New()
	table.MaxColWidth = 40
	table.AddRow("#", "LON", "LAT", "SEGMENT", "TOTAL", "HEADING")

	total := 0.0
	for i, p := range route {
		segment, heading := 0.0, "-"
		if i > 0 {
			segment = geometry.Distance(route[i-1], p)
			total += segment
			heading = string(geometry.Heading(route[i-1], p))
		}
		table.AddRow(i,
			fmt.Sprintf("%.6f", p.Lon),
			fmt.Sprintf("%.6f", p.Lat),
			fmt.Sprintf("%.6f", segment),
			fmt.Sprintf("%.6f", total),
			heading,
		)
	}
	fmt.Fprintln(w, table)

	ticks := 0
	if step > 0 {
		ticks = int(math.Ceil(total / step))
	}
	after := power.NewState().Consume(2 * total)
	fmt.Fprintf(w, "\nleg length %.6f, ~%d ticks per leg, battery after round trip %.2f%%\n", total, ticks, after.Battery)
}
