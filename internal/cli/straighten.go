package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	mapio "github.com/jbaarsen/metromap/pkg/io"
	"github.com/jbaarsen/metromap/pkg/layout/straighten"
	"github.com/jbaarsen/metromap/pkg/metro"
)

// straightenCommand creates the straighten command for flattening one line
// section of an already laid-out map.
func (c *CLI) straightenCommand() *cobra.Command {
	var (
		output  string
		station int
	)
	sf := &settingsFlags{}

	cmd := &cobra.Command{
		Use:   "straighten <map.json>",
		Short: "Straighten the line section around a station",
		Long: `Straighten the line section around a station.

Starting from --station, the section is traced outward in both directions
until a junction, endpoint, or locked station. The whole section is then
moved onto one straight run, pass-through stations spread evenly along it,
and edges into the rest of the map re-routed.

The input should already be laid out; run 'layout' first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := sf.load(cmd)
			if err != nil {
				return err
			}

			m, err := mapio.ImportJSON(args[0])
			if err != nil {
				return fmt.Errorf("load map %s: %w", args[0], err)
			}

			sec, ok := metro.TraceSection(m, metro.StationID(station))
			if !ok {
				return fmt.Errorf("station %d has no straightenable section: it must be an unlocked pass-through station", station)
			}
			sel := metro.Selection{Stations: sec.Stations(), Edges: sec.Edges}

			prog := newProgress(c.Logger)
			got, err := straighten.Straighten(m, sel, settings.RouteParams(m), c.Logger)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Straightened section of %d stations", len(sel.Stations)))

			outputPath := output
			if outputPath == "" {
				outputPath = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".straight.json"
			}
			if err := mapio.ExportJSON(got, outputPath); err != nil {
				return fmt.Errorf("write output %s: %w", outputPath, err)
			}

			printSuccess("Straightened %d stations", len(sel.Stations))
			printFile(outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.straight.json)")
	cmd.Flags().IntVar(&station, "station", 0, "station id to trace the section from")
	_ = cmd.MarkFlagRequired("station")
	sf.register(cmd)

	return cmd
}
