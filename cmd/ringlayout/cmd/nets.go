package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/pcb"
)

func newNetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nets <board_file> [net_name]",
		Short: "Show board net information",
		Long: `Without net_name: lists every net with its pad, track and via counts.
With net_name: shows the pads, tracks and vias of that net.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := pcb.ParseFile(args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				return showNetDetails(cmd.OutOrStdout(), board, args[1])
			}
			listAllNets(cmd.OutOrStdout(), board)
			return nil
		},
	}
}

func listAllNets(w io.Writer, board *pcb.Board) {
	names := board.GetAllNetNames()
	sort.Strings(names)

	fmt.Fprintf(w, "Board: %d nets\n\n", len(names))
	fmt.Fprintf(w, "%-30s %6s %6s %6s %9s\n", "Net Name", "Pads", "Tracks", "Vias", "Length")
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────────")

	for _, name := range names {
		info := board.GetNetInfo(name)
		if info == nil {
			continue
		}
		fmt.Fprintf(w, "%-30s %6d %6d %6d %9.2f\n",
			name, len(info.Pads), len(info.Tracks), len(info.Vias), info.TrackLength())
	}
}

func showNetDetails(w io.Writer, board *pcb.Board, netName string) error {
	info := board.GetNetInfo(netName)
	if info == nil {
		return fmt.Errorf("net %q not found", netName)
	}

	fmt.Fprintf(w, "Net: %s (number %d)\n\n", info.Net.Name, info.Net.Number)

	fmt.Fprintf(w, "Pads (%d):\n", len(info.Pads))
	for _, p := range info.Pads {
		fmt.Fprintf(w, "  %s pad %-4s: %s %.2f×%.2f mm at (%.2f, %.2f)\n",
			p.Reference, p.Pad.Number, p.Pad.Shape,
			p.Pad.Size.Width, p.Pad.Size.Height,
			p.Position.X, p.Position.Y)
	}

	fmt.Fprintf(w, "\nTracks (%d, %.2f mm):\n", len(info.Tracks), info.TrackLength())
	for i, t := range info.Tracks {
		fmt.Fprintf(w, "  Track %d: %.2f mm wide on %s from (%.2f, %.2f) to (%.2f, %.2f)\n",
			i+1, t.Width, t.Layer, t.Start.X, t.Start.Y, t.End.X, t.End.Y)
	}

	fmt.Fprintf(w, "\nVias (%d):\n", len(info.Vias))
	for i, v := range info.Vias {
		fmt.Fprintf(w, "  Via %d: %.2f mm diameter, %.2f mm drill at (%.2f, %.2f)\n",
			i+1, v.Size, v.Drill, v.Position.X, v.Position.Y)
	}
	return nil
}
