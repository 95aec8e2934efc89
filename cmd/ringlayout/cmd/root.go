// Package cmd implements the ringlayout command line.
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree
func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "ringlayout",
		Short: "Procedural LED ring layout for KiCad boards",
		Long: `ringlayout places a chain of LED pixels along a helix and three spiral
arms, wires them in series and draws the board outline and guide lines.

Examples:
  ringlayout generate -p ring.kicad_pcb          # lay out and save the board
  ringlayout generate -p ring.kicad_pcb --dry-run
  ringlayout preview ring.kicad_pcb              # watch the board while iterating
  ringlayout nets ring.kicad_pcb GND             # inspect a net`,
		Version:      "0.3.0",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newPreviewCmd())
	root.AddCommand(newNetsCmd())
	return root
}

// Execute runs the command line. Ctrl-C cancels a running layout before
// anything is written.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
