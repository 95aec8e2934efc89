package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ringlayout/internal/board"
	"github.com/OpenTraceLab/ringlayout/internal/config"
	"github.com/OpenTraceLab/ringlayout/pkg/kicad/footprint"
	"github.com/OpenTraceLab/ringlayout/pkg/kicad/pcb"
	"github.com/OpenTraceLab/ringlayout/pkg/layout"
)

type generateOptions struct {
	path           string
	configPath     string
	footprintPaths []string

	deleteAllTraces   bool
	deleteAllDrawings bool
	deleteShortTraces bool
	dryRun            bool
	skipTraces        bool
	hideReferences    bool
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Lay out the LED ring on a board",
		Long: `Removes the nodes and outline of a previous run, places and wires a new
ring and saves the board. The previous file is kept next to it with a
.layoutbak suffix.

Maintenance flags:
  --delete-all-traces     remove every track and via, then lay out
  --delete-all-drawings   remove every board drawing and skip the layout
  --delete-short-traces   refused; exits with an error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.path, "path", "p", "", "path to the .kicad_pcb file")
	f.StringVarP(&opts.configPath, "config", "c", "", "TOML layout configuration")
	f.StringSliceVar(&opts.footprintPaths, "footprint-path", nil, "directories holding .pretty libraries, searched before the configured ones")
	f.BoolVar(&opts.deleteAllTraces, "delete-all-traces", false, "delete every track and via before laying out")
	f.BoolVar(&opts.deleteAllDrawings, "delete-all-drawings", false, "delete every board drawing and skip the layout")
	f.BoolVar(&opts.deleteShortTraces, "delete-short-traces", false, "delete traces of zero or very small length (refused)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "do not save the board")
	f.BoolVar(&opts.skipTraces, "skip-traces", false, "place nodes without traces or vias")
	f.BoolVar(&opts.hideReferences, "hide-reference-labels", false, "hide the reference text of every node footprint")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}

func runGenerate(ctx context.Context, opts generateOptions) error {
	logger := loggerFromContext(ctx)

	// refused before anything is read so a bad path cannot mask it
	if opts.deleteShortTraces {
		return fmt.Errorf("%w: deleting short traces is not supported", pcb.ErrUnsafeOperation)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	cfg.Footprint.Paths = slices.Concat(opts.footprintPaths, cfg.Footprint.Paths)

	doc, err := pcb.Load(opts.path)
	if err != nil {
		return err
	}
	logger.Info("loaded board", "path", opts.path)

	if opts.deleteAllTraces {
		logger.Info("deleted tracks", "count", doc.DeleteTracks())
	}

	switch {
	case opts.deleteAllDrawings:
		logger.Info("deleted drawings", "count", doc.DeleteDrawings())
	default:
		if err := layoutRing(ctx, logger, doc, cfg, opts.skipTraces); err != nil {
			return err
		}
	}

	if opts.hideReferences {
		n := doc.HideReferences(board.NodePattern(cfg.Footprint.Prefix))
		logger.Info("hid reference labels", "count", n)
	}

	if opts.dryRun {
		logger.Info("dry run, board not saved")
		return nil
	}
	if err := doc.Save(); err != nil {
		return err
	}
	logger.Info("saved board", "path", doc.Path, "backup", doc.Path+pcb.BackupSuffix)
	return nil
}

// layoutRing clears the previous run off doc and commits a new one
func layoutRing(ctx context.Context, logger *log.Logger, doc *pcb.Document, cfg config.Config, skipTraces bool) error {
	fp, err := footprint.NewLibrary(cfg.Footprint.Paths...).Lookup(cfg.Footprint.Library, cfg.Footprint.Name)
	if err != nil {
		return err
	}

	cleared := board.Clear(doc, cfg.Footprint.Prefix)
	logger.Debug("cleared previous layout", "footprints", cleared.Footprints, "drawings", cleared.Drawings)

	params := cfg.HelixParams()
	params.Wiring.SkipTraces = skipTraces

	prog := newProgress(logger)
	ledger := layout.NewLedger(cfg.Footprint.Prefix)
	gen := layout.NewHelixLoop(params, board.NodeTemplate(fp, cfg.Footprint.FixedNets), layout.WithLogger(logger))
	sum, err := gen.Run(ctx, ledger)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("layout cancelled, board left unchanged: %w", err)
		}
		return err
	}
	prog.done("laid out ring",
		"nodes", sum.Nodes, "merged", sum.Merged,
		"traces", sum.Traces, "vias", sum.Vias, "guides", sum.Guides)
	if sum.ClipFailures > 0 {
		logger.Warn("some guide lines were skipped", "count", sum.ClipFailures)
	}

	st, err := board.NewCommitter(doc, fp, logger).Commit(ledger)
	if err != nil {
		return err
	}
	logger.Info("committed layout",
		"footprints", st.Footprints, "tracks", st.Traces, "vias", st.Vias,
		"drawings", st.Drawings, "new nets", st.Nets)
	return nil
}
