package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/unit"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/pcb"
	"github.com/OpenTraceLab/ringlayout/pkg/kicad/renderer"
)

func newPreviewCmd() *cobra.Command {
	var net string

	cmd := &cobra.Command{
		Use:   "preview <board_file>",
		Short: "Show a board and redraw it whenever it is saved",
		Long: `Opens the board in a window and reloads it each time the file changes, so
a generate run in another terminal shows up immediately.

Controls:
  Left Click / R    - Rotate 90°
  Right Click / F   - Flip board
  Scroll Wheel      - Zoom in/out
  Space             - Fit board to window
  T                 - Next color theme
  1 / 2 / S         - Toggle F.Cu / B.Cu / F.SilkS
  A                 - Show all layers
  Q / Escape        - Quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(loggerFromContext(cmd.Context()), args[0], net)
		},
	}
	cmd.Flags().StringVar(&net, "net", "", "highlight a net")
	return cmd
}

func runPreview(logger *log.Logger, path, net string) error {
	board, err := pcb.ParseFile(path)
	if err != nil {
		return fmt.Errorf("error parsing board: %w", err)
	}
	logger.Info("loaded board", "path", path,
		"footprints", len(board.Footprints), "tracks", len(board.Tracks), "vias", len(board.Vias))

	v := newViewer(board, 1000, 800)
	v.renderer.HighlightNet = net

	w := new(app.Window)
	boards, stop, err := watchBoard(path, logger, w.Invalidate)
	if err != nil {
		return err
	}

	go func() {
		w.Option(app.Title("ringlayout - "+path), app.Size(unit.Dp(1000), unit.Dp(800)))
		err := v.run(w, boards)
		stop()
		if err != nil {
			logger.Error("viewer failed", "err", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
	return nil
}

// viewer holds the view state between frames
type viewer struct {
	board    *pcb.Board
	camera   *renderer.Camera
	renderer *renderer.Renderer
	theme    int
}

func newViewer(board *pcb.Board, width, height int) *viewer {
	camera := renderer.NewCamera(width, height)
	v := &viewer{board: board, camera: camera, renderer: renderer.New(camera)}
	v.fit()
	return v
}

func (v *viewer) fit() {
	if bbox := v.board.GetBoundingBox(); !bbox.IsEmpty() {
		v.camera.Fit(bbox)
	}
}

// handleKey applies a key press and reports whether the window should close
func (v *viewer) handleKey(name key.Name) bool {
	switch name {
	case key.NameEscape, "Q":
		return true
	case "F":
		v.camera.Flip()
	case "R":
		v.camera.Rotate(90)
	case key.NameLeftArrow:
		v.camera.Rotate(-90)
	case key.NameSpace:
		v.fit()
	case "T":
		v.theme = (v.theme + 1) % len(renderer.Themes)
		v.renderer.Theme = renderer.Themes[v.theme]
	case "1":
		v.renderer.Layers.Toggle("F.Cu")
	case "2":
		v.renderer.Layers.Toggle("B.Cu")
	case "S":
		v.renderer.Layers.Toggle("F.SilkS")
	case "A":
		v.renderer.Layers.ShowAll()
	}
	return false
}

// handlePointer rotates, flips or zooms for a click or scroll
func (v *viewer) handlePointer(pe pointer.Event) {
	switch pe.Kind {
	case pointer.Press:
		switch pe.Buttons {
		case pointer.ButtonPrimary:
			v.camera.Rotate(90)
		case pointer.ButtonSecondary:
			v.camera.Flip()
		}
	case pointer.Scroll:
		factor := max(1.0+float64(pe.Scroll.Y)*0.1, 0.1)
		v.camera.ZoomAt(float64(pe.Position.X), float64(pe.Position.Y), factor)
	}
}

func (v *viewer) run(w *app.Window, boards <-chan *pcb.Board) error {
	var ops op.Ops

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			select {
			case b := <-boards:
				v.board = b
			default:
			}

			ops.Reset()
			gtx := layout.Context{
				Ops:         &ops,
				Constraints: layout.Exact(e.Size),
				Metric:      e.Metric,
				Now:         e.Now,
				Source:      e.Source,
			}
			v.camera.UpdateScreenSize(e.Size.X, e.Size.Y)

			for {
				ev, ok := gtx.Event(key.Filter{})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					if v.handleKey(ke.Name) {
						return nil
					}
					w.Invalidate()
				}
			}

			for {
				ev, ok := gtx.Event(pointer.Filter{
					Target:  v,
					Kinds:   pointer.Press | pointer.Scroll,
					ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
				})
				if !ok {
					break
				}
				if pe, ok := ev.(pointer.Event); ok {
					v.handlePointer(pe)
					w.Invalidate()
				}
			}

			area := clip.Rect{Max: e.Size}.Push(gtx.Ops)
			event.Op(gtx.Ops, v)
			area.Pop()

			v.renderer.Render(gtx, v.board)
			e.Frame(&ops)
		}
	}
}

// watchBoard reparses path each time it is written and sends the result on
// the returned channel, calling notify after each send. Save moves the old
// file aside before writing, so the directory is watched rather than the
// file. Boards that fail to parse are logged and skipped.
func watchBoard(path string, logger *log.Logger, notify func()) (<-chan *pcb.Board, func() error, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to watch board: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("failed to watch board: %w", err)
	}

	boards := make(chan *pcb.Board, 1)
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Name != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				board, err := pcb.ParseFile(abs)
				if err != nil {
					logger.Debug("board not readable yet", "err", err)
					continue
				}
				// keep only the newest board
				select {
				case <-boards:
				default:
				}
				boards <- board
				logger.Info("reloaded board", "footprints", len(board.Footprints), "tracks", len(board.Tracks))
				notify()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", "err", err)
			}
		}
	}()
	return boards, watcher.Close, nil
}
