package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/OpenTraceLab/ringlayout/internal/board"
	"github.com/OpenTraceLab/ringlayout/pkg/kicad/pcb"
	"github.com/OpenTraceLab/ringlayout/pkg/layout"
)

const fixture = "testdata/ring.kicad_pcb"

// copyFixture copies the test board into a temporary directory
func copyFixture(t *testing.T) (path string, original []byte) {
	t.Helper()
	data, err := os.ReadFile(fixture)
	if err != nil {
		t.Fatal(err)
	}
	path = filepath.Join(t.TempDir(), "ring.kicad_pcb")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path, data
}

// run executes the command line and returns stdout and stderr
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func nodeCount(t *testing.T, path string) int {
	t.Helper()
	doc, err := pcb.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	fps, err := doc.Footprints(board.NodePattern("D"))
	if err != nil {
		t.Fatal(err)
	}
	return len(fps)
}

func TestGenerate(t *testing.T) {
	path, original := copyFixture(t)

	_, stderr, err := run(t, "generate", "-p", path, "--footprint-path", "testdata")
	if err != nil {
		t.Fatalf("generate error: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "saved board") {
		t.Errorf("log does not report the save:\n%s", stderr)
	}

	backup, err := os.ReadFile(path + pcb.BackupSuffix)
	if err != nil {
		t.Fatalf("no backup: %v", err)
	}
	if !bytes.Equal(backup, original) {
		t.Error("backup differs from the original board")
	}

	b, err := pcb.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if b.GetFootprint("J1") == nil {
		t.Error("unrelated footprint J1 was removed")
	}
	if n := nodeCount(t, path); n < 100 {
		t.Errorf("placed %d nodes, want a full ring", n)
	}
	for _, fp := range b.Footprints {
		if board.NodePattern("D").MatchString(fp.Reference) && !fp.ReferenceHidden {
			t.Fatalf("%s reference is visible", fp.Reference)
		}
	}

	var edges int
	for _, c := range b.Graphics.Circles {
		if c.Layer == layout.LayerEdgeCuts {
			edges++
		}
	}
	if edges != 1 {
		t.Errorf("board has %d outline circles, want 1", edges)
	}
	if len(b.GetNetVias("GND")) < 100 {
		t.Errorf("GND has %d vias, want one per node", len(b.GetNetVias("GND")))
	}
}

func TestGenerateTwiceReplacesNodes(t *testing.T) {
	path, _ := copyFixture(t)

	for i := 0; i < 2; i++ {
		if _, stderr, err := run(t, "generate", "-p", path, "--footprint-path", "testdata", "--delete-all-traces"); err != nil {
			t.Fatalf("run %d: %v\n%s", i, err, stderr)
		}
	}
	first := nodeCount(t, path+pcb.BackupSuffix)
	if second := nodeCount(t, path); second != first {
		t.Errorf("second run has %d nodes, first had %d", second, first)
	}
}

func TestGenerateDryRun(t *testing.T) {
	path, original := copyFixture(t)

	if _, stderr, err := run(t, "generate", "-p", path, "--footprint-path", "testdata", "--dry-run"); err != nil {
		t.Fatalf("generate error: %v\n%s", err, stderr)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, original) {
		t.Error("dry run changed the board")
	}
	if _, err := os.Stat(path + pcb.BackupSuffix); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("dry run left a backup: %v", err)
	}
}

func TestGenerateDeleteAllDrawings(t *testing.T) {
	path, _ := copyFixture(t)

	if _, stderr, err := run(t, "generate", "-p", path, "--delete-all-drawings", "--delete-all-traces"); err != nil {
		t.Fatalf("generate error: %v\n%s", err, stderr)
	}
	b, err := pcb.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := []int{len(b.Graphics.Lines), len(b.Graphics.Circles), len(b.Tracks), len(b.Vias)}
	if diff := cmp.Diff([]int{0, 0, 0, 0}, got); diff != "" {
		t.Errorf("lines, circles, tracks, vias left (-want +got):\n%s", diff)
	}
	// the layout is skipped, so the old nodes stay
	if n := nodeCount(t, path); n != 2 {
		t.Errorf("nodes = %d, want the 2 already on the board", n)
	}
}

func TestGenerateHideReferenceLabels(t *testing.T) {
	path, _ := copyFixture(t)

	if _, stderr, err := run(t, "generate", "-p", path, "--delete-all-drawings", "--hide-reference-labels"); err != nil {
		t.Fatalf("generate error: %v\n%s", err, stderr)
	}
	b, err := pcb.ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, ref := range []string{"D1", "D2"} {
		if fp := b.GetFootprint(ref); fp == nil || !fp.ReferenceHidden {
			t.Errorf("%s reference not hidden", ref)
		}
	}
	if fp := b.GetFootprint("J1"); fp == nil || fp.ReferenceHidden {
		t.Error("J1 reference should stay visible")
	}
}

func TestGenerateErrors(t *testing.T) {
	path, original := copyFixture(t)
	missing := filepath.Join(t.TempDir(), "nope.toml")

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"short traces refused", []string{"--delete-short-traces"}, pcb.ErrUnsafeOperation},
		{"missing config", []string{"--config", missing}, os.ErrNotExist},
		{"missing footprint", []string{"--footprint-path", t.TempDir()}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"generate", "-p", path}, tt.args...)
			_, _, err := run(t, args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}

			data, _ := os.ReadFile(path)
			if !bytes.Equal(data, original) {
				t.Error("failed run changed the board")
			}
		})
	}
}

func TestGenerateShortTracesRefusedBeforeLoading(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.kicad_pcb")

	_, _, err := run(t, "generate", "-p", missing, "--delete-short-traces")
	if !errors.Is(err, pcb.ErrUnsafeOperation) {
		t.Fatalf("error = %v, want ErrUnsafeOperation", err)
	}
	if errors.Is(err, os.ErrNotExist) {
		t.Error("board was loaded before the flag was refused")
	}
}

func TestGenerateRequiresPath(t *testing.T) {
	if _, _, err := run(t, "generate"); err == nil {
		t.Error("generate without --path should fail")
	}
}

func TestNetsList(t *testing.T) {
	stdout, _, err := run(t, "nets", fixture)
	if err != nil {
		t.Fatalf("nets error: %v", err)
	}
	if !strings.HasPrefix(stdout, "Board: 3 nets") {
		t.Errorf("header = %q", strings.SplitN(stdout, "\n", 2)[0])
	}
	for _, name := range []string{"+5V", "GND", "Net-(D1-Pad2)"} {
		if !strings.Contains(stdout, name) {
			t.Errorf("listing is missing %s:\n%s", name, stdout)
		}
	}
}

func TestNetDetails(t *testing.T) {
	stdout, _, err := run(t, "nets", fixture, "GND")
	if err != nil {
		t.Fatalf("nets error: %v", err)
	}
	for _, want := range []string{"Net: GND (number 2)", "Tracks (1,", "Vias (1):", "J1 pad 1"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("details missing %q:\n%s", want, stdout)
		}
	}

	if _, _, err := run(t, "nets", fixture, "VBUS"); err == nil {
		t.Error("unknown net should fail")
	}
}

func TestViewerKeys(t *testing.T) {
	b, err := pcb.ParseFile(fixture)
	if err != nil {
		t.Fatal(err)
	}
	v := newViewer(b, 800, 600)

	if v.handleKey("R") || v.camera.Rotation != 90 {
		t.Errorf("R: rotation = %v", v.camera.Rotation)
	}
	v.handleKey("F")
	if !v.camera.FlipView {
		t.Error("F did not flip the view")
	}
	v.handleKey("T")
	if v.renderer.Theme.Name == "" || v.theme != 1 {
		t.Errorf("T: theme index = %d", v.theme)
	}
	v.handleKey("1")
	if v.renderer.Layers.IsVisible("F.Cu") {
		t.Error("1 did not hide F.Cu")
	}
	v.handleKey("A")
	if !v.renderer.Layers.IsVisible("F.Cu") {
		t.Error("A did not show all layers")
	}
	if !v.handleKey("Q") {
		t.Error("Q should close the viewer")
	}
}

func TestWatchBoard(t *testing.T) {
	path, original := copyFixture(t)

	notified := make(chan struct{}, 4)
	boards, stop, err := watchBoard(path, log.New(&bytes.Buffer{}), func() { notified <- struct{}{} })
	if err != nil {
		t.Fatalf("watchBoard() error: %v", err)
	}
	defer stop()

	edited := bytes.Replace(original, []byte(`reference "J1"`), []byte(`reference "J9"`), 1)
	if err := os.WriteFile(path, edited, 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case b := <-boards:
		if b.GetFootprint("J9") == nil {
			t.Error("reloaded board does not carry the edit")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after the board was written")
	}
	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Error("notify was not called")
	}
}
