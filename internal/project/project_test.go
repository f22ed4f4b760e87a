package project

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"photomark/internal/editor"
	"photomark/pkg/geometry"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	e := editor.NewEngine()
	e.SetImage(editor.BaseImage{Src: "/photos/shot.png"}, 800, 600)
	e.AddTextWatermark("hello", editor.AnchorBottomRight, editor.Patch{})
	e.AddFrame(editor.Patch{BorderWidth: editor.Float(12)})
	e.SetZoom(1.5)

	path := filepath.Join(t.TempDir(), "session.pmproj")
	proj := New("session")
	proj.Snapshot(path, e)
	if err := proj.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Name != "session" || loaded.Version != 1 {
		t.Fatalf("metadata = %q v%d", loaded.Name, loaded.Version)
	}
	if loaded.Canvas != geometry.Sz(800, 600) {
		t.Fatalf("canvas = %v", loaded.Canvas)
	}
	if loaded.Zoom != 1.5 {
		t.Fatalf("zoom = %v", loaded.Zoom)
	}
	if !reflect.DeepEqual(loaded.Layers, e.Layers()) {
		t.Fatal("layers did not survive the round trip")
	}
}

func TestSnapshotIsImmuneToLaterEdits(t *testing.T) {
	e := editor.NewEngine()
	e.SetImage(editor.BaseImage{Src: "/photos/shot.png"}, 800, 600)
	l := e.AddTextWatermark("hello", editor.AnchorTopLeft, editor.Patch{X: editor.Float(10)})

	proj := New("session")
	proj.Snapshot("/tmp/session.pmproj", e)

	// Editing after the snapshot must not leak into it.
	e.UpdateLayer(l.ID, editor.Patch{X: editor.Float(99)})
	e.Commit()

	if proj.Layers[0] == e.Layers()[0] {
		t.Fatal("snapshot must clone layers, not alias the session")
	}
	if got := proj.Layers[0].Props.(*editor.TextProps).X; got != 10 {
		t.Fatalf("snapshot X = %v, want the pre-edit value 10", got)
	}
}

func TestRestoreRebuildsSession(t *testing.T) {
	src := editor.NewEngine()
	src.SetImage(editor.BaseImage{Src: "/photos/shot.png"}, 800, 600)
	src.AddTextWatermark("hello", editor.AnchorTopLeft, editor.Patch{})

	proj := New("session")
	proj.Snapshot("/tmp/session.pmproj", src)

	dst := editor.NewEngine()
	proj.Restore(dst)

	if got := dst.CanvasSize(); got != geometry.Sz(800, 600) {
		t.Fatalf("canvas = %v", got)
	}
	layers := dst.Layers()
	if len(layers) != 1 || layers[0].Kind != editor.KindText {
		t.Fatalf("layers = %v", layers)
	}
	// Restored layers are clones; mutating the source must not leak through.
	if layers[0] == src.Layers()[0] {
		t.Fatal("restore must clone layers")
	}
}

func TestImagePathRelativeToProject(t *testing.T) {
	proj := New("x")
	proj.SetImage("/home/u/projects/a.pmproj", "/home/u/projects/img/base.png")
	if proj.ImagePath != filepath.Join("img", "base.png") {
		t.Fatalf("ImagePath = %q, want relative", proj.ImagePath)
	}
	abs := proj.AbsImagePath("/home/u/projects/a.pmproj")
	if abs != filepath.Join("/home/u/projects", "img", "base.png") {
		t.Fatalf("AbsImagePath = %q", abs)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pmproj")
	if err := os.WriteFile(path, []byte(`{"version": 1,`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted malformed JSON")
	}
}
