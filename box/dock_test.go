package box

import (
	"testing"

	"github.com/spf13/afero"
)

func TestDockPutGetDelete(t *testing.T) {
	d := NewDock(afero.NewMemMapFs(), "/dock")

	if _, ok, err := d.Get("stage.current"); err != nil || ok {
		t.Fatalf("expected miss on empty Dock, got ok=%v err=%v", ok, err)
	}

	if err := d.Put("stage.current", "ready", 3); err != nil {
		t.Fatalf("Put: %v", err)
	}
	b, ok, err := d.Get("stage.current")
	if err != nil || !ok || b.Value != "ready" || b.Tyme != 3.0 {
		t.Fatalf("got %+v, %v, %v", b, ok, err)
	}

	if err := d.Delete("stage.current"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, err := d.Get("stage.current"); err != nil || ok {
		t.Fatalf("expected miss after Delete, got ok=%v err=%v", ok, err)
	}
}

func TestDockDeleteMissingKeyIsNotAnError(t *testing.T) {
	d := NewDock(afero.NewMemMapFs(), "/dock")
	if err := d.Delete("never.written"); err != nil {
		t.Fatalf("Delete on missing key: %v", err)
	}
}

func TestDockPutOverwritesExistingKey(t *testing.T) {
	d := NewDock(afero.NewMemMapFs(), "/dock")
	if err := d.Put("count", 1.0, 1); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := d.Put("count", 2.0, 2); err != nil {
		t.Fatalf("Put: %v", err)
	}
	b, ok, err := d.Get("count")
	if err != nil || !ok || b.Value != 2.0 {
		t.Fatalf("got %+v, %v, %v", b, ok, err)
	}
}

func TestDockKeysNestUnderSeparateDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	d := NewDock(fs, "/dock")
	if err := d.Put("a.b.c", 1.0, 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	exists, err := afero.Exists(fs, "/dock/a/b/c.json")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Fatalf("expected dotted key to map onto nested directories")
	}
}
