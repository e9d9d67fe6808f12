package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
	if got, err := expandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	if got, err := expandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	p, err := expandHome("~")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p != home {
		t.Fatalf("expected %q, got %q", home, p)
	}
	exp, err := expandHome("~/hfserve.yaml")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if filepath.Base(exp) != "hfserve.yaml" || filepath.Dir(exp) != home {
		t.Fatalf("unexpected expanded path: %q", exp)
	}
}

func TestFileExists(t *testing.T) {
	d := t.TempDir()
	if fileExists(d) {
		t.Fatalf("directory should not count as a file")
	}
	p := filepath.Join(d, "x.env")
	if fileExists(p) {
		t.Fatalf("missing file reported as existing")
	}
	if err := os.WriteFile(p, []byte("A=1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !fileExists(p) {
		t.Fatalf("expected file to exist")
	}
}
