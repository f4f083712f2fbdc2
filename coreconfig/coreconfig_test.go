package coreconfig

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.XRefStreamOnWrite = false
	cfg.DefaultEarlyChange = 0

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.XRefStreamOnWrite != false || got.DefaultEarlyChange != 0 {
		t.Fatalf("got %+v", got)
	}
	if got.ValidateOnRead != cfg.ValidateOnRead {
		t.Fatalf("got %+v", got)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing configuration file")
	}
}

func TestDefaultConfiguration(t *testing.T) {
	cfg := Default()
	if !cfg.ValidateOnRead || !cfg.XRefStreamOnWrite {
		t.Fatalf("got %+v", cfg)
	}
}
