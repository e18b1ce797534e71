package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/c360studio/semshape/config"
)

func TestResolveVersion(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, "current", "skg-o.ttl"), agentTTL)
	writeTestFile(t, filepath.Join(root, "1.0.0", "skg-o.ttl"), agentTTL)
	if err := os.MkdirAll(filepath.Join(root, "2.0.0", "agent"), 0755); err != nil {
		t.Fatal(err)
	}

	cfg := config.OntologyConfig{
		Root:    root,
		File:    "skg-o.ttl",
		Layouts: map[string]string{"2.0.0": config.LayoutModular, "3.0.0": config.LayoutModular},
	}

	tests := []struct {
		name     string
		version  string
		wantPath string
		wantMode Mode
		wantErr  bool
	}{
		{"default is current", "", filepath.Join(root, "current", "skg-o.ttl"), ModeSingle, false},
		{"explicit single", "1.0.0", filepath.Join(root, "1.0.0", "skg-o.ttl"), ModeSingle, false},
		{"modular", "2.0.0", filepath.Join(root, "2.0.0"), ModeModular, false},
		{"missing version", "9.9.9", "", "", true},
		{"missing modular version", "3.0.0", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, mode, err := ResolveVersion(cfg, tt.version)
			if tt.wantErr {
				if !config.IsConfigurationError(err) {
					t.Errorf("expected ConfigurationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveVersion() error = %v", err)
			}
			if path != tt.wantPath {
				t.Errorf("path = %s, want %s", path, tt.wantPath)
			}
			if mode != tt.wantMode {
				t.Errorf("mode = %s, want %s", mode, tt.wantMode)
			}
		})
	}
}

func TestResolveVersion_LayoutMismatch(t *testing.T) {
	root := t.TempDir()
	// A directory where the single-file release is expected.
	if err := os.MkdirAll(filepath.Join(root, "1.0.0", "skg-o.ttl"), 0755); err != nil {
		t.Fatal(err)
	}

	_, _, err := ResolveVersion(config.OntologyConfig{Root: root, File: "skg-o.ttl"}, "1.0.0")
	if !config.IsConfigurationError(err) {
		t.Errorf("expected ConfigurationError, got %v", err)
	}
}
