package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fmmtools/fmodman/internal/classify"
	"github.com/fmmtools/fmodman/internal/platform"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := &Asset{
		ID:      "id-1",
		Name:    "Iconic Faces",
		Version: "2026.1",
		Type:    classify.Faces,
		Author:  "somebody",
		Compatibility: Compatibility{
			GameVersion: "Football Manager 26",
		},
		LoadAfter: []string{"base-pack"},
		Files: []FileRule{
			{Source: "graphics/faces/001.png", Target: "graphics/faces/001.png"},
			{Source: "win/panels.bundle", Target: "skins/panels.bundle", Platform: platform.Windows},
		},
	}
	if err := in.Save(dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Name != in.Name || out.Version != in.Version || out.Type != in.Type {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if len(out.Files) != 2 {
		t.Fatalf("Files = %+v", out.Files)
	}
	// Rule order is part of the manifest contract.
	if out.Files[0].Source != "graphics/faces/001.png" {
		t.Fatalf("rule order changed: %+v", out.Files)
	}
	if out.Files[1].Platform != platform.Windows {
		t.Fatalf("platform tag lost: %+v", out.Files[1])
	}
	if out.LoadAfter[0] != "base-pack" {
		t.Fatalf("LoadAfter = %v", out.LoadAfter)
	}
}

func TestFindIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Manifest.JSON"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	path, ok := Find(dir)
	if !ok {
		t.Fatalf("Find should match manifest names case-insensitively")
	}
	if filepath.Base(path) != "Manifest.JSON" {
		t.Fatalf("path = %q", path)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Some Facepack")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(`{"version":"1.0"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "Some Facepack" {
		t.Fatalf("Name = %q, want the directory base name", a.Name)
	}
	if a.Type != classify.Unknown {
		t.Fatalf("Type = %v, want unknown", a.Type)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		asset   Asset
		wantErr bool
	}{
		{
			name:  "valid",
			asset: Asset{Name: "ok", Files: []FileRule{{Source: "a.png", Target: "graphics/a.png"}}},
		},
		{
			name:    "missing name",
			asset:   Asset{Files: []FileRule{{Source: "a.png", Target: "graphics/a.png"}}},
			wantErr: true,
		},
		{
			name:    "traversal target",
			asset:   Asset{Name: "bad", Files: []FileRule{{Source: "a.png", Target: "../../escape.png"}}},
			wantErr: true,
		},
		{
			name:    "absolute source",
			asset:   Asset{Name: "bad", Files: []FileRule{{Source: "/etc/passwd", Target: "graphics/a.png"}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.asset.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
