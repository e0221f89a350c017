package gamepath

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fmmtools/fmodman/internal/classify"
)

func TestUserRootOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "fm-user")
	got, err := UserRoot(want)
	if err != nil {
		t.Fatalf("UserRoot: %v", err)
	}
	if got != want {
		t.Fatalf("UserRoot = %q, want %q", got, want)
	}
	if info, err := os.Stat(got); err != nil || !info.IsDir() {
		t.Fatalf("UserRoot should create the directory: %v", err)
	}
}

func TestUserRootResolutionError(t *testing.T) {
	// A file where the directory should be makes creation fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := UserRoot(filepath.Join(blocker, "sub"))
	var re *ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *ResolutionError", err)
	}
}

func TestDestinationForIsTotal(t *testing.T) {
	p := Paths{UserRoot: filepath.Join("u"), GameRoot: filepath.Join("g")}

	tests := []struct {
		cat  classify.Category
		want string
	}{
		{classify.Faces, filepath.Join("u", "graphics", "faces")},
		{classify.Logos, filepath.Join("u", "graphics", "logos")},
		{classify.Kits, filepath.Join("u", "graphics", "kits")},
		{classify.Graphics, filepath.Join("u", "graphics")},
		{classify.Tactics, filepath.Join("u", "tactics")},
		{classify.EditorData, filepath.Join("u", "editor data")},
		{classify.Skins, filepath.Join("u", "skins")},
		{classify.Unknown, filepath.Join("g")},
		{classify.Mixed, filepath.Join("g")},
	}
	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			if got := p.DestinationFor(tt.cat); got != tt.want {
				t.Fatalf("DestinationFor(%v) = %q, want %q", tt.cat, got, tt.want)
			}
		})
	}
}

func TestDestinationForWithoutGameRoot(t *testing.T) {
	p := Paths{UserRoot: filepath.Join("u")}
	if got := p.DestinationFor(classify.Unknown); got != filepath.Join("u") {
		t.Fatalf("without a game root, unknown content falls back to the user root: %q", got)
	}
}

func TestBaseFor(t *testing.T) {
	p := Paths{UserRoot: "u", GameRoot: "g"}
	if got := p.BaseFor(classify.Faces); got != "u" {
		t.Fatalf("BaseFor(faces) = %q, want user root", got)
	}
	if got := p.BaseFor(classify.Mixed); got != "u" {
		t.Fatalf("BaseFor(mixed) = %q, want user root", got)
	}
	if got := p.BaseFor(classify.Unknown); got != "g" {
		t.Fatalf("BaseFor(unknown) = %q, want game root", got)
	}
}
