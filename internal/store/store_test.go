package store

import (
	"path/filepath"
	"testing"

	"github.com/fmmtools/fmodman/internal/classify"
	"github.com/fmmtools/fmodman/internal/gamepath"
	"github.com/fmmtools/fmodman/internal/manifest"
	"github.com/fmmtools/fmodman/internal/platform"
)

func testAsset(id, name string, typ classify.Category, rules ...manifest.FileRule) *manifest.Asset {
	if len(rules) == 0 {
		rules = []manifest.FileRule{{Source: "a.png", Target: "graphics/" + id + ".png"}}
	}
	return &manifest.Asset{ID: id, Name: name, Type: typ, Files: rules}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAddListRemove(t *testing.T) {
	s := openTestStore(t)

	if err := s.Add(testAsset("id-b", "Beta Pack", classify.Logos)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(testAsset("id-a", "Alpha Pack", classify.Faces)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	assets, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 2 {
		t.Fatalf("List = %d assets, want 2", len(assets))
	}
	if assets[0].Name != "Alpha Pack" || assets[1].Name != "Beta Pack" {
		t.Fatalf("List should be sorted by name: %s, %s", assets[0].Name, assets[1].Name)
	}

	if !s.Enabled("id-a") {
		t.Fatalf("new assets start enabled")
	}

	if err := s.Remove("id-a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	assets, err = s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 1 || assets[0].ID != "id-b" {
		t.Fatalf("List after Remove = %+v", assets)
	}
}

func TestAddRejectsIncompleteAssets(t *testing.T) {
	s := openTestStore(t)

	noID := testAsset("", "No ID", classify.Faces)
	if err := s.Add(noID); err == nil {
		t.Fatalf("Add should reject an asset without an id")
	}
	noFiles := &manifest.Asset{ID: "id-x", Name: "No Files", Type: classify.Faces}
	if err := s.Add(noFiles); err == nil {
		t.Fatalf("Add should reject an asset without file rules")
	}
}

func TestResolve(t *testing.T) {
	s := openTestStore(t)
	if err := s.Add(testAsset("id-1", "Iconic Faces", classify.Faces)); err != nil {
		t.Fatal(err)
	}

	byID, err := s.Resolve("id-1")
	if err != nil {
		t.Fatalf("Resolve by id: %v", err)
	}
	if byID.Name != "Iconic Faces" {
		t.Fatalf("resolved %+v", byID)
	}

	byName, err := s.Resolve("iconic faces")
	if err != nil {
		t.Fatalf("Resolve by case-insensitive name: %v", err)
	}
	if byName.ID != "id-1" {
		t.Fatalf("resolved %+v", byName)
	}

	if _, err := s.Resolve("nonexistent"); err == nil {
		t.Fatalf("Resolve should fail for unknown references")
	}
}

func TestSetEnabledPersists(t *testing.T) {
	root := filepath.Join(t.TempDir(), "state")
	s, err := Open(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Add(testAsset("id-1", "Pack", classify.Faces)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetEnabled("id-1", false); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(root)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Enabled("id-1") {
		t.Fatalf("disabled state should survive a reopen")
	}
}

func TestOwnership(t *testing.T) {
	s := openTestStore(t)
	paths := gamepath.Paths{UserRoot: filepath.Join("tmp", "user")}

	a := testAsset("id-a", "A", classify.Faces,
		manifest.FileRule{Source: "x.png", Target: "graphics/faces/x.png"},
		manifest.FileRule{Source: "win/p.bundle", Target: "skins/p.bundle", Platform: platform.Windows},
		manifest.FileRule{Source: "mac/p.bundle", Target: "skins/p.bundle", Platform: platform.MacOS},
	)
	if err := s.Add(a); err != nil {
		t.Fatal(err)
	}
	b := testAsset("id-b", "B", classify.Logos,
		manifest.FileRule{Source: "y.png", Target: "graphics/logos/y.png"},
	)
	if err := s.Add(b); err != nil {
		t.Fatal(err)
	}
	if err := s.SetEnabled("id-b", false); err != nil {
		t.Fatal(err)
	}

	owners, err := s.Ownership(paths, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := owners["id-b"]; ok {
		t.Fatalf("disabled asset should be excluded with enabledOnly: %v", owners)
	}
	// Exactly one of the platform-tagged rules matches the running OS, so
	// id-a owns its picture plus at most one bundle path.
	if got := len(owners["id-a"]); got < 1 || got > 2 {
		t.Fatalf("owners[id-a] = %v", owners["id-a"])
	}
	want := filepath.Join(paths.UserRoot, "graphics", "faces", "x.png")
	if owners["id-a"][0] != want {
		t.Fatalf("path = %q, want %q", owners["id-a"][0], want)
	}

	all, err := s.Ownership(paths, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := all["id-b"]; !ok {
		t.Fatalf("disabled asset should appear without enabledOnly")
	}
}
