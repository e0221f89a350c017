package classify

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// writeTree creates empty files for each slash-relative path under root.
func writeTree(t *testing.T, root string, paths []string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFileCategory(t *testing.T) {
	tests := []struct {
		rel  string
		want Category
	}{
		{"gegenpress.fmf", Tactics},
		{"changes/transfers.edt", EditorData},
		{"league.dbc", EditorData},
		{"skin/panels.bundle", Skins},
		{"somepack/config.xml", Graphics},
		{"faces/001.png", Faces},
		{"megapack/Faces/iconic/123.png", Faces},
		{"club badges/clubs/456.png", Logos},
		{"Kits/home/789.jpg", Kits},
		{"pictures/stadiums/001.jpg", Graphics},
		{"loose.png", Graphics},
		{"readme.txt", Unknown},
		{"tool.exe", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			if got := FileCategory(tt.rel); got != tt.want {
				t.Fatalf("FileCategory(%q) = %v, want %v", tt.rel, got, tt.want)
			}
		})
	}
}

func TestSignalDirNormalization(t *testing.T) {
	for _, name := range []string{"Editor Data", "editor_data", "EDITORDATA"} {
		c, ok := SignalDirCategory(name)
		if !ok || c != EditorData {
			t.Fatalf("SignalDirCategory(%q) = %v, %v; want editor-data", name, c, ok)
		}
	}
	if _, ok := SignalDirCategory("screenshots"); ok {
		t.Fatalf("unrecognized directory should not advertise a category")
	}
}

func TestScanPlurality(t *testing.T) {
	root := t.TempDir()
	var paths []string
	for i := 0; i < 80; i++ {
		paths = append(paths, fmt.Sprintf("faces/%03d.png", i))
	}
	for i := 0; i < 5; i++ {
		paths = append(paths, fmt.Sprintf("logos/%03d.png", i))
	}
	writeTree(t, root, paths)

	res, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	if res.Category != Faces {
		t.Fatalf("Category = %v, want faces", res.Category)
	}
	if res.Confidence < 0.9 {
		t.Fatalf("Confidence = %v, want >= 0.9", res.Confidence)
	}
	if res.Breakdown[Faces] != 80 || res.Breakdown[Logos] != 5 {
		t.Fatalf("Breakdown = %v", res.Breakdown)
	}
	if res.TotalFiles != 85 {
		t.Fatalf("TotalFiles = %d, want 85", res.TotalFiles)
	}
}

func TestScanMixed(t *testing.T) {
	root := t.TempDir()
	var paths []string
	for i := 0; i < 40; i++ {
		paths = append(paths, fmt.Sprintf("faces/%03d.png", i))
	}
	for i := 0; i < 35; i++ {
		paths = append(paths, fmt.Sprintf("logos/%03d.png", i))
	}
	for i := 0; i < 25; i++ {
		paths = append(paths, fmt.Sprintf("kits/%03d.png", i))
	}
	writeTree(t, root, paths)

	res, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	if res.Category != Mixed {
		t.Fatalf("Category = %v, want mixed", res.Category)
	}
	want := []Category{Faces, Logos, Kits}
	if len(res.Mixed) != len(want) {
		t.Fatalf("Mixed = %v, want %v", res.Mixed, want)
	}
	for i := range want {
		if res.Mixed[i] != want[i] {
			t.Fatalf("Mixed = %v, want %v (descending file count)", res.Mixed, want)
		}
	}
}

func TestScanFallsBackToPluralityLeader(t *testing.T) {
	// Dominant at exactly 60% with the rest scattered below the mixed
	// floor: neither the plurality nor the mixed rule fires, so the leader
	// wins with low confidence.
	root := t.TempDir()
	var paths []string
	for i := 0; i < 6; i++ {
		paths = append(paths, fmt.Sprintf("faces/%03d.png", i))
	}
	paths = append(paths,
		"logos/a.png",
		"kits/b.png",
		"pictures/c.png",
		"tactic.fmf",
	)
	writeTree(t, root, paths)

	res, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	if res.Category != Faces {
		t.Fatalf("Category = %v, want faces", res.Category)
	}
	if res.Confidence > pluralityShare+0.001 {
		t.Fatalf("Confidence = %v, should not exceed the plurality threshold", res.Confidence)
	}
}

func TestScanUnknown(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"readme.txt", "docs/notes.md"})

	res, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	if res.Category != Unknown {
		t.Fatalf("Category = %v, want unknown", res.Category)
	}
	if res.Confidence != 0 {
		t.Fatalf("Confidence = %v, want 0", res.Confidence)
	}
	if res.TotalFiles != 2 {
		t.Fatalf("TotalFiles = %d, want 2", res.TotalFiles)
	}
}

func TestScanFlat(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"001.png", "002.png"})

	res, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Flat {
		t.Fatalf("root-level pictures without type directories should be flagged flat")
	}
	if res.Category != Graphics {
		t.Fatalf("Category = %v, want graphics", res.Category)
	}
}

func TestScanDescriptorOverride(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"pack/001.png",
		"pack/002.png",
		"pack/003.png",
	})
	descriptor := `<record>
	<list id="maps">
		<record from="001" to="graphics/pictures/person/1001/portrait"/>
		<record from="002" to="graphics/pictures/person/1002/portrait"/>
	</list>
</record>`
	if err := os.WriteFile(filepath.Join(root, "pack", "config.xml"), []byte(descriptor), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	if !res.HasDescriptor {
		t.Fatalf("descriptor not detected")
	}
	if res.Category != Faces {
		t.Fatalf("Category = %v, want faces via descriptor override", res.Category)
	}
	if res.Breakdown[Faces] != 3 {
		t.Fatalf("Breakdown = %v; descriptor should cover all pictures in its subtree", res.Breakdown)
	}
}
