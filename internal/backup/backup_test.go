package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCreateAndRestore(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")
	target := filepath.Join(dir, "game", "skins", "panels.bundle")
	write(t, target, "original")

	bak, err := Create(backupDir, target)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	base := filepath.Base(bak)
	if !strings.HasPrefix(base, "panels.bundle_") || !strings.HasSuffix(base, ".bak") {
		t.Fatalf("backup name = %q", base)
	}

	write(t, target, "replaced")
	if err := Restore(bak, target); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Fatalf("restored content = %q", got)
	}
	if _, err := os.Stat(bak); !os.IsNotExist(err) {
		t.Fatalf("backup file should be consumed by Restore")
	}
}

func TestCreateMissingTarget(t *testing.T) {
	dir := t.TempDir()
	bak, err := Create(filepath.Join(dir, "backups"), filepath.Join(dir, "nope.png"))
	if err != nil {
		t.Fatalf("missing target is not an error: %v", err)
	}
	if bak != "" {
		t.Fatalf("bak = %q, want empty for a missing target", bak)
	}
}

func TestRestoreLatest(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")
	target := filepath.Join(dir, "file.png")

	// Two snapshots with distinct timestamped names.
	write(t, filepath.Join(backupDir, "file.png_20260101_000000.bak"), "older")
	write(t, filepath.Join(backupDir, "file.png_20260301_000000.bak"), "newer")
	write(t, filepath.Join(backupDir, "other.png_20260301_000000.bak"), "unrelated")

	found, err := RestoreLatest(backupDir, target)
	if err != nil {
		t.Fatalf("RestoreLatest: %v", err)
	}
	if !found {
		t.Fatalf("expected a backup to be found")
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "newer" {
		t.Fatalf("restored %q, want the newest snapshot", got)
	}
	if _, err := os.Stat(filepath.Join(backupDir, "other.png_20260301_000000.bak")); err != nil {
		t.Fatalf("unrelated backups must stay: %v", err)
	}
}

func TestRestoreLatestNone(t *testing.T) {
	dir := t.TempDir()
	found, err := RestoreLatest(filepath.Join(dir, "backups"), filepath.Join(dir, "file.png"))
	if err != nil {
		t.Fatalf("RestoreLatest: %v", err)
	}
	if found {
		t.Fatalf("no backups exist, found should be false")
	}
}

func TestPrune(t *testing.T) {
	backupDir := t.TempDir()
	names := []string{
		"a.png_20260101_000000.bak",
		"b.png_20260102_000000.bak",
		"c.png_20260103_000000.bak",
		"d.png_20260104_000000.bak",
	}
	for i, n := range names {
		p := filepath.Join(backupDir, n)
		write(t, p, "x")
		// Spread modification times so newest-first ordering is stable.
		mt := os.Chtimes(p, time.Time{}, time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC))
		if mt != nil {
			t.Fatal(mt)
		}
	}

	if err := Prune(backupDir, 2); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatal(err)
	}
	var left []string
	for _, e := range entries {
		left = append(left, e.Name())
	}
	if len(left) != 2 {
		t.Fatalf("left = %v, want the 2 newest", left)
	}
	sort.Strings(left)
	if left[0] != "c.png_20260103_000000.bak" || left[1] != "d.png_20260104_000000.bak" {
		t.Fatalf("left = %v", left)
	}
}
