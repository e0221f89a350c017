package conflict

import (
	"path/filepath"
	"testing"
)

func TestDetectReportsSharedPaths(t *testing.T) {
	shared := filepath.Join("root", "graphics", "logos", "club.png")
	installed := Ownership{
		"asset-a": {shared, filepath.Join("root", "graphics", "logos", "a-only.png")},
		"asset-b": {filepath.Join("root", "tactics", "b.fmf")},
	}

	records := Detect("candidate", []string{shared, filepath.Join("root", "graphics", "faces", "new.png")}, installed)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %+v", records)
	}
	r := records[0]
	if r.Path != shared {
		t.Fatalf("Path = %q, want %q", r.Path, shared)
	}
	if len(r.AssetIDs) != 2 || r.AssetIDs[0] != "asset-a" || r.AssetIDs[1] != "candidate" {
		t.Fatalf("AssetIDs = %v, want sorted [asset-a candidate]", r.AssetIDs)
	}
}

func TestDetectIgnoresForeignConflicts(t *testing.T) {
	// Two installed assets clashing with each other is not the candidate's
	// problem.
	shared := filepath.Join("root", "x.png")
	installed := Ownership{
		"asset-a": {shared},
		"asset-b": {shared},
	}
	records := Detect("candidate", []string{filepath.Join("root", "y.png")}, installed)
	if len(records) != 0 {
		t.Fatalf("expected no records for the candidate, got %+v", records)
	}
}

func TestDetectNoConflicts(t *testing.T) {
	installed := Ownership{
		"asset-a": {filepath.Join("root", "a.png")},
	}
	if records := Detect("candidate", []string{filepath.Join("root", "b.png")}, installed); len(records) != 0 {
		t.Fatalf("expected no records, got %+v", records)
	}
}

func TestAuditGroupsAndSorts(t *testing.T) {
	p1 := filepath.Join("root", "graphics", "kits", "home.png")
	p2 := filepath.Join("root", "graphics", "logos", "club.png")
	owners := Ownership{
		"b": {p2, p1},
		"a": {p1},
		"c": {p2},
		"d": {filepath.Join("root", "unshared.png")},
	}

	records := Audit(owners)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %+v", records)
	}
	// Records sorted by path, ids sorted within each record.
	if records[0].Path != p1 || records[1].Path != p2 {
		t.Fatalf("records not sorted by path: %+v", records)
	}
	if records[0].AssetIDs[0] != "a" || records[0].AssetIDs[1] != "b" {
		t.Fatalf("AssetIDs = %v, want [a b]", records[0].AssetIDs)
	}
}

func TestAuditDeduplicatesWithinAsset(t *testing.T) {
	p := filepath.Join("root", "x.png")
	owners := Ownership{
		"a": {p, p},
	}
	if records := Audit(owners); len(records) != 0 {
		t.Fatalf("an asset listing a path twice is not a conflict: %+v", records)
	}
}

func TestNormalizeCleansPaths(t *testing.T) {
	a := filepath.Join("root", "graphics", "..", "graphics", "x.png")
	b := filepath.Join("root", "graphics", "x.png")
	if Normalize(a) != Normalize(b) {
		t.Fatalf("Normalize should collapse equivalent paths: %q vs %q", Normalize(a), Normalize(b))
	}
}
