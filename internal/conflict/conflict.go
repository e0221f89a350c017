// Package conflict reports destination paths claimed by more than one
// asset. Detection is read-only and purely path-based: records are computed
// fresh from the manifests handed in, never persisted.
package conflict

import (
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Record is one overlapping destination: a path at least two assets write.
type Record struct {
	Path     string
	AssetIDs []string
}

// Ownership maps asset ids to the absolute destination paths they own.
type Ownership map[string][]string

// Normalize canonicalizes a destination path for comparison. Case is folded
// only on platforms whose default filesystems are case-insensitive.
func Normalize(p string) string {
	p = filepath.Clean(p)
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		p = strings.ToLower(p)
	}
	return p
}

// Detect checks a candidate install against the already-installed ownership
// map and returns a record per destination path with two or more owners.
// The candidate id is included in each record it participates in.
func Detect(candidateID string, candidatePaths []string, installed Ownership) []Record {
	merged := make(Ownership, len(installed)+1)
	for id, paths := range installed {
		merged[id] = paths
	}
	merged[candidateID] = candidatePaths

	var out []Record
	for _, r := range Audit(merged) {
		if contains(r.AssetIDs, candidateID) {
			out = append(out, r)
		}
	}
	return out
}

// Audit groups every owned path across the given assets and reports those
// with at least two contributors.
func Audit(owners Ownership) []Record {
	byPath := map[string][]string{}
	display := map[string]string{}
	for id, paths := range owners {
		seen := map[string]bool{}
		for _, p := range paths {
			key := Normalize(p)
			if seen[key] {
				continue
			}
			seen[key] = true
			byPath[key] = append(byPath[key], id)
			if _, ok := display[key]; !ok {
				display[key] = filepath.Clean(p)
			}
		}
	}

	var records []Record
	for key, ids := range byPath {
		if len(ids) < 2 {
			continue
		}
		sort.Strings(ids)
		records = append(records, Record{Path: display[key], AssetIDs: ids})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
