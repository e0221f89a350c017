// Package manifest defines the persisted record of one installed asset and
// its manifest.json wire format. Reading a manifest and writing it back
// produces an equivalent document with the file rules in their original
// order.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmmtools/fmodman/internal/classify"
	"github.com/fmmtools/fmodman/internal/pathutil"
	"github.com/fmmtools/fmodman/internal/platform"
)

// FileName is the manifest file looked for inside a mod directory. Matching
// is case-insensitive on import.
const FileName = "manifest.json"

// Asset is the persisted record of one installed unit.
type Asset struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Version       string            `json:"version"`
	Type          classify.Category `json:"type"`
	Author        string            `json:"author,omitempty"`
	Homepage      string            `json:"homepage,omitempty"`
	Description   string            `json:"description,omitempty"`
	License       string            `json:"license,omitempty"`
	Compatibility Compatibility     `json:"compatibility"`
	Dependencies  []string          `json:"dependencies,omitempty"`
	Conflicts     []string          `json:"conflicts,omitempty"`
	LoadAfter     []string          `json:"load_after,omitempty"`
	Files         []FileRule        `json:"files"`
}

// Compatibility tags the game release an asset was built for.
type Compatibility struct {
	GameVersion string `json:"game_version,omitempty"`
}

// FileRule is one routing decision: a source path inside the staged
// extraction mapped to a target subpath under the asset's destination root.
type FileRule struct {
	Source   string            `json:"source"`
	Target   string            `json:"target_subpath"`
	Platform platform.Platform `json:"platform,omitempty"`
}

// Validate checks the structural invariants: both sides of every rule must
// normalize to a location strictly inside their root.
func (a *Asset) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("manifest has no name")
	}
	for _, r := range a.Files {
		if _, err := pathutil.CleanRel(r.Source); err != nil {
			return fmt.Errorf("file rule source: %w", err)
		}
		if _, err := pathutil.CleanRel(r.Target); err != nil {
			return fmt.Errorf("file rule target: %w", err)
		}
	}
	return nil
}

// Find locates a manifest file in dir, matching the name case-insensitively.
// It returns the full path and whether one exists.
func Find(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), FileName) {
			return filepath.Join(dir, e.Name()), true
		}
	}
	return "", false
}

// Load reads and parses a manifest from dir. A missing or empty name falls
// back to the directory's base name.
func Load(dir string) (*Asset, error) {
	path, ok := Find(dir)
	if !ok {
		return nil, fmt.Errorf("no %s in %s", FileName, dir)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var a Asset
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if a.Name == "" {
		a.Name = filepath.Base(dir)
	}
	if a.Type == "" {
		a.Type = classify.Unknown
	}
	return &a, nil
}

// Save writes the manifest into dir as indented JSON.
func (a *Asset) Save(dir string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
