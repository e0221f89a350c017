// Package store persists the registry of installed assets. Each asset keeps
// its manifest under its own directory; the enabled set lives in a single
// state file. Registry mutations are serialized; reads take a shared lock so
// audits always see a consistent snapshot. File copying never happens under
// the lock.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/fmmtools/fmodman/internal/gamepath"
	"github.com/fmmtools/fmodman/internal/manifest"
	"github.com/fmmtools/fmodman/internal/pathutil"
	"github.com/fmmtools/fmodman/internal/platform"
)

const stateFile = "state.json"

// DefaultRoot returns the per-user application data directory.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return filepath.Join(appdata, "fmodman"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "fmodman"), nil
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "fmodman"), nil
	default:
		return filepath.Join(home, ".local", "share", "fmodman"), nil
	}
}

type state struct {
	Enabled map[string]bool `json:"enabled"`
}

// Store is the installed-asset registry rooted at one directory.
type Store struct {
	root string

	mu sync.RWMutex
	st state
}

// Open loads (or initializes) the registry at root, creating the directory
// layout if needed.
func Open(root string) (*Store, error) {
	for _, dir := range []string{root, filepath.Join(root, "assets"), filepath.Join(root, "backups"), filepath.Join(root, "staging")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
		}
	}

	s := &Store{root: root, st: state{Enabled: map[string]bool{}}}
	data, err := os.ReadFile(filepath.Join(root, stateFile))
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading state: %w", err)
	}
	if err := json.Unmarshal(data, &s.st); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}
	if s.st.Enabled == nil {
		s.st.Enabled = map[string]bool{}
	}
	return s, nil
}

// Root returns the registry's base directory.
func (s *Store) Root() string { return s.root }

// StagingDir returns a directory for one extraction, namespaced by op id.
func (s *Store) StagingDir(opID string) string {
	return filepath.Join(s.root, "staging", opID)
}

// BackupDir returns the directory overwritten files are backed up into.
func (s *Store) BackupDir() string {
	return filepath.Join(s.root, "backups")
}

func (s *Store) assetDir(id string) string {
	return filepath.Join(s.root, "assets", id)
}

func (s *Store) saveStateLocked() error {
	data, err := json.MarshalIndent(&s.st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.root, stateFile), data, 0o644); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}

// List returns every installed asset, sorted by name.
func (s *Store) List() ([]*manifest.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

func (s *Store) listLocked() ([]*manifest.Asset, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "assets"))
	if err != nil {
		return nil, fmt.Errorf("reading assets directory: %w", err)
	}
	var assets []*manifest.Asset
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		a, err := manifest.Load(s.assetDir(e.Name()))
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", e.Name(), err)
		}
		assets = append(assets, a)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}

// Get returns one asset by id.
func (s *Store) Get(id string) (*manifest.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, err := manifest.Load(s.assetDir(id))
	if err != nil {
		return nil, fmt.Errorf("asset %s not installed: %w", id, err)
	}
	return a, nil
}

// Resolve accepts an asset id or (unique) display name and returns the asset.
func (s *Store) Resolve(ref string) (*manifest.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, err := manifest.Load(s.assetDir(ref)); err == nil {
		return a, nil
	}
	assets, err := s.listLocked()
	if err != nil {
		return nil, err
	}
	var match *manifest.Asset
	for _, a := range assets {
		if strings.EqualFold(a.Name, ref) {
			if match != nil {
				return nil, fmt.Errorf("name %q matches more than one installed asset, use its id", ref)
			}
			match = a
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no installed asset named %q", ref)
	}
	return match, nil
}

// Add commits an installed asset to the registry and enables it. Only the
// registry update runs under the write lock.
func (s *Store) Add(a *manifest.Asset) error {
	if a.ID == "" {
		return fmt.Errorf("asset %q has no id", a.Name)
	}
	if len(a.Files) == 0 {
		return fmt.Errorf("asset %q has no files", a.Name)
	}
	if err := a.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.assetDir(a.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating asset directory: %w", err)
	}
	if err := a.Save(dir); err != nil {
		return err
	}
	s.st.Enabled[a.ID] = true
	return s.saveStateLocked()
}

// Remove deletes an asset's registry record.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.assetDir(id)); err != nil {
		return fmt.Errorf("removing asset record: %w", err)
	}
	delete(s.st.Enabled, id)
	return s.saveStateLocked()
}

// SetEnabled toggles an asset in or out of the active set.
func (s *Store) SetEnabled(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.assetDir(id)); err != nil {
		return fmt.Errorf("asset %s not installed", id)
	}
	s.st.Enabled[id] = enabled
	return s.saveStateLocked()
}

// Enabled reports whether an asset is in the active set.
func (s *Store) Enabled(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Enabled[id]
}

// Ownership resolves the destination paths owned by installed assets against
// the given roots. With enabledOnly set, disabled assets are excluded. Rules
// tagged for a different platform are ignored, matching what an install on
// this machine would have written.
func (s *Store) Ownership(paths gamepath.Paths, enabledOnly bool) (map[string][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assets, err := s.listLocked()
	if err != nil {
		return nil, err
	}

	current := platform.Current()
	owners := make(map[string][]string, len(assets))
	for _, a := range assets {
		if enabledOnly && !s.st.Enabled[a.ID] {
			continue
		}
		owners[a.ID] = ResolveRules(a, paths, current)
	}
	return owners, nil
}

// ResolveRules returns the absolute destination paths an asset's rules map
// to on the given platform. Rules with unsafe targets are skipped; they were
// rejected at install time and cannot correspond to an installed file.
func ResolveRules(a *manifest.Asset, paths gamepath.Paths, current platform.Platform) []string {
	base := paths.BaseFor(a.Type)
	var out []string
	for _, r := range a.Files {
		if !r.Platform.Matches(current) {
			continue
		}
		p, err := pathutil.SafeJoin(base, r.Target)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}
