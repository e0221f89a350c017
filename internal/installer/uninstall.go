package installer

import (
	"fmt"
	"os"

	"github.com/fmmtools/fmodman/internal/backup"
	"github.com/fmmtools/fmodman/internal/conflict"
	"github.com/fmmtools/fmodman/internal/gamepath"
	"github.com/fmmtools/fmodman/internal/logging"
	"github.com/fmmtools/fmodman/internal/manifest"
	"github.com/fmmtools/fmodman/internal/platform"
	"github.com/fmmtools/fmodman/internal/store"
)

// UninstallResult reports what an uninstall touched.
type UninstallResult struct {
	Asset *manifest.Asset
	// Removed are destination files deleted because only this asset owned
	// them.
	Removed []string
	// Kept are destination files left in place because another installed
	// asset also claims them.
	Kept []string
	// Restored counts files put back from backups taken when this asset
	// overwrote them.
	Restored int
}

// Uninstall removes an asset by id or name. A destination file is deleted
// only when no other installed asset, enabled or not, claims the same path;
// shared files stay on disk. Files this asset overwrote at install time are
// restored from their backups.
func (ins *Installer) Uninstall(ref string, paths gamepath.Paths) (*UninstallResult, error) {
	a, err := ins.store.Resolve(ref)
	if err != nil {
		return nil, err
	}

	owners, err := ins.store.Ownership(paths, false)
	if err != nil {
		return nil, fmt.Errorf("resolving ownership: %w", err)
	}
	delete(owners, a.ID)
	shared := make(map[string]bool)
	for _, ps := range owners {
		for _, p := range ps {
			shared[conflict.Normalize(p)] = true
		}
	}

	res := &UninstallResult{Asset: a}
	for _, p := range store.ResolveRules(a, paths, platform.Current()) {
		if shared[conflict.Normalize(p)] {
			res.Kept = append(res.Kept, p)
			continue
		}
		if err := os.Remove(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return res, fmt.Errorf("removing %s: %w", p, err)
		}
		res.Removed = append(res.Removed, p)
		restored, err := backup.RestoreLatest(ins.store.BackupDir(), p)
		if err != nil {
			logging.Warnf("restoring backup for %s: %v\n", p, err)
		} else if restored {
			res.Restored++
		}
		if !restored {
			removeEmptyParents(p)
		}
	}

	if err := ins.store.Remove(a.ID); err != nil {
		return res, fmt.Errorf("deregistering %q: %w", a.Name, err)
	}
	return res, nil
}
