package installer

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/fmmtools/fmodman/internal/classify"
	"github.com/fmmtools/fmodman/internal/conflict"
	"github.com/fmmtools/fmodman/internal/gamepath"
)

// MisplacedPack is a graphics pack sitting in the wrong subdirectory: its
// content classifies as a specific subtype but it does not live under that
// subtype's directory.
type MisplacedPack struct {
	Path      string
	Type      classify.Category
	Suggested string
}

// AuditConflicts reports destination paths shared by two or more enabled
// assets. With enabledOnly unset, disabled assets participate too.
func (ins *Installer) AuditConflicts(paths gamepath.Paths, enabledOnly bool) ([]conflict.Record, error) {
	owners, err := ins.store.Ownership(paths, enabledOnly)
	if err != nil {
		return nil, err
	}
	return conflict.Audit(owners), nil
}

// ValidateGraphicsLayout inspects the top level of the graphics directory
// for packs whose content belongs in a subtype directory. A faces pack
// dropped directly under graphics/ still works in-game only if its internal
// layout happens to match, so surfacing these is worth the scan.
func ValidateGraphicsLayout(paths gamepath.Paths) ([]MisplacedPack, error) {
	graphicsDir := paths.DestinationFor(classify.Graphics)
	entries, err := os.ReadDir(graphicsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []MisplacedPack
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		// Subtype directories themselves are the correct layout.
		if cat, ok := classify.SignalDirCategory(e.Name()); ok && cat != classify.Graphics {
			continue
		}
		packDir := filepath.Join(graphicsDir, e.Name())
		res, err := classify.Scan(packDir)
		if err != nil {
			continue
		}
		switch res.Category {
		case classify.Faces, classify.Logos, classify.Kits:
			out = append(out, MisplacedPack{
				Path:      packDir,
				Type:      res.Category,
				Suggested: filepath.Join(paths.DestinationFor(res.Category), e.Name()),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
