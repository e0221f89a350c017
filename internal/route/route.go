// Package route computes the installation plan for a staged pack: one
// FileRule per file, preserving source hierarchy from the point where
// category-specific content begins. Planning is pure; execution belongs to
// the installer.
package route

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/fmmtools/fmodman/internal/classify"
	"github.com/fmmtools/fmodman/internal/manifest"
	"github.com/fmmtools/fmodman/internal/pathutil"
	"github.com/fmmtools/fmodman/internal/platform"
)

// Error reports a computed target that would escape the destination root.
type Error struct {
	Source string
	Target string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("routing %s to %s: %v", e.Source, e.Target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Relocation records a file routed away from its pack's dominant category
// because its own type belongs elsewhere. Relocations are part of the plan
// and are reported to the caller, never applied silently.
type Relocation struct {
	Source string
	From   classify.Category
	To     classify.Category
}

// Plan is the full set of routing decisions for one staged pack.
type Plan struct {
	Primary     classify.Category
	Rules       []manifest.FileRule
	Relocations []Relocation
}

// Build walks every file under stagedRoot and computes its target subpath.
// Mixed packs are split per file: each file routes to its own category's
// destination. Files of a known-wrong type found inside another category's
// tree are relocated and the relocation recorded.
func Build(stagedRoot string, res *classify.Result) (*Plan, error) {
	plan := &Plan{Primary: res.Category}

	detectPlatforms, err := shouldDetectPlatforms(stagedRoot, res)
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(stagedRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(stagedRoot, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.EqualFold(path.Base(rel), manifest.FileName) {
			// The manifest describes the pack; it is not pack content.
			return nil
		}

		rule, relocation, err := routeFile(rel, res, detectPlatforms)
		if err != nil {
			return err
		}
		plan.Rules = append(plan.Rules, rule)
		if relocation != nil {
			plan.Relocations = append(plan.Relocations, *relocation)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// shouldDetectPlatforms reports whether platform folders in the tree carry
// meaning. Interface bundles ship per-OS variants; picture and data packs
// use directories named "mac" or "win" for ordinary content.
func shouldDetectPlatforms(stagedRoot string, res *classify.Result) (bool, error) {
	if res.Category == classify.Skins {
		return true, nil
	}
	hasBundle := false
	err := filepath.WalkDir(stagedRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(path.Ext(d.Name()), ".bundle") {
			hasBundle = true
			return filepath.SkipAll
		}
		return nil
	})
	return hasBundle, err
}

func routeFile(rel string, res *classify.Result, detectPlatforms bool) (manifest.FileRule, *Relocation, error) {
	parts := strings.Split(rel, "/")

	var plat platform.Platform
	if detectPlatforms {
		remaining := parts[:0:0]
		for _, part := range parts {
			if p, ok := platform.FromComponent(part); ok && plat == platform.Any {
				plat = p
				continue
			}
			remaining = append(remaining, part)
		}
		if plat != platform.Any {
			parts = remaining
		}
	}

	fileCat := classify.FileCategory(rel)
	fileCat = inheritPackCategory(fileCat, res)

	target := targetSubpath(fileCat, parts)
	if _, err := pathutil.CleanRel(target); err != nil {
		return manifest.FileRule{}, nil, &Error{Source: rel, Target: target, Err: err}
	}

	rule := manifest.FileRule{Source: rel, Target: target, Platform: plat}

	if reloc := detectRelocation(rel, fileCat, res.Category); reloc != nil {
		return rule, reloc, nil
	}
	return rule, nil, nil
}

// inheritPackCategory pulls generically-classified files toward the pack's
// own category: a bare picture in a descriptor-confirmed faces pack is a
// face, and signature-less files follow the pack they arrived in.
func inheritPackCategory(fileCat classify.Category, res *classify.Result) classify.Category {
	switch res.Category {
	case classify.Mixed, classify.Unknown:
		if fileCat == classify.Unknown {
			return classify.Unknown
		}
		return fileCat
	}
	if fileCat == classify.Unknown {
		return res.Category
	}
	if fileCat == classify.Graphics && res.Category.IsGraphics() {
		return res.Category
	}
	return fileCat
}

// categoryPrefix is the category-rooted directory each file lands under,
// relative to the user root. It mirrors gamepath.DestinationFor.
func categoryPrefix(cat classify.Category) string {
	switch cat {
	case classify.Faces:
		return "graphics/faces"
	case classify.Logos:
		return "graphics/logos"
	case classify.Kits:
		return "graphics/kits"
	case classify.Graphics:
		return "graphics"
	case classify.Tactics:
		return "tactics"
	case classify.EditorData:
		return "editor data"
	case classify.Skins:
		return "skins"
	default:
		return ""
	}
}

// targetSubpath computes the destination-relative path for one file. The
// structure from the file's own category marker downward is preserved; the
// wrapping directories above it are replaced by the canonical category
// prefix.
func targetSubpath(fileCat classify.Category, parts []string) string {
	prefix := categoryPrefix(fileCat)
	if prefix == "" {
		// Unrecognized asset: preserve the tree as-is against the game root.
		return path.Join(parts...)
	}

	remainder := remainderAfterMarker(fileCat, parts)
	if len(remainder) == 0 {
		remainder = []string{parts[len(parts)-1]}
	}
	return path.Join(append(strings.Split(prefix, "/"), remainder...)...)
}

// remainderAfterMarker returns the path components after the deepest
// directory advertising the file's category, or after any leading
// foreign-category signal directories when no marker exists.
func remainderAfterMarker(fileCat classify.Category, parts []string) []string {
	markerIdx := -1
	for i := 0; i < len(parts)-1; i++ {
		if c, ok := classify.SignalDirCategory(parts[i]); ok && c == fileCat {
			markerIdx = i
		}
	}
	if markerIdx >= 0 {
		return parts[markerIdx+1:]
	}

	// No marker for this category: drop leading signal directories that
	// belong to other categories so a misplaced file is not re-nested
	// under the wrong tree.
	start := 0
	for start < len(parts)-1 {
		if _, ok := classify.SignalDirCategory(parts[start]); ok {
			start++
			continue
		}
		break
	}
	return parts[start:]
}

// familyOf collapses the graphics subtypes so a faces file inside a generic
// graphics pack is not flagged as misplaced.
func familyOf(cat classify.Category) classify.Category {
	if cat.IsGraphics() {
		return classify.Graphics
	}
	return cat
}

func detectRelocation(rel string, fileCat, packCat classify.Category) *Relocation {
	switch packCat {
	case classify.Mixed, classify.Unknown:
		return nil
	}
	if fileCat == classify.Unknown || familyOf(fileCat) == familyOf(packCat) {
		return nil
	}
	return &Relocation{Source: rel, From: packCat, To: fileCat}
}
