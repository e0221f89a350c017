// Package gamepath resolves the platform-specific game data directories and
// maps asset categories to their destination subdirectories.
package gamepath

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/fmmtools/fmodman/internal/classify"
)

// GameVersion names the directory the current game release keeps its user
// data under.
const GameVersion = "Football Manager 26"

// ResolutionError reports a user-data root that does not exist and could not
// be created.
type ResolutionError struct {
	Path string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving game user directory %s: %v", e.Path, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Paths carries the resolved destination roots through the pipeline so every
// component works against explicit directories instead of ambient state.
type Paths struct {
	// UserRoot is the game's user-data directory (graphics, tactics,
	// editor data live under it).
	UserRoot string
	// GameRoot is the game install's asset directory, used for interface
	// bundles and anything unrecognized. May be empty when not detected.
	GameRoot string
}

// UserRoot resolves the game user-data directory. An explicit override wins;
// otherwise the platform default is used. The directory is created when
// missing; failure to create it is a ResolutionError.
func UserRoot(override string) (string, error) {
	root := override
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", &ResolutionError{Path: "~", Err: err}
		}
		root = defaultUserRoot(home)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", &ResolutionError{Path: root, Err: err}
	}
	return root, nil
}

func defaultUserRoot(home string) string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "Documents", "Sports Interactive", GameVersion)
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Sports Interactive", GameVersion)
	default:
		return filepath.Join(home, ".local", "share", "Sports Interactive", GameVersion)
	}
}

// DestinationFor maps a category to its destination directory. The mapping
// is total: every category resolves somewhere, with unrecognized content
// falling back to the game install root (or the user root when no install
// was detected). Mixed packs have no single destination and resolve per file
// during routing, so Mixed falls into the default arm too.
func (p Paths) DestinationFor(cat classify.Category) string {
	switch cat {
	case classify.Faces:
		return filepath.Join(p.UserRoot, "graphics", "faces")
	case classify.Logos:
		return filepath.Join(p.UserRoot, "graphics", "logos")
	case classify.Kits:
		return filepath.Join(p.UserRoot, "graphics", "kits")
	case classify.Graphics:
		return filepath.Join(p.UserRoot, "graphics")
	case classify.Tactics:
		return filepath.Join(p.UserRoot, "tactics")
	case classify.EditorData:
		return filepath.Join(p.UserRoot, "editor data")
	case classify.Skins:
		return filepath.Join(p.UserRoot, "skins")
	default:
		if p.GameRoot != "" {
			return p.GameRoot
		}
		return p.UserRoot
	}
}

// BaseFor returns the root directory an asset's file rules resolve against.
// Rules carry category-rooted subpaths ("graphics/faces/001.png"), so every
// known type resolves against the user root; only unrecognized assets target
// the game install.
func (p Paths) BaseFor(assetType classify.Category) string {
	if assetType == classify.Unknown {
		if p.GameRoot != "" {
			return p.GameRoot
		}
	}
	return p.UserRoot
}

// GameRootCandidates lists install locations the current platform's stores
// put the game's streaming-asset directory in. Only existing paths are
// returned.
func GameRootCandidates() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	var bases []string
	subdirs := []string{
		filepath.Join("fm_Data", "StreamingAssets", "aa"),
		filepath.Join("data", "StreamingAssets", "aa"),
	}

	switch runtime.GOOS {
	case "windows":
		pfx86 := os.Getenv("PROGRAMFILES(X86)")
		if pfx86 == "" {
			pfx86 = `C:\Program Files (x86)`
		}
		pf := os.Getenv("PROGRAMFILES")
		if pf == "" {
			pf = `C:\Program Files`
		}
		bases = append(bases,
			filepath.Join(pfx86, "Steam", "steamapps", "common", GameVersion),
			filepath.Join(pf, "Epic Games", GameVersion),
		)
		for _, drive := range []string{"C:", "D:", "E:"} {
			bases = append(bases, filepath.Join(drive+string(filepath.Separator), "XboxGames", GameVersion, "Content"))
		}
	case "darwin":
		bases = append(bases,
			filepath.Join(home, "Library", "Application Support", "Steam", "steamapps", "common", GameVersion),
			filepath.Join(home, "Library", "Application Support", "Epic", GameVersion),
		)
	default:
		bases = append(bases,
			filepath.Join(home, ".local", "share", "Steam", "steamapps", "common", GameVersion),
		)
	}

	var found []string
	for _, base := range bases {
		for _, sub := range subdirs {
			p := filepath.Join(base, sub)
			if info, err := os.Stat(p); err == nil && info.IsDir() {
				found = append(found, p)
			}
		}
	}
	return found
}
