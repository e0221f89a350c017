package classify

import (
	"path"
	"strings"
)

// Extension and directory-name signatures. Matching is case-insensitive and
// directory names are compared with spaces and underscores removed, so
// "Editor Data" and "editor_data" are the same signal.

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".tga": true, ".bmp": true, ".dds": true,
}

var editorExts = map[string]bool{
	".dbc": true, ".edt": true, ".lnc": true,
}

var signalDirs = map[string]Category{
	"faces":      Faces,
	"face":       Faces,
	"logos":      Logos,
	"logo":       Logos,
	"badges":     Logos,
	"badge":      Logos,
	"kits":       Kits,
	"kit":        Kits,
	"graphics":   Graphics,
	"pictures":   Graphics,
	"tactics":    Tactics,
	"editordata": EditorData,
	"editor":     EditorData,
	"skins":      Skins,
	"skin":       Skins,
}

func normalizeDirName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "")
	return strings.ReplaceAll(name, "_", "")
}

// SignalDirCategory reports the category a directory name advertises, if any.
func SignalDirCategory(name string) (Category, bool) {
	c, ok := signalDirs[normalizeDirName(name)]
	return c, ok
}

// IsImageExt reports whether ext (with leading dot) is a recognized picture
// format.
func IsImageExt(ext string) bool {
	return imageExts[strings.ToLower(ext)]
}

// FileCategory scores a single file by its slash-relative path inside a pack.
// Extensions decide the family; for pictures the nearest enclosing signal
// directory refines faces/logos/kits, falling back to generic Graphics.
// Files that match no signature return Unknown.
func FileCategory(rel string) Category {
	ext := strings.ToLower(path.Ext(rel))
	base := strings.ToLower(path.Base(rel))

	switch {
	case ext == ".fmf":
		return Tactics
	case editorExts[ext]:
		return EditorData
	case ext == ".bundle":
		return Skins
	case base == "config.xml":
		// Descriptor files travel with their pack's pictures.
		return Graphics
	case imageExts[ext]:
		return refinePicture(rel)
	}
	return Unknown
}

// refinePicture walks the directory components of rel from the file upward
// and returns the first faces/logos/kits signal found, so deeply nested
// megapack layouts resolve to the nearest marker.
func refinePicture(rel string) Category {
	dir := path.Dir(rel)
	for dir != "." && dir != "/" {
		if c, ok := SignalDirCategory(path.Base(dir)); ok {
			if c == Faces || c == Logos || c == Kits {
				return c
			}
			if c == Graphics {
				return Graphics
			}
		}
		dir = path.Dir(dir)
	}
	return Graphics
}
