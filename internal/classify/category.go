package classify

import (
	"fmt"
	"strings"
)

// Category is the closed set of asset types the routing layer understands.
// Adding a value here is a data-model change: the destination table in
// internal/gamepath must be extended with it.
type Category string

const (
	Faces      Category = "faces"
	Logos      Category = "logos"
	Kits       Category = "kits"
	Graphics   Category = "graphics"
	Tactics    Category = "tactics"
	EditorData Category = "editor-data"
	Skins      Category = "skins"
	Mixed      Category = "mixed"
	Unknown    Category = "unknown"
)

// Categories lists every concrete category, excluding the Mixed and Unknown
// composites.
var Categories = []Category{Faces, Logos, Kits, Graphics, Tactics, EditorData, Skins}

// ParseCategory validates a user- or manifest-supplied category string.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case Faces, Logos, Kits, Graphics, Tactics, EditorData, Skins, Mixed, Unknown:
		return c, nil
	case "ui", "bundle":
		// Older packs label interface bundles this way.
		return Skins, nil
	case "":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("unknown category %q", s)
}

// IsGraphics reports whether c is one of the picture categories that live
// under the graphics destination tree.
func (c Category) IsGraphics() bool {
	switch c {
	case Faces, Logos, Kits, Graphics:
		return true
	}
	return false
}
