// Package pathutil guards every path that crosses an archive or manifest
// boundary against directory traversal.
package pathutil

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// CleanRel normalizes an untrusted relative path to slash form. It returns an
// error for absolute paths, drive-letter paths and paths that climb above
// their root.
func CleanRel(name string) (string, error) {
	cleaned := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if cleaned == "." || cleaned == "" {
		return "", fmt.Errorf("empty path %q", name)
	}
	if path.IsAbs(cleaned) || filepath.VolumeName(cleaned) != "" {
		return "", fmt.Errorf("absolute path %q not allowed", name)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("path %q escapes its root", name)
	}
	return cleaned, nil
}

// SafeJoin joins an untrusted relative path onto root, guaranteeing the
// result stays strictly inside root.
func SafeJoin(root, name string) (string, error) {
	rel, err := CleanRel(name)
	if err != nil {
		return "", err
	}
	joined := filepath.Join(root, filepath.FromSlash(rel))
	cleanRoot := filepath.Clean(root)
	if joined != cleanRoot && !strings.HasPrefix(joined, cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes %q", name, root)
	}
	return joined, nil
}
