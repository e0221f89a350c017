// Package backup snapshots destination files before they are overwritten and
// restores the most recent snapshot on uninstall or rollback.
package backup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const timeFormat = "20060102_150405"

// Create copies targetFile into backupDir under a timestamped name and
// returns the backup path. A missing target is not an error; it simply has
// nothing to back up.
func Create(backupDir, targetFile string) (string, error) {
	if _, err := os.Stat(targetFile); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("checking %s: %w", targetFile, err)
	}
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.bak", filepath.Base(targetFile), time.Now().Format(timeFormat))
	dst := filepath.Join(backupDir, name)
	if err := copyFile(targetFile, dst); err != nil {
		return "", fmt.Errorf("backing up %s: %w", targetFile, err)
	}
	return dst, nil
}

// Restore copies a backup produced by Create back over targetFile and
// removes the backup.
func Restore(backupPath, targetFile string) error {
	if err := os.MkdirAll(filepath.Dir(targetFile), 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}
	if err := copyFile(backupPath, targetFile); err != nil {
		return fmt.Errorf("restoring %s: %w", targetFile, err)
	}
	return os.Remove(backupPath)
}

// RestoreLatest finds the newest backup of targetFile in backupDir and
// restores it. It reports whether a backup was found.
func RestoreLatest(backupDir, targetFile string) (bool, error) {
	prefix := filepath.Base(targetFile) + "_"

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading backup directory: %w", err)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return false, nil
	}
	// Timestamped names sort chronologically.
	sort.Strings(candidates)
	latest := filepath.Join(backupDir, candidates[len(candidates)-1])
	if err := Restore(latest, targetFile); err != nil {
		return false, err
	}
	return true, nil
}

// Prune keeps the newest keep backups and removes the rest.
func Prune(backupDir string, keep int) error {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading backup directory: %w", err)
	}

	type stamped struct {
		path string
		mod  time.Time
	}
	var backups []stamped
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".bak") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, stamped{path: filepath.Join(backupDir, e.Name()), mod: info.ModTime()})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].mod.After(backups[j].mod) })

	for i := keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].path); err != nil {
			return fmt.Errorf("pruning backup: %w", err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	closeErr := out.Close()
	if err != nil {
		os.Remove(tmp)
		return err
	}
	if closeErr != nil {
		os.Remove(tmp)
		return closeErr
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
