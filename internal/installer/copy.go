package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fmmtools/fmodman/internal/backup"
	"github.com/fmmtools/fmodman/internal/logging"
	"github.com/fmmtools/fmodman/internal/manifest"
	"github.com/fmmtools/fmodman/internal/pathutil"
	"github.com/fmmtools/fmodman/internal/platform"
	"github.com/fmmtools/fmodman/internal/progress"
)

const (
	copyBufSize = 128 * 1024
	fileCadence = 64
	byteCadence = 8 << 20
)

// copyRules applies a routing plan against the destination base. It returns
// the paths created by this operation and, per overwritten path, the backup
// that preserves the prior content. The caller rolls both back on failure.
func copyRules(ctx context.Context, contentRoot, base string, rules []manifest.FileRule, opts Options, backupDir string, sink *progress.Sink) ([]string, map[string]string, error) {
	var (
		written []string
		backups = map[string]string{}
		buf     = make([]byte, copyBufSize)
		bytes   int64
		current = platform.Current()
	)

	emit := func(i int, file string) {
		sink.Emit(progress.Event{
			Phase:       progress.PhaseCopying,
			Current:     i,
			Total:       len(rules),
			CurrentFile: file,
			Bytes:       bytes,
		})
	}
	emit(0, "")

	lastBytes := int64(0)
	for i, rule := range rules {
		if err := ctx.Err(); err != nil {
			return written, backups, fmt.Errorf("install cancelled: %w", context.Cause(ctx))
		}
		if !rule.Platform.Matches(current) {
			logging.Debugf("Verbose: skipping %s: tagged for platform %q\n", rule.Source, rule.Platform)
			continue
		}

		src, err := pathutil.SafeJoin(contentRoot, rule.Source)
		if err != nil {
			return written, backups, fmt.Errorf("file rule source %s: %w", rule.Source, err)
		}
		dst, err := pathutil.SafeJoin(base, rule.Target)
		if err != nil {
			return written, backups, fmt.Errorf("file rule target %s: %w", rule.Target, err)
		}
		fi, err := os.Stat(src)
		if err != nil {
			// Pre-authored manifests may name files the archive variant
			// does not carry.
			logging.Debugf("Verbose: skipping %s: not present in source\n", rule.Source)
			continue
		}

		existed := false
		if _, err := os.Stat(dst); err == nil {
			existed = true
			if !opts.Overwrite {
				return written, backups, fmt.Errorf("destination %s already exists (use overwrite to replace it)", dst)
			}
			if _, ok := backups[dst]; !ok {
				bak, err := backup.Create(backupDir, dst)
				if err != nil {
					return written, backups, fmt.Errorf("backing up %s: %w", dst, err)
				}
				backups[dst] = bak
			}
		}

		if err := copyFileBuf(src, dst, buf); err != nil {
			return written, backups, fmt.Errorf("installing %s: %w", rule.Target, err)
		}
		if !existed {
			written = append(written, dst)
		}
		bytes += fi.Size()

		if (i+1)%fileCadence == 0 || bytes-lastBytes >= byteCadence {
			lastBytes = bytes
			emit(i+1, rule.Target)
		}
	}
	emit(len(rules), "")
	return written, backups, nil
}

// rollback removes files created by a failed operation and restores any
// files it overwrote. Emptied directories are pruned afterward.
func rollback(written []string, backups map[string]string) {
	for _, p := range written {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			logging.Warnf("rollback: removing %s: %v\n", p, err)
			continue
		}
		removeEmptyParents(p)
	}
	for dst, bak := range backups {
		if err := backup.Restore(bak, dst); err != nil {
			logging.Warnf("rollback: restoring %s: %v\n", dst, err)
		}
	}
}

// removeEmptyParents deletes the file's parent directories upward until a
// non-empty one is reached. os.Remove refuses non-empty directories, which
// is exactly the stop condition.
func removeEmptyParents(p string) {
	for dir := filepath.Dir(p); ; dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			return
		}
	}
}

func copyFileBuf(src, dst string, buf []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
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
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

func copyFileAtomic(src, dst string) error {
	return copyFileBuf(src, dst, make([]byte, copyBufSize))
}
