// Package archive streams compressed containers into a staging directory.
// ZIP (including raw-split multi-part sets), RAR (including multi-volume
// sets) and tar.gz are supported. Entries are transferred one at a time
// through a bounded reuse buffer; the whole archive is never held in memory.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fmmtools/fmodman/internal/logging"
	"github.com/fmmtools/fmodman/internal/pathutil"
	"github.com/fmmtools/fmodman/internal/progress"
)

const (
	// Transfer buffer reused across entries.
	copyBufSize = 128 * 1024

	// Progress cadence: an event at most every entryCadence entries or
	// byteCadence bytes, whichever comes first.
	entryCadence = 64
	byteCadence  = 8 << 20

	// Caps against malicious containers.
	maxEntries    = 500_000
	maxTotalBytes = int64(50) << 30
)

// stagingLocks serializes extraction per destination directory.
var stagingLocks sync.Map

func lockStaging(destDir string) func() {
	key := filepath.Clean(destDir)
	muIface, _ := stagingLocks.LoadOrStore(key, &sync.Mutex{})
	mu := muIface.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Extract unpacks archivePath into destDir and returns the extraction root.
// Entries whose normalized path would escape destDir are skipped and logged;
// the extraction only fails when no valid entry remains. Cancellation is
// checked between entries; a cancelled extraction removes everything it
// wrote and returns an error satisfying errors.Is(err, context.Canceled).
// Progress events are published to sink, which may be nil.
func Extract(ctx context.Context, archivePath, destDir string, sink *progress.Sink) (string, error) {
	unlock := lockStaging(destDir)
	defer unlock()

	src, err := openSource(archivePath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}

	total := src.Total()
	if total > maxEntries {
		os.RemoveAll(destDir)
		return "", &Error{
			Archive: filepath.Base(archivePath),
			Reason:  ReasonCorrupt,
			Err:     fmt.Errorf("archive reports %d entries, limit is %d", total, maxEntries),
		}
	}

	sink.Emit(progress.Event{Phase: progress.PhaseScanning, Total: total, CurrentFile: filepath.Base(archivePath)})

	var (
		buf            = make([]byte, copyBufSize)
		processed      int
		extracted      int
		skipped        int
		bytesTotal     int64
		sinceEmit      int
		bytesSinceEmit int64
	)

	fail := func(err error) (string, error) {
		os.RemoveAll(destDir)
		return "", err
	}

	for {
		select {
		case <-ctx.Done():
			return fail(fmt.Errorf("extraction cancelled: %w", context.Cause(ctx)))
		default:
		}

		e, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fail(&Error{Archive: filepath.Base(archivePath), Reason: ReasonCorrupt, Err: err})
		}

		processed++
		if processed > maxEntries {
			return fail(&Error{
				Archive: filepath.Base(archivePath),
				Reason:  ReasonCorrupt,
				Err:     fmt.Errorf("more than %d entries", maxEntries),
			})
		}

		outPath, err := pathutil.SafeJoin(destDir, e.name)
		if err != nil {
			skipped++
			logging.Debugf("Verbose: skipped unsafe archive entry %q: %v\n", e.name, err)
			continue
		}

		if e.isDir {
			if err := os.MkdirAll(outPath, 0o755); err != nil {
				return fail(fmt.Errorf("creating directory %s: %w", e.name, err))
			}
			continue
		}

		n, err := writeEntry(e, outPath, buf)
		bytesTotal += n
		if err != nil {
			return fail(classifyWriteError(filepath.Base(archivePath), e.name, err))
		}
		extracted++

		if bytesTotal > maxTotalBytes {
			return fail(&Error{
				Archive: filepath.Base(archivePath),
				Reason:  ReasonCorrupt,
				Err:     fmt.Errorf("extraction exceeded %d byte limit", maxTotalBytes),
			})
		}

		sinceEmit++
		bytesSinceEmit += n
		if sinceEmit >= entryCadence || bytesSinceEmit >= byteCadence {
			sink.Emit(progress.Event{
				Phase:       progress.PhaseExtracting,
				Current:     extracted,
				Total:       total,
				CurrentFile: e.name,
				Bytes:       bytesTotal,
			})
			sinceEmit = 0
			bytesSinceEmit = 0
		}
	}

	if extracted == 0 {
		return fail(&Error{Archive: filepath.Base(archivePath), Reason: ReasonNoEntries})
	}
	if skipped > 0 {
		logging.Warnf("%d entries in %s skipped for unsafe paths\n", skipped, filepath.Base(archivePath))
	}

	sink.Emit(progress.Event{
		Phase:   progress.PhaseExtracting,
		Current: extracted,
		Total:   total,
		Bytes:   bytesTotal,
	})
	return destDir, nil
}

func writeEntry(e *entry, outPath string, buf []byte) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, err
	}
	rc, err := e.open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	n, err := io.CopyBuffer(out, rc, buf)
	closeErr := out.Close()
	if err != nil {
		return n, err
	}
	return n, closeErr
}

func classifyWriteError(archiveName, entryName string, err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return &Error{Archive: archiveName, Reason: ReasonNoSpace, Err: err}
	}
	return fmt.Errorf("extracting %s from %s: %w", entryName, archiveName, err)
}
