package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nwaples/rardecode/v2"
)

// entry is one archive member, format-independent.
type entry struct {
	name  string
	isDir bool
	open  func() (io.ReadCloser, error)
}

// source iterates an archive's entries in container order. Total is -1 when
// the container cannot report a count without a full pass.
type source interface {
	Total() int
	Next() (*entry, error) // io.EOF after the last entry
	Close() error
}

// openSource resolves multi-part sets and opens the right reader for the
// container format.
func openSource(archivePath string) (source, error) {
	parts, err := resolveParts(archivePath)
	if err != nil {
		return nil, err
	}

	base := strings.ToLower(filepath.Base(archivePath))
	switch {
	case strings.HasSuffix(base, ".zip") || strings.HasSuffix(base, ".z01") ||
		suffixRe.MatchString(base):
		return openZip(archivePath, parts)
	case strings.HasSuffix(base, ".rar"):
		return openRar(archivePath)
	case strings.HasSuffix(base, ".tar.gz") || strings.HasSuffix(base, ".tgz"):
		return openTarGz(archivePath)
	default:
		return nil, &Error{Archive: filepath.Base(archivePath), Reason: ReasonUnsupported}
	}
}

type zipSource struct {
	reader *zip.Reader
	closer io.Closer
	next   int
}

func openZip(archivePath string, parts []string) (*zipSource, error) {
	ra, err := openMultiReaderAt(parts)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(archivePath), err)
	}

	zr, err := zip.NewReader(ra, ra.Size())
	if err != nil {
		ra.Close()
		// A split set whose central directory never appeared is a truncated
		// set: name the part that should come next rather than calling the
		// whole archive corrupt.
		if next := nextPartName(archivePath, len(parts)); next != "" {
			return nil, &Error{Archive: filepath.Base(archivePath), Reason: ReasonMissingPart, MissingPart: next}
		}
		return nil, &Error{Archive: filepath.Base(archivePath), Reason: ReasonCorrupt, Err: err}
	}
	return &zipSource{reader: zr, closer: ra}, nil
}

func (z *zipSource) Total() int { return len(z.reader.File) }

func (z *zipSource) Next() (*entry, error) {
	if z.next >= len(z.reader.File) {
		return nil, io.EOF
	}
	f := z.reader.File[z.next]
	z.next++
	return &entry{
		name:  f.Name,
		isDir: f.FileInfo().IsDir(),
		open:  func() (io.ReadCloser, error) { return f.Open() },
	}, nil
}

func (z *zipSource) Close() error { return z.closer.Close() }

type tarGzSource struct {
	file *os.File
	gz   *gzip.Reader
	tr   *tar.Reader
}

func openTarGz(archivePath string) (*tarGzSource, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(archivePath), err)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, &Error{Archive: filepath.Base(archivePath), Reason: ReasonCorrupt, Err: err}
	}
	return &tarGzSource{file: f, gz: gz, tr: tar.NewReader(gz)}, nil
}

func (t *tarGzSource) Total() int { return -1 }

func (t *tarGzSource) Next() (*entry, error) {
	for {
		hdr, err := t.tr.Next()
		if err != nil {
			return nil, err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			return &entry{name: hdr.Name, isDir: true}, nil
		case tar.TypeReg:
			tr := t.tr
			return &entry{
				name: hdr.Name,
				open: func() (io.ReadCloser, error) { return io.NopCloser(tr), nil },
			}, nil
		default:
			// Symlinks and specials are not meaningful inside mod packs.
			continue
		}
	}
}

func (t *tarGzSource) Close() error {
	gzErr := t.gz.Close()
	if err := t.file.Close(); err != nil {
		return err
	}
	return gzErr
}

type rarSource struct {
	rc *rardecode.ReadCloser
}

func openRar(archivePath string) (*rarSource, error) {
	rc, err := rardecode.OpenReader(archivePath)
	if err != nil {
		return nil, &Error{Archive: filepath.Base(archivePath), Reason: ReasonCorrupt, Err: err}
	}
	return &rarSource{rc: rc}, nil
}

func (r *rarSource) Total() int { return -1 }

func (r *rarSource) Next() (*entry, error) {
	hdr, err := r.rc.Next()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	return &entry{
		name:  hdr.Name,
		isDir: hdr.IsDir,
		open:  func() (io.ReadCloser, error) { return io.NopCloser(r.rc), nil },
	}, nil
}

func (r *rarSource) Close() error { return r.rc.Close() }

// Supported reports whether the path names a container format Extract can
// open, by extension.
func Supported(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	return strings.HasSuffix(base, ".zip") || strings.HasSuffix(base, ".rar") ||
		strings.HasSuffix(base, ".tar.gz") || strings.HasSuffix(base, ".tgz") ||
		strings.HasSuffix(base, ".z01") || suffixRe.MatchString(base)
}
