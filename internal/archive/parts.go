package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// Multi-part archives are recognized by sequential-part naming. Only the
// first part is handed to Extract; the part set is resolved here and any gap
// in the sequence fails naming the exact missing file.

var (
	// pack.part01.zip
	partNNRe = regexp.MustCompile(`(?i)^(.*)\.part(\d+)(\.(?:zip|rar))$`)
	// pack.zip.001
	suffixRe = regexp.MustCompile(`(?i)^(.*\.zip)\.(\d{3})$`)
	// pack.z01, with a trailing pack.zip volume
	zNNRe = regexp.MustCompile(`(?i)^(.*)\.z(\d{2})$`)
)

// partScheme generates the filename of the i-th part of a set. final names a
// trailing volume outside the numbered sequence (the .zip of a .z01 set).
type partScheme struct {
	dir   string
	name  func(i int) string
	first int
	final string
}

// splitParts parses a multi-part filename. ok is false for plain archives.
func splitParts(path string) (*partScheme, bool) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	if m := partNNRe.FindStringSubmatch(base); m != nil {
		width := len(m[2])
		stem, ext := m[1], m[3]
		return &partScheme{
			dir:   dir,
			first: 1,
			name:  func(i int) string { return fmt.Sprintf("%s.part%0*d%s", stem, width, i, ext) },
		}, true
	}
	if m := suffixRe.FindStringSubmatch(base); m != nil {
		stem := m[1]
		return &partScheme{
			dir:   dir,
			first: 1,
			name:  func(i int) string { return fmt.Sprintf("%s.%03d", stem, i) },
		}, true
	}
	if m := zNNRe.FindStringSubmatch(base); m != nil {
		stem := m[1]
		return &partScheme{
			dir:   dir,
			first: 1,
			final: stem + ".zip",
			name: func(i int) string {
				return fmt.Sprintf("%s.z%02d", stem, i)
			},
		}, true
	}
	return nil, false
}

// resolveParts returns the ordered part paths for the set containing first.
// A gap in the sequence is reported as a missing-part Error.
func resolveParts(first string) ([]string, error) {
	scheme, ok := splitParts(first)
	if !ok {
		return []string{first}, nil
	}

	max := scheme.first
	entries, err := os.ReadDir(scheme.dir)
	if err != nil {
		return nil, fmt.Errorf("reading archive directory: %w", err)
	}
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}
	for i := scheme.first; ; i++ {
		if names[scheme.name(i)] {
			max = i
			continue
		}
		// Scan a little past the first gap to catch part01+part03 sets.
		gapEnd := i + 99
		found := false
		for j := i + 1; j <= gapEnd; j++ {
			if names[scheme.name(j)] {
				max = j
				found = true
				break
			}
		}
		if !found {
			break
		}
	}

	var parts []string
	for i := scheme.first; i <= max; i++ {
		p := filepath.Join(scheme.dir, scheme.name(i))
		if !names[scheme.name(i)] {
			return nil, &Error{Archive: first, Reason: ReasonMissingPart, MissingPart: scheme.name(i)}
		}
		parts = append(parts, p)
	}
	if scheme.final != "" {
		if !names[scheme.final] {
			return nil, &Error{Archive: first, Reason: ReasonMissingPart, MissingPart: scheme.final}
		}
		parts = append(parts, filepath.Join(scheme.dir, scheme.final))
	}
	return parts, nil
}

// nextPartName returns the filename that would follow the last resolved part,
// used to name the part a truncated set is missing.
func nextPartName(first string, have int) string {
	scheme, ok := splitParts(first)
	if !ok {
		return ""
	}
	return scheme.name(scheme.first + have)
}

// multiReaderAt presents a sequence of files as one contiguous io.ReaderAt,
// the layout raw byte-split zip volumes use.
type multiReaderAt struct {
	files   []*os.File
	offsets []int64
	size    int64
}

func openMultiReaderAt(paths []string) (*multiReaderAt, error) {
	m := &multiReaderAt{}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			m.Close()
			return nil, err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			m.Close()
			return nil, err
		}
		m.files = append(m.files, f)
		m.offsets = append(m.offsets, m.size)
		m.size += info.Size()
	}
	return m, nil
}

func (m *multiReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= m.size {
		return 0, io.EOF
	}
	total := 0
	for total < len(p) {
		idx := sort.Search(len(m.offsets), func(i int) bool { return m.offsets[i] > off }) - 1
		if idx < 0 {
			idx = 0
		}
		n, err := m.files[idx].ReadAt(p[total:], off-m.offsets[idx])
		total += n
		off += int64(n)
		if off >= m.size {
			if total < len(p) {
				return total, io.EOF
			}
			return total, nil
		}
		if err != nil && err != io.EOF {
			return total, err
		}
		if n == 0 {
			return total, io.ErrUnexpectedEOF
		}
	}
	return total, nil
}

func (m *multiReaderAt) Size() int64 { return m.size }

func (m *multiReaderAt) Close() error {
	var first error
	for _, f := range m.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
