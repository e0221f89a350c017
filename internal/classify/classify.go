// Package classify inspects a staged directory tree and determines which
// asset categories it contains. Classification is a pure function of file
// names, extensions and directory names; it never mutates the tree.
package classify

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fmmtools/fmodman/internal/logging"
)

// Plurality thresholds. A single category owning more than pluralityShare of
// the classified files wins outright; otherwise every category above
// mixedShare is listed in a mixed result.
const (
	pluralityShare = 0.60
	mixedShare     = 0.15
)

// Result describes the contents of one staged pack.
type Result struct {
	// Category is the dominant category, Mixed when several qualify, or
	// Unknown when nothing matched a signature.
	Category Category
	// Mixed lists the constituent categories of a mixed pack in descending
	// file-count order. Empty unless Category == Mixed.
	Mixed []Category
	// Confidence is the share of classified files agreeing on the dominant
	// category, in [0,1].
	Confidence float64
	// Breakdown counts classified files per category.
	Breakdown map[Category]int
	// Flat is set when pictures sit at the pack root with no recognized
	// type subdirectories.
	Flat bool
	// HasDescriptor is set when a config.xml with usable mappings was found.
	HasDescriptor bool
	// TotalFiles counts every file seen, classified or not.
	TotalFiles int
	// TotalSize sums the byte size of every file seen.
	TotalSize int64
}

// Scan walks the tree rooted at stagedRoot once and classifies it.
func Scan(stagedRoot string) (*Result, error) {
	var (
		files       []string
		sizes       int64
		descriptors = map[string][]Category{} // dir (slash rel, "." for root) -> categories
		signalSeen  bool
	)

	err := filepath.WalkDir(stagedRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != stagedRoot {
				if _, ok := SignalDirCategory(d.Name()); ok {
					signalSeen = true
				}
			}
			return nil
		}
		rel, err := filepath.Rel(stagedRoot, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		files = append(files, rel)

		if info, err := d.Info(); err == nil {
			sizes += info.Size()
		}

		if strings.EqualFold(d.Name(), "config.xml") {
			cats, err := DescriptorCategories(p)
			if err != nil {
				logging.Debugf("Verbose: unreadable descriptor %s: %v\n", rel, err)
			} else if len(cats) > 0 {
				descriptors[path.Dir(rel)] = cats
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", stagedRoot, err)
	}

	res := &Result{
		Breakdown:     map[Category]int{},
		HasDescriptor: len(descriptors) > 0,
		TotalFiles:    len(files),
		TotalSize:     sizes,
	}

	classified := 0
	rootImages := false
	for _, rel := range files {
		c := fileCategoryWithDescriptors(rel, descriptors)
		if c == Unknown {
			continue
		}
		res.Breakdown[c]++
		classified++
		if path.Dir(rel) == "." && IsImageExt(path.Ext(rel)) {
			rootImages = true
		}
	}
	res.Flat = rootImages && !signalSeen

	if classified == 0 {
		res.Category = Unknown
		return res, nil
	}

	order := make([]Category, 0, len(res.Breakdown))
	for c := range res.Breakdown {
		order = append(order, c)
	}
	sort.Slice(order, func(i, j int) bool {
		if res.Breakdown[order[i]] != res.Breakdown[order[j]] {
			return res.Breakdown[order[i]] > res.Breakdown[order[j]]
		}
		return order[i] < order[j]
	})

	dominant := order[0]
	dominantShare := float64(res.Breakdown[dominant]) / float64(classified)

	if dominantShare > pluralityShare {
		res.Category = dominant
		res.Confidence = dominantShare
		return res, nil
	}

	var qualifying []Category
	for _, c := range order {
		if float64(res.Breakdown[c])/float64(classified) > mixedShare {
			qualifying = append(qualifying, c)
		}
	}
	if len(qualifying) >= 2 {
		res.Category = Mixed
		res.Mixed = qualifying
		res.Confidence = dominantShare
		return res, nil
	}

	// No plurality and nothing else clears the mixed floor: fall back to the
	// plurality leader with its (low) share as confidence.
	res.Category = dominant
	res.Confidence = dominantShare
	return res, nil
}

// fileCategoryWithDescriptors applies descriptor overrides before falling
// back to extension scoring. A config.xml declaring exactly one mapping
// category marks every picture in its subtree as that category.
func fileCategoryWithDescriptors(rel string, descriptors map[string][]Category) Category {
	if len(descriptors) > 0 && IsImageExt(path.Ext(rel)) {
		dir := path.Dir(rel)
		for {
			if cats, ok := descriptors[dir]; ok && len(cats) == 1 {
				return cats[0]
			}
			if dir == "." {
				break
			}
			dir = path.Dir(dir)
		}
	}
	return FileCategory(rel)
}
