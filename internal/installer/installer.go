// Package installer sequences the install pipeline: stage the source,
// classify it, compute the routing plan, check conflicts, copy files and
// commit the manifest. Failure at any stage leaves previously-installed
// assets untouched; files written by the failed operation are rolled back.
package installer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fmmtools/fmodman/internal/classify"
	"github.com/fmmtools/fmodman/internal/conflict"
	"github.com/fmmtools/fmodman/internal/gamepath"
	"github.com/fmmtools/fmodman/internal/manifest"
	"github.com/fmmtools/fmodman/internal/route"
	"github.com/fmmtools/fmodman/internal/store"
)

// Stage identifies where in the pipeline an operation is (or stopped).
type Stage string

const (
	StageIdle          Stage = "idle"
	StageStaging       Stage = "staging"
	StageClassifying   Stage = "classifying"
	StageRouting       Stage = "routing"
	StageConflictCheck Stage = "conflict-check"
	StageCopying       Stage = "copying"
	StageFinalizing    Stage = "finalizing"
	StageDone          Stage = "done"
	StageFailed        Stage = "failed"
	StageCancelled     Stage = "cancelled"
)

// Metadata supplies manifest fields for sources that ship without one.
type Metadata struct {
	Name        string
	Version     string
	Type        classify.Category
	Author      string
	Description string
}

// Options configures one install operation.
type Options struct {
	// Source is an archive path or a directory to adopt.
	Source string
	// Metadata is used only when the source has no discoverable manifest.
	Metadata *Metadata
	// ConfirmConflicts lets the install proceed when destination paths
	// overlap already-installed assets. Without it, conflicts abort.
	ConfirmConflicts bool
	// Overwrite permits replacing destination files that already exist on
	// disk. Replaced files are backed up first.
	Overwrite bool
	// KeepBackups bounds the backup directory after a successful install;
	// zero keeps everything.
	KeepBackups int
	Paths       gamepath.Paths
}

// Result reports a completed (or stopped) install.
type Result struct {
	OpID           string
	Stage          Stage
	Asset          *manifest.Asset
	Classification *classify.Result
	Plan           *route.Plan
}

// ErrNeedsMetadata distinguishes a source with neither an embedded manifest
// nor supplied metadata from a real failure: the caller should ask the user
// and retry.
var ErrNeedsMetadata = errors.New("source has no manifest; name and type metadata are required")

// ConflictError carries the overlapping destinations that stopped an
// unconfirmed install.
type ConflictError struct {
	Records []conflict.Record
}

func (e *ConflictError) Error() string {
	paths := make([]string, 0, len(e.Records))
	for _, r := range e.Records {
		paths = append(paths, r.Path)
	}
	return fmt.Sprintf("%d destination path(s) conflict with installed assets: %s",
		len(e.Records), strings.Join(paths, ", "))
}

// Installer runs install and uninstall operations against one registry.
type Installer struct {
	store *store.Store
}

// New returns an Installer backed by the given registry.
func New(st *store.Store) *Installer {
	return &Installer{store: st}
}
