package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/fmmtools/fmodman/internal/archive"
	"github.com/fmmtools/fmodman/internal/backup"
	"github.com/fmmtools/fmodman/internal/classify"
	"github.com/fmmtools/fmodman/internal/conflict"
	"github.com/fmmtools/fmodman/internal/logging"
	"github.com/fmmtools/fmodman/internal/manifest"
	"github.com/fmmtools/fmodman/internal/platform"
	"github.com/fmmtools/fmodman/internal/progress"
	"github.com/fmmtools/fmodman/internal/route"
)

// maxWrapperDepth bounds the descent through nested single-directory
// wrappers that archive tools commonly add around pack content.
const maxWrapperDepth = 4

// Install runs the full pipeline for one source. On success the asset is
// registered and enabled; on any error no registry change is made and any
// files copied by this operation are removed again. The sink, if non-nil,
// receives progress events and exactly one terminal event.
func (ins *Installer) Install(ctx context.Context, opts Options, sink *progress.Sink) (*Result, error) {
	opID := uuid.NewString()
	res := &Result{OpID: opID, Stage: StageIdle}

	err := ins.install(ctx, opID, opts, sink, res)
	switch {
	case err == nil:
		res.Stage = StageDone
		sink.Done()
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		res.Stage = StageCancelled
		sink.Cancel()
	default:
		res.Stage = StageFailed
		sink.Fail(err)
	}
	return res, err
}

func (ins *Installer) install(ctx context.Context, opID string, opts Options, sink *progress.Sink, res *Result) error {
	res.Stage = StageStaging
	stagedRoot, cleanup, err := ins.stage(ctx, opID, opts.Source, sink)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	contentRoot, err := contentRoot(stagedRoot)
	if err != nil {
		return err
	}

	asset, err := loadOrBuildManifest(contentRoot, opts.Metadata)
	if err != nil {
		return err
	}

	res.Stage = StageClassifying
	cls, err := classify.Scan(contentRoot)
	if err != nil {
		return fmt.Errorf("classifying %s: %w", contentRoot, err)
	}
	res.Classification = cls
	if asset.Type == "" || asset.Type == classify.Unknown {
		asset.Type = cls.Category
	}
	if asset.Type == classify.Unknown {
		logging.Warnf("could not determine a type for %q; files keep their archive layout under the game install\n", asset.Name)
	}

	res.Stage = StageRouting
	plan, err := buildPlan(contentRoot, asset, cls)
	if err != nil {
		return err
	}
	res.Plan = plan
	if len(plan.Rules) == 0 {
		return fmt.Errorf("source %s contains no installable files", opts.Source)
	}

	res.Stage = StageConflictCheck
	if err := ins.checkConflicts(opID, asset, plan, opts); err != nil {
		return err
	}

	res.Stage = StageCopying
	base := opts.Paths.BaseFor(asset.Type)
	written, backups, err := copyRules(ctx, contentRoot, base, plan.Rules, opts, ins.store.BackupDir(), sink)
	if err != nil {
		rollback(written, backups)
		return err
	}

	res.Stage = StageFinalizing
	sink.Emit(progress.Event{
		Phase:   progress.PhaseValidating,
		Current: len(plan.Rules),
		Total:   len(plan.Rules),
	})
	asset.ID = opID
	asset.Files = plan.Rules
	if err := ins.store.Add(asset); err != nil {
		rollback(written, backups)
		return fmt.Errorf("registering %q: %w", asset.Name, err)
	}
	if opts.KeepBackups > 0 {
		if err := backup.Prune(ins.store.BackupDir(), opts.KeepBackups); err != nil {
			logging.Warnf("pruning backups: %v\n", err)
		}
	}
	res.Asset = asset
	return nil
}

// stage materializes the source under a per-operation staging directory, or
// adopts it in place when it is already a directory. The returned cleanup is
// nil for adopted directories.
func (ins *Installer) stage(ctx context.Context, opID, source string, sink *progress.Sink) (string, func(), error) {
	fi, err := os.Stat(source)
	if err != nil {
		return "", nil, fmt.Errorf("reading source: %w", err)
	}
	if fi.IsDir() {
		return source, nil, nil
	}

	staging := ins.store.StagingDir(opID)
	cleanup := func() { _ = os.RemoveAll(staging) }
	if archive.Supported(source) {
		root, err := archive.Extract(ctx, source, staging, sink)
		if err != nil {
			cleanup()
			return "", nil, err
		}
		return root, cleanup, nil
	}

	// Loose single files (a .fmf tactic, an .edt change file) are staged as
	// a one-file tree so the rest of the pipeline stays uniform.
	if classify.FileCategory(filepath.Base(source)) == classify.Unknown {
		return "", nil, fmt.Errorf("unsupported source %s: not an archive, directory, or recognized asset file", source)
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating staging directory: %w", err)
	}
	if err := copyFileAtomic(source, filepath.Join(staging, filepath.Base(source))); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("staging %s: %w", source, err)
	}
	return staging, cleanup, nil
}

// contentRoot descends through wrapper directories until it reaches the
// actual pack content. A directory containing a manifest wins immediately; a
// lone child that is itself a category marker is content, not a wrapper.
func contentRoot(root string) (string, error) {
	dir := root
	for depth := 0; depth <= maxWrapperDepth; depth++ {
		if _, ok := manifest.Find(dir); ok {
			return dir, nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", fmt.Errorf("reading staged content: %w", err)
		}
		if len(entries) != 1 || !entries[0].IsDir() {
			return dir, nil
		}
		if _, ok := classify.SignalDirCategory(entries[0].Name()); ok {
			return dir, nil
		}
		dir = filepath.Join(dir, entries[0].Name())
	}
	return dir, nil
}

// loadOrBuildManifest prefers an embedded manifest, then supplied metadata.
func loadOrBuildManifest(contentRoot string, meta *Metadata) (*manifest.Asset, error) {
	if _, ok := manifest.Find(contentRoot); ok {
		return manifest.Load(contentRoot)
	}
	if meta == nil || meta.Name == "" {
		return nil, ErrNeedsMetadata
	}
	return &manifest.Asset{
		Name:        meta.Name,
		Version:     meta.Version,
		Type:        meta.Type,
		Author:      meta.Author,
		Description: meta.Description,
	}, nil
}

// buildPlan uses pre-authored file rules when the manifest carries them, and
// derives a plan from the staged tree otherwise.
func buildPlan(contentRoot string, asset *manifest.Asset, cls *classify.Result) (*route.Plan, error) {
	if len(asset.Files) > 0 {
		if err := asset.Validate(); err != nil {
			return nil, err
		}
		return &route.Plan{Primary: asset.Type, Rules: asset.Files}, nil
	}
	plan, err := route.Build(contentRoot, cls)
	if err != nil {
		return nil, err
	}
	for _, rel := range plan.Relocations {
		logging.Debugf("Verbose: relocating %s: %s -> %s\n", rel.Source, rel.From, rel.To)
	}
	return plan, nil
}

func (ins *Installer) checkConflicts(candidateID string, asset *manifest.Asset, plan *route.Plan, opts Options) error {
	base := opts.Paths.BaseFor(asset.Type)
	current := platform.Current()
	candidate := make([]string, 0, len(plan.Rules))
	for _, rule := range plan.Rules {
		if !rule.Platform.Matches(current) {
			continue
		}
		candidate = append(candidate, filepath.Join(base, filepath.FromSlash(rule.Target)))
	}

	installed, err := ins.store.Ownership(opts.Paths, true)
	if err != nil {
		return fmt.Errorf("computing conflicts: %w", err)
	}
	records := conflict.Detect(candidateID, candidate, installed)
	if len(records) == 0 {
		return nil
	}
	if !opts.ConfirmConflicts {
		return &ConflictError{Records: records}
	}
	logging.Warnf("%d path(s) overlap installed assets; the later install wins on shared paths\n", len(records))
	return nil
}
