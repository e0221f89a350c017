package installer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fmmtools/fmodman/internal/classify"
	"github.com/fmmtools/fmodman/internal/progress"
	"github.com/fmmtools/fmodman/internal/route"
)

// Analysis is a dry-run over a source: what it classifies as and where its
// files would go. Nothing is written outside the staging area.
type Analysis struct {
	ContentRoot    string
	Classification *classify.Result
	Plan           *route.Plan
}

// Analyze stages a source the same way Install does and stops after the
// routing stage. Archive sources are extracted into staging and cleaned up
// before returning.
func (ins *Installer) Analyze(ctx context.Context, source string, sink *progress.Sink) (*Analysis, error) {
	out, err := ins.analyze(ctx, source, sink)
	if err != nil {
		sink.Fail(err)
		return nil, err
	}
	sink.Done()
	return out, nil
}

func (ins *Installer) analyze(ctx context.Context, source string, sink *progress.Sink) (*Analysis, error) {
	stagedRoot, cleanup, err := ins.stage(ctx, uuid.NewString(), source, sink)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	root, err := contentRoot(stagedRoot)
	if err != nil {
		return nil, err
	}
	cls, err := classify.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("classifying %s: %w", root, err)
	}
	plan, err := route.Build(root, cls)
	if err != nil {
		return nil, err
	}
	return &Analysis{ContentRoot: root, Classification: cls, Plan: plan}, nil
}
