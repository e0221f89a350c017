package cmd

import (
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/fmmtools/fmodman/internal/progress"
)

// renderProgress draws one bar per pipeline phase from an operation's event
// stream and returns when the stream terminates. Indeterminate totals render
// as a spinner.
func renderProgress(stream *progress.Stream) {
	var (
		bar   *progressbar.ProgressBar
		phase progress.Phase
		total int
	)
	finish := func() {
		if bar != nil {
			_ = bar.Finish()
			bar = nil
		}
	}
	defer finish()

	for ev := range stream.Events() {
		if ev.Terminal() {
			return
		}
		if bar == nil || ev.Phase != phase || ev.Total != total {
			finish()
			phase, total = ev.Phase, ev.Total
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(string(phase)),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
				progressbar.OptionSpinnerType(14),
			)
		}
		_ = bar.Set(ev.Current)
	}
}
