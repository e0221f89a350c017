package cmd

import (
	"context"
	"os"
	"os/signal"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/colorstring"
	"github.com/spf13/cobra"

	"github.com/fmmtools/fmodman/internal/installer"
	"github.com/fmmtools/fmodman/internal/logging"
	"github.com/fmmtools/fmodman/internal/progress"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <archive-or-directory>",
	Short: "Classify a source and preview where its files would go, without installing",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ins, _, err := openEnv()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		stream := progress.NewStream(64)
		var (
			an   *installer.Analysis
			rerr error
			done = make(chan struct{})
		)
		go func() {
			defer close(done)
			an, rerr = ins.Analyze(ctx, args[0], stream.Sink(args[0]))
		}()
		renderProgress(stream)
		<-done
		if rerr != nil {
			return rerr
		}

		cls := an.Classification
		colorstring.Printf("Type: [green]%s[reset] (%.0f%% confidence)\n", cls.Category, cls.Confidence*100)
		for _, mixed := range cls.Mixed {
			logging.Infof("  contains: %s\n", mixed)
		}
		logging.Infof("Files: %d, %s\n", cls.TotalFiles, humanize.IBytes(uint64(cls.TotalSize)))
		if cls.HasDescriptor {
			logging.Infoln("A config.xml descriptor refined the picture categories.")
		}
		if cls.Flat {
			logging.Infoln("Pictures sit at the pack root; they will be routed by the pack type.")
		}

		type count struct {
			cat string
			n   int
		}
		counts := make([]count, 0, len(cls.Breakdown))
		for cat, n := range cls.Breakdown {
			counts = append(counts, count{string(cat), n})
		}
		sort.Slice(counts, func(i, j int) bool { return counts[i].n > counts[j].n })
		for _, c := range counts {
			logging.Infof("  %-12s %d\n", c.cat, c.n)
		}

		if len(an.Plan.Relocations) > 0 {
			logging.Infoln("\nRelocations (files leaving the pack's own layout):")
			for _, rel := range an.Plan.Relocations {
				logging.Infof("  %s: %s -> %s\n", rel.Source, rel.From, rel.To)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
