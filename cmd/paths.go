package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fmmtools/fmodman/internal/classify"
	"github.com/fmmtools/fmodman/internal/gamepath"
	"github.com/fmmtools/fmodman/internal/logging"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show resolved game directories and the destination for each asset type",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, _, st, err := openEnv()
		if err != nil {
			return err
		}

		logging.Infof("User root:  %s\n", paths.UserRoot)
		if paths.GameRoot != "" {
			logging.Infof("Game root:  %s\n", paths.GameRoot)
		} else {
			logging.Infoln("Game root:  not detected (pass --game-root to set one)")
		}
		logging.Infof("Store:      %s\n", st.Root())

		if candidates := gamepath.GameRootCandidates(); len(candidates) > 0 {
			logging.Infoln("\nDetected game install candidates:")
			for _, c := range candidates {
				logging.Infof("  %s\n", c)
			}
		}

		logging.Infoln("\nDestinations by type:")
		for _, cat := range classify.Categories {
			if cat == classify.Mixed || cat == classify.Unknown {
				continue
			}
			logging.Infof("  %-12s %s\n", cat, paths.DestinationFor(cat))
		}
		logging.Infof("  %-12s %s\n", "other", paths.DestinationFor(classify.Unknown))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
