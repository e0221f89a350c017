package cmd

import (
	"github.com/mitchellh/colorstring"
	"github.com/spf13/cobra"

	"github.com/fmmtools/fmodman/internal/logging"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed add-ons",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, st, err := openEnv()
		if err != nil {
			return err
		}
		assets, err := st.List()
		if err != nil {
			return err
		}
		if len(assets) == 0 {
			logging.Infoln("No add-ons installed.")
			return nil
		}
		for _, a := range assets {
			state := "[green]enabled [reset]"
			if !st.Enabled(a.ID) {
				state = "[red]disabled[reset]"
			}
			colorstring.Printf("%s  %-12s %s", state, a.Type, a.Name)
			if a.Version != "" {
				logging.Infof(" %s", a.Version)
			}
			logging.Infof("  (%d files, id %s)\n", len(a.Files), a.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
