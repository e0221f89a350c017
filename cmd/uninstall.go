package cmd

import (
	"github.com/mitchellh/colorstring"
	"github.com/spf13/cobra"

	"github.com/fmmtools/fmodman/internal/logging"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <asset>",
	Short: "Remove an installed add-on by id or name",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, ins, _, err := openEnv()
		if err != nil {
			return err
		}
		res, err := ins.Uninstall(args[0], paths)
		if err != nil {
			return err
		}
		colorstring.Printf("[green]Uninstalled[reset] %s: %d file(s) removed", res.Asset.Name, len(res.Removed))
		if len(res.Kept) > 0 {
			logging.Infof(", %d kept (shared with other assets)", len(res.Kept))
		}
		if res.Restored > 0 {
			logging.Infof(", %d restored from backup", res.Restored)
		}
		logging.Infoln("")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
