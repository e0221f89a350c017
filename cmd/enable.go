package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fmmtools/fmodman/internal/logging"
)

var enableCmd = &cobra.Command{
	Use:   "enable <asset>",
	Short: "Enable an installed add-on",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(args[0], true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable <asset>",
	Short: "Disable an installed add-on without removing its files",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(args[0], false)
	},
}

func setEnabled(ref string, enabled bool) error {
	_, _, st, err := openEnv()
	if err != nil {
		return err
	}
	a, err := st.Resolve(ref)
	if err != nil {
		return err
	}
	if err := st.SetEnabled(a.ID, enabled); err != nil {
		return err
	}
	if enabled {
		logging.Infof("Enabled %s.\n", a.Name)
	} else {
		logging.Infof("Disabled %s. Its files stay on disk but are ignored by conflict checks.\n", a.Name)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(enableCmd, disableCmd)
}
