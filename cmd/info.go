package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fmmtools/fmodman/internal/logging"
)

var infoFiles bool

var infoCmd = &cobra.Command{
	Use:   "info <asset>",
	Short: "Show an installed add-on's details",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, st, err := openEnv()
		if err != nil {
			return err
		}
		a, err := st.Resolve(args[0])
		if err != nil {
			return err
		}

		logging.Infof("Name:     %s\n", a.Name)
		logging.Infof("ID:       %s\n", a.ID)
		logging.Infof("Type:     %s\n", a.Type)
		if a.Version != "" {
			logging.Infof("Version:  %s\n", a.Version)
		}
		if a.Author != "" {
			logging.Infof("Author:   %s\n", a.Author)
		}
		if a.Homepage != "" {
			logging.Infof("Homepage: %s\n", a.Homepage)
		}
		if a.License != "" {
			logging.Infof("License:  %s\n", a.License)
		}
		if a.Compatibility.GameVersion != "" {
			logging.Infof("Game:     %s\n", a.Compatibility.GameVersion)
		}
		if a.Description != "" {
			logging.Infof("\n%s\n", a.Description)
		}
		state := "disabled"
		if st.Enabled(a.ID) {
			state = "enabled"
		}
		logging.Infof("State:    %s\n", state)
		logging.Infof("Files:    %d\n", len(a.Files))
		if infoFiles {
			for _, r := range a.Files {
				if r.Platform != "" {
					logging.Infof("  %s [%s]\n", r.Target, r.Platform)
					continue
				}
				logging.Infof("  %s\n", r.Target)
			}
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoFiles, "files", false, "List every destination path the add-on owns")
	rootCmd.AddCommand(infoCmd)
}
