package cmd

import (
	"bytes"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/fmmtools/fmodman/internal/logging"
	"github.com/fmmtools/fmodman/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved option profiles",
}

// Flags for profile create
var (
	profUserRoot    *string
	profGameRoot    *string
	profStoreDir    *string
	profKeepBackups *int
	profOverwrite   *bool
	profVerbose     *bool
)

var profileCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new profile",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := &profile.Profile{}

		if cmd.Flags().Changed("user-root") {
			p.UserRoot = profUserRoot
		}
		if cmd.Flags().Changed("game-root") {
			p.GameRoot = profGameRoot
		}
		if cmd.Flags().Changed("store-dir") {
			p.StoreDir = profStoreDir
		}
		if cmd.Flags().Changed("keep-backups") {
			p.KeepBackups = profKeepBackups
		}
		if cmd.Flags().Changed("overwrite") {
			p.Overwrite = profOverwrite
		}
		if cmd.Flags().Changed("verbose") {
			p.Verbose = profVerbose
		}
		if cmd.Flags().Changed("log-file") {
			p.LogFile = &logFile
		}

		if err := profile.Save(args[0], p); err != nil {
			return err
		}
		logging.Infof("Profile %q saved to %s\n", args[0], profile.Dir())
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := profile.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			logging.Infoln("No profiles saved.")
			return nil
		}
		for _, n := range names {
			logging.Infoln(n)
		}
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a profile's contents",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profile.Load(args[0])
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(p); err != nil {
			return err
		}
		logging.Infof("%s", buf.String())
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved profile",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := profile.Delete(args[0]); err != nil {
			return err
		}
		logging.Infof("Profile %q deleted.\n", args[0])
		return nil
	},
}

func init() {
	// Wire up flags for create. We use local variables so they only apply to
	// this subcommand and don't collide with the root/install flags.
	profUserRoot = profileCreateCmd.Flags().String("user-root", "", "Game user-data directory")
	profGameRoot = profileCreateCmd.Flags().String("game-root", "", "Game install asset directory")
	profStoreDir = profileCreateCmd.Flags().String("store-dir", "", "Registry directory for installed-asset state")
	profKeepBackups = profileCreateCmd.Flags().Int("keep-backups", 20, "Number of backup files to retain (0 keeps all)")
	profOverwrite = profileCreateCmd.Flags().Bool("overwrite", false, "Replace destination files that already exist")
	profVerbose = profileCreateCmd.Flags().Bool("verbose", false, "Enable verbose logging")

	profileCmd.AddCommand(profileCreateCmd, profileListCmd, profileShowCmd, profileDeleteCmd)
	rootCmd.AddCommand(profileCmd)
}
