package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fmmtools/fmodman/internal/gamepath"
	"github.com/fmmtools/fmodman/internal/installer"
	"github.com/fmmtools/fmodman/internal/logging"
	"github.com/fmmtools/fmodman/internal/profile"
	"github.com/fmmtools/fmodman/internal/store"
)

var (
	userRoot    string
	gameRoot    string
	storeDir    string
	profileName string
	verbose     bool
	logFile     string
)

var rootCmd = &cobra.Command{
	Use:           "fmodman",
	Short:         "Mod and graphics manager for Football Manager",
	Long:          "Install, inspect and remove Football Manager add-ons: graphics packs, tactics, editor data and skins, from archives or folders.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Apply profile defaults for flags not explicitly set by the user.
		if profileName != "" {
			p, err := profile.Load(profileName)
			if err != nil {
				return err
			}
			if p.UserRoot != nil && !cmd.Flags().Changed("user-root") {
				userRoot = *p.UserRoot
			}
			if p.GameRoot != nil && !cmd.Flags().Changed("game-root") {
				gameRoot = *p.GameRoot
			}
			if p.StoreDir != nil && !cmd.Flags().Changed("store-dir") {
				storeDir = *p.StoreDir
			}
			if p.KeepBackups != nil && !cmd.Flags().Changed("keep-backups") {
				keepBackups = *p.KeepBackups
			}
			if p.Overwrite != nil && !cmd.Flags().Changed("overwrite") {
				overwrite = *p.Overwrite
			}
			if p.Verbose != nil && !cmd.Flags().Changed("verbose") {
				verbose = *p.Verbose
			}
			if p.LogFile != nil && !cmd.Flags().Changed("log-file") {
				logFile = *p.LogFile
			}
		}

		logging.SetVerbose(verbose)
		if err := logging.SetOutputFile(logFile); err != nil {
			return fmt.Errorf("opening log file %q: %w", logFile, err)
		}
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	closeErr := logging.Close()
	if closeErr != nil {
		fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", closeErr)
		if err == nil {
			os.Exit(1)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if isUsageError(err) {
			if cmd, _, findErr := rootCmd.Find(os.Args[1:]); findErr == nil && cmd != nil {
				_ = cmd.Usage()
			} else {
				_ = rootCmd.Usage()
			}
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return wrapUsageError(err)
	})

	rootCmd.PersistentFlags().StringVar(&userRoot, "user-root", "", "Game user-data directory (default: per-platform Sports Interactive folder)")
	rootCmd.PersistentFlags().StringVar(&gameRoot, "game-root", "", "Game install asset directory (default: auto-detected)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "store-dir", "", "Registry directory for installed-asset state")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Load a saved option profile by name")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write command output to a log file")
}

// openEnv resolves the destination roots and opens the registry. Every
// command that touches installed state goes through here.
func openEnv() (gamepath.Paths, *installer.Installer, *store.Store, error) {
	var paths gamepath.Paths

	root, err := gamepath.UserRoot(userRoot)
	if err != nil {
		return paths, nil, nil, err
	}
	paths.UserRoot = root

	paths.GameRoot = gameRoot
	if paths.GameRoot == "" {
		if candidates := gamepath.GameRootCandidates(); len(candidates) > 0 {
			paths.GameRoot = candidates[0]
			logging.Debugf("Verbose: using detected game root %s\n", paths.GameRoot)
		}
	}

	dir := storeDir
	if dir == "" {
		dir, err = store.DefaultRoot()
		if err != nil {
			return paths, nil, nil, err
		}
	}
	st, err := store.Open(dir)
	if err != nil {
		return paths, nil, nil, err
	}
	return paths, installer.New(st), st, nil
}

type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func wrapUsageError(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if validate == nil {
			return nil
		}
		if err := validate(cmd, args); err != nil {
			return wrapUsageError(err)
		}
		return nil
	}
}

func isUsageError(err error) bool {
	var ue *usageError
	if errors.As(err, &ue) {
		return true
	}

	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command ")
}
