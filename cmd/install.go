package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/colorstring"
	"github.com/spf13/cobra"

	"github.com/fmmtools/fmodman/internal/classify"
	"github.com/fmmtools/fmodman/internal/installer"
	"github.com/fmmtools/fmodman/internal/logging"
	"github.com/fmmtools/fmodman/internal/progress"
)

var (
	assetName    string
	assetType    string
	assetVersion string
	assetAuthor  string
	assetDesc    string
	confirmYes   bool
	overwrite    bool
	keepBackups  int
)

var installCmd = &cobra.Command{
	Use:   "install <archive-or-directory>",
	Short: "Install an add-on from an archive or folder",
	Args:  usageArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, ins, _, err := openEnv()
		if err != nil {
			return err
		}

		typ, err := classify.ParseCategory(assetType)
		if err != nil {
			return wrapUsageError(err)
		}
		opts := installer.Options{
			Source: args[0],
			Metadata: &installer.Metadata{
				Name:        assetName,
				Version:     assetVersion,
				Type:        typ,
				Author:      assetAuthor,
				Description: assetDesc,
			},
			ConfirmConflicts: confirmYes,
			Overwrite:        overwrite,
			KeepBackups:      keepBackups,
			Paths:            paths,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		stream := progress.NewStream(64)
		var (
			res  *installer.Result
			rerr error
			done = make(chan struct{})
		)
		go func() {
			defer close(done)
			res, rerr = ins.Install(ctx, opts, stream.Sink(args[0]))
		}()
		renderProgress(stream)
		<-done

		if rerr != nil {
			return installFailure(rerr)
		}

		a := res.Asset
		colorstring.Printf("[green]Installed[reset] %s", a.Name)
		if a.Version != "" {
			fmt.Printf(" %s", a.Version)
		}
		fmt.Printf(" (%s, %d files", a.Type, len(a.Files))
		if res.Classification != nil {
			fmt.Printf(", %s", humanize.IBytes(uint64(res.Classification.TotalSize)))
		}
		fmt.Println(")")
		return nil
	},
}

// installFailure turns pipeline errors the user can act on into actionable
// messages.
func installFailure(err error) error {
	if errors.Is(err, installer.ErrNeedsMetadata) {
		return fmt.Errorf("%w; rerun with --name (and --type if auto-detection is wrong)", err)
	}
	var ce *installer.ConflictError
	if errors.As(err, &ce) {
		colorstring.Println("[red]Conflicting destination paths:")
		for _, r := range ce.Records {
			logging.Infof("  %s (owned by %d installed asset(s))\n", r.Path, len(r.AssetIDs)-1)
		}
		return errors.New("install aborted; rerun with --yes to accept that the last install wins on shared paths")
	}
	if errors.Is(err, context.Canceled) {
		return errors.New("install cancelled; no changes were made")
	}
	return err
}

func init() {
	installCmd.Flags().StringVar(&assetName, "name", "", "Asset name for sources without a manifest")
	installCmd.Flags().StringVar(&assetType, "type", "", "Asset type for sources without a manifest (faces, logos, kits, graphics, tactics, editor-data, skins)")
	installCmd.Flags().StringVar(&assetVersion, "asset-version", "", "Asset version for sources without a manifest")
	installCmd.Flags().StringVar(&assetAuthor, "author", "", "Asset author for sources without a manifest")
	installCmd.Flags().StringVar(&assetDesc, "description", "", "Asset description for sources without a manifest")
	installCmd.Flags().BoolVarP(&confirmYes, "yes", "y", false, "Proceed despite conflicts with installed assets")
	installCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace destination files that already exist (a backup is taken)")
	installCmd.Flags().IntVar(&keepBackups, "keep-backups", 20, "Number of backup files to retain (0 keeps all)")
	rootCmd.AddCommand(installCmd)
}
