package cmd

import (
	"strings"

	"github.com/mitchellh/colorstring"
	"github.com/spf13/cobra"

	"github.com/fmmtools/fmodman/internal/installer"
	"github.com/fmmtools/fmodman/internal/logging"
)

var auditAll bool

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Report conflicting destination paths and misplaced graphics packs",
	Args:  usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, ins, st, err := openEnv()
		if err != nil {
			return err
		}

		records, err := ins.AuditConflicts(paths, !auditAll)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			colorstring.Println("[green]No conflicting destination paths.")
		} else {
			colorstring.Printf("[red]%d conflicting destination path(s):\n", len(records))
			for _, r := range records {
				names := make([]string, 0, len(r.AssetIDs))
				for _, id := range r.AssetIDs {
					if a, err := st.Get(id); err == nil {
						names = append(names, a.Name)
					} else {
						names = append(names, id)
					}
				}
				logging.Infof("  %s\n    claimed by %s\n", r.Path, strings.Join(names, ", "))
			}
		}

		misplaced, err := installer.ValidateGraphicsLayout(paths)
		if err != nil {
			return err
		}
		if len(misplaced) == 0 {
			colorstring.Println("[green]Graphics directory layout looks correct.")
			return nil
		}
		colorstring.Printf("[yellow]%d misplaced graphics pack(s):\n", len(misplaced))
		for _, m := range misplaced {
			logging.Infof("  %s classifies as %s; expected under %s\n", m.Path, m.Type, m.Suggested)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().BoolVar(&auditAll, "all", false, "Include disabled add-ons in the conflict report")
	rootCmd.AddCommand(auditCmd)
}
