package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tablesight/tablesight/internal/templates"
)

// templatesCmd groups the card template inspection commands.
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect card template packs",
	Long: `List and check the rank and suit template pack used for card
recognition. Without a directory argument the configured templates
directory is used.

Examples:
  tablesight templates list
  tablesight templates check ./templates`,
}

var templatesListCmd = &cobra.Command{
	Use:          "list [dir]",
	Short:        "List the loaded template families",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, dir, err := loadTemplateStore(args)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Loaded %d rank and %d suit templates from %s (size %d)\n",
			len(store.Ranks()), len(store.Suits()), dir, store.Size())
		fmt.Fprintf(out, "ranks: %s\n", strings.Join(store.Families(templates.KindRank), " "))
		fmt.Fprintf(out, "suits: %s\n", strings.Join(store.Families(templates.KindSuit), " "))
		return nil
	},
}

var templatesCheckCmd = &cobra.Command{
	Use:          "check [dir]",
	Short:        "Check the template pack covers all ranks and suits",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, dir, err := loadTemplateStore(args)
		if err != nil {
			return err
		}
		if err := store.Check(); err != nil {
			return fmt.Errorf("%s: %w", dir, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Template coverage OK: all %d rank and %d suit families present in %s\n",
			len(templates.RankFamilies), len(templates.SuitFamilies), dir)
		return nil
	},
}

// loadTemplateStore resolves the directory (argument, then configuration)
// and loads it at the configured canonical size.
func loadTemplateStore(args []string) (*templates.Store, string, error) {
	cfg := GetConfig()
	dir := cfg.ResolveTemplatesDir()
	if len(args) > 0 {
		dir = args[0]
	}

	store, err := templates.LoadDir(dir, cfg.ToCardsConfig().CanonicalSize)
	if err != nil {
		return nil, dir, fmt.Errorf("load card templates: %w", err)
	}
	return store, dir, nil
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesCheckCmd)
}
