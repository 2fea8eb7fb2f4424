package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/gtcheck"
	"github.com/fwojciec/gtcheck/review"
	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var version = "dev"

// boundFlags maps configuration keys to the persistent flags overriding them.
var boundFlags = map[string]string{
	"data_dir":    "data-dir",
	"subrepo_dir": "subrepo-dir",
	"color":       "color",
	"log.level":   "log-level",
	"log.format":  "log-format",
}

func (a *App) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gtcheck",
		Short: "Review edits to OCR ground truth files in git repositories",
		Long: `gtcheck walks through the modified ground truth (*.gt.txt) files of a
git repository one at a time. Each file is shown as a word diff together
with its edit pairs and a suggested commit message, and is then committed,
added, stashed or skipped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["setup"] == "none" {
				return nil
			}
			for key, name := range boundFlags {
				if err := a.Viper.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(name)); err != nil {
					return fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
			return a.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is config.yaml in the data directory)")
	flags.String("data-dir", "", "directory for review records and journals")
	flags.String("subrepo-dir", "", "directory for split repositories")
	flags.String("color", "", "color output: auto, always or never")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")
	flags.StringVarP(&a.repoPath, "repo", "C", ".", "repository under review")
	flags.StringVarP(&a.group, "group", "g", review.DefaultGroup, "record group")
	flags.StringVar(&a.variant, "variant", gtcheck.MainVariant, "record variant, e.g. duplicate_01_part_01")
	flags.StringVar(&a.reviewer, "reviewer", "", "reviewer name (default is $USER)")
	flags.BoolVar(&a.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		a.addCmd(),
		a.nextCmd(),
		a.decideCmd(),
		a.shortcutCmd(gtcheck.ActionUndo, "Undo the last decision"),
		a.shortcutCmd(gtcheck.ActionSkip, "Skip the presented file"),
		a.shortcutCmd(gtcheck.ActionStash, "Discard the edits of the presented file"),
		a.commitCmd(),
		a.requeueCmd(),
		a.filterCmd(),
		a.settingsCmd(),
		a.squashCmd(),
		a.reserveCmd(),
		a.releaseCmd(),
		a.doneCmd(),
		a.splitCmd(),
		a.listCmd(),
		a.historyCmd(),
		a.readmeCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{"setup": "none"},
		Args:        cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.Stdout, "gtcheck %s\n", version)
		},
	}
}

func (a *App) printJSON(v any) error {
	encoder := json.NewEncoder(a.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
