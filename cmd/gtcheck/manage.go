package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/fwojciec/gtcheck"
	"github.com/fwojciec/gtcheck/review"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var errorColor = color.New(color.FgRed)

func (a *App) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the review settings",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the review settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := a.key(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := a.Service.Get(key)
			if err != nil {
				return err
			}
			return a.printSettings(rec.Settings)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key=value>...",
		Short: "Change review settings",
		Long: `Change review settings. Keys:
  page_pattern, skipcc, addcc, filter_all, filter_from, filter_to,
  word_diff_regex, font, vkeylang, custom_keys, username, email

custom_keys takes a space separated list. Patterns are checked before
anything is saved.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs := make([][2]string, 0, len(args))
			var probe gtcheck.Settings
			for _, arg := range args {
				k, v, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("%q is not key=value", arg)
				}
				if err := applySetting(&probe, k, v); err != nil {
					return err
				}
				pairs = append(pairs, [2]string{k, v})
			}

			key, err := a.key(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := a.Service.UpdateSettings(cmd.Context(), key, func(s *gtcheck.Settings) {
				for _, p := range pairs {
					_ = applySetting(s, p[0], p[1])
				}
			})
			if err != nil {
				return err
			}
			return a.printSettings(rec.Settings)
		},
	})
	return cmd
}

func applySetting(s *gtcheck.Settings, key, value string) error {
	switch key {
	case "page_pattern":
		s.PagePattern = value
	case "skipcc", "addcc":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return &gtcheck.SettingsError{Field: key, Reason: "want true or false"}
		}
		if key == "skipcc" {
			s.SkipCC = b
		} else {
			s.AddCC = b
		}
	case "filter_all":
		s.Filters.All = value
	case "filter_from":
		s.Filters.From = value
	case "filter_to":
		s.Filters.To = value
	case "word_diff_regex":
		s.WordDiffRegex = value
	case "font":
		s.Font = value
	case "vkeylang":
		s.VKeyLang = value
	case "custom_keys":
		s.CustomKeys = strings.Fields(value)
	case "username":
		s.Username = value
	case "email":
		s.Email = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func (a *App) printSettings(s gtcheck.Settings) error {
	if a.jsonOut {
		return a.printJSON(s)
	}
	encoder := yaml.NewEncoder(a.Stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(s); err != nil {
		return err
	}
	return encoder.Close()
}

func (a *App) squashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "squash",
		Short: "Replace the review commits with a single commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := a.key(cmd.Context())
			if err != nil {
				return err
			}
			n, err := a.Service.Squash(cmd.Context(), key)
			if err != nil {
				return err
			}
			doneColor.Fprintf(a.Stdout, "Squashed the review into one commit of %d file(s).\n", n)
			return nil
		},
	}
}

func (a *App) reserveCmd() *cobra.Command {
	var by string
	cmd := &cobra.Command{
		Use:   "reserve",
		Short: "Claim the review for one reviewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := a.key(cmd.Context())
			if err != nil {
				return err
			}
			if by == "" {
				by = a.reviewer
			}
			if err := a.Service.Reserve(key, by); err != nil {
				return err
			}
			fmt.Fprintf(a.Stdout, "Reserved %s.\n", key)
			return nil
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "reviewer holding the reservation (default is --reviewer)")
	return cmd
}

func (a *App) releaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release",
		Short: "Clear the reservation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := a.key(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Service.Release(key); err != nil {
				return err
			}
			fmt.Fprintf(a.Stdout, "Released %s.\n", key)
			return nil
		},
	}
}

func (a *App) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done",
		Short: "Finish the review and delete its record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := a.key(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Service.Done(key); err != nil {
				return err
			}
			doneColor.Fprintf(a.Stdout, "Finished %s.\n", key)
			return nil
		},
	}
}

func (a *App) splitCmd() *cobra.Command {
	var opts review.SplitOptions
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Copy the open files into separate repositories for several reviewers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := a.key(cmd.Context())
			if err != nil {
				return err
			}
			keys, err := a.Service.Split(cmd.Context(), key, opts)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(keys)
			}
			for _, k := range keys {
				rec, err := a.Service.Get(k)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.Stdout, "%s\t%d file(s)\t%s\n", k.Variant, len(rec.Queue.Pending), rec.Path)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Duplicates, "duplicates", 1, "independent copies of the file set")
	cmd.Flags().IntVar(&opts.Parts, "parts", 1, "parts each copy is cut into")
	return cmd
}

func (a *App) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the status of every registered review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statuses, err := a.Service.Overview(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(statuses)
			}
			if len(statuses) == 0 {
				fmt.Fprintln(a.Stdout, "No reviews registered.")
				return nil
			}

			w := tabwriter.NewWriter(a.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "NAME\tVARIANT\tPENDING\tSKIPPED\tFINISHED\tSTAGED\tRESERVED\tPATH")
			for _, st := range statuses {
				if st.Err != "" {
					fmt.Fprintf(w, "%s\t%s\t%s\n", st.Key.Hash[:min(12, len(st.Key.Hash))], st.Key.Variant, errorColor.Sprint(st.Err))
					continue
				}
				reserved := "-"
				if st.Reservation != nil {
					reserved = st.Reservation.By
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
					st.Name, st.Key.Variant,
					st.Counts.Pending, st.Counts.Skipped, st.Counts.Finished, st.Counts.Staged,
					reserved, st.Path)
			}
			return w.Flush()
		},
	}
}

func (a *App) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the decisions taken in the review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := a.key(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := a.Service.History(key)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(entries)
			}
			w := tabwriter.NewWriter(a.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "TIME\tACTION\tPATH\tMESSAGE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Time.Local().Format(time.DateTime), e.Action, orDash(e.Path), e.Message)
			}
			return w.Flush()
		},
	}
}

func (a *App) readmeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "readme",
		Short: "Render the reviewer instructions of the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := a.key(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := a.Service.Get(key)
			if err != nil {
				return err
			}
			if rec.Readme == "" {
				return errors.New("no readme registered for this review")
			}
			data, err := os.ReadFile(rec.Readme)
			if err != nil {
				return err
			}
			if rec.Info != "" {
				noticeColor.Fprintln(a.Stdout, rec.Info)
			}

			style := glamour.WithAutoStyle()
			if a.Renderer.Plain() {
				style = glamour.WithStandardStyle("notty")
			}
			renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
			if err != nil {
				return err
			}
			out, err := renderer.Render(string(data))
			if err != nil {
				return fmt.Errorf("render readme: %w", err)
			}
			fmt.Fprint(a.Stdout, out)
			return nil
		},
	}
}
