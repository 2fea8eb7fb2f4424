package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/fwojciec/gtcheck"
	"github.com/fwojciec/gtcheck/review"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	noticeColor = color.New(color.FgYellow)
	doneColor   = color.New(color.FgGreen)
)

// actionValue is a pflag.Value accepting reviewer action names.
type actionValue gtcheck.Action

var _ pflag.Value = (*actionValue)(nil)

func (v *actionValue) String() string { return gtcheck.Action(*v).String() }

func (v *actionValue) Set(s string) error {
	action, err := gtcheck.ParseAction(s)
	if err != nil {
		return err
	}
	*v = actionValue(action)
	return nil
}

func (v *actionValue) Type() string { return "action" }

func (a *App) addCmd() *cobra.Command {
	var opts review.RegisterOptions
	cmd := &cobra.Command{
		Use:   "add [path]",
		Short: "Register a repository for review",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Path = a.repoPath
			if len(args) == 1 {
				opts.Path = args[0]
			}
			opts.Group = a.group
			rec, err := a.Service.Register(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(rec)
			}
			doneColor.Fprintf(a.Stdout, "Registered %s ", review.RepoName(rec))
			fmt.Fprintf(a.Stdout, "with %d file(s) to review.\n", len(rec.Queue.Pending))
			fmt.Fprintln(a.Stdout, a.Renderer.Muted("record "+rec.Key().String()))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Name, "name", "", "display name used in commit messages (default is the directory name)")
	f.StringVar(&opts.Info, "info", "", "information shown to reviewers")
	f.StringVar(&opts.ImageDir, "image-dir", "", "directory with the page images (default is next to each file)")
	f.StringVar(&opts.Readme, "readme", "", "markdown instructions for reviewers (default is a README*.md in the repository)")
	f.BoolVar(&opts.AddAll, "all", false, "review every ground truth file, not only modified ones")
	f.StringVar(&opts.ResetTo, "reset-to", "", "soft reset to this revision before collecting files")
	f.StringVar(&opts.Username, "username", "", "git user.name for review commits")
	f.StringVar(&opts.Email, "email", "", "git user.email for review commits")
	return cmd
}

func (a *App) nextCmd() *cobra.Command {
	var copyText bool
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the file to review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := a.key(cmd.Context())
			if err != nil {
				return err
			}
			res, err := a.Service.Next(cmd.Context(), key)
			if err != nil {
				return err
			}
			if copyText && res.Item != nil {
				if err := a.Clipboard.Copy(res.Item.Modified); err != nil {
					a.Logger.Warn("cannot copy to clipboard", "error", err)
				}
			}
			return a.printResult(res)
		},
	}
	cmd.Flags().BoolVar(&copyText, "copy", false, "copy the presented text to the clipboard")
	return cmd
}

func (a *App) decideCmd() *cobra.Command {
	action := actionValue(gtcheck.ActionCommit)
	var text, textFile, message string
	cmd := &cobra.Command{
		Use:   "decide [action]",
		Short: "Decide on the presented file and show the next one",
		Long: `Decide on the presented file. Actions:
  commit  write the text, stage and commit it
  add     write the text and stage it
  stash   discard the edits (new files are removed)
  skip    leave the file for later
  undo    reverse the last decision

The text defaults to the text that was shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := action.Set(args[0]); err != nil {
					return err
				}
			}
			d := gtcheck.Decision{Action: gtcheck.Action(action), Message: message}
			switch {
			case textFile != "":
				t, err := a.readText(textFile)
				if err != nil {
					return err
				}
				d.Text = t
			case cmd.Flags().Changed("text"):
				d.Text = text
			}
			return a.decide(cmd, d, cmd.Flags().Changed("text") || textFile != "")
		},
	}
	cmd.Flags().VarP(&action, "action", "a", "commit, add, stash, skip or undo")
	cmd.Flags().StringVar(&text, "text", "", "corrected text")
	cmd.Flags().StringVar(&textFile, "text-file", "", "read the corrected text from a file, - for stdin")
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message (default is the suggested message)")
	return cmd
}

func (a *App) shortcutCmd(action gtcheck.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action.String(),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.decide(cmd, gtcheck.Decision{Action: action}, false)
		},
	}
}

// decide applies d. Without explicit text, commit and add keep the text
// that was shown.
func (a *App) decide(cmd *cobra.Command, d gtcheck.Decision, hasText bool) error {
	key, err := a.key(cmd.Context())
	if err != nil {
		return err
	}
	if !hasText && (d.Action == gtcheck.ActionCommit || d.Action == gtcheck.ActionAdd) {
		rec, err := a.Service.Get(key)
		if err != nil {
			return err
		}
		if rec.Current == nil {
			return gtcheck.ErrNoCurrentItem
		}
		d.Text = rec.Current.Shown
	}
	res, err := a.Service.Decide(cmd.Context(), key, d)
	if err != nil {
		return err
	}
	return a.printResult(res)
}

func (a *App) readText(path string) (string, error) {
	var r io.Reader = a.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(data), nil
}

func (a *App) commitCmd() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit the staged files once every file was reviewed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := a.key(cmd.Context())
			if err != nil {
				return err
			}
			n, res, err := a.Service.CommitStaged(cmd.Context(), key, message)
			if err != nil {
				return err
			}
			if !a.jsonOut {
				doneColor.Fprintf(a.Stdout, "Committed %d staged file(s).\n", n)
			}
			return a.printResult(res)
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return cmd
}

func (a *App) requeueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requeue",
		Short: "Move the skipped files back into the queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := a.key(cmd.Context())
			if err != nil {
				return err
			}
			n, res, err := a.Service.Requeue(cmd.Context(), key)
			if err != nil {
				return err
			}
			if !a.jsonOut {
				fmt.Fprintf(a.Stdout, "Requeued %d file(s).\n", n)
			}
			return a.printResult(res)
		},
	}
}

func (a *App) filterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filter <regex>",
		Short: "Move reviewed files whose text matches regex back into the queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.key(cmd.Context())
			if err != nil {
				return err
			}
			n, res, err := a.Service.Refilter(cmd.Context(), key, args[0])
			if err != nil {
				return err
			}
			if !a.jsonOut {
				fmt.Fprintf(a.Stdout, "Requeued %d matching file(s).\n", n)
			}
			return a.printResult(res)
		},
	}
}

func (a *App) printResult(res *review.Result) error {
	if a.jsonOut {
		return a.printJSON(res)
	}
	w := a.Stdout
	counts := a.Renderer.Muted(formatCounts(res.Counts))
	if res.Item == nil {
		noticeColor.Fprintf(w, "Review paused: %s.\n", res.Terminal)
		if res.Terminal == review.TerminalCommit {
			fmt.Fprintln(w, "Run gtcheck commit to commit them.")
		}
		fmt.Fprintln(w, counts)
		return nil
	}

	it := res.Item
	fmt.Fprintln(w, a.Renderer.Title(fmt.Sprintf("%s (%s)", it.Path, it.Kind)))
	if it.Notice != "" {
		noticeColor.Fprintln(w, it.Notice)
	}
	text := it.DiffText
	if text == "" {
		text = it.Modified
	}
	fmt.Fprintf(w, "\n%s\n\n", strings.TrimRight(a.Renderer.Diff(text), "\n"))
	if len(it.Edits) > 0 {
		fmt.Fprintf(w, "edits:   %s\n", gtcheck.FormatEdits(it.Edits))
	}
	fmt.Fprintf(w, "message: %s\n", it.Message)
	if it.Image != "" {
		fmt.Fprintf(w, "image:   %s\n", it.Image)
	}
	if it.Neighbors.Prev != "" || it.Neighbors.Next != "" {
		fmt.Fprintln(w, a.Renderer.Muted(fmt.Sprintf("pages:   %s | %s", orDash(it.Neighbors.Prev), orDash(it.Neighbors.Next))))
	}
	fmt.Fprintln(w, counts)
	return nil
}

func formatCounts(c review.Counts) string {
	return fmt.Sprintf("pending %d, skipped %d, finished %d, removed %d, staged %d",
		c.Pending, c.Skipped, c.Finished, c.Removed, c.Staged)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
