package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/fwojciec/gtcheck"
	"github.com/fwojciec/gtcheck/clipboard"
	"github.com/fwojciec/gtcheck/config"
	"github.com/fwojciec/gtcheck/fs"
	"github.com/fwojciec/gtcheck/git"
	"github.com/fwojciec/gtcheck/gitdiff"
	"github.com/fwojciec/gtcheck/jsonfile"
	"github.com/fwojciec/gtcheck/jsonl"
	"github.com/fwojciec/gtcheck/lipgloss"
	"github.com/fwojciec/gtcheck/logger"
	"github.com/fwojciec/gtcheck/review"
	"github.com/fwojciec/gtcheck/worddiff"
	"github.com/muesli/termenv"
	"github.com/spf13/viper"
)

// App encapsulates the application logic for testing.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Viper holds configuration. A fresh instance is used when nil.
	Viper *viper.Viper

	Config   *config.Config
	Logger   *slog.Logger
	Service  *review.Service
	Renderer *lipgloss.Renderer

	// Clipboard receives the presented text with next --copy.
	Clipboard gtcheck.Clipboard

	configFile string
	repoPath   string
	group      string
	variant    string
	reviewer   string
	jsonOut    bool
}

// Run executes the command line args.
func (a *App) Run(ctx context.Context, args []string) error {
	if a.Viper == nil {
		a.Viper = viper.New()
	}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)
	return root.ExecuteContext(ctx)
}

// setup loads configuration and wires the review service.
func (a *App) setup() error {
	cfg, err := config.Load(a.Viper, a.configFile)
	if err != nil {
		return err
	}
	a.Config = cfg

	if a.Logger == nil {
		if a.Logger, err = logger.NewLogger(cfg.Log, nil); err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
	}

	switch cfg.Color {
	case "never":
		color.NoColor = true
	case "always":
		color.NoColor = false
	}
	a.Renderer = lipgloss.NewRenderer(a.Stdout, nil, cfg.NoColor())
	if cfg.Color == "always" {
		a.Renderer.SetColorProfile(termenv.TrueColor)
	}

	if a.Clipboard == nil {
		a.Clipboard = clipboard.New()
	}
	if a.reviewer == "" {
		a.reviewer = os.Getenv("USER")
	}
	if a.reviewer == "" {
		a.reviewer = review.DefaultReviewer
	}

	fsys := fs.NewFileSystem()
	parser := gitdiff.NewParser()
	a.Service = &review.Service{
		Store:   jsonfile.NewStore(cfg.RecordDir()),
		Journal: jsonl.NewJournal(cfg.JournalDir()),
		Machine: review.NewMachine(fsys, worddiff.NewDiffer(), a.Logger),
		FS:      fsys,
		Open: func(ctx context.Context, path string) (gtcheck.Repository, error) {
			return git.Open(ctx, path, parser)
		},
		Init: func(ctx context.Context, path string) (gtcheck.Repository, error) {
			return git.Init(ctx, path, parser)
		},
		SubrepoDir: cfg.SubrepoDir,
		Reviewer:   a.reviewer,
		Logger:     a.Logger,
	}
	return nil
}

// key identifies the record of the selected repository. Records of split
// repositories are keyed by their parent repository and variant.
func (a *App) key(ctx context.Context) (gtcheck.RecordKey, error) {
	path := a.repoPath
	if repo, err := git.Open(ctx, path, gitdiff.NewParser()); err == nil {
		path = repo.Root()
	} else {
		abs, err := filepath.Abs(path)
		if err != nil {
			return gtcheck.RecordKey{}, err
		}
		path = abs
	}
	return gtcheck.NewRecordKey(a.group, path, a.variant), nil
}
