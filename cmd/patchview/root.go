package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"patchview/internal/app"
	"patchview/internal/clipboard"
	"patchview/internal/config"
	"patchview/internal/diffview"
	"patchview/internal/logging"
	"patchview/internal/patch"
	"patchview/internal/report"
	"patchview/internal/source"
)

type rootFlags struct {
	rev        string
	worktree   bool
	dir        string
	view       string
	configPath string
	logFile    string
	debug      bool
}

// session is what every command needs once flags and config are resolved.
type session struct {
	cfg    config.AppConfig
	logger *slog.Logger
	closer io.Closer
	loaded source.Loaded
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "patchview [file|-]",
		Short:         "Browse a git patch in the terminal",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), flags, args)
			if err != nil {
				return err
			}
			defer s.closer.Close()
			return runTUI(s)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.rev, "rev", "", "show the commit at this revision (git format-patch -1)")
	pf.BoolVar(&flags.worktree, "worktree", false, "show uncommitted changes against HEAD")
	pf.StringVarP(&flags.dir, "directory", "C", "", "run git in this directory")
	pf.StringVar(&flags.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/patchview/config.json)")
	pf.StringVar(&flags.logFile, "log-file", "", "write logs to this file")
	pf.BoolVar(&flags.debug, "debug", false, "log at debug level")
	cmd.Flags().StringVar(&flags.view, "view", "", "initial view: split, unified or raw")

	cmd.AddCommand(newStatCmd(&flags), newJSONCmd(&flags))
	return cmd
}

func newStatCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stat [file|-]",
		Short: "Print per-file change counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), *flags, args)
			if err != nil {
				return err
			}
			defer s.closer.Close()

			r := patch.Inspect(s.loaded.Text)
			s.logger.Info("stat", slog.Int("files", len(r.Patch.Files)), slog.Int("dropped", len(r.Dropped)))
			return report.WriteStat(cmd.OutOrStdout(), r)
		},
	}
}

func newJSONCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "json [file|-]",
		Short: "Print the parsed patch as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), *flags, args)
			if err != nil {
				return err
			}
			defer s.closer.Close()

			return report.WriteJSON(cmd.OutOrStdout(), patch.Parse(s.loaded.Text))
		},
	}
}

func openSession(ctx context.Context, flags rootFlags, args []string) (session, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return session{}, err
	}

	logger, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return session{}, err
	}

	spec := source.Spec{Rev: flags.rev, Worktree: flags.worktree, Dir: flags.dir}
	if len(args) == 1 {
		spec.Path = args[0]
	}
	loaded, err := source.NewLoader().Load(ctx, spec)
	if err != nil {
		closer.Close()
		return session{}, err
	}
	logger.Debug("loaded patch", slog.String("name", loaded.Name), slog.Int("bytes", len(loaded.Text)))

	return session{cfg: cfg, logger: logger, closer: closer, loaded: loaded}, nil
}

func loadConfig(flags rootFlags) (config.AppConfig, error) {
	var (
		cfg config.AppConfig
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFromPath(flags.configPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}

	if flags.view != "" {
		if err := config.ValidateView(flags.view); err != nil {
			return config.AppConfig{}, err
		}
		cfg.View = flags.view
	}
	if flags.logFile != "" {
		cfg.LogFile = flags.logFile
	}
	if flags.debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func runTUI(s session) error {
	model := app.NewModel(app.Options{
		Title: s.loaded.Title(),
		Text:  s.loaded.Text,
		View:  s.cfg.View,
		Render: diffview.Options{
			Syntax:   s.cfg.Syntax(),
			WordDiff: s.cfg.Words(),
			TabWidth: s.cfg.TabWidth,
		},
		FilePaneWidth: s.cfg.FilePaneWidth,
		Clipboard:     clipboard.Copier{Command: s.cfg.ClipboardCommand},
		Logger:        s.logger,
	})

	var opts []tea.ProgramOption
	opts = append(opts, tea.WithAltScreen())
	// Stdin carried the patch, so keys come from the terminal instead.
	if s.loaded.Name == "stdin" {
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return fmt.Errorf("open terminal for input: %w", err)
		}
		defer tty.Close()
		opts = append(opts, tea.WithInput(tty))
	}

	program := tea.NewProgram(model, opts...)
	if _, err := program.Run(); err != nil {
		s.logger.Error("program exited", slog.String("error", err.Error()))
		return fmt.Errorf("application error: %w", err)
	}
	return nil
}
