package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/colors"
	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/coordinator"
	"github.com/harrisonrobin/taskboard/pkg/render"
	"github.com/harrisonrobin/taskboard/pkg/store"
	"github.com/harrisonrobin/taskboard/pkg/taskapi"
)

// Command annotations controlling what the root pre-run sets up.
const (
	needsService = "needs-service"
	needsResync  = "needs-resync"
)

// app is the state shared by every command of one invocation.
type app struct {
	configPath string
	verbose    bool

	cfg     *config.Config
	log     *slog.Logger
	client  *taskapi.Client
	coord   *coordinator.Coordinator
	palette *colors.Palette
	theme   *render.Theme
	now     func() time.Time
	logger  func(level string, verbose bool) *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{now: time.Now, logger: mustMakeLogger}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskboard",
		Short:         "Personal task dashboard",
		Long:          `taskboard lists, edits and schedules tasks held by a remote task service, with agenda, week, board and month views.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.palette == nil {
				return nil
			}
			if err := a.palette.Save(); err != nil {
				a.log.Warn("could not save palette", slog.Any("error", err))
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default ~/.config/taskboard/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.listCmd(), a.addCmd(), a.editCmd(), a.doneCmd(), a.rmCmd(),
		a.smartCmd(), a.askCmd(), a.searchCmd(),
		a.agendaCmd(), a.weekCmd(), a.boardCmd(), a.monthCmd(),
		a.importCmd(),
		a.syncCalendarCmd(), a.authCmd(), a.setCalendarCmd(),
		a.doctorCmd(),
	)
	return root
}

// serviceCmd marks a command as talking to the task service, optionally
// after loading the full collection into the store.
func serviceCmd(cmd *cobra.Command, resync bool) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[needsService] = "true"
	if resync {
		cmd.Annotations[needsResync] = "true"
	}
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = a.logger(cfg.LogLevel, a.verbose)

	palette, err := colors.NewPalette(cfg.PalettePath())
	if err != nil {
		a.log.Warn("could not load palette, starting fresh", slog.Any("error", err))
		palette = &colors.Palette{Path: cfg.PalettePath(), Categories: map[string]*colors.CategoryState{}}
	}
	a.palette = palette
	a.theme = render.NewTheme(palette, time.Local)

	if cmd.Annotations[needsService] != "true" {
		return nil
	}

	client, err := taskapi.NewClient(cfg.API.BaseURL,
		taskapi.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		taskapi.WithSmartTimeout(cfg.API.SmartTimeout),
		taskapi.WithLogger(a.log),
	)
	if err != nil {
		return err
	}
	a.client = client
	a.coord = coordinator.New(store.New(), client,
		coordinator.WithAssistant(client),
		coordinator.WithLogger(a.log),
		coordinator.WithClock(a.now),
	)

	if cmd.Annotations[needsResync] != "true" {
		return nil
	}
	if err := a.coord.Resync(cmd.Context()); err != nil {
		return fmt.Errorf("could not load tasks from %s: %w", cfg.API.BaseURL, err)
	}
	return nil
}
