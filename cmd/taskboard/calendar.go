package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/auth"
	"github.com/harrisonrobin/taskboard/pkg/google"
	"github.com/harrisonrobin/taskboard/pkg/index"
)

func (a *app) syncCalendarCmd() *cobra.Command {
	var calendarName string
	cmd := &cobra.Command{
		Use:   "sync-calendar",
		Short: "Mirror dated tasks onto a Google Calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := a.cfg.Calendar.Name
			if calendarName != "" {
				name = calendarName
			}

			srv, err := auth.GetCalendarService(ctx, a.cfg.Dir(), a.log)
			if err != nil {
				return err
			}
			links, err := index.Open(a.cfg.IndexPath())
			if err != nil {
				return err
			}
			mirror, err := google.NewMirror(ctx, srv, name, links, a.palette, a.log)
			if err != nil {
				return err
			}

			report, err := mirror.SyncAll(ctx, a.coord.Store().List())
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d synced, %d removed, %d without a due date\n",
				name, report.Synced, report.Removed, report.Skipped)
			return err
		},
	}
	cmd.Flags().StringVar(&calendarName, "calendar", "", "calendar name (overrides config)")
	return serviceCmd(cmd, true)
}

func (a *app) authCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Calendar",
		Long:  "Discards any cached token and runs the browser authorization flow. credentials.json must be in the taskboard home directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.Dir()
			if err := auth.ResetToken(dir); err != nil {
				return err
			}
			if _, err := auth.GetCalendarService(cmd.Context(), dir, a.log); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Authentication successful, token saved in %s\n", dir)
			return nil
		},
	}
}

func (a *app) setCalendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-calendar <name>",
		Short: "Set the default Google Calendar to mirror into",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.SetCalendar(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default calendar set to: %s\n", args[0])
			return nil
		},
	}
}
