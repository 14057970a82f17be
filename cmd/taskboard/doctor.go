package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/views"
)

func (a *app) doctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the configuration and the task service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "config:   %s\n", a.cfg.Path)
			fmt.Fprintf(w, "home:     %s\n", a.cfg.Dir())
			fmt.Fprintf(w, "service:  %s\n", a.cfg.API.BaseURL)
			fmt.Fprintf(w, "calendar: %s\n", a.cfg.Calendar.Name)

			if err := a.client.Ping(cmd.Context()); err != nil {
				fmt.Fprintln(w, "health:   unreachable")
				return err
			}
			fmt.Fprintln(w, "health:   ok")

			if err := a.coord.Resync(cmd.Context()); err != nil {
				return err
			}
			tasks := a.coord.Store().List()
			undated := len(views.Unscheduled(tasks))
			unreadable := 0
			for _, t := range tasks {
				if t.DueDate != nil && !t.DueDate.Valid() && t.DueDate.Raw != "" {
					unreadable++
				}
			}
			fmt.Fprintf(w, "tasks:    %d (%d without a usable due date, %d unreadable)\n", len(tasks), undated, unreadable)
			fmt.Fprintf(w, "overdue:  %d\n", len(views.Overdue(tasks, a.now())))
			return nil
		},
	}
	return serviceCmd(cmd, false)
}
