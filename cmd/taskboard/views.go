package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/views"
)

func (a *app) agendaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agenda [YYYY-MM-DD]",
		Short: "Show the tasks due on one day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			day, err := parseDay(args, now)
			if err != nil {
				return err
			}
			tasks := a.coord.Store().List()
			fmt.Fprint(cmd.OutOrStdout(), a.theme.Agenda(day, views.DayAgenda(tasks, day), views.Overdue(tasks, now)))
			return nil
		},
	}
	return serviceCmd(cmd, true)
}

func (a *app) weekCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week [YYYY-MM-DD]",
		Short: "Show the week containing a day as an hour grid",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			day, err := parseDay(args, now)
			if err != nil {
				return err
			}
			grid := views.BuildWeekGrid(a.coord.Store().List(), views.StartOfWeek(day), now)
			fmt.Fprint(cmd.OutOrStdout(), a.theme.Week(grid))
			return nil
		},
	}
	return serviceCmd(cmd, true)
}

func (a *app) boardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show active and completed tasks side by side",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := a.coord.Store().List()
			fmt.Fprint(cmd.OutOrStdout(), a.theme.Board(views.Partition(tasks), views.Unscheduled(tasks)))
			return nil
		},
	}
	return serviceCmd(cmd, true)
}

func (a *app) monthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show a month with priority dots per day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()
			month, err := parseMonth(args, now)
			if err != nil {
				return err
			}
			overview := views.BuildMonthOverview(a.coord.Store().List(), month, now)
			fmt.Fprint(cmd.OutOrStdout(), a.theme.Month(overview))
			return nil
		},
	}
	return serviceCmd(cmd, true)
}
