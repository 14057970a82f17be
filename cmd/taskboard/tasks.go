package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/taskapi"
)

func (a *app) listCmd() *cobra.Command {
	var status, priority string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long:  `List tasks newest first. Filters are applied by the task service.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := a.coord.Store().List()
			if status != "" || priority != "" || limit > 0 {
				var err error
				tasks, err = a.client.ListFiltered(cmd.Context(), taskapi.Filter{
					Status:   model.Status(status),
					Priority: model.Priority(priority),
					Limit:    limit,
				})
				if err != nil {
					return err
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), a.theme.List(tasks))
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "only tasks with this status (pending, in_progress, completed)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "only tasks with this priority (low, medium, high)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "at most this many tasks")
	return serviceCmd(cmd, true)
}

func (a *app) addCmd() *cobra.Command {
	var d model.Draft
	var due, priority string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d.Title = strings.Join(args, " ")
			d.Priority = model.Priority(priority)
			if due != "" {
				t, err := parseDue(due)
				if err != nil {
					return err
				}
				d.DueDate = t
			}
			task, err := a.coord.Create(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Task created: %s\n  %s\n", task.ID, a.theme.Line(task))
			return nil
		},
	}
	cmd.Flags().StringVarP(&d.Description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&due, "due", "", "due date, e.g. 2024-05-01T17:00 or 2024-05-01")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high (default medium)")
	cmd.Flags().StringVar(&d.Category, "category", "", "task category")
	cmd.Flags().StringSliceVarP(&d.Tags, "tag", "t", nil, "tag, may be repeated")
	return serviceCmd(cmd, false)
}

func (a *app) editCmd() *cobra.Command {
	var title, description, due, priority, status, category string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID(a.coord.Store(), args[0])
			if err != nil {
				return err
			}

			var p model.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				p.Title = &title
			}
			if flags.Changed("description") {
				p.Description = &description
			}
			if flags.Changed("due") {
				t, err := parseDue(due)
				if err != nil {
					return err
				}
				p.DueDate = t
			}
			if flags.Changed("priority") {
				v := model.Priority(priority)
				p.Priority = &v
			}
			if flags.Changed("status") {
				v := model.Status(status)
				p.Status = &v
			}
			if flags.Changed("category") {
				p.Category = &category
			}

			task, err := a.coord.Update(cmd.Context(), id, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Task updated\n  %s\n", a.theme.Line(task))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&due, "due", "", "new due date")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVarP(&status, "status", "s", "", "pending, in_progress or completed")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	return serviceCmd(cmd, true)
}

func (a *app) doneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between pending and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID(a.coord.Store(), args[0])
			if err != nil {
				return err
			}
			task, err := a.coord.ToggleStatus(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.theme.Line(task))
			return nil
		},
	}
	return serviceCmd(cmd, true)
}

func (a *app) rmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveID(a.coord.Store(), args[0])
			if err != nil {
				return err
			}
			if err := a.coord.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Task deleted: %s\n", id)
			return nil
		},
	}
	return serviceCmd(cmd, true)
}
