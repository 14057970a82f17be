package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/orgmode"
	"github.com/harrisonrobin/taskboard/pkg/taskwarrior"
)

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tasks from other tools",
	}
	cmd.AddCommand(a.importOrgCmd(), a.importTaskwarriorCmd())
	return cmd
}

func (a *app) importOrgCmd() *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "org <file>...",
		Short: "Import TODO and DONE headlines from Org-mode files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := orgmode.ParseFiles(args)
			if err != nil {
				return err
			}
			if tag != "" {
				items = orgmode.FilterTasks(items, tag)
			}
			return a.importItems(cmd, items)
		},
	}
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only headlines with this tag")
	return serviceCmd(cmd, false)
}

func (a *app) importTaskwarriorCmd() *cobra.Command {
	var stdin bool
	cmd := &cobra.Command{
		Use:   "taskwarrior [filter]...",
		Short: "Import tasks from Taskwarrior",
		Long:  "Runs `task <filter> export`, or reads an export from stdin with --stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := taskwarrior.NewClient()
			var items []model.Imported
			if stdin {
				tasks, err := client.ParseTasks(os.Stdin)
				if err != nil {
					return err
				}
				items = taskwarrior.Convert(tasks)
			} else {
				var err error
				items, err = client.Export(cmd.Context(), args)
				if err != nil {
					return err
				}
			}
			return a.importItems(cmd, items)
		},
	}
	cmd.Flags().BoolVar(&stdin, "stdin", false, "read a Taskwarrior JSON export from stdin")
	return serviceCmd(cmd, false)
}

// importItems creates each item and completes the ones that were done.
func (a *app) importItems(cmd *cobra.Command, items []model.Imported) error {
	created := 0
	for _, item := range items {
		task, err := a.importOne(cmd.Context(), item)
		if err != nil {
			return fmt.Errorf("import %q from %s: %w (%d imported before the failure)", item.Draft.Title, item.Source, err, created)
		}
		created++
		a.log.Debug("imported task", slog.String("id", task.ID), slog.String("source", item.Source))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %d task(s) imported\n", created)
	return nil
}

func (a *app) importOne(ctx context.Context, item model.Imported) (model.Task, error) {
	task, err := a.coord.Create(ctx, item.Draft)
	if err != nil || !item.Completed {
		return task, err
	}
	done := model.StatusCompleted
	return a.coord.Update(ctx, task.ID, model.Patch{Status: &done})
}
