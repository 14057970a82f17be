package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskboard/pkg/model"
)

func (a *app) smartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smart <text>",
		Short: "Add tasks described in plain language",
		Long:  `Send free text to the assistant, which may turn it into one or several tasks.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.coord.SmartAdd(cmd.Context(), strings.Join(args, " "))
			var parseErr *model.ParseError
			if errors.As(err, &parseErr) {
				return fmt.Errorf("couldn't understand that: %w", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %d task(s) created\n", len(tasks))
			fmt.Fprint(cmd.OutOrStdout(), a.theme.List(tasks))
			return nil
		},
	}
	return serviceCmd(cmd, true)
}

func (a *app) askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <text>",
		Short: "Change a task described in plain language",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.coord.SmartUpdate(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if out.Ambiguous() {
				msg := out.Message
				if msg == "" {
					msg = "Several tasks match, nothing was changed."
				}
				fmt.Fprintln(w, msg)
				fmt.Fprint(w, a.theme.List(out.Matches))
				return nil
			}
			if out.Task != nil {
				fmt.Fprintf(w, "✓ Task updated\n  %s\n", a.theme.Line(*out.Task))
			} else if out.Message != "" {
				fmt.Fprintln(w, out.Message)
			}
			return nil
		},
	}
	return serviceCmd(cmd, true)
}

func (a *app) searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Find tasks by meaning",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.coord.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), a.theme.List(tasks))
			return nil
		},
	}
	return serviceCmd(cmd, false)
}
