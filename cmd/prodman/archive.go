package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"prodman/internal/bootstrap"
	archivedto "prodman/internal/modules/archive/dto"
	"prodman/internal/platform/config"
	"prodman/internal/ui/format"
)

func newScheduleCmd(dataDir *string) *cobra.Command {
	schedule := &cobra.Command{Use: "schedule", Short: "Inspect schedules"}

	var skipIncomplete bool
	goals := &cobra.Command{
		Use:   "goals [file]",
		Short: "Show per-task goal minutes for a schedule file, or the configured day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			if len(args) == 1 {
				var blocks []config.Block
				if err := readBlocks(args[0], &blocks); err != nil {
					return err
				}
				if _, err := app.TrackerCLI.Deploy(context.Background(), bootstrap.ScheduleBlocks(blocks), skipIncomplete); err != nil {
					return err
				}
			}
			out, err := app.TrackerCLI.Schedule(context.Background())
			if err != nil {
				return err
			}
			format.Goals(cmd.OutOrStdout(), out, format.Width(cmd.OutOrStdout()))
			return nil
		},
	}
	goals.Flags().BoolVar(&skipIncomplete, "skip-incomplete", false, "drop blocks without a task or length instead of failing")

	schedule.AddCommand(goals)
	return schedule
}

func newTemplateCmd(dataDir *string) *cobra.Command {
	template := &cobra.Command{Use: "template", Short: "Saved schedule templates"}

	template.AddCommand(&cobra.Command{
		Use:   "save <id> <file>",
		Short: "Save a schedule file as a template, replacing any with the same id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var blocks []archivedto.Block
			if err := readBlocks(args[1], &blocks); err != nil {
				return err
			}
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.ArchiveCLI.SaveTemplate(context.Background(), args[0], blocks)
			if err != nil {
				return err
			}
			if out.Result == "invalid_name" {
				return fmt.Errorf("template id %q is not allowed: it must be non-blank and contain no quotes", args[0])
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "template %s %s\n", out.ID, out.Result)
			return nil
		},
	})

	template.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			items, err := app.ArchiveCLI.ListTemplates(context.Background())
			if err != nil {
				return err
			}
			format.Templates(cmd.OutOrStdout(), items, format.Width(cmd.OutOrStdout()))
			return nil
		},
	})

	var asJSON bool
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a template block by block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			t, err := app.ArchiveCLI.GetTemplate(context.Background(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(t)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.ID)
			format.Blocks(cmd.OutOrStdout(), t.Blocks, format.Width(cmd.OutOrStdout()))
			return nil
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print the template as json")
	template.AddCommand(show)

	template.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			if err := app.ArchiveCLI.DeleteTemplate(context.Background(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "template %s deleted\n", args[0])
			return nil
		},
	})
	return template
}

func newHistoryCmd(dataDir *string) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Recorded sessions"}

	var from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions, optionally within a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			items, err := app.ArchiveCLI.ListHistory(context.Background(), from, to)
			if err != nil {
				return err
			}
			format.History(cmd.OutOrStdout(), items, format.Width(cmd.OutOrStdout()))
			return nil
		},
	}
	list.Flags().StringVar(&from, "from", "", "first date, yyyy-mm-dd")
	list.Flags().StringVar(&to, "to", "", "last date, yyyy-mm-dd")
	history.AddCommand(list)

	history.AddCommand(&cobra.Command{
		Use:   "show <date#id>",
		Short: "Summarize a recorded session against its goals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := archivedto.ParseHistoryKey(args[0])
			if err != nil {
				return err
			}
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			summary, err := app.ArchiveCLI.ShowHistory(context.Background(), key)
			if err != nil {
				return err
			}
			format.Summary(cmd.OutOrStdout(), summary, format.Width(cmd.OutOrStdout()))
			return nil
		},
	})

	history.AddCommand(&cobra.Command{
		Use:   "delete <date#id>...",
		Short: "Delete recorded sessions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := make([]archivedto.HistoryKey, 0, len(args))
			for _, raw := range args {
				key, err := archivedto.ParseHistoryKey(raw)
				if err != nil {
					return err
				}
				keys = append(keys, key)
			}
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			n, err := app.ArchiveCLI.DeleteHistory(context.Background(), keys)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d of %d\n", n, len(keys))
			return nil
		},
	})

	var dir string
	export := &cobra.Command{
		Use:   "export <date#id>",
		Short: "Write a recorded session as a markdown note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := archivedto.ParseHistoryKey(args[0])
			if err != nil {
				return err
			}
			app, err := loadApp(*dataDir)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.ArchiveCLI.ExportHistory(context.Background(), key, dir)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", out.Key.String(), out.Path)
			return nil
		},
	}
	export.Flags().StringVar(&dir, "dir", "", "export directory (default from config)")
	history.AddCommand(export)
	return history
}
