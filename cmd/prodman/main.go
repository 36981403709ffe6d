package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"prodman/internal/bootstrap"
	"prodman/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:           "prodman",
		Short:         "Timeboxed work-session tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default $PRODMAN_DATA_DIR or the user config dir)")

	root.AddCommand(newRunCmd(&dataDir))
	root.AddCommand(newTUICmd(&dataDir))
	root.AddCommand(newServeCmd(&dataDir))
	root.AddCommand(newScheduleCmd(&dataDir))
	root.AddCommand(newTemplateCmd(&dataDir))
	root.AddCommand(newHistoryCmd(&dataDir))
	return root
}

func loadApp(dataDir string) (*bootstrap.App, error) {
	cfg, err := config.New(dataDir)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

// deploySource picks what to run: a saved template, a schedule file, or
// the configured day that bootstrap already deployed.
type deploySource struct {
	template       string
	file           string
	skipIncomplete bool
}

func (d *deploySource) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.template, "template", "", "run a saved template")
	cmd.Flags().StringVar(&d.file, "schedule", "", "run a schedule file (yaml or json)")
	cmd.Flags().BoolVar(&d.skipIncomplete, "skip-incomplete", false, "drop blocks without a task or length instead of failing")
}

func (d deploySource) apply(ctx context.Context, app *bootstrap.App) error {
	switch {
	case d.template != "" && d.file != "":
		return fmt.Errorf("--template and --schedule are mutually exclusive")
	case d.template != "":
		_, err := app.TrackerCLI.DeployTemplate(ctx, d.template)
		return err
	case d.file != "":
		var blocks []config.Block
		if err := readBlocks(d.file, &blocks); err != nil {
			return err
		}
		_, err := app.TrackerCLI.Deploy(ctx, bootstrap.ScheduleBlocks(blocks), d.skipIncomplete)
		return err
	}
	return nil
}

// readBlocks accepts either a bare list of blocks or a document with a
// top-level "blocks" (or "schedule") key. JSON parses as YAML.
func readBlocks[T any](path string, out *[]T) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schedule file: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return fmt.Errorf("schedule file %s is empty", path)
	}
	if err := yaml.Unmarshal(raw, out); err == nil {
		return nil
	}
	var doc struct {
		Blocks   []T `yaml:"blocks"`
		Schedule []T `yaml:"schedule"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse schedule file %s: %w", path, err)
	}
	*out = doc.Blocks
	if len(*out) == 0 {
		*out = doc.Schedule
	}
	return nil
}
