package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reflow-dev/reflow/internal/config"
)

func initCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a starter reflow.yaml and seed file",
		Long: `Create a starter configuration in the given directory (default ".").

Writes reflow.yaml with defaults and an empty state.json seed file.
Existing files are left untouched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runInit(dir, name)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name")

	return cmd
}

func runInit(dir, name string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	cfgPath := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.New()
	cfg.Name = name
	cfg.State.Seed = "./state.json"
	if err := cfg.SaveTo(cfgPath); err != nil {
		return err
	}
	success("created %s", cfgPath)

	seedPath := filepath.Join(dir, "state.json")
	if _, err := os.Stat(seedPath); os.IsNotExist(err) {
		if err := os.WriteFile(seedPath, []byte("{}\n"), 0644); err != nil {
			return err
		}
		success("created %s", seedPath)
	}

	info("run 'reflow serve' to start the sync server")
	return nil
}
