package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quartz/internal/driver"
	"quartz/internal/project"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [flags] [dir]",
	Short: "Drop the project's snapshot cache",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	startDir := "."
	if len(args) == 1 {
		startDir = args[0]
	}
	manifest, ok, err := project.Load(startDir)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s", noQuartzTomlMessage)
	}

	cache, err := driver.OpenSnapshotCache(manifest.CachePath())
	if err != nil {
		return fmt.Errorf("failed to open snapshot cache: %w", err)
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to drop cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", manifest.CachePath())
	return nil
}
