package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"quartz/internal/project"
	"quartz/internal/templates"
)

const noQuartzTomlMessage = "no quartz.toml found\nrun inspect from inside a quartz project, or pass its directory:\n  quartz inspect path/to/project"

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] [dir]",
	Short: "Dump cached template instantiations",
	Long:  `Inspect lists every instantiation recorded in the project's snapshot cache`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
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

	paths, err := snapshotFiles(manifest.CachePath())
	if err != nil {
		return fmt.Errorf("failed to scan snapshot cache: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(paths) == 0 {
		fmt.Fprintf(out, "no snapshots in %s\n", manifest.CachePath())
		return nil
	}

	for _, p := range paths {
		snap, err := readSnapshotFile(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", filepath.Base(p), err)
			continue
		}
		renderSnapshot(out, filepath.Base(p), snap)
	}
	return nil
}

func snapshotFiles(cacheDir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(cacheDir, "inst", "*.mp"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func readSnapshotFile(path string) (templates.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return templates.Snapshot{}, err
	}
	defer func() { _ = f.Close() }()
	return templates.ReadSnapshot(f)
}

var (
	snapshotHeader = color.New(color.Bold)
	phaseColors    = map[templates.Phase]*color.Color{
		templates.PhaseDeclared: color.New(color.FgBlue),
		templates.PhaseLayout:   color.New(color.FgYellow),
		templates.PhaseFull:     color.New(color.FgGreen),
	}
)

func renderSnapshot(out io.Writer, label string, snap templates.Snapshot) {
	snapshotHeader.Fprintf(out, "%s (%d instantiations)\n", label, len(snap.Entries))

	nameWidth := 0
	for _, e := range snap.Entries {
		if w := runewidth.StringWidth(e.Name); w > nameWidth {
			nameWidth = w
		}
	}
	for _, e := range snap.Entries {
		phase := templates.Phase(e.Phase)
		pc, ok := phaseColors[phase]
		if !ok {
			pc = color.New(color.FgRed)
		}
		pad := strings.Repeat(" ", nameWidth-runewidth.StringWidth(e.Name))
		fmt.Fprintf(out, "  %s%s  %-8s", e.Name, pad, pc.Sprint(phase.String()))
		if phase >= templates.PhaseLayout && e.Size > 0 {
			fmt.Fprintf(out, "  size=%d align=%d", e.Size, e.Align)
		}
		fmt.Fprintln(out)
	}
}
