package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"quartz/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "quartz",
	Short: "Quartz language compiler and toolchain",
	Long:  `Quartz is a programming language compiler with a template instantiation engine`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	cobra.OnInitialize(applyColorMode)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func applyColorMode() {
	mode, err := rootCmd.PersistentFlags().GetString("color")
	if err != nil {
		return
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}
}
