package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X github.com/nextlevelbuilder/pyrunner/cmd.Version=v1.0.0"
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pyrunner",
	Short: "pyrunner — sandboxed Python execution service",
	Long:  "pyrunner admits Python source against a static import/builtin/attribute policy, then runs admitted code in a resource-capped subprocess and reports its outcome.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: pyrunner.json5 or $PYRUNNER_CONFIG)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(healthcheckCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(doctorCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(childInitCmd())
}

func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if v := os.Getenv("PYRUNNER_CONFIG"); v != "" {
		return v
	}
	return "pyrunner.json5"
}

// Execute runs the root cobra command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
