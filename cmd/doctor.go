package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/pyrunner/internal/config"
	"github.com/nextlevelbuilder/pyrunner/internal/sandbox"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check system environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("pyrunner doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (not found, using defaults)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}

	fmt.Println()
	fmt.Println("  Sandbox:")
	switch runtime.GOOS {
	case "linux", "darwin":
		fmt.Println("    Resource limits: supported (RLIMIT_AS/CPU/NOFILE)")
	default:
		fmt.Printf("    Resource limits: %s\n", sandbox.ErrPlatformUnsupported)
	}

	fmt.Println()
	fmt.Println("  Interpreter:")
	if path, err := exec.LookPath(cfg.InterpreterPath); err != nil {
		fmt.Printf("    %-18s NOT FOUND\n", cfg.InterpreterPath+":")
	} else {
		fmt.Printf("    %-18s %s\n", cfg.InterpreterPath+":", path)
	}

	fmt.Println()
	scratchDir := cfg.ScratchDir
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	fmt.Printf("  Scratch dir: %s", scratchDir)
	if probe, err := os.CreateTemp(scratchDir, "pyrunner-doctor-*"); err != nil {
		fmt.Println(" (NOT WRITABLE)")
	} else {
		probe.Close()
		os.Remove(probe.Name())
		fmt.Println(" (OK)")
	}

	if cfg.PolicyOverrideFile != "" {
		fmt.Println()
		fmt.Printf("  Policy override: %s", cfg.PolicyOverrideFile)
		if _, err := os.Stat(cfg.PolicyOverrideFile); err != nil {
			fmt.Println(" (NOT FOUND)")
		} else {
			fmt.Println(" (OK)")
		}
	}

	fmt.Println()
	fmt.Println("Doctor check complete.")
}
