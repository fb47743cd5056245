package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/pyrunner/internal/config"
)

func configCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Manage the pyrunner configuration file",
	}
	c.AddCommand(configInitCmd())
	c.AddCommand(configValidateCmd())
	return c
}

func configInitCmd() *cobra.Command {
	var out string
	c := &cobra.Command{
		Use:   "init",
		Short: "Interactively write a starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(out)
		},
	}
	c.Flags().StringVar(&out, "out", "pyrunner.json5", "path to write the config file to")
	return c
}

func runConfigInit(out string) error {
	cfg := config.Default()

	interpreterPath := cfg.InterpreterPath
	defaultTimeout := strconv.Itoa(cfg.DefaultTimeoutSeconds)
	maxTimeout := strconv.Itoa(cfg.MaxTimeoutSeconds)
	defaultMemory := strconv.Itoa(cfg.DefaultMemoryLimitMiB)
	maxMemory := strconv.Itoa(cfg.MaxMemoryLimitMiB)
	policyOverride := cfg.PolicyOverrideFile

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Interpreter path").Value(&interpreterPath),
			huh.NewInput().Title("Default timeout (seconds)").Value(&defaultTimeout),
			huh.NewInput().Title("Max timeout (seconds)").Value(&maxTimeout),
			huh.NewInput().Title("Default memory limit (MiB)").Value(&defaultMemory),
			huh.NewInput().Title("Max memory limit (MiB)").Value(&maxMemory),
			huh.NewInput().Title("Policy override file (blank for none)").Value(&policyOverride),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("config wizard: %w", err)
	}

	cfg.InterpreterPath = interpreterPath
	cfg.PolicyOverrideFile = policyOverride
	if n, err := strconv.Atoi(defaultTimeout); err == nil {
		cfg.DefaultTimeoutSeconds = n
	}
	if n, err := strconv.Atoi(maxTimeout); err == nil {
		cfg.MaxTimeoutSeconds = n
	}
	if n, err := strconv.Atoi(defaultMemory); err == nil {
		cfg.DefaultMemoryLimitMiB = n
	}
	if n, err := strconv.Atoi(maxMemory); err == nil {
		cfg.MaxMemoryLimitMiB = n
	}

	if err := cfg.ValidateBounds(cfg.DefaultTimeoutSeconds, cfg.DefaultMemoryLimitMiB); err != nil {
		return err
	}
	if err := config.Save(out, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func configValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if _, err := config.LoadPolicyCatalog(cfg.PolicyOverrideFile); err != nil {
				return fmt.Errorf("policy override: %w", err)
			}
			fmt.Printf("%s is valid\n", args[0])
			return nil
		},
	}
}
