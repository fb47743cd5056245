package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/pyrunner/internal/sandbox"
)

// childInitCmd is the hidden re-exec target sandbox.Spawn launches
// itself as. It applies the resource limits carried in env vars and
// then overlays its own image with the interpreter via syscall.Exec,
// so it never returns on success — only a setup failure reaches the
// error path below.
func childInitCmd() *cobra.Command {
	c := &cobra.Command{
		Use:    "__sandbox_child_init__ <interpreter-path> <code-file-path>",
		Hidden: true,
		Args:   cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			if err := sandbox.RunChildInit(args[0], args[1]); err != nil {
				fmt.Fprintf(os.Stderr, "pyrunner: child init failed: %v\n", err)
				os.Exit(127)
			}
		},
	}
	c.DisableFlagParsing = true
	return c
}
