package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/pyrunner/internal/config"
	"github.com/nextlevelbuilder/pyrunner/pkg/pyrunner"
)

func runCmd() *cobra.Command {
	var timeoutSeconds, memoryLimitMiB int
	var file string

	c := &cobra.Command{
		Use:   "run [file]",
		Short: "Run a Python file (or stdin) under the sandbox and print the outcome as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				file = args[0]
			}
			code, err := readCode(file)
			if err != nil {
				return err
			}
			return runOnce(code, timeoutSeconds, memoryLimitMiB)
		},
	}
	c.Flags().IntVar(&timeoutSeconds, "timeout", 0, "timeout in seconds (0 = service default)")
	c.Flags().IntVar(&memoryLimitMiB, "memory", 0, "memory limit in MiB (0 = service default)")
	return c
}

func readCode(file string) (string, error) {
	if file == "" || file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	return string(data), nil
}

func runOnce(code string, timeoutSeconds, memoryLimitMiB int) error {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return err
	}
	self, err := pyrunner.SelfExecutable()
	if err != nil {
		return err
	}
	svc, err := pyrunner.New(cfg, self, slog.Default())
	if err != nil {
		return err
	}
	defer svc.Close()

	outcome := svc.Execute(context.Background(), pyrunner.Request{
		Code:           code,
		TimeoutSeconds: timeoutSeconds,
		MemoryLimitMiB: memoryLimitMiB,
	})

	return printOutcome(outcome)
}

// transportOutcome mirrors spec.md §6's wire field names and rounding:
// execution_time to 3 decimals, memory_used to 2.
type transportOutcome struct {
	RequestID     string   `json:"request_id"`
	Status        string   `json:"status"`
	Stdout        string   `json:"stdout"`
	Stderr        string   `json:"stderr"`
	ExecutionTime float64  `json:"execution_time"`
	MemoryUsed    *float64 `json:"memory_used,omitempty"`
	Error         string   `json:"error,omitempty"`
}

func printOutcome(o pyrunner.Outcome) error {
	t := transportOutcome{
		RequestID:     o.RequestID,
		Status:        o.Status.String(),
		Stdout:        o.Stdout,
		Stderr:        o.Stderr,
		ExecutionTime: roundTo(o.ExecutionTimeSeconds, 3),
		Error:         o.ErrorSummary,
	}
	if o.PeakMemoryMiB != nil {
		v := roundTo(*o.PeakMemoryMiB, 2)
		t.MemoryUsed = &v
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

func roundTo(v float64, places int) float64 {
	mult := 1.0
	for i := 0; i < places; i++ {
		mult *= 10
	}
	return float64(int64(v*mult+0.5)) / mult
}
