package cmd

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/pyrunner/internal/config"
	"github.com/nextlevelbuilder/pyrunner/pkg/pyrunner"
)

func healthcheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Print the service health descriptor as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(svc.HealthInfo())
		},
	}
}
