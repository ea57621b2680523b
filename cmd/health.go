package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/helmcode/overload/pkg/view"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewHealthCmd() *cobra.Command {
	opts := &clientOptions{}
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the Overload API is reachable",
		Long: `Probe the analysis API's /health endpoint. A hosted instance that has been
idle may need up to 30 seconds to wake up.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(opts.verbose, cmd.ErrOrStderr())
			client := newAPIClient(cfg)

			logger.Debug("probing api", "url", client.BaseURL()+"/health")
			health, err := client.Health(cmd.Context())
			if err != nil {
				view.NewNotifier(cmd.ErrOrStderr()).Warning("API connection issue. Service may be starting up.")
				return fmt.Errorf("health check failed: %w", err)
			}

			switch cfg.Output {
			case view.FormatJSON:
				output, err := json.MarshalIndent(health, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(output))
			case view.FormatYAML:
				output, err := yaml.Marshal(health)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(output))
			default:
				view.NewNotifier(cmd.OutOrStdout()).Success(fmt.Sprintf("Connected to Overload API at %s", client.BaseURL()))
				fmt.Fprintf(cmd.OutOrStdout(), "   Status: %s\n   Version: %s\n", health.Status, health.Version)
			}
			return nil
		},
	}
	opts.addFlags(cmd)
	return cmd
}
