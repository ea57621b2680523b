package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/helmcode/overload/pkg/api"
	"github.com/helmcode/overload/pkg/config"
	"github.com/helmcode/overload/pkg/view"
	"github.com/spf13/cobra"
)

// clientOptions are the flags shared by every command that talks to the API.
type clientOptions struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	output     string
	verbose    bool
}

func (o *clientOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.configPath, "config", "", "Path to config file (default ~/.overload/config.yaml)")
	cmd.Flags().StringVar(&o.baseURL, "base-url", "", "Analysis API base URL (overrides config)")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "Client-side request timeout, 0 for none (overrides config)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Output format (human, json, yaml)")
	cmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "Verbose output")
}

// loadConfig merges explicitly set flags over the file and env config.
func (o *clientOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = o.baseURL
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = o.output
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newAPIClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.BaseURL, cfg.Timeout).WithUserAgent(cfg.UserAgent)
}

// newLogger writes debug diagnostics to w when verbose; otherwise it drops them.
func newLogger(verbose bool, w io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// probeHealth runs the startup liveness check. Its outcome only produces a
// notification.
func probeHealth(ctx context.Context, client *api.Client, notifier *view.Notifier, errOut io.Writer, logger *slog.Logger) bool {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(errOut))
	s.Suffix = " Testing API connection..."
	s.Start()
	health, err := client.Health(ctx)
	s.Stop()

	if err != nil {
		logger.Debug("health check failed", "url", client.BaseURL(), "error", err)
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) {
			notifier.Warning("API may be starting up. Please wait 30 seconds before analyzing.")
		} else {
			notifier.Warning("API connection issue. Service may be starting up.")
		}
		return false
	}
	logger.Debug("api is healthy", "status", health.Status, "version", health.Version)
	notifier.Success("Connected to Overload API")
	return true
}

func printHeader(w io.Writer, origin string, chars int) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(w)
	cyan.Fprintln(w, "🧠 Overload Code Analyzer")
	fmt.Fprintf(w, "📝 Source: %s\n", origin)
	fmt.Fprintf(w, "📏 Size: %s\n", view.CharCount(chars))
	fmt.Fprintln(w)
}
