package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/helmcode/overload/pkg/export"
	"github.com/helmcode/overload/pkg/model"
	"github.com/helmcode/overload/pkg/source"
	"github.com/helmcode/overload/pkg/view"
	"github.com/helmcode/overload/pkg/workflow"
	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"k8s.io/client-go/util/homedir"
)

type analyzeOptions struct {
	clientOptions

	code       string
	example    bool
	configMap  string
	namespace  string
	kubeconfig string
	kubeCtx    string
	export     string
	exportDir  string
	noHealth   bool
	noPrompt   bool

	// confirmRetry asks whether to resend after a failure.
	confirmRetry func() bool
	now          func() time.Time
}

func NewAnalyzeCmd() *cobra.Command {
	return newAnalyzeCmd(&analyzeOptions{})
}

func newAnalyzeCmd(opts *analyzeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [FILE|-]",
		Short: "Analyze Python code for bugs with the Overload API",
		Long: `Send Python source code to the Overload analysis API and list the bugs,
security issues and bad practices it finds.

Examples:
  # Analyze a file
  overload analyze app.py

  # Analyze code piped on stdin
  cat app.py | overload analyze -

  # Analyze the built-in example and export an HTML report
  overload analyze --example --export=html

  # Analyze a script stored in a ConfigMap
  overload analyze --configmap scripts:migrate.py -n jobs

  # Machine-readable output
  overload analyze app.py -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.code, "code", "", "Inline code to analyze")
	cmd.Flags().BoolVar(&opts.example, "example", false, "Analyze the built-in example snippet")
	cmd.Flags().StringVar(&opts.configMap, "configmap", "", "Read code from a ConfigMap ([configmap/]NAME[:KEY])")
	cmd.Flags().StringVarP(&opts.namespace, "namespace", "n", "default", "Kubernetes namespace for --configmap")
	kubeconfigDefault := ""
	if home := homedir.HomeDir(); home != "" {
		kubeconfigDefault = filepath.Join(home, ".kube", "config")
	}
	cmd.Flags().StringVar(&opts.kubeconfig, "kubeconfig", kubeconfigDefault, "Path to kubeconfig file")
	cmd.Flags().StringVar(&opts.kubeCtx, "context", "", "Kubeconfig context (overrides current-context)")
	cmd.Flags().StringVar(&opts.export, "export", "", "Export results to a file (json, yaml, html)")
	cmd.Flags().Lookup("export").NoOptDefVal = export.FormatJSON
	cmd.Flags().StringVar(&opts.exportDir, "export-dir", "", "Directory for exported reports (overrides config)")
	cmd.Flags().BoolVar(&opts.noHealth, "no-health", false, "Skip the startup API health check")
	cmd.Flags().BoolVar(&opts.noPrompt, "no-prompt", false, "Never offer to retry after a failure")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, args []string) error {
	ctx := cmd.Context()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(opts.verbose, errOut)
	notifier := view.NewNotifier(errOut)
	human := cfg.Output == view.FormatHuman

	resolver := &source.Resolver{
		Stdin: cmd.InOrStdin(),
		Kube: func() (source.ConfigMapReader, error) {
			return source.NewKubeClient(opts.kubeconfig, opts.kubeCtx)
		},
	}
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	input, err := resolver.Resolve(ctx, source.Options{
		Code:      opts.code,
		Path:      path,
		Example:   opts.example,
		ConfigMap: opts.configMap,
		Namespace: opts.namespace,
	})
	if err != nil {
		return err
	}

	if human {
		printHeader(out, input.Origin, utf8.RuneCountInString(input.Code))
	}

	client := newAPIClient(cfg)
	logger.Debug("using analysis api", "url", client.BaseURL(), "timeout", cfg.Timeout)
	if cfg.HealthCheck && !opts.noHealth {
		probeHealth(ctx, client, notifier, errOut, logger)
	}

	wf := workflow.New(client, view.NewSink(cfg.Output, out, errOut), workflow.WithLogger(logger))
	result, err := wf.Analyze(ctx, input.Code)
	for err != nil && retryable(err) && opts.shouldOfferRetry(human) && opts.confirm() {
		result, err = wf.Retry(ctx)
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	notifier.Success(fmt.Sprintf("Analysis complete! Found %s", issueCount(len(result.Bugs))))

	if opts.export != "" {
		exportDir := cfg.ExportDir
		if cmd.Flags().Changed("export-dir") {
			exportDir = opts.exportDir
		}
		return exportResults(result, wf.LastInput(), opts.export, exportDir, opts.clock(), notifier)
	}
	return nil
}

func exportResults(result *model.AnalysisResult, code, format, dir string, now time.Time, notifier *view.Notifier) error {
	report, err := export.Build(result, code, now)
	if errors.Is(err, export.ErrNothingToExport) {
		notifier.Warning("No results to export")
		return nil
	}
	if err != nil {
		return err
	}
	path, err := export.Write(report, dir, format, now)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	notifier.Success(fmt.Sprintf("Results exported to %s", path))
	return nil
}

// retryable excludes validation failures; resending the same input cannot help.
func retryable(err error) bool {
	var wfErr *workflow.Error
	return errors.As(err, &wfErr) && !wfErr.Validation()
}

func (o *analyzeOptions) shouldOfferRetry(human bool) bool {
	if o.noPrompt || !human {
		return false
	}
	if o.confirmRetry != nil {
		return true
	}
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func (o *analyzeOptions) confirm() bool {
	if o.confirmRetry != nil {
		return o.confirmRetry()
	}
	prompt := promptui.Prompt{
		Label:     "Try again",
		IsConfirm: true,
	}
	_, err := prompt.Run()
	return err == nil
}

func (o *analyzeOptions) clock() time.Time {
	if o.now != nil {
		return o.now()
	}
	return time.Now()
}

func issueCount(n int) string {
	if n == 1 {
		return "1 issue"
	}
	return fmt.Sprintf("%d issues", n)
}
