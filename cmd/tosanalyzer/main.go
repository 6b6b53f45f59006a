package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"TOSAnalyzer/internal/app"
	"TOSAnalyzer/internal/config"
	"TOSAnalyzer/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "tosanalyzer",
		Short:        "Score Terms of Service documents for risky clauses",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.cfg = config.Load(opts.configPath)
			opts.logger = logging.NewWithWriter(cmd.ErrOrStderr(), opts.cfg.Logging.Level, opts.cfg.Logging.Format)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML config (overrides TOS_ANALYZER_CONFIG)")

	root.AddCommand(newServeCmd(opts), newAnalyzeCmd(opts))
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			application, err := app.New(ctx, opts.cfg, opts.logger)
			if err != nil {
				return fmt.Errorf("build application: %w", err)
			}
			defer closeApplication(application, opts.logger)

			if err := application.Serve(ctx); err != nil {
				opts.logger.Error("application stopped", "error", err)
				return err
			}
			return nil
		},
	}
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a document from a file or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			application, err := app.New(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return fmt.Errorf("build application: %w", err)
			}
			defer closeApplication(application, opts.logger)

			result, safety, err := application.Analyze(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			_, err = fmt.Fprintf(out, "Overall safety: %d%% (%s)\n", safety.Percentage, safety.Status)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "document to analyze (default: stdin)")
	return cmd
}

func closeApplication(application io.Closer, logger *slog.Logger) {
	if err := application.Close(); err != nil {
		logger.Warn("close application", "error", err)
	}
}

func readInput(stdin io.Reader, file string) (string, error) {
	if file == "" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), nil
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	return string(raw), nil
}
