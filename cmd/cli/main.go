// Package main provides the brand-monitor CLI.
//
// Run with: go run ./cmd/cli analyze --brand Acme --competitor Bolt \
//   --prompt "Best widget maker?" --format csv --output result.csv
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/firegeo/brand-monitor/internal/analyzer"
	"github.com/firegeo/brand-monitor/internal/config"
	"github.com/firegeo/brand-monitor/internal/cost"
	"github.com/firegeo/brand-monitor/internal/export"
	"github.com/firegeo/brand-monitor/internal/llm"
	"github.com/firegeo/brand-monitor/internal/model"
	"github.com/firegeo/brand-monitor/internal/validate"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "brand-monitor",
		Short: "Brand visibility analysis across LLM providers",
	}

	root.AddCommand(analyzeCmd())
	root.AddCommand(modelsCmd())
	root.AddCommand(validateCmd())
	return root
}

func analyzeCmd() *cobra.Command {
	var (
		brand       string
		competitors []string
		prompts     []string
		format      string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a brand visibility analysis",
		Long: `Queries every configured LLM provider with each prompt, detects brand
mentions in the answers, and writes the detection matrix as JSON or CSV.
Provider credentials come from the config file or BRANDMON_* environment
variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(brand, competitors, prompts, format, output)
		},
	}

	cmd.Flags().StringVar(&brand, "brand", "", "Target brand to track (required)")
	cmd.Flags().StringSliceVar(&competitors, "competitor", nil, "Competitor brand (repeatable)")
	cmd.Flags().StringArrayVar(&prompts, "prompt", nil, "Prompt to send to every provider (repeatable)")
	cmd.Flags().StringVar(&format, "format", "json", "Export format: json or csv")
	cmd.Flags().StringVar(&output, "output", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("brand")
	return cmd
}

func runAnalyze(brand string, competitors, prompts []string, format, output string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	req := &model.AnalysisRequest{
		TargetBrand:    brand,
		Competitors:    competitors,
		Prompts:        prompts,
		APIKeys:        cfg.Providers.APIKeys(),
		SelectedModels: cfg.Providers.SelectedModels(),
	}

	ctx, cancel := signalContext()
	defer cancel()

	tracker := cost.NewTracker()
	a := analyzer.New(logger, analyzer.WithTracker(tracker))

	result, err := a.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("running analysis: %w", err)
	}

	var data []byte
	switch format {
	case "json":
		data, err = export.JSON(result)
	case "csv":
		data, err = export.CSV(result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("rendering export: %w", err)
	}

	if output == "" {
		fmt.Println(string(data))
	} else {
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		fmt.Printf("wrote %s\n", output)
	}

	fmt.Fprintf(os.Stderr, "tokens: %d  estimated cost: $%.4f\n",
		tracker.TotalTokens(), tracker.TotalCost())
	return nil
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List supported models with pricing metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapters := []llm.Client{
				llm.NewOpenAIClient("", ""),
				llm.NewAnthropicClient("", ""),
				llm.NewGoogleClient("", ""),
				llm.NewPerplexityClient("", ""),
			}
			catalog := make(map[string]map[string]cost.ModelInfo)
			for _, adapter := range adapters {
				models := make(map[string]cost.ModelInfo)
				for _, mdl := range adapter.Models() {
					models[mdl] = cost.GetModelInfo(mdl)
				}
				catalog[adapter.ProviderName()] = models
			}
			data, err := json.MarshalIndent(catalog, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configured provider API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := signalContext()
			defer cancel()

			results := validate.Keys(ctx, cfg.Providers.APIKeys(), logger)
			if len(results) == 0 {
				fmt.Println("no provider API keys configured")
				return nil
			}

			providers := make([]string, 0, len(results))
			for provider := range results {
				providers = append(providers, provider)
			}
			sort.Strings(providers)
			for _, provider := range providers {
				status := "invalid"
				if results[provider] {
					status = "ok"
				}
				fmt.Printf("%-12s %s\n", provider, status)
			}
			return nil
		},
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	configPath := os.Getenv("BRANDMON_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	// CLI runs always use the development logger for readable output.
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, logger, nil
}

// signalContext returns a context cancelled by Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}
