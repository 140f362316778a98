package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	openrouter "github.com/antflydb/antfly-go/openrouter-genkit"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/antflydb/tablesaf"
	"github.com/antflydb/tablesaf/logging"
	"github.com/antflydb/tablesaf/tablesafgenkit"
)

var (
	configPath      string
	inputPath       string
	outputPath      string
	outputFormat    string
	includePatterns []string
	excludePatterns []string
	modelName       string
	generationRPS   float64
	metricsListen   string
	logStyle        string
	logLevel        string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract sanitized tables from documents",
	Long: `Extract tables from a document or a directory of documents.

Examples:
  # Extract from a single file
  tablesaf extract --input report.pdf

  # Extract a whole directory, spreadsheets only
  tablesaf extract --input ./docs --include '**/*.xlsx' --include '**/*.csv'

  # Enable the AI reconstruction path for hard PDFs
  tablesaf extract --input report.pdf --model googleai/gemini-2.5-flash

  # Machine-readable output
  tablesaf extract --input report.pdf --format json --output tables.json
`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	extractCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input file or directory (required)")
	extractCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default stdout)")
	extractCmd.Flags().StringVarP(&outputFormat, "format", "f", "markdown", "Output format: markdown, json")
	extractCmd.Flags().StringArrayVar(&includePatterns, "include", nil, "Glob patterns to include (directory input)")
	extractCmd.Flags().StringArrayVar(&excludePatterns, "exclude", nil, "Glob patterns to exclude (directory input)")
	extractCmd.Flags().StringVarP(&modelName, "model", "m", "", "Genkit model for AI table reconstruction (optional)")
	extractCmd.Flags().Float64Var(&generationRPS, "generation-rps", 0, "Rate limit for generation calls (0 = unlimited)")
	extractCmd.Flags().StringVar(&metricsListen, "metrics-listen", "", "Address to serve Prometheus metrics on (optional)")
	extractCmd.Flags().StringVar(&logStyle, "log-style", "terminal", "Log style: terminal, json, noop")
	extractCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	if err := extractCmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("TABLESAF")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("model", extractCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("metrics_listen", extractCmd.Flags().Lookup("metrics-listen"))
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	logger := logging.NewLogger(&logging.Config{
		Style: logging.Style(logStyle),
		Level: logLevel,
	})
	defer logger.Sync() //nolint:errcheck

	config := tablesaf.DefaultConfig()
	if configPath != "" {
		var err error
		config, err = tablesaf.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	metrics := tablesaf.NewMetrics(registry)
	if addr := viper.GetString("metrics_listen"); addr != "" {
		go serveMetrics(addr, registry, logger)
	}

	opts := []tablesaf.ProcessorOption{tablesaf.WithProcessorMetrics(metrics)}

	if model := viper.GetString("model"); model != "" {
		g := initGenkit(ctx, model)
		opts = append(opts, tablesaf.WithGenerator(tablesafgenkit.NewGenerator(g, model)))
		if generationRPS > 0 {
			opts = append(opts, tablesaf.WithGenerationRateLimit(
				rate.NewLimiter(rate.Limit(generationRPS), 1)))
		}
		logger.Info("AI reconstruction enabled", zap.String("model", model))
	}

	processor := tablesaf.NewProcessor(config, logger, opts...)

	results, err := processInput(ctx, processor, logger)
	if err != nil {
		return err
	}

	output, err := renderResults(results, outputFormat)
	if err != nil {
		return err
	}

	if outputPath == "" {
		fmt.Print(output)
		return nil
	}
	if err := os.WriteFile(outputPath, []byte(output), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info("results saved", zap.String("path", outputPath))
	return nil
}

// processInput runs the processor over a single file or every matching file
// under a directory. Per-document failures are logged and skipped so one bad
// file never aborts a directory run.
func processInput(ctx context.Context, processor *tablesaf.Processor, logger *zap.Logger) ([]*tablesaf.DocumentResult, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat input: %w", err)
	}

	if !info.IsDir() {
		content, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		result, err := processor.ProcessFile(ctx, inputPath, content)
		if err != nil {
			return nil, err
		}
		return []*tablesaf.DocumentResult{result}, nil
	}

	source := tablesaf.NewFilesystemSource(tablesaf.FilesystemSourceConfig{
		BaseDir:         inputPath,
		IncludePatterns: includePatterns,
		ExcludePatterns: excludePatterns,
	}, logger)

	var results []*tablesaf.DocumentResult
	items, errs := source.Traverse(ctx)
	for item := range items {
		result, err := processor.ProcessFile(ctx, item.Path, item.Content)
		if err != nil {
			logger.Warn("document skipped",
				zap.String("path", item.Path), zap.Error(err))
			continue
		}
		results = append(results, result)
	}
	if err := <-errs; err != nil {
		return nil, fmt.Errorf("traversal failed: %w", err)
	}
	return results, nil
}

// documentOutput is the JSON shape of one processed document.
type documentOutput struct {
	Source string            `json:"source"`
	Tables []*tablesaf.Table `json:"tables"`
	Pages  []pageOutput      `json:"pages,omitempty"`
}

// pageOutput is the JSON shape of one PDF page's acquisition outcome.
type pageOutput struct {
	Page         int       `json:"page"`
	State        string    `json:"state"`
	Reason       string    `json:"reason,omitempty"`
	Hallucinated []float64 `json:"hallucinated,omitempty"`
}

func renderResults(results []*tablesaf.DocumentResult, format string) (string, error) {
	switch format {
	case "json":
		docs := make([]documentOutput, 0, len(results))
		for _, r := range results {
			doc := documentOutput{Source: r.Source, Tables: r.Tables}
			for i, pr := range r.Pages {
				doc.Pages = append(doc.Pages, pageOutput{
					Page:         i + 1,
					State:        pr.State.String(),
					Reason:       pr.Reason,
					Hallucinated: pr.Hallucinated,
				})
			}
			docs = append(docs, doc)
		}
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal results: %w", err)
		}
		return string(data) + "\n", nil

	case "markdown":
		var b strings.Builder
		for _, r := range results {
			for _, table := range r.Tables {
				fmt.Fprintf(&b, "## %s (page %d)\n\n", table.Source, table.Page)
				b.WriteString(table.Markdown())
				b.WriteString("\n")
			}
		}
		return b.String(), nil

	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

// initGenkit registers the plugin matching the model prefix:
// "openrouter/..." models go through OpenRouter (OPENROUTER_API_KEY),
// everything else through Google AI (GEMINI_API_KEY).
func initGenkit(ctx context.Context, model string) *genkit.Genkit {
	if rest, ok := strings.CutPrefix(model, "openrouter/"); ok {
		plugin := &openrouter.OpenRouter{}
		g := genkit.Init(ctx, genkit.WithPlugins(plugin))
		plugin.DefineModel(g, openrouter.ModelDefinition{Models: []string{rest}}, nil)
		return g
	}
	return genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	logger.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server failed", zap.Error(err))
	}
}
