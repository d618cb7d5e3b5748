// Command equityscope runs the multi-agent investment research workflow from
// the command line. Configuration comes from EQUITYSCOPE_* environment
// variables; see the config package.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/equityscope"
	"github.com/hupe1980/equityscope/config"
	"github.com/hupe1980/equityscope/core"
	"github.com/hupe1980/equityscope/embedding"
	"github.com/hupe1980/equityscope/logging"
	"github.com/hupe1980/equityscope/memory"
	"github.com/hupe1980/equityscope/memory/sqlite"
	"github.com/hupe1980/equityscope/provider/yahoo"
	synthanthropic "github.com/hupe1980/equityscope/synth/anthropic"
	synthopenai "github.com/hupe1980/equityscope/synth/openai"
	"github.com/hupe1980/equityscope/worker"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "equityscope",
		Short:         "Multi-agent investment research",
		Long:          "EquityScope coordinates research, analysis and reporting workers over a shared semantic memory to produce investment research reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newResearchCmd(), newStatsCmd(), newClearCmd())
	return cmd
}

func newResearchCmd() *cobra.Command {
	var (
		tone       string
		sequential bool
		output     string
	)
	cmd := &cobra.Command{
		Use:   "research SYMBOL",
		Short: "Run the full research workflow for a ticker symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, closeFn, err := buildScope()
			if err != nil {
				return err
			}
			defer closeFn()

			outcome := scope.Run(cmd.Context(), args[0], core.Tone(tone), !sequential)
			if !outcome.Success {
				return fmt.Errorf("research failed for %s: %s", args[0], outcome.Err)
			}

			markdown := worker.FormatReportMarkdown(outcome.Report)
			if output != "" {
				if err := os.WriteFile(output, []byte(markdown), 0o644); err != nil {
					return fmt.Errorf("failed to write report: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Report written to", output)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), markdown)
			}

			if !outcome.QualityCheck.Passed {
				fmt.Fprintln(cmd.ErrOrStderr(), "Quality issues:")
				for _, issue := range outcome.QualityCheck.Issues {
					fmt.Fprintln(cmd.ErrOrStderr(), "  -", issue)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tone, "tone", "neutral", "report tone (neutral, bullish, bearish)")
	cmd.Flags().BoolVar(&sequential, "sequential", false, "gather research and analysis sequentially instead of in parallel")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the markdown report to a file instead of stdout")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show memory store statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, closeFn, err := buildScope()
			if err != nil {
				return err
			}
			defer closeFn()

			stats, err := scope.Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Total documents:", stats.TotalDocuments)
			fmt.Fprintln(out, "Subjects:", stats.UniqueSubjects, stats.Subjects)
			fmt.Fprintln(out, "Workers:", stats.UniqueWorkers, stats.Workers)
			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Wipe the memory store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, closeFn, err := buildScope()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := scope.ClearAll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Memory store cleared")
			return nil
		},
	}
}

// buildScope wires an EquityScope from the environment configuration. The
// returned closer releases the sqlite handle when a persistent store is in
// use.
func buildScope() (*equityscope.EquityScope, func(), error) {
	cfg := config.MustLoad()
	logger := logging.NewSlogLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, false)

	var engine embedding.Engine
	if cfg.OpenAIAPIKey != "" {
		client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
		engine = embedding.NewOpenAIEngineFromClient(&client, func(o *embedding.OpenAIOptions) {
			o.Model = openai.EmbeddingModel(cfg.EmbeddingModel)
		})
	} else {
		engine = embedding.NewHashEngine()
	}

	var store core.MemoryStore
	closeFn := func() {}
	if cfg.StorePath != "" {
		s, err := sqlite.Open(cfg.StorePath, engine)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open store at %s: %w", cfg.StorePath, err)
		}
		store = s
		closeFn = func() { _ = s.Close() }
	} else {
		store = memory.NewInMemoryStore(engine)
	}

	var synth core.Synthesizer
	switch {
	case cfg.OpenAIAPIKey != "":
		client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
		synth = synthopenai.NewFromClient(&client, func(o *synthopenai.Options) {
			o.Model = cfg.OpenAIModel
		})
	case cfg.AnthropicAPIKey != "":
		synth = synthanthropic.New(func(o *synthanthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
		})
	}

	market := yahoo.New()

	scope, err := equityscope.New(func(o *equityscope.Options) {
		o.Settings = cfg
		o.MemoryStore = store
		o.MarketData = market
		o.NewsSearch = market
		o.Synthesizer = synth
		o.Logger = logger
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return scope, closeFn, nil
}
