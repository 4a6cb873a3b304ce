package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/pipeline"
	"github.com/spf13/cobra"
)

// analysisFlags are shared by analyze and batch. They override the config
// only when set on the command line.
type analysisFlags struct {
	timeout      time.Duration
	noCache      bool
	noFooter     bool
	crossDocOnly bool
	llmProvider  string
	llmModel     string
	maxCalls     int
	playbooks    []string
}

func addAnalysisFlags(cmd *cobra.Command, f *analysisFlags) {
	cmd.Flags().DurationVar(&f.timeout, "timeout", 2*time.Minute, "analysis timeout")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the secondary-opinion cache")
	cmd.Flags().BoolVar(&f.noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().BoolVar(&f.crossDocOnly, "cross-doc-only", false, "only compare claims from different documents")
	cmd.Flags().StringVar(&f.llmProvider, "llm-provider", "", "secondary-opinion provider (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&f.llmModel, "llm-model", "", "secondary-opinion model name")
	cmd.Flags().IntVar(&f.maxCalls, "llm-max-calls", 0, "secondary-opinion call budget per case")
	cmd.Flags().StringSliceVar(&f.playbooks, "playbook", nil, "playbook library file (repeatable, first found wins)")
}

// apply copies the flags set on the command line into cfg
func (f *analysisFlags) apply(cmd *cobra.Command, cfg *model.Config) {
	changed := cmd.Flags().Changed
	if changed("no-cache") {
		cfg.Cache.Enabled = !f.noCache
	}
	if changed("no-footer") {
		cfg.Output.IncludeFooter = !f.noFooter
	}
	if changed("cross-doc-only") {
		cfg.Retrieval.CrossDocOnly = f.crossDocOnly
	}
	if changed("llm-provider") {
		cfg.LLM.Provider = f.llmProvider
		resolveProviderEnv(&cfg.LLM)
	}
	if changed("llm-model") {
		cfg.LLM.Model = f.llmModel
	}
	if changed("llm-max-calls") {
		cfg.LLM.MaxCalls = f.maxCalls
	}
	if changed("playbook") {
		cfg.Playbook.Paths = slices.Clone(f.playbooks)
	}
}

// newAnalyzer resolves config and playbook library and builds the analyzer
func (a *app) newAnalyzer(cmd *cobra.Command, f *analysisFlags) (*pipeline.Analyzer, *model.Config, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, nil, err
	}
	f.apply(cmd, cfg)
	logger := newLogger(cmd.ErrOrStderr(), cfg)

	lib, err := loadLibrary(cfg)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range lib.Warnings() {
		logger.Warn("playbook entry rejected", "source", lib.Source(), "warning", w)
	}

	analyzer, err := pipeline.NewAnalyzer(cfg, lib, pipeline.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return analyzer, cfg, nil
}

type analyzeFlags struct {
	analysisFlags
	outJSON string
	outMD   string
}

func newAnalyzeCmd(a *app) *cobra.Command {
	f := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze <case>",
		Short: "Analyze one case and generate a contradiction report",
		Long: `Analyze reads a case (a single file or a directory of documents) and:
- Removes pasted analysis output from the documents
- Splits the documents into located claims
- Compares candidate claim pairs for date, amount, identity, attribution,
  presence and existence conflicts
- Categorizes, deduplicates and scores every contradiction
- Builds a staged cross-examination plan

Supported documents: .txt, .md (optional YAML front matter), .html and
.json claim records.

Example:
  contradicta analyze ./case-42
  contradicta analyze ./case-42 --json report.json --md report.md
  contradicta analyze affidavit.txt --json -
  contradicta analyze ./case-42 --llm-provider openai --llm-model gpt-4o-mini`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd, f, args[0])
		},
	}

	cmd.Flags().StringVar(&f.outJSON, "json", "report.json", `output JSON path ("-" for stdout)`)
	cmd.Flags().StringVar(&f.outMD, "md", "", `output Markdown path ("-" for stdout, optional)`)
	addAnalysisFlags(cmd, &f.analysisFlags)
	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, f *analyzeFlags, path string) error {
	stderr := cmd.ErrOrStderr()

	analyzer, cfg, err := a.newAnalyzer(cmd, &f.analysisFlags)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(stderr, "⚙️  Analyzing %s...\n", path)
	}
	report, err := analyzer.AnalyzeCase(ctx, path)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	stdout := cmd.OutOrStdout()

	if f.outJSON != "" {
		if err := writeOutput(f.outJSON, stdout, func(w io.Writer) error {
			return renderer.RenderJSON(w, report)
		}); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
	}
	if f.outMD != "" {
		if err := writeOutput(f.outMD, stdout, func(w io.Writer) error {
			return renderer.RenderMarkdown(w, report)
		}); err != nil {
			return fmt.Errorf("render Markdown: %w", err)
		}
	}

	renderer.RenderSummary(stderr, report)
	fmt.Fprintln(stderr)
	for _, out := range []string{f.outJSON, f.outMD} {
		if out != "" && out != "-" {
			fmt.Fprintf(stderr, "✓ Wrote %s\n", out)
		}
	}
	return nil
}
