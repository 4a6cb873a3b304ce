package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ppiankov/contradicta/internal/ingest"
	"github.com/ppiankov/contradicta/internal/pipeline"
	"github.com/ppiankov/contradicta/internal/worker"
	"github.com/spf13/cobra"
)

type batchFlags struct {
	analysisFlags
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
}

func newBatchCmd(a *app) *cobra.Command {
	f := &batchFlags{}
	cmd := &cobra.Command{
		Use:   "batch <dir|file>",
		Short: "Analyze many independent cases in parallel",
		Long: `Batch analyzes independent cases concurrently:
- A directory argument makes each entry (sub-directory or file) one case
- A file argument lists case paths, one per line, relative to the file
- Each case gets its own report and its own secondary-opinion budget

Example:
  contradicta batch ./cases
  contradicta batch cases.txt --concurrency 8 --output-dir ./reports`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd, f, args[0])
		},
	}

	cmd.Flags().IntVar(&f.concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "./contradicta-reports", "output directory for reports")
	cmd.Flags().DurationVar(&f.batchTimeout, "batch-timeout", 30*time.Minute, "total timeout for batch processing")
	addAnalysisFlags(cmd, &f.analysisFlags)
	return cmd
}

func (a *app) runBatch(cmd *cobra.Command, f *batchFlags, input string) error {
	stderr := cmd.ErrOrStderr()

	analyzer, cfg, err := a.newAnalyzer(cmd, &f.analysisFlags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") || cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = f.concurrency
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Contradicta Batch Processing\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input:        %s\n", input)
	fmt.Fprintf(stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(stderr, "  Output dir:   %s\n", f.outputDir)
	fmt.Fprintf(stderr, "  Timeout:      %v\n", f.batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(stderr, "\n")

	paths, err := casePaths(input)
	if err != nil {
		return err
	}
	fmt.Fprintf(stderr, "✓ Found %d cases\n", len(paths))

	if err := os.MkdirAll(f.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), f.batchTimeout)
	defer cancel()

	fmt.Fprintf(stderr, "⚙️  Processing cases with %d workers...\n\n", cfg.Concurrency.Workers)
	processor := worker.NewBatchProcessor(analyzer, cfg.Concurrency.Workers)
	results := processor.ProcessCases(ctx, paths)

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	names := reportNames(results)
	failures := 0
	for i, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		jsonPath := filepath.Join(f.outputDir, names[i]+".json")
		mdPath := filepath.Join(f.outputDir, names[i]+".md")
		if err := writeOutput(jsonPath, nil, func(w io.Writer) error {
			return renderer.RenderJSON(w, result.Report)
		}); err != nil {
			failures++
			fmt.Fprintf(stderr, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}
		if err := writeOutput(mdPath, nil, func(w io.Writer) error {
			return renderer.RenderMarkdown(w, result.Report)
		}); err != nil {
			failures++
			fmt.Fprintf(stderr, "✗ %s: failed to write Markdown: %v\n", result.Path, err)
			continue
		}

		st := result.Report.Stats
		fmt.Fprintf(stderr, "✓ %s (%d contradictions, %d plan steps)\n", result.Report.Subject, st.Detections, st.PlanSteps)
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Batch Complete\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Total:     %d cases\n", len(results))
	fmt.Fprintf(stderr, "  Success:   %d\n", len(results)-failures)
	fmt.Fprintf(stderr, "  Failures:  %d\n", failures)
	fmt.Fprintf(stderr, "  Output:    %s\n", f.outputDir)
	fmt.Fprintf(stderr, "\n")

	if failures > 0 {
		return fmt.Errorf("%d of %d cases failed", failures, len(results))
	}
	return nil
}

// casePaths lists the cases of a directory, or reads them from a list file
func casePaths(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("batch input: %w", err)
	}
	if info.IsDir() {
		return worker.ListCases(input)
	}
	return worker.ReadCaseList(input)
}

// reportNames returns one unique file stem per result
func reportNames(results []*worker.CaseResult) []string {
	names := make([]string, len(results))
	seen := make(map[string]int)
	for i, r := range results {
		name := ingest.DocumentID(r.Path)
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s-%d", name, n)
		}
		names[i] = name
	}
	return names
}
