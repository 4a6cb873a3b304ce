package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/pipeline"
	"github.com/ppiankov/contradicta/internal/simulate"
	"github.com/spf13/cobra"
)

type simulateFlags struct {
	persona string
	outJSON string
}

func newSimulateCmd(a *app) *cobra.Command {
	f := &simulateFlags{}
	cmd := &cobra.Command{
		Use:   "simulate <report.json>",
		Short: "Rehearse a cross-examination plan against a simulated witness",
		Long: `Simulate replays the plan of a stored report against a witness persona
(cooperative, evasive or hostile) and prints the rehearsal transcript.

Replies are canned and deterministic. They are preparation material only and
never evidence.

Example:
  contradicta simulate report.json
  contradicta simulate report.json --persona hostile --json rehearsal.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, f, args[0])
		},
	}

	cmd.Flags().StringVar(&f.persona, "persona", string(model.PersonaEvasive), "witness persona (cooperative, evasive, hostile)")
	cmd.Flags().StringVar(&f.outJSON, "json", "", `output JSON path ("-" for stdout); Markdown on stdout otherwise`)
	return cmd
}

func runSimulate(cmd *cobra.Command, f *simulateFlags, reportPath string) error {
	report, err := readReport(reportPath)
	if err != nil {
		return err
	}

	sim, err := simulate.Simulate(report.Plan, model.Persona(f.persona))
	if err != nil {
		return err
	}

	renderer := pipeline.NewRenderer(false)
	stdout := cmd.OutOrStdout()
	if f.outJSON != "" {
		if err := writeOutput(f.outJSON, stdout, func(w io.Writer) error {
			return renderer.RenderJSON(w, sim)
		}); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if f.outJSON != "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s (%d turns)\n", f.outJSON, len(sim.Turns))
		}
		return nil
	}

	_, err = io.WriteString(stdout, renderer.SimulationMarkdown(sim))
	return err
}

func readReport(path string) (*model.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &report, nil
}
