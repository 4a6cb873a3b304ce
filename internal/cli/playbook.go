package cli

import (
	"fmt"
	"slices"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/ppiankov/contradicta/internal/playbook"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newPlaybookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playbook",
		Short: "Inspect the resolved playbook library",
		Long: `Inspect the playbook library used to build cross-examination plans.

Search order: playbook.paths from config, $HOME/.contradicta/playbooks.yaml,
./playbooks.yaml. The first file found is layered over the embedded default.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List playbook entries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				lib, err := a.loadPlaybook()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Source: %s\n\n", lib.Source())
				entries := lib.Entries()
				for _, k := range lib.Keys() {
					e := entries[k]
					fmt.Fprintf(out, "  %-22s %-28s %d questions\n", k, e.Name, len(e.CrossExamination.QuestionSet))
				}
				for _, w := range lib.Warnings() {
					fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", w)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <conflict-type>",
			Short: "Print the entry used for a conflict type",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				lib, err := a.loadPlaybook()
				if err != nil {
					return err
				}
				t := model.ConflictType(args[0])
				if !slices.Contains(model.AllConflictTypes(), t) && args[0] != playbook.FallbackKey {
					return fmt.Errorf("unknown conflict type %q", args[0])
				}
				if !lib.Has(t) {
					fmt.Fprintf(cmd.ErrOrStderr(), "No entry for %s; showing the %s fallback\n", t, playbook.FallbackKey)
				}
				data, err := yaml.Marshal(map[string]playbook.Entry{args[0]: lib.Lookup(t)})
				if err != nil {
					return fmt.Errorf("marshal entry: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
	)
	return cmd
}

func (a *app) loadPlaybook() (*playbook.Library, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	return loadLibrary(cfg)
}

// loadLibrary resolves the configured playbook paths, then the default ones
func loadLibrary(cfg *model.Config) (*playbook.Library, error) {
	lib, err := playbook.Load(slices.Concat(cfg.Playbook.Paths, playbook.DefaultPaths()))
	if err != nil {
		return nil, fmt.Errorf("load playbook: %w", err)
	}
	return lib, nil
}
