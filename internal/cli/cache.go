package cli

import (
	"errors"
	"fmt"

	"github.com/ppiankov/contradicta/internal/cache"
	"github.com/spf13/cobra"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the secondary-opinion verdict cache",
	}

	open := func() (cache.Cache, error) {
		cfg, err := a.config()
		if err != nil {
			return nil, err
		}
		cfg.Cache.Enabled = true
		return cache.New(cfg.Cache), nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "prune",
			Short: "Remove expired verdicts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := open()
				if err != nil {
					return err
				}
				p, ok := store.(cache.Pruner)
				if !ok {
					return errors.New("cache does not support pruning")
				}
				n, err := p.Prune()
				if err != nil {
					return fmt.Errorf("prune cache: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %d expired verdicts\n", n)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all cached verdicts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := open()
				if err != nil {
					return err
				}
				if err := store.Clear(); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✓ Cache cleared")
				return nil
			},
		},
	)
	return cmd
}
