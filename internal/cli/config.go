package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage Contradicta configuration",
		Long: `Manage Contradicta configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CONTRADICTA_*)
3. Config file (~/.contradicta/config.yaml)
4. Defaults`,
	}
	cmd.AddCommand(newConfigShowCmd(a), newConfigInitCmd())
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  `Display the effective configuration after defaults, config file and environment are applied.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			if configFile := a.v.ConfigFileUsed(); configFile != "" {
				fmt.Fprintf(stderr, "Configuration file: %s\n\n", configFile)
			} else {
				fmt.Fprintf(stderr, "No configuration file found (using defaults)\n\n")
			}

			yamlData, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("error marshaling config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(yamlData)
			return err
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration file",
		Long:  `Create a default configuration file (default ~/.contradicta/config.yaml) with all available options.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("error finding home directory: %w", err)
				}
				path = filepath.Join(home, ".contradicta", "config.yaml")
			}

			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists: %s\nUse 'contradicta config show' to view it, or delete it first to recreate", path)
			}
			if err := writeDefaultConfig(path); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Created default configuration: %s\n", path)
			fmt.Fprintf(out, "\nTo view the configuration:\n")
			fmt.Fprintf(out, "  contradicta config show\n")
			fmt.Fprintf(out, "\nTo customize, edit the file with your preferred editor:\n")
			fmt.Fprintf(out, "  $EDITOR %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "write the config file here instead")
	return cmd
}

func writeDefaultConfig(path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	// Helper for writing with error checking
	printf := func(format string, a ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(f, format, a...)
	}

	printf("# Contradicta Configuration File\n")
	printf("#\n")
	printf("# Configuration hierarchy (highest to lowest priority):\n")
	printf("#   1. CLI flags\n")
	printf("#   2. Environment variables (CONTRADICTA_*, e.g. CONTRADICTA_LLM_PROVIDER)\n")
	printf("#   3. This config file\n")
	printf("#   4. Built-in defaults\n\n")
	printf("%s", yamlData)
	printf("\n# API Keys (recommended to use environment variables instead):\n")
	printf("#   export OPENAI_API_KEY=sk-...\n")
	printf("#   export ANTHROPIC_API_KEY=sk-ant-...\n")
	printf("#   export OLLAMA_BASE_URL=http://localhost:11434\n")
	return err
}
