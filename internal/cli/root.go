package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/contradicta/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Version is set at build time
var Version = "v0.1.0"

// app holds the state shared by all commands of one invocation
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "contradicta",
		Short: "Contradicta - contradiction detection and cross-examination planning",
		Long: `Contradicta reads the statements of a legal case (affidavits, protocols,
testimony) and flags pairs of statements that cannot both be true.

It does not decide which statement is true. Every detection carries the quotes
it rests on, every score carries its formula, and every status change carries
its reason.

For each contradiction it proposes a staged cross-examination plan built from
a playbook of question templates.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.contradicta/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newVersionCmd(),
		newAnalyzeCmd(a),
		newBatchCmd(a),
		newSimulateCmd(a),
		newPlaybookCmd(a),
		newConfigCmd(a),
		newCacheCmd(a),
	)
	return root
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "contradicta %s\n", Version)
		},
	}
}

// initConfig reads in config file and ENV variables
func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(filepath.Join(home, ".contradicta"))
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("config")
	}

	// CONTRADICTA_LLM_PROVIDER overrides llm.provider
	a.v.SetEnvPrefix("CONTRADICTA")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()
	if err := registerDefaults(a.v, model.DefaultConfig()); err != nil {
		return err
	}
	_ = a.v.BindEnv("llm.api_key")
	_ = a.v.BindEnv("llm.base_url")
	_ = a.v.BindEnv("llm.http_proxy")
	_ = a.v.BindEnv("llm.https_proxy")

	err := a.v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		if a.verbose {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", a.v.ConfigFileUsed())
		}
	case errors.As(err, &notFound) && a.cfgFile == "":
	case a.cfgFile == "" && errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// registerDefaults makes every config key known to viper so env variables reach
// keys that the config file does not set
func registerDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	setDefaults(v, "", tree)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// config resolves the effective configuration: defaults, config file, env
func (a *app) config() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := a.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if a.verbose {
		cfg.Output.Verbose = true
	}
	resolveProviderEnv(&cfg.LLM)
	return cfg, nil
}

// resolveProviderEnv fills provider credentials from the conventional variables
func resolveProviderEnv(c *model.LLMConfig) {
	switch strings.ToLower(c.Provider) {
	case "openai":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "ollama":
		if c.BaseURL == "" {
			c.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
}

// newLogger returns a text logger on w: debug when verbose, warnings otherwise
func newLogger(w io.Writer, cfg *model.Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Output.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// writeOutput writes to path, or to stdout when path is "-"
func writeOutput(path string, stdout io.Writer, render func(io.Writer) error) (err error) {
	if path == "-" {
		return render(stdout)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()
	return render(f)
}
