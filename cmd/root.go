package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/daybook-ai/daybook/internal/config"
	"github.com/daybook-ai/daybook/internal/prompt"
	"github.com/daybook-ai/daybook/internal/provider"
	"github.com/daybook-ai/daybook/internal/session"
	"github.com/daybook-ai/daybook/internal/store"
)

var (
	cfgFile      string
	modelFlag    string
	providerFlag string
	dbFlag       string
	logLevelFlag string

	// Package-level version info, set by Execute().
	appVersion string
	appCommit  string
	appDate    string
)

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date

	rootCmd := &cobra.Command{
		Use:   "daybook",
		Short: "Conversational journaling companion",
		Long:  "daybook is a private journaling assistant backed by a local language model.",
		// Running daybook with no subcommand starts chat mode.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevelFlag != "" {
				setLogLevel(logLevelFlag)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat("")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ~/.config/daybook/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "override model")
	rootCmd.PersistentFlags().StringVarP(&providerFlag, "provider", "p", "", "override provider (openai, anthropic)")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "journal database path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")

	// Subcommands
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newArchiveCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newMoodCmd())
	rootCmd.AddCommand(newGoalCmd())
	rootCmd.AddCommand(newReflectCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newVersionCmd(version, commit, date))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("daybook v%s (%s, built %s)\n", version, commit, date)
		},
	}
}

func setLogLevel(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", level)
		return
	}
	logrus.SetLevel(parsed)
}

// initConfig loads configuration, applying CLI flag overrides.
func initConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// CLI flags override config values
	if providerFlag != "" {
		cfg.Provider = providerFlag
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}
	if logLevelFlag == "" {
		setLogLevel(cfg.LogLevel)
	}

	return cfg
}

// buildProvider creates a Provider instance based on configuration.
func buildProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf(
				"API key not configured for anthropic.\n" +
					"Set it via:\n" +
					"  - config file: api_key\n" +
					"  - environment: ANTHROPIC_API_KEY\n" +
					"  - run: daybook init")
		}
		return provider.NewAnthropicProvider(cfg.APIKey, cfg.Model), nil
	case "openai", "":
		// Any OpenAI-compatible server; local ones need no key.
		return provider.NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want openai or anthropic)", cfg.Provider)
	}
}

// openStore opens the journal database at the configured path.
func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	path := cfg.DBPath
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("journal db path: %w", err)
		}
	}
	return store.NewSQLiteStore(path)
}

// buildEngine wires the full stack: store, provider, templates, engine.
// The caller must Close the returned store.
func buildEngine(cfg *config.Config) (*session.Engine, *store.SQLiteStore, error) {
	st, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	p, err := buildProvider(cfg)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	renderer, err := prompt.NewRenderer()
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	eng := session.New(st, p, renderer, session.Persona{
		AssistantName: cfg.Persona.AssistantName,
		UserName:      cfg.Persona.UserName,
	}, session.Options{
		SummaryTrigger:  cfg.Summary.Trigger,
		SummaryKeep:     cfg.Summary.KeepRecent,
		MaxContextBytes: cfg.MaxContextBytes,
		MaxTokens:       cfg.MaxTokens,
	})
	return eng, st, nil
}
