package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/groundworkhq/groundbase"
)

// Global flag values.
var (
	flagConfigFile    string
	flagHostedURL     string
	flagHostedKey     string
	flagEmbeddedPath  string
	flagForceEmbedded bool
	flagVerbose       bool
)

// store is the global facade instance, opened by PersistentPreRunE.
var store *groundbase.Store

var rootCmd = &cobra.Command{
	Use:   "groundbase",
	Short: "Operator tooling for the groundbase data access layer",
	Long: `groundbase inspects and operates the data access layer shared by the
application services: check which backend the configuration selects, read
records, and allocate sequence values.`,
	SilenceUsage:      true,
	PersistentPreRunE: openStore,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "config file (default: environment only)")
	rootCmd.PersistentFlags().StringVar(&flagHostedURL, "hosted-url", "", "hosted backend connection URL")
	rootCmd.PersistentFlags().StringVar(&flagHostedKey, "hosted-key", "", "hosted backend access credential")
	rootCmd.PersistentFlags().StringVar(&flagEmbeddedPath, "embedded-path", "", "embedded database file (default: ./data/groundbase.db)")
	rootCmd.PersistentFlags().BoolVar(&flagForceEmbedded, "force-embedded", false, "use the embedded backend even if a hosted URL is configured")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(initCountersCmd)
}

// loadBackendConfig resolves configuration with flag > env > config-file
// precedence. Environment variables use the GROUNDBASE_ prefix
// (GROUNDBASE_HOSTED_URL, GROUNDBASE_HOSTED_KEY, GROUNDBASE_EMBEDDED_PATH,
// GROUNDBASE_FORCE_EMBEDDED).
func loadBackendConfig() (groundbase.BackendConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("GROUNDBASE")
	v.AutomaticEnv()
	v.SetDefault("embedded_path", "./data/groundbase.db")

	if flagConfigFile != "" {
		v.SetConfigFile(flagConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return groundbase.BackendConfig{}, err
		}
	}

	cfg := groundbase.BackendConfig{
		HostedURL:     v.GetString("hosted_url"),
		HostedKey:     v.GetString("hosted_key"),
		EmbeddedPath:  v.GetString("embedded_path"),
		ForceEmbedded: v.GetBool("force_embedded"),
	}
	if flagHostedURL != "" {
		cfg.HostedURL = flagHostedURL
	}
	if flagHostedKey != "" {
		cfg.HostedKey = flagHostedKey
	}
	if flagEmbeddedPath != "" {
		cfg.EmbeddedPath = flagEmbeddedPath
	}
	if flagForceEmbedded {
		cfg.ForceEmbedded = true
	}
	return cfg, nil
}

func openStore(cmd *cobra.Command, args []string) error {
	cfg, err := loadBackendConfig()
	if err != nil {
		return err
	}

	var logger *groundbase.ZapLogger
	if flagVerbose {
		logger, err = groundbase.NewDevelopmentZapLogger()
	} else {
		logger, err = groundbase.NewProductionZapLogger()
	}
	if err != nil {
		return err
	}

	backend, err := groundbase.SelectBackend(cfg)
	if err != nil {
		return err
	}
	store = groundbase.NewStoreWithLogger(backend, logger)
	logger.Debug("backend selected", "backend", store.BackendName())
	return nil
}
