package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/regscout/internal/logging"
	"github.com/ppiankov/regscout/internal/model"
)

// Set with -ldflags "-X github.com/ppiankov/regscout/internal/cli.version=..."
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "regscout",
	Short: "regscout - regulatory document scraper and field extractor",
	Long: `regscout fetches public regulatory web pages (EPA, ECHA, Federal Register),
extracts nine structured fields with transparent pattern rules, tags the text
with topical keywords and writes review-ready JSON records.

Every answer carries a heuristic confidence. Records are candidates for human
review, not legal advice.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of regscout.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "regscout %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.regscout/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".regscout"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// REGSCOUT_HTTP_TIMEOUT overrides http.timeout, and so on
	viper.SetEnvPrefix("REGSCOUT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("llm.api_key", "REGSCOUT_LLM_API_KEY", "OPENAI_API_KEY")
	// Keys that are empty by default never reach registerDefaults
	_ = viper.BindEnv("http.http_proxy", "REGSCOUT_HTTP_HTTP_PROXY", "HTTP_PROXY")
	_ = viper.BindEnv("http.https_proxy", "REGSCOUT_HTTP_HTTPS_PROXY", "HTTPS_PROXY")
	_ = viper.BindEnv("http.no_proxy", "REGSCOUT_HTTP_NO_PROXY", "NO_PROXY")
	_ = viper.BindEnv("llm.base_url", "REGSCOUT_LLM_BASE_URL")

	if err := registerDefaults(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering config defaults: %v\n", err)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so that env
// overrides apply even when no config file sets the key.
func registerDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}

	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for k, val := range node {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if child, ok := val.(map[string]any); ok {
				walk(key, child)
				continue
			}
			v.SetDefault(key, val)
		}
	}
	walk("", tree)
	return nil
}

// loadConfig resolves defaults, config file and environment into a validated Config
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}

// newLogger validates cfg after flag overrides and builds the zap logger for a command run
func newLogger(cfg *model.Config) (*zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if cfg.Output.Verbose {
		level = "debug"
	}
	return logging.New(level, cfg.Log.Format)
}
