package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lariat-data/lariat-go/core/cli/internal"
	"github.com/lariat-data/lariat-go/core/client"
	"github.com/lariat-data/lariat-go/core/config"
	"github.com/lariat-data/lariat-go/core/logger"
	"github.com/lariat-data/lariat-go/core/observability"
)

// version stores the version string, set via SetVersion()
var version = "dev"

// SetVersion sets the version string (called from main.init())
func SetVersion(v string) {
	version = v
}

// GetVersion returns the current version string
func GetVersion() string {
	return version
}

var (
	configFile   string
	endpoint     string
	logLevel     string
	verbose      bool
	logTags      string
	logFile      bool
	outputFormat string
	showVersion  bool

	providers *observability.Providers
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:               "lariat",
	Short:             "Lariat\nQuery data-quality indicators from the command line",
	SilenceUsage:      true,
	SilenceErrors:     true, // Errors are already logged, suppress Cobra's error output
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logFile {
			defer logger.CloseLogFile()
		}
		return providers.Shutdown(context.Background())
	},
}

// completionCmd is a hidden command used by install scripts to generate shell completions
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for lariat.
This command is used internally by install scripts and is hidden from help.`,
	Hidden:       true,
	ValidArgs:    []string{"bash", "zsh", "fish", "powershell"},
	Args:         cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletion(os.Stdout)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(completionCmd)
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Print the installed version and exit")

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to the configuration file (default: ./lariat.yaml if present)")
	flags.StringVar(&endpoint, "endpoint", "", "Public API endpoint (overrides config and LARIAT_ENDPOINT)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: error, warn, info, debug (or 1-4)")
	flags.BoolVar(&verbose, "verbose", false, "Enable verbose logging (sets log level to DEBUG)")
	flags.StringVar(&logTags, "log-tags", "", "Filter logs by tags (comma-separated, use -tag to exclude). Overrides LARIAT_LOG_TAGS env var")
	flags.BoolVar(&logFile, "log-file", false, "Stream logs to a file under the system temp directory")
	flags.StringVarP(&outputFormat, "format", "o", formatTable, "Output format: table, json or yaml")

	// Root command should only print help.
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		}
		return cmd.Help()
	}
}

// setup configures logging and telemetry before any command runs
func setup(cmd *cobra.Command, args []string) error {
	log := logger.New("cli")

	level, err := internal.ResolveLogLevel(verbose, logLevel, nil)
	if err != nil {
		return logger.WithTag("cli", err)
	}
	logger.SetLogLevel(level)

	tagFilterStr := logTags
	if tagFilterStr == "" {
		tagFilterStr = os.Getenv("LARIAT_LOG_TAGS")
	}
	if tagFilterStr != "" {
		logger.SetTagFilter(tagFilterStr)
	}

	if logFile {
		filePath, err := logger.SetLogFile()
		if err != nil {
			return logger.WithTag("cli", fmt.Errorf("failed to initialize log file: %w", err))
		}
		log.Infof("Log file: %s", filePath)
	}

	if err := validateFormat(outputFormat); err != nil {
		return logger.WithTag("cli", err)
	}

	providers, err = observability.Setup(cmd.Context(), version)
	if err != nil {
		return logger.WithTag("observability", err)
	}
	return nil
}

// loadConfig loads configuration and applies its log level unless a flag set one
func loadConfig() (*config.Config, error) {
	cfg, err := internal.LoadConfig(configFile, endpoint)
	if err != nil {
		return nil, logger.WithTag("config", err)
	}
	if !verbose && logLevel == "" && cfg.LogLevel != "" {
		level, err := internal.ResolveLogLevel(false, "", cfg)
		if err != nil {
			return nil, logger.WithTag("config", err)
		}
		logger.SetLogLevel(level)
	}
	return cfg, nil
}

// newClient builds an API client from the loaded configuration
func newClient() (*client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.HasCredentials() {
		logger.New("cli").Warnf("API credentials are not set; set %s and %s", config.EnvAPIKey, config.EnvApplicationKey)
	}
	c, err := client.New(cfg)
	if err != nil {
		return nil, logger.WithTag("client", err)
	}
	return c, nil
}
