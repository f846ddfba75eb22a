package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/slangspace/internal/model"
)

// version is set at build time with -ldflags "-X ...cli.version=..."
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	seed    int64
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "slangspace",
	Short: "SlangSpace - lay out slang comment histories in nested time cubes",
	Long: `SlangSpace places crowd-sourced comments about slang terms on the faces of
nested cubes, one cube per stretch of time. The further out a cube, the
later its comments were written.

It can search new terms (an LLM sketches the meaning history, Reddit
supplies the comments), keep a small collection of saved terms, export
scene layouts and replay pointer interaction, and serve all of it over HTTP.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("slangspace %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.slangspace/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "layout random seed (0 uses the config value, then the clock)")

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

		viper.AddConfigPath(home + "/.slangspace")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// SLANGSPACE_LLM_API_KEY maps to llm.api_key
	viper.SetEnvPrefix("SLANGSPACE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// nested keys absent from the file are only visible through Get
	if key := viper.GetString("llm.api_key"); key != "" {
		cfg.LLM.APIKey = key
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if cfg.LLM.Provider == "" && cfg.LLM.APIKey != "" {
		cfg.LLM.Provider = "openrouter"
	}

	if seed != 0 {
		cfg.Layout.Seed = seed
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose
	return cfg, nil
}

// newLogger builds the process logger: human-readable when verbose,
// JSON at info level otherwise.
func newLogger(cfg *model.Config) (*zap.Logger, error) {
	if cfg.Output.Verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
