package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sguter90/windlog/pkg/config"
)

type contextKey string

const configKey contextKey = "config"

var (
	configFile string
	envFile    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "windlog",
	Short: "windlog - append the current weather to a CSV log",
	Long: `windlog fetches one current-weather observation from the Open-Meteo
forecast API and appends it as a row to a CSV file. Run it from a
scheduler; runs must not overlap.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runFetch,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file, skipped when missing")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
}

// loadConfig builds the configuration once and stores it in the command context
func loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := InitLogger(cfg.LogLevel); err != nil {
		return err
	}

	cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
	return nil
}

func configFrom(cmd *cobra.Command) *config.Config {
	return cmd.Context().Value(configKey).(*config.Config)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
