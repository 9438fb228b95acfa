package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stepflow-ai/stepflow/internal/logging"
)

var (
	logLevel  string
	logFormat string
	quiet     bool

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string
)

var rootCmd = &cobra.Command{
	Use:   "stepflow",
	Short: "Sequential coding-agent workflow runner",
	Long: `stepflow chains calls to coding-agent CLIs (claude, codex) into a
multi-step workflow. Each step's output becomes the next step's input;
every step is bounded by retry and timeout policy and its timing and
token usage are recorded.

Both CLIs must already be authenticated; stepflow never handles
credentials itself.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		initConfig()
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion stores build metadata for the version command.
func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-essential output")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	viper.SetEnvPrefix("STEPFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// newLogger builds the logger from the resolved flag/env configuration.
func newLogger() *logging.Logger {
	level := viper.GetString("log.level")
	if viper.GetBool("quiet") {
		level = "error"
	}
	return logging.New(logging.Config{
		Level:  level,
		Format: viper.GetString("log.format"),
	})
}
