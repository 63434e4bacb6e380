package infogrep

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/infogrep/infogrep/internal/config"
	"github.com/infogrep/infogrep/internal/logger"
)

var (
	flagNoColor   bool
	flagLogLevel  string
	flagQuiet     bool
	flagConfigDir string

	version = "3.0.0"
)

// rootCmd is the base Cobra command for the infogrep CLI.
var rootCmd = &cobra.Command{
	Use:           "infogrep",
	Short:         "Grep files for secrets and personal data",
	Long:          "infogrep scans files and directories with named regular expressions and reports every match with its confidence label.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the infogrep CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: trace|debug|info|warn|error")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "hide the banner and informational logs")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default $XDG_CONFIG_HOME/infogrep)")
}

// configDir returns --config-dir when set, else the XDG location.
func configDir() (string, error) {
	if flagConfigDir != "" {
		return flagConfigDir, nil
	}
	return config.Dir()
}

// newLogger builds the stderr logger from flags and config files.
func newLogger(local, global config.FileConfig) *logger.ConsoleLogger {
	level := pickString(flagLogLevel, local.LogLevel, global.LogLevel)
	if flagQuiet && level == "" {
		level = "warn"
	}
	log := logger.New(rootCmd.ErrOrStderr(), level)
	if pickBool(flagNoColor, local.NoColor, global.NoColor) {
		log.SetColor(false)
	}
	return log
}
