package infogrep

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/infogrep/infogrep/internal/config"
	"github.com/infogrep/infogrep/internal/engine"
	"github.com/infogrep/infogrep/internal/update"
)

var (
	cfgOutput string
	cfgGlobal bool
	cfgForce  bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", "."+config.AppName+".yml", "output file path")
	initCmd.Flags().BoolVar(&cfgGlobal, "global", false, "write config.yml in the config directory instead")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
}

// sampleConfig mirrors the scan flag defaults.
func sampleConfig() config.FileConfig {
	return config.FileConfig{
		Pattern:         strPtr(config.DefaultSelector),
		PatternFile:     strPtr(""),
		Confidence:      strPtr(""),
		Truncate:        intPtr(400),
		Workers:         intPtr(2),
		ChunkSize:       intPtr(engine.DefaultChunkSize),
		Recursive:       boolPtr(false),
		Include:         strPtr(""),
		Exclude:         strPtr(""),
		DefaultExcludes: boolPtr(true),
		SkipBinary:      boolPtr(false),
		ExactLines:      boolPtr(false),
		Format:          strPtr("text"),
		NoColor:         boolPtr(false),
		LogLevel:        strPtr("info"),
		UpdateURL:       strPtr(update.DefaultBaseURL),
	}
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	out := cfgOutput
	if cfgGlobal {
		dir, err := configDir()
		if err != nil {
			return err
		}
		out = filepath.Join(dir, config.GlobalFile)
	}
	if _, err := os.Stat(out); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", out)
	}

	fc := sampleConfig()
	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := config.LockAndWrite(out, b); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", out)
	return nil
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }
