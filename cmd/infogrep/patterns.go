package infogrep

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/infogrep/infogrep/internal/config"
	"github.com/infogrep/infogrep/internal/patterns"
	"github.com/infogrep/infogrep/internal/types"
	"github.com/infogrep/infogrep/internal/update"
)

var (
	patShowConfidence string
	patImportConf     string
	patImportOutput   string
	patImportName     string
	patUpdateURL      string
)

func init() {
	patCmd := &cobra.Command{Use: "patterns", Short: "Manage pattern sets and the selector registry"}
	rootCmd.AddCommand(patCmd)

	patCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered pattern selectors",
		Args:  cobra.NoArgs,
		RunE:  runPatternsList,
	})

	showCmd := &cobra.Command{
		Use:   "show [selector|file]",
		Short: "Show the patterns of a selector or pattern file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPatternsShow,
	}
	showCmd.Flags().StringVarP(&patShowConfidence, "confidence", "c", "", "only show patterns with this confidence")
	patCmd.AddCommand(showCmd)

	patCmd.AddCommand(&cobra.Command{
		Use:     "add name:path",
		Short:   "Register a pattern file under a selector",
		Example: "  infogrep patterns add internal:./ci/internal-tokens.yml",
		Args:    cobra.ExactArgs(1),
		RunE:    runPatternsAdd,
	})

	importCmd := &cobra.Command{
		Use:   "import-gitleaks <gitleaks.toml>",
		Short: "Convert a gitleaks TOML config into a pattern file",
		Args:  cobra.ExactArgs(1),
		RunE:  runPatternsImport,
	}
	importCmd.Flags().StringVar(&patImportConf, "confidence", string(types.ConfHigh), "confidence assigned to every converted rule")
	importCmd.Flags().StringVarP(&patImportOutput, "output", "o", "", "write the pattern file here instead of stdout")
	importCmd.Flags().StringVar(&patImportName, "name", "", "register the written file under this selector (requires --output)")
	patCmd.AddCommand(importCmd)

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Download newer versions of the default pattern files",
		Args:  cobra.NoArgs,
		RunE:  runPatternsUpdate,
	}
	updateCmd.Flags().StringVar(&patUpdateURL, "url", "", "base URL of the pattern files")
	patCmd.AddCommand(updateCmd)
}

func runPatternsList(cmd *cobra.Command, _ []string) error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	reg, err := config.EnsureDefaults(dir)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Selector", "Patterns", "Version", "File")
	for _, name := range reg.Names() {
		path, _ := reg.Resolve(name)
		count, ver := "-", "-"
		if set, err := patterns.Load(path); err == nil {
			count = strconv.Itoa(len(set.Patterns))
			if set.Version != "" {
				ver = set.Version
			}
		} else {
			count = "unreadable"
		}
		if err := table.Append([]string{name, count, ver, path}); err != nil {
			return err
		}
	}
	return table.Render()
}

// resolvePatternArg maps a selector or an existing file path to a file.
func resolvePatternArg(arg string) (string, error) {
	if arg != "" {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			return arg, nil
		}
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	reg, err := config.EnsureDefaults(dir)
	if err != nil {
		return "", err
	}
	return reg.Resolve(arg)
}

func runPatternsShow(cmd *cobra.Command, args []string) error {
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	path, err := resolvePatternArg(arg)
	if err != nil {
		return err
	}
	set, err := patterns.Load(path)
	if err != nil {
		return err
	}
	defs, err := patterns.Select(set.Patterns, patShowConfidence)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Name", "Confidence", "Regex")
	for _, d := range defs {
		if err := table.Append([]string{d.Name, string(d.Confidence), d.Regex}); err != nil {
			return err
		}
	}
	return table.Render()
}

func runPatternsAdd(cmd *cobra.Command, args []string) error {
	name, path, ok := strings.Cut(args[0], ":")
	if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(path) == "" {
		return fmt.Errorf("expected name:path, got %q", args[0])
	}
	dir, err := configDir()
	if err != nil {
		return err
	}
	reg, err := config.EnsureDefaults(dir)
	if err != nil {
		return err
	}
	if err := reg.Add(name, path); err != nil {
		return err
	}
	key := strings.ToLower(strings.TrimSpace(name))
	fmt.Fprintf(cmd.OutOrStdout(), "Registered %s -> %s\n", key, reg.Entries[key])
	return nil
}

func runPatternsImport(cmd *cobra.Command, args []string) error {
	if patImportName != "" && patImportOutput == "" {
		return fmt.Errorf("--name requires --output")
	}
	conf := types.ParseConfidence(patImportConf)
	if conf == types.ConfUnknown {
		return fmt.Errorf("invalid --confidence %q (want low, medium or high)", patImportConf)
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	set, err := patterns.FromGitleaks(raw, conf)
	if err != nil {
		return err
	}
	// Fail before writing anything if a rule does not compile.
	if _, err := patterns.Compile(set.Patterns); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := patterns.Encode(&buf, set); err != nil {
		return err
	}
	if patImportOutput == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := config.LockAndWrite(patImportOutput, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Converted %d rules into %s\n", len(set.Patterns), patImportOutput)
	if patImportName == "" {
		return nil
	}
	abs, err := filepath.Abs(patImportOutput)
	if err != nil {
		return err
	}
	return runPatternsAdd(cmd, []string{patImportName + ":" + abs})
}

func runPatternsUpdate(cmd *cobra.Command, _ []string) error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	if _, err := config.EnsureDefaults(dir); err != nil {
		return err
	}
	gcfg, _ := config.LoadGlobalIn(dir)
	url := pickString(patUpdateURL, nil, gcfg.UpdateURL)

	outs, err := update.New(url).Update(cmd.Context(), dir, update.DefaultFiles)
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("File", "Local", "Remote", "Status")
	for _, o := range outs {
		status := "up to date"
		switch {
		case o.Err != nil:
			status = o.Err.Error()
		case o.Updated:
			status = "updated"
		}
		if aerr := table.Append([]string{o.File, orDash(o.Local), orDash(o.Remote), status}); aerr != nil {
			return aerr
		}
	}
	if rerr := table.Render(); rerr != nil {
		return rerr
	}
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
