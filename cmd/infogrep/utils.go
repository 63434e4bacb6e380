package infogrep

import "github.com/spf13/cobra"

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// The flag* helpers give an explicitly set flag priority over the config
// files and fall back to the flag default when neither file sets a value.

func flagInt(cmd *cobra.Command, name string, cli int, local, global *int) int {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return cli
}

func flagBool(cmd *cobra.Command, name string, cli bool, local, global *bool) bool {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return cli
}

func flagString(cmd *cobra.Command, name, cli string, local, global *string) string {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if v := pickString("", local, global); v != "" {
		return v
	}
	return cli
}
