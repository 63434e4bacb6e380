// Package infogrep provides the command-line interface for infogrep. It wires
// the scan, patterns and config subcommands, merges flags with the config
// files and exits non-zero only on startup failures.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/infogrep/infogrep/cmd/infogrep"
//	func main() { infogrep.Execute() }
package infogrep
