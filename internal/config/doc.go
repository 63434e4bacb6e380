// Package config loads infogrep configuration from local and global YAML
// files with precedence rules, validates resolved settings and manages the
// pattern registry in the config directory. It is internal; CLI code maps
// flags and files into engine configuration.
package config
