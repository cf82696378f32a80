// Package config loads slotmap settings.
//
// Settings are resolved in order: built-in defaults, the YAML file, a .env
// file, then SLOTMAP_* environment variables. Command-line flags are applied
// by the CLI on top of the result.
package config
