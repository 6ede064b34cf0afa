// Package config loads, validates, and normalizes redraft configuration
// from TOML files with sensible defaults for every setting.
package config
