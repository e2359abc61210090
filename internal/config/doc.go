// Package config loads, validates, and normalizes muraai configuration.
//
// Configuration lives in a TOML file. Load resolves the file from an
// explicit path, ~/.config/muraai/config.toml, or muraai.toml in the
// working directory, decodes it over the defaults, expands paths, and
// validates the result. A commented sample config is embedded for
// `muraai config init`.
package config
