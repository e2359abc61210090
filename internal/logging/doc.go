// Package logging wires slog handlers for the muraai daemon and CLI.
//
// All packages log through *slog.Logger instances produced here so that
// output format (console or JSON), levels, and standardized field keys
// stay consistent across the codebase. Component loggers carry a
// "component" attribute so daemon logs can be filtered per subsystem.
package logging
