// Package config loads, normalizes, and validates clipgif configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CLIPGIF_FFMPEG. Values from a .env file in the working directory are loaded
// before those fallbacks are consulted.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
