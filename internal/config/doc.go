// Package config loads, normalizes, and validates Cadence configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GETSONGBPM_API_KEY and GENIUS_API_KEY. The Config type centralizes every
// knob the CLI needs, so catalog paths, provider credentials, and pacing
// limits are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical provider chains, and clear validation errors.
package config
