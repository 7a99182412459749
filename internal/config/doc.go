// Package config loads, validates, and normalizes chronicle configuration.
//
// Configuration comes from a TOML file (explicit path, ~/.config/chronicle/
// config.toml, or ./chronicle.toml), with environment variables applied on
// top so containerized deployments can override individual values without a
// file. Prefer Load over hand-assembled Config values so defaults and path
// expansion stay consistent.
package config
