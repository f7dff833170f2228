// Package config is the preference bridge between the host's settings
// surface and the engine. It loads the engine's TOML file, overlays the
// host's JSON settings document, watches both for changes, and dispatches
// updates through a fixed enumerated set of observed keys.
package config
