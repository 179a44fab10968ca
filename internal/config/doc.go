// Package config loads deckstorm configuration.
//
// Configuration is resolved in layers, lowest priority first:
//
//  1. Built-in defaults (Default)
//  2. A TOML or YAML file, chosen by extension
//  3. DECKSTORM_* environment variables
//
// The result is validated before it is returned. Watch reloads the file
// whenever it changes on disk and hands each new Config to a callback.
//
// Example file:
//
//	[render]
//	delay = "300ms"
//	theme = "gaia"
//
//	[autosave]
//	enabled = true
//	interval = "30s"
//
//	[[themes]]
//	id = "corporate"
//	file = "themes/corporate.css"
package config
