// Package config provides configuration management for pricewatch.
//
// A run is configured in layers: the defaults of NewConfig, then a YAML
// (or legacy JSON) file found by FindConfigFile, then PRICEWATCH_*
// environment variables (optionally from a .env file), then command-line
// flags. Validate is called once all layers are applied.
package config
