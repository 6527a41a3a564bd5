// Package config provides configuration management for csvr.
//
// A configuration file is YAML, validated against a JSON schema generated
// from [Config] before it is decoded. Every field is optional; command line
// flags and environment variables take precedence over the file.
package config
