// Package yaml wraps [github.com/goccy/go-yaml] for configuration and rule
// documents: decoding with positioned errors, JSON schema generation and
// validation, and source-annotated error messages.
package yaml
