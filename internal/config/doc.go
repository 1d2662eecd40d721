// Package config defines the format-agnostic model of a build description.
// Loaders (see internal/hcl) translate concrete syntax into this model; the
// evaluator consumes it without knowing which syntax produced it.
package config
