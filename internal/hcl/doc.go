// Package hcl implements the HCL loader for planforge build descriptions.
// It parses description and option files and translates them into the
// format-agnostic model in internal/config, keeping attribute values as
// unevaluated expressions for the evaluator.
package hcl
