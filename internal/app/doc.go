// Package app wires one generation run end to end: option resolution,
// description evaluation, graph construction, and backend emission, with an
// isolated logger and no process-global state.
package app
