// Package graph builds the validated dependency DAG at the heart of
// planforge. It expands evaluated targets into file nodes and edges, enforces
// the single-producer invariant, rejects cycles with the full offending path,
// and verifies that every source input exists. A successfully built Graph is
// immutable and is the sole contract between the builder and any backend
// emitter.
package graph
