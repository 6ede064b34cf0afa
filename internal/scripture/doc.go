// Package scripture detects Chinese Bible citations and the quoted passages
// that follow them. Detection is pure string scanning so the transform stage
// can treat spans as derived data and recompute them per run.
package scripture
