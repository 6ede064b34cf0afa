// Package api defines wire-format types and converters for the HTTP API
// layer. It translates internal queue models into transport-friendly DTOs so
// clients never couple to internal types. Source and result text stay inside
// the daemon; the API exposes only coarse state, progress, and failure codes,
// and the rewritten document travels through the download endpoint.
package api
