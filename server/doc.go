// Package server exposes the resolution pipeline over HTTP.
//
// Routes:
//
//	GET  /response/{query}          resolve a question given in the path
//	GET  /answer?q=...              resolve a question given as a parameter
//	POST /answer                    same, q as a form value
//	GET  /debug/{query}             ranked intent candidates for query
//	GET  /debug/match?query=&k=&cutoff=
//	GET  /debug/intents             loaded intents and response keys
//	GET  /healthz
//
// Every answer route replies with a core.Result. Handlers are wrapped with
// otelhttp so each request gets a server span.
package server
