// Package resolve turns one free-text query into one authoritative answer.
//
// A Resolver asks the intent matcher first. A curated intent match always wins
// and the document cascade is never consulted for it. Otherwise the cascade's
// result is returned verbatim. If the query cannot be embedded, the intent
// stage is treated as unavailable and the cascade still runs.
//
// The Resolver holds only immutable state built at startup, so a single value
// serves any number of concurrent requests. Each call records an OpenTelemetry
// span per stage and reports progress to an optional Monitor.
package resolve
