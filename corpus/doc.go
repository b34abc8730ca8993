// Package corpus loads the curated intent bank, the response table and the
// document registry from disk, and serves document contents to the cascade.
//
// # Layout
//
//	intents/*.yml   intent definitions, one source group per file
//	domain.yml      responses keyed by "utter_<intent>"
//	documents.yml   [{filename, description, priority}]
//	files/          the documents named by the registry
//
// Intent files may use the "nlu:" form, a bare list or a single mapping, and
// examples may be a block string of "- " bullets or a YAML list. Loaders resolve
// these variants once so the rest of the pipeline only sees ordered []string.
package corpus
