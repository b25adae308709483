// Package domaincfg loads and validates per-domain retrieval configuration.
//
// Each coaching domain is described by a YAML document naming its knowledge
// sources, methodologies, retrieval preferences, filtering rules, and
// personalization weights. An optional environment overlay file is deep-merged
// over the base document. Loaded configs are cached with a TTL and can be
// hot-reloaded when the config directory changes on disk.
package domaincfg
