// Package adapter applies domain-specific knowledge to retrieval: query
// enhancement with detected context facets, result filtering with boost and
// penalty rules, keyword-driven life-area and methodology detection, and
// escalation trigger matching. Adapters are constructed from a validated
// DomainConfig and looked up through a Registry.
package adapter
