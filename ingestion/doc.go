// Package ingestion provides pipeline orchestration for adding knowledge
// documents to the store.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Validating documents and their metadata against the domain schema
//   - Adding documents to storage
//   - Chunking document bodies and generating embeddings asynchronously
//
// Embedding is performed concurrently using a worker pool. Errors during
// async embedding are logged but do not fail the ingestion operation.
package ingestion
