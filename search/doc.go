// Copyright 2025 Attune Works
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search orchestrates knowledge retrieval.
//
// The Orchestrator type combines:
//   - Semantic search using query embeddings against the vector store
//   - Lexical search using token overlap against the same store
//   - Hybrid fusion of both signals, semantic-dominant
//
// On top of the fused search it runs the full retrieval pipeline: domain
// query enhancement, hybrid search, and domain result filtering. Store
// failures during normal retrieval are retried once on a fresh connection
// and then absorbed to an empty result set, so a knowledge-store outage
// degrades callers to "no grounding context" instead of failing them.
package search
