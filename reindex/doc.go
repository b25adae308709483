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


// Package reindex re-embeds stored chunks after an embedding model change.
//
// The Reindexer walks every stored chunk in batches, re-embeds those whose
// stored content hash no longer matches their content (or all of them when
// forced), and writes the refreshed vectors back. Embedding calls are
// retried with exponential backoff and progress is reported incrementally.
package reindex
