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


// Package storage defines the store contracts consumed by retrieval and
// ingestion: DocumentRepository for knowledge documents and ChunkRepository
// for embedding chunks with vector and lexical search.
//
// Serialization uses the MUS binary format; serializers here are the single
// source of truth for the on-disk encoding. The storage/badger sub-package
// provides an embedded BadgerDB implementation of both repositories.
package storage
