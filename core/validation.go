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


package core

import (
	"fmt"
	"time"
)

// ValidateKnowledgeDocument validates a KnowledgeDocument according to domain rules.
//
// Validation rules:
//   - Title, Body and Domain must not be empty
//   - CreatedAt must not be in the future
//
// NOT validated here:
//   - Metadata (checked against the domain's metadata schema at ingestion time)
//   - ID (0 is valid before content-based assignment)
func ValidateKnowledgeDocument(doc *KnowledgeDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyTitle)
	}

	if doc.Body == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyBody)
	}

	if doc.Domain == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDomain)
	}

	if !IsValidTimestamp(doc.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateEmbeddingChunk validates an EmbeddingChunk according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - DocumentId must be set
//   - Index must not be negative
//
// NOT validated here:
//   - Vector (can be empty until the embedding processor runs)
func ValidateEmbeddingChunk(chunk *EmbeddingChunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Content == "" {
		return fmt.Errorf("%w: content cannot be empty", ErrInvalidChunk)
	}

	if chunk.DocumentId == 0 {
		return fmt.Errorf("%w: document id required", ErrInvalidChunk)
	}

	if chunk.Index < 0 {
		return fmt.Errorf("%w: negative chunk index %d", ErrInvalidChunk, chunk.Index)
	}

	return nil
}

// ValidateComplexityLevel validates that a ComplexityLevel has a known value.
// The empty value is valid and means "not stated".
func ValidateComplexityLevel(level ComplexityLevel) error {
	switch level {
	case "", ComplexityBeginner, ComplexityIntermediate, ComplexityAdvanced:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidComplexity, level)
}

// ValidateMetadata checks document metadata against a domain-declared schema.
// schema maps allowed keys to their allowed values; an empty value list
// means any value is accepted for that key. Unknown keys are rejected.
func ValidateMetadata(metadata map[string]string, schema map[string][]string) error {
	if len(metadata) == 0 || schema == nil {
		return nil
	}

	for key, value := range metadata {
		allowed, ok := schema[key]
		if !ok {
			return fmt.Errorf("%w: metadata key %q not in schema", ErrInvalidDocument, key)
		}
		if len(allowed) == 0 {
			continue
		}
		found := false
		for _, v := range allowed {
			if v == value {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: metadata value %q not allowed for key %q", ErrInvalidDocument, value, key)
		}
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
