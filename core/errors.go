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
	"errors"
	"fmt"
)

// Domain validation errors
var (
	// ErrInvalidDocument indicates a KnowledgeDocument failed validation.
	ErrInvalidDocument = errors.New("invalid knowledge document")

	// ErrInvalidChunk indicates an EmbeddingChunk failed validation.
	ErrInvalidChunk = errors.New("invalid embedding chunk")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyBody indicates the Body field is empty.
	ErrEmptyBody = errors.New("body cannot be empty")

	// ErrEmptyDomain indicates the Domain field is empty.
	ErrEmptyDomain = errors.New("domain cannot be empty")

	// ErrInvalidComplexity indicates an unrecognized ComplexityLevel value.
	ErrInvalidComplexity = errors.New("invalid complexity level")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrModelUnavailable indicates the embedding model could not be
	// loaded or reached at all. A batch embedding run aborts on it.
	ErrModelUnavailable = errors.New("embedding model unavailable")
)

const errTextPrefixLen = 64

// EmbeddingError wraps an embedding model or inference failure together
// with a prefix of the offending text.
type EmbeddingError struct {
	TextPrefix string
	Err        error
}

// NewEmbeddingError builds an EmbeddingError, truncating text to a short prefix.
func NewEmbeddingError(text string, err error) *EmbeddingError {
	runes := []rune(text)
	if len(runes) > errTextPrefixLen {
		runes = runes[:errTextPrefixLen]
	}
	return &EmbeddingError{TextPrefix: string(runes), Err: err}
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed for %q: %v", e.TextPrefix, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// SearchError indicates a vector or lexical store call failed or
// returned malformed rows.
type SearchError struct {
	Op  string
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search %s: %v", e.Op, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// DomainConfigError indicates a missing, unparseable, or schema-invalid
// domain configuration. Field is empty when the failure is not tied to
// one field.
type DomainConfigError struct {
	Domain string
	Field  string
	Err    error
}

func (e *DomainConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("domain config %q, field %q: %v", e.Domain, e.Field, e.Err)
	}
	return fmt.Sprintf("domain config %q: %v", e.Domain, e.Err)
}

func (e *DomainConfigError) Unwrap() error { return e.Err }

// RAGError is a generic retrieval-subsystem failure that does not fit
// the other categories, e.g. stats aggregation failing.
type RAGError struct {
	Op  string
	Err error
}

func (e *RAGError) Error() string {
	return fmt.Sprintf("rag %s: %v", e.Op, e.Err)
}

func (e *RAGError) Unwrap() error { return e.Err }
