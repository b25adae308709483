package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateKnowledgeDocument(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		doc     *KnowledgeDocument
		wantErr error
	}{
		{
			name: "valid document",
			doc: &KnowledgeDocument{
				Id:        1,
				Domain:    "life_coaching",
				Title:     "The GROW Model",
				Body:      "Goal, Reality, Options, Will.",
				Category:  "methodologies",
				CreatedAt: validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid document with metadata",
			doc: &KnowledgeDocument{
				Id:        2,
				Domain:    "career_coaching",
				Title:     "Informational interviews",
				Body:      "How to run an informational interview.",
				Metadata:  map[string]string{MetaLifeArea: "career"},
				CreatedAt: validTime,
			},
			wantErr: nil,
		},
		{
			name:    "nil document",
			doc:     nil,
			wantErr: ErrInvalidDocument,
		},
		{
			name: "empty title",
			doc: &KnowledgeDocument{
				Domain:    "life_coaching",
				Body:      "body",
				CreatedAt: validTime,
			},
			wantErr: ErrEmptyTitle,
		},
		{
			name: "empty body",
			doc: &KnowledgeDocument{
				Domain:    "life_coaching",
				Title:     "title",
				CreatedAt: validTime,
			},
			wantErr: ErrEmptyBody,
		},
		{
			name: "empty domain",
			doc: &KnowledgeDocument{
				Title:     "title",
				Body:      "body",
				CreatedAt: validTime,
			},
			wantErr: ErrEmptyDomain,
		},
		{
			name: "future timestamp",
			doc: &KnowledgeDocument{
				Domain:    "life_coaching",
				Title:     "title",
				Body:      "body",
				CreatedAt: futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKnowledgeDocument(tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateKnowledgeDocument() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateKnowledgeDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmbeddingChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   *EmbeddingChunk
		wantErr bool
	}{
		{
			name: "valid chunk",
			chunk: &EmbeddingChunk{
				DocumentId: 1,
				Index:      0,
				Content:    "chunk content",
			},
			wantErr: false,
		},
		{
			name: "valid chunk with empty vector",
			chunk: &EmbeddingChunk{
				DocumentId: 1,
				Index:      3,
				Content:    "not yet embedded",
				Vector:     nil,
			},
			wantErr: false,
		},
		{
			name:    "nil chunk",
			chunk:   nil,
			wantErr: true,
		},
		{
			name: "empty content",
			chunk: &EmbeddingChunk{
				DocumentId: 1,
			},
			wantErr: true,
		},
		{
			name: "missing document id",
			chunk: &EmbeddingChunk{
				Content: "orphan",
			},
			wantErr: true,
		},
		{
			name: "negative index",
			chunk: &EmbeddingChunk{
				DocumentId: 1,
				Index:      -1,
				Content:    "chunk",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbeddingChunk(tt.chunk)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmbeddingChunk() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidChunk) {
				t.Errorf("ValidateEmbeddingChunk() error = %v, want wrapped ErrInvalidChunk", err)
			}
		})
	}
}

func TestValidateComplexityLevel(t *testing.T) {
	for _, level := range []ComplexityLevel{"", ComplexityBeginner, ComplexityIntermediate, ComplexityAdvanced} {
		if err := ValidateComplexityLevel(level); err != nil {
			t.Errorf("ValidateComplexityLevel(%q) unexpected error: %v", level, err)
		}
	}

	err := ValidateComplexityLevel("expert")
	if !errors.Is(err, ErrInvalidComplexity) {
		t.Errorf("ValidateComplexityLevel() error = %v, want ErrInvalidComplexity", err)
	}
}

func TestValidateMetadata(t *testing.T) {
	schema := map[string][]string{
		MetaMethodology:   {"GROW Model", "Solution-Focused"},
		MetaLifeArea:      nil, // any value allowed
		MetaEvidenceLevel: {"high", "medium", "low"},
	}

	tests := []struct {
		name     string
		metadata map[string]string
		wantErr  bool
	}{
		{
			name:     "nil metadata",
			metadata: nil,
			wantErr:  false,
		},
		{
			name: "allowed values",
			metadata: map[string]string{
				MetaMethodology: "GROW Model",
				MetaLifeArea:    "anything goes",
			},
			wantErr: false,
		},
		{
			name: "unknown key",
			metadata: map[string]string{
				"mystery": "value",
			},
			wantErr: true,
		},
		{
			name: "disallowed value",
			metadata: map[string]string{
				MetaEvidenceLevel: "anecdotal",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMetadata(tt.metadata, schema)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMetadata() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
