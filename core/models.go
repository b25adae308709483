package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that identical
// content always produces identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ContentHash computes a 64-bit BLAKE2b digest of text.
// Stored alongside embedding chunks for change detection: a chunk whose
// stored hash no longer matches its content must be re-embedded.
func ContentHash(text string) uint64 {
	return uint64(IDFromContent(text))
}

// ComplexityLevel describes how advanced a piece of knowledge or a user is.
type ComplexityLevel string

const (
	ComplexityBeginner     ComplexityLevel = "beginner"
	ComplexityIntermediate ComplexityLevel = "intermediate"
	ComplexityAdvanced     ComplexityLevel = "advanced"
)

// Well-known metadata keys used by retrieval scoring.
// Metadata values are opaque strings looked up by these keys, never
// interpreted via reflection.
const (
	MetaMethodology     = "methodology"
	MetaLifeArea        = "life_area"
	MetaComplexityLevel = "complexity_level"
	MetaEvidenceLevel   = "evidence_level"
)

// KnowledgeDocument is a unit of domain knowledge.
// Documents are written by the ingestion pipeline and read-only to
// retrieval code; only metadata corrections mutate them after ingest.
type KnowledgeDocument struct {
	Id        ID
	SourceKey string // stable external identifier the ID is derived from
	Domain    string
	Title     string
	Body      string
	Category  string            // free-form taxonomy label, e.g. "methodologies"
	Metadata  map[string]string // validated against the domain's metadata schema
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EmbeddingChunk is a fixed-length vector for one chunk of a document.
// Chunks are never mutated, only regenerated and replaced wholesale when
// the source content changes.
type EmbeddingChunk struct {
	Id          ID
	DocumentId  ID
	Index       int // chunk index within the parent document
	Content     string
	Vector      []float32
	ContentHash uint64
	Domain      string
	Category    string // denormalized from the parent document for filtering
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SearchResult is one hit returned by the search orchestrator.
// Constructed per query, never persisted.
type SearchResult struct {
	ChunkId          ID
	DocumentId       ID
	Content          string
	Score            float32 // raw similarity, 0.0-1.0 where 1.0 is a perfect match
	ChunkIndex       int
	DocumentTitle    string
	DocumentCategory string
	DocumentAuthor   string
	Metadata         map[string]string
}

// FilteredResult is a SearchResult after domain boost/penalty rules and
// personalization have been applied.
type FilteredResult struct {
	SearchResult
	OriginalScore    float32
	BoostedScore     float32
	AppliedFactors   map[string]float64 // factor name -> multiplier or additive weight
	RejectionReasons []string           // empty if the result was accepted
}

// DomainContext is the per-request contextual input supplied by the
// calling agent layer. Read-only to retrieval code.
type DomainContext struct {
	SessionId            string
	UserId               string
	PreferredMethodology string
	LifeArea             string
	Complexity           ComplexityLevel
	CurrentGoals         []string // at most 3, extracted from free text
	SessionHistory       []string // prior turns as short summaries
	UserProfile          map[string]string
}
