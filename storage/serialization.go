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


package storage

import (
	"time"

	"github.com/attuneworks/groundwork/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the repeated field shapes. Timestamps are stored
// as Unix microseconds.
var (
	vectorSer = ord.NewSliceSer[float32](varint.Float32)
	metaSer   = ord.NewMapSer[string, string](ord.String, ord.String)
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	return core.ID(v), err
}

// MarshalKnowledgeDocument serializes a KnowledgeDocument to bytes.
func MarshalKnowledgeDocument(doc *core.KnowledgeDocument) []byte {
	size := varint.Uint64.Size(uint64(doc.Id)) +
		ord.String.Size(doc.SourceKey) +
		ord.String.Size(doc.Domain) +
		ord.String.Size(doc.Title) +
		ord.String.Size(doc.Body) +
		ord.String.Size(doc.Category) +
		metaSer.Size(doc.Metadata) +
		ord.String.Size(doc.Author) +
		varint.Int64.Size(doc.CreatedAt.UnixMicro()) +
		varint.Int64.Size(doc.UpdatedAt.UnixMicro())

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(doc.Id), buf)
	n += ord.String.Marshal(doc.SourceKey, buf[n:])
	n += ord.String.Marshal(doc.Domain, buf[n:])
	n += ord.String.Marshal(doc.Title, buf[n:])
	n += ord.String.Marshal(doc.Body, buf[n:])
	n += ord.String.Marshal(doc.Category, buf[n:])
	n += metaSer.Marshal(doc.Metadata, buf[n:])
	n += ord.String.Marshal(doc.Author, buf[n:])
	n += varint.Int64.Marshal(doc.CreatedAt.UnixMicro(), buf[n:])
	varint.Int64.Marshal(doc.UpdatedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalKnowledgeDocument deserializes a KnowledgeDocument from bytes.
func UnmarshalKnowledgeDocument(data []byte) (*core.KnowledgeDocument, error) {
	doc := &core.KnowledgeDocument{}
	n := 0

	id, c, err := varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	doc.Id = core.ID(id)
	n += c

	if doc.SourceKey, c, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += c
	if doc.Domain, c, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += c
	if doc.Title, c, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += c
	if doc.Body, c, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += c
	if doc.Category, c, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += c
	if doc.Metadata, c, err = metaSer.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += c
	if doc.Author, c, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += c

	created, c, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	doc.CreatedAt = time.UnixMicro(created).UTC()
	n += c

	updated, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	doc.UpdatedAt = time.UnixMicro(updated).UTC()

	return doc, nil
}

// MarshalEmbeddingChunk serializes an EmbeddingChunk to bytes.
func MarshalEmbeddingChunk(chunk *core.EmbeddingChunk) []byte {
	size := varint.Uint64.Size(uint64(chunk.Id)) +
		varint.Uint64.Size(uint64(chunk.DocumentId)) +
		varint.Int.Size(chunk.Index) +
		ord.String.Size(chunk.Content) +
		vectorSer.Size(chunk.Vector) +
		varint.Uint64.Size(chunk.ContentHash) +
		ord.String.Size(chunk.Domain) +
		ord.String.Size(chunk.Category) +
		varint.Int64.Size(chunk.CreatedAt.UnixMicro()) +
		varint.Int64.Size(chunk.UpdatedAt.UnixMicro())

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(chunk.Id), buf)
	n += varint.Uint64.Marshal(uint64(chunk.DocumentId), buf[n:])
	n += varint.Int.Marshal(chunk.Index, buf[n:])
	n += ord.String.Marshal(chunk.Content, buf[n:])
	n += vectorSer.Marshal(chunk.Vector, buf[n:])
	n += varint.Uint64.Marshal(chunk.ContentHash, buf[n:])
	n += ord.String.Marshal(chunk.Domain, buf[n:])
	n += ord.String.Marshal(chunk.Category, buf[n:])
	n += varint.Int64.Marshal(chunk.CreatedAt.UnixMicro(), buf[n:])
	varint.Int64.Marshal(chunk.UpdatedAt.UnixMicro(), buf[n:])
	return buf
}

// UnmarshalEmbeddingChunk deserializes an EmbeddingChunk from bytes.
func UnmarshalEmbeddingChunk(data []byte) (*core.EmbeddingChunk, error) {
	chunk := &core.EmbeddingChunk{}
	n := 0

	id, c, err := varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	chunk.Id = core.ID(id)
	n += c

	docID, c, err := varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	chunk.DocumentId = core.ID(docID)
	n += c

	if chunk.Index, c, err = varint.Int.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += c
	if chunk.Content, c, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += c
	if chunk.Vector, c, err = vectorSer.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += c
	if chunk.ContentHash, c, err = varint.Uint64.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += c
	if chunk.Domain, c, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += c
	if chunk.Category, c, err = ord.String.Unmarshal(data[n:]); err != nil {
		return nil, err
	}
	n += c

	created, c, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	chunk.CreatedAt = time.UnixMicro(created).UTC()
	n += c

	updated, _, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, err
	}
	chunk.UpdatedAt = time.UnixMicro(updated).UTC()

	return chunk, nil
}
