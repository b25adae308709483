package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/attuneworks/groundwork/core"
)

// Key prefixes for different data types
const (
	documentPrefix       = "kdoc"
	documentSourcePrefix = "kdocsrc"
	documentDomainPrefix = "kdocdom"
	categoryPrefix       = "kdoccat"
	chunkPrefix          = "kchk"
	chunkDocumentPrefix  = "kchkdoc"
	tokenPrefix          = "kchktok"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentSourceKey generates a key for the source-key index.
// Format: prefix:domain:sourceKey
func makeDocumentSourceKey(domain, sourceKey string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", documentSourcePrefix, domain, sourceKey))
}

// makeDocumentDomainKey generates a composite key for the domain index.
// Format: prefix:domain:id
func makeDocumentDomainKey(domain string, id core.ID) []byte {
	prefix := fmt.Sprintf("%s:%s:", documentDomainPrefix, domain)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDocumentDomainKey generates the iteration prefix for one domain.
func makePartialDocumentDomainKey(domain string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", documentDomainPrefix, domain))
}

// makeCategoryKey generates a composite key for the category index.
// Format: prefix:domain:category:id
func makeCategoryKey(domain, category string, id core.ID) []byte {
	prefix := fmt.Sprintf("%s:%s:%s:", categoryPrefix, domain, category)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialCategoryKey generates the iteration prefix for a domain category.
func makePartialCategoryKey(domain, category string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:", categoryPrefix, domain, category))
}

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeChunkDocumentKey generates a composite key for the document index.
// Format: prefix:documentID:chunkIndex
func makeChunkDocumentKey(documentID core.ID, chunkIndex int) []byte {
	prefix := chunkDocumentPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkIndex))
	return buf
}

// makePartialChunkDocumentKey generates the iteration prefix for one document.
func makePartialChunkDocumentKey(documentID core.ID) []byte {
	prefix := chunkDocumentPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makeTokenKey generates a composite key for the lexical token index.
// Format: prefix:domain:token:chunkID
func makeTokenKey(domain, token string, chunkID core.ID) []byte {
	prefix := fmt.Sprintf("%s:%s:%s:", tokenPrefix, domain, token)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkID))
	return buf
}

// makePartialTokenKey generates the iteration prefix for one token.
func makePartialTokenKey(domain, token string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:", tokenPrefix, domain, token))
}
