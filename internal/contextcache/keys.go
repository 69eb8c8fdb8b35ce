package contextcache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/apsscout/pagetree/internal/prefix"
	"github.com/apsscout/pagetree/internal/tree"
)

// ComputeCacheKey derives a deterministic key for an extraction result from
// the question, the index state, and the model. contextHash is appended
// only when non-empty, so its absence and an empty string produce the same
// key. Returns a 64 character hex digest.
func ComputeCacheKey(questionID, indexHash, modelName, contextHash string) string {
	material := questionID + "|" + indexHash + "|" + modelName
	if contextHash != "" {
		material += "|" + contextHash
	}
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}

// ComputeIndexHash fingerprints a document index by doc id, page count, and
// node count. Content edits that leave those unchanged do not change the
// hash. Returns the first 16 hex characters of the digest.
func ComputeIndexHash(index *tree.DocumentIndex) string {
	payload := map[string]any{
		"doc_id":      index.DocID,
		"total_pages": index.TotalPages,
		"tree_count":  index.NodeCount(),
	}
	canonical, err := prefix.StabilizeJSON(payload)
	if err != nil {
		canonical = index.DocID
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])[:16]
}
