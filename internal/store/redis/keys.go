package redis

import "github.com/Snehagupta1907/monad-journal/internal/domain"

const (
	// KeyPrefixMetadata is the prefix for cached metadata documents
	KeyPrefixMetadata = "journal:metadata:"
	// KeyViewSnapshot holds the last applied aggregation result
	KeyViewSnapshot = "journal:view:snapshot"
)

// MetadataKey returns the Redis key for the document stored at addr
func MetadataKey(addr domain.ContentAddress) string {
	return KeyPrefixMetadata + string(addr)
}
