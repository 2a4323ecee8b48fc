package redis

import (
	"testing"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
)

func TestMetadataKey(t *testing.T) {
	got := MetadataKey(domain.ContentAddress("ipfs://bafkabc"))
	if got != "journal:metadata:ipfs://bafkabc" {
		t.Errorf("MetadataKey() = %q", got)
	}
}
