package contentstore

import "testing"

func TestResolverResolve(t *testing.T) {
	tests := []struct {
		name     string
		gateway  string
		addr     string
		expected string
	}{
		{
			name:     "ipfs address rewritten",
			gateway:  "ipfs.filebase.io",
			addr:     "ipfs://bafkabc",
			expected: "https://ipfs.filebase.io/ipfs/bafkabc",
		},
		{
			name:     "gateway given as url",
			gateway:  "https://ipfs.io/",
			addr:     "ipfs://bafkabc/meta.json",
			expected: "https://ipfs.io/ipfs/bafkabc/meta.json",
		},
		{
			name:     "gateway with ipfs path",
			gateway:  "https://ipfs.io/ipfs/",
			addr:     "ipfs://bafkabc",
			expected: "https://ipfs.io/ipfs/bafkabc",
		},
		{
			name:     "http url passes through",
			gateway:  "ipfs.filebase.io",
			addr:     "https://placekitten.com/400/400",
			expected: "https://placekitten.com/400/400",
		},
		{
			name:     "empty gateway uses default",
			gateway:  "",
			addr:     "ipfs://bafkabc",
			expected: "https://" + DefaultGateway + "/ipfs/bafkabc",
		},
		{
			name:     "empty address",
			gateway:  "ipfs.io",
			addr:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewResolver(tt.gateway).Resolve(tt.addr)
			if got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.addr, got, tt.expected)
			}
		})
	}
}
