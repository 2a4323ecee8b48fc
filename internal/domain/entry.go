package domain

import "time"

// ContentAddress is a scheme-prefixed identifier for an immutable blob (ex: ipfs://bafy...).
type ContentAddress string

func (a ContentAddress) String() string { return string(a) }

// TodoStats carries the task counters attached to an entry.
type TodoStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// DraftEntry is the user-authored entry before it is minted.
type DraftEntry struct {
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Date         string     `json:"date"`   // ISO date, ex: 2024-01-03
	Author       string     `json:"author"` // wallet address
	Timestamp    int64      `json:"timestamp"`
	PortfolioURL string     `json:"portfolioUrl,omitempty"`
	Todos        *TodoStats `json:"todos,omitempty"`
}

// Attribute is a single metadata trait. Value is a string or a number.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// Metadata is the document persisted at the address referenced by tokenURI.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	ExternalURL *string     `json:"external_url"`
	Attributes  []Attribute `json:"attributes"`
}

// Record is one registry entry as returned by the chain.
type Record struct {
	TokenID  uint64         `json:"tokenId"`
	Minter   string         `json:"minter"`
	TokenURI ContentAddress `json:"tokenUri,omitempty"`
}

// AggregatedEntry is the display projection of a Record joined with its metadata.
type AggregatedEntry struct {
	TokenID         uint64         `json:"tokenId"`
	Minter          string         `json:"minter"`
	ShortMinter     string         `json:"shortMinter"`
	TokenURI        ContentAddress `json:"tokenUri,omitempty"`
	Title           string         `json:"title"`
	Content         string         `json:"content"`
	Image           string         `json:"image,omitempty"`
	ExternalURL     string         `json:"externalUrl,omitempty"`
	HasImage        bool           `json:"hasImage"`
	HasExternalLink bool           `json:"hasExternalLink"`
	Date            time.Time      `json:"date"`
	DisplayDate     string         `json:"displayDate"`
	Todos           TodoStats      `json:"todos"`
	Resolved        bool           `json:"resolved"`
}

// MintResult describes a confirmed registration.
type MintResult struct {
	TxHash      string         `json:"txHash"`
	BlockNumber uint64         `json:"blockNumber"`
	TokenURI    ContentAddress `json:"tokenUri"`
}
