package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultRegistryAddress is the deployed journal registry
	DefaultRegistryAddress = "0xE2654a34B262aB6399F22a7A75981f2E79DEfbD1"
	// DefaultGateway resolves ipfs:// addresses
	DefaultGateway = "ipfs.filebase.io"
)

// File is the optional deployment file. Environment variables take precedence over it.
//
//	registry_address: "0x..."
//	gateway: "ipfs.filebase.io"
//	fallback_image: "https://..."
//	portfolio_url: "https://me.example"
type File struct {
	RegistryAddress string `yaml:"registry_address"`
	Gateway         string `yaml:"gateway"`
	FallbackImage   string `yaml:"fallback_image"`
	PortfolioURL    string `yaml:"portfolio_url"`
}

// LoadFile reads the deployment file at path. An empty path yields an empty File.
// ${VAR} references are expanded from the environment before parsing.
func LoadFile(path string) (File, error) {
	var f File
	if path == "" {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &f); err != nil {
		return f, fmt.Errorf("failed to parse config file: %w", err)
	}
	return f, nil
}

func (File) or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
