package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request budget; minting waits for a receipt

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Chain
	RPCURL          string        // ex: "https://testnet-rpc.monad.xyz"
	ChainID         int64         // ex: 10143
	RegistryAddress string        // journal registry contract
	PrivateKey      string        // optional, empty => read-only (no wallet session)
	ReceiptTimeout  time.Duration // how long a mint waits for its receipt

	// Content store
	FilebaseEndpoint    string        // S3-compatible endpoint
	FilebaseRegion      string        // ex: "us-east-1"
	FilebaseBucket      string        // IPFS bucket
	FilebaseAccessKey   string        // access key id
	FilebaseSecretKey   string        // secret access key
	IPFSGateway         string        // host used to resolve ipfs:// addresses
	FallbackImage       string        // image used when an entry has none
	DefaultPortfolioURL string        // external_url applied to drafts that set none
	FetchTimeout        time.Duration // per metadata fetch
	StoreRetries        int           // 0 => uploads are not retried
	StoreRetryInterval  time.Duration // first wait between upload attempts
	StoreRetryMaxWait   time.Duration // cap on the wait between upload attempts
	MaxImageBytes       int           // upper bound on an uploaded image

	// Aggregation
	AggregateConcurrency int           // metadata fetches in flight per pass
	RefreshInterval      time.Duration // periodic aggregation pass
	EligibilityInterval  time.Duration // how often the UTC day rollover is checked

	// Redis (optional, empty address disables it)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password when Redis is enabled
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts     []string // optional, restrict write endpoints to specific Host headers
	AllowedCIDRS     []string // optional, restrict /metrics and /infra to specific IPs or CIDRs
	TrustProxy       bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	MintBurst        int      // write requests allowed in a burst per client IP
	MintRefillPerMin int      // tokens refilled per client IP per minute

	ConfigFile string // optional YAML deployment file
}

func Load() *Config {
	file, err := LoadFile(getenv("JOURNAL_CONFIG_FILE", ""))
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("JOURNAL_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("JOURNAL_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("JOURNAL_REQUEST_TIMEOUT", 150*time.Second),

		// Logging
		LogLevel:  getenv("JOURNAL_LOG_LEVEL", "info"),
		PrettyLog: mustBool("JOURNAL_PRETTY_LOG", true),

		// Chain
		RPCURL:          requireEnv("JOURNAL_RPC_URL"),
		ChainID:         int64(requireEnvInt("JOURNAL_CHAIN_ID")),
		RegistryAddress: getenv("JOURNAL_REGISTRY_ADDRESS", file.or(file.RegistryAddress, DefaultRegistryAddress)),
		PrivateKey:      getenv("JOURNAL_PRIVATE_KEY", ""),
		ReceiptTimeout:  mustDuration("JOURNAL_RECEIPT_TIMEOUT", 2*time.Minute),

		// Content store
		FilebaseEndpoint:    getenv("JOURNAL_FILEBASE_ENDPOINT", "https://s3.filebase.com"),
		FilebaseRegion:      getenv("JOURNAL_FILEBASE_REGION", "us-east-1"),
		FilebaseBucket:      requireEnv("JOURNAL_FILEBASE_BUCKET"),
		FilebaseAccessKey:   requireEnv("JOURNAL_FILEBASE_ACCESS_KEY"),
		FilebaseSecretKey:   requireEnv("JOURNAL_FILEBASE_SECRET_KEY"),
		IPFSGateway:         getenv("JOURNAL_IPFS_GATEWAY", file.or(file.Gateway, DefaultGateway)),
		FallbackImage:       getenv("JOURNAL_FALLBACK_IMAGE", file.FallbackImage),
		DefaultPortfolioURL: getenv("JOURNAL_PORTFOLIO_URL", file.PortfolioURL),
		FetchTimeout:        mustDuration("JOURNAL_FETCH_TIMEOUT", 10*time.Second),
		StoreRetries:        getenvInt("JOURNAL_STORE_RETRIES", 0),
		StoreRetryInterval:  mustDuration("JOURNAL_STORE_RETRY_INTERVAL", time.Second),
		StoreRetryMaxWait:   mustDuration("JOURNAL_STORE_RETRY_MAX_WAIT", 10*time.Second),
		MaxImageBytes:       getenvInt("JOURNAL_MAX_IMAGE_BYTES", 5<<20),

		// Aggregation
		AggregateConcurrency: getenvInt("JOURNAL_AGGREGATE_CONCURRENCY", 8),
		RefreshInterval:      mustDuration("JOURNAL_REFRESH_INTERVAL", 5*time.Minute),
		EligibilityInterval:  mustDuration("JOURNAL_ELIGIBILITY_INTERVAL", time.Minute),

		// Redis settings
		RedisAddr:             getenv("JOURNAL_REDIS_ADDR", ""),
		RedisUser:             getenv("JOURNAL_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("JOURNAL_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("JOURNAL_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("JOURNAL_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts:     splitAndTrim(getenv("JOURNAL_ALLOWED_HOSTS", "")),
		AllowedCIDRS:     parseAllowedIPs(getenv("JOURNAL_ALLOWED_CIDRS", "")),
		TrustProxy:       mustBool("JOURNAL_TRUST_PROXY", true),
		MintBurst:        getenvInt("JOURNAL_MINT_BURST", 3),
		MintRefillPerMin: getenvInt("JOURNAL_MINT_REFILL_PER_MIN", 6),

		ConfigFile: getenv("JOURNAL_CONFIG_FILE", ""),
	}

	// Validate Redis password configuration
	if cfg.RedisAddr != "" && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: JOURNAL_REDIS_PASSWORD is required when JOURNAL_REDIS_PASSWORD_REQUIRED=true")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// RedisEnabled reports whether a Redis address was configured
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// Redacted returns a copy safe to log
func (c *Config) Redacted() Config {
	cp := *c
	const redacted = "***REDACTED***"
	for _, s := range []*string{&cp.PrivateKey, &cp.FilebaseSecretKey, &cp.RedisPassword} {
		if *s != "" {
			*s = redacted
		}
	}
	if cp.RedisUser != "" {
		cp.RedisUser = redacted
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
