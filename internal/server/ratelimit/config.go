package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit for one tier of endpoints. Requests matching the
// same tier share a bucket per client.
type EndpointConfig struct {
	Name   string        // Tier name, used in the bucket key
	Path   string        // Exact path, prefix ending in "/", or segments with "*" wildcards
	Method string        // HTTP method
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(
			getEnvInt("RATE_LIMIT_SCRAPE_LIMIT", 30),
			getEnvDuration("RATE_LIMIT_SCRAPE_WINDOW", time.Hour),
		),
	}
}

// DefaultEndpointConfigs returns the endpoint tiers. Magic scrape calls out to the
// scraper service and gets the strictest tier.
func DefaultEndpointConfigs(scrapeLimit int, scrapeWindow time.Duration) []EndpointConfig {
	scrapeBurst := scrapeLimit / 10
	if scrapeBurst < 1 {
		scrapeBurst = 1
	}

	const writes = "writes"
	writeTier := func(method, path string) EndpointConfig {
		return EndpointConfig{Name: writes, Path: path, Method: method, Limit: 120, Window: time.Minute, Burst: 20}
	}

	return []EndpointConfig{
		// Tier 1: scraping
		{Name: "magic-scrape", Path: "/jobs/magic-scrape", Method: "POST", Limit: scrapeLimit, Window: scrapeWindow, Burst: scrapeBurst},

		// Tier 2: credentials
		{Name: "auth", Path: "/auth/", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},

		// Tier 3: writes
		writeTier("POST", "/jobs"),
		writeTier("PUT", "/jobs/"),
		writeTier("PATCH", "/jobs/*/status"),
		writeTier("DELETE", "/jobs/"),
		writeTier("POST", "/companies"),
		writeTier("PUT", "/companies/"),
		writeTier("DELETE", "/companies/"),

		// Reads use the default limit; GET /health is never limited
	}
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
