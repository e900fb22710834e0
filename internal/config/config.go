package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is returned by Validate when the CoinGecko key is absent.
var ErrMissingCredential = errors.New("missing required credential")

// DefaultCoinNames is the allow-list used when neither COIN_NAMES nor
// COINS_FILE is set.
var DefaultCoinNames = []string{
	"bitcoin", "ethereum", "tether", "bnb", "solana", "xrp", "usdc",
	"cardano", "dogecoin", "tron", "toncoin", "avalanche", "polkadot",
	"chainlink", "litecoin", "polygon", "shiba inu", "bitcoin cash",
	"stellar", "monero",
}

type Config struct {
	// Secrets (from .env)
	CoinGeckoAPIKey string

	// Upstreams
	CoinGeckoBaseURL string
	FearGreedURL     string
	UpstreamTimeout  time.Duration
	UpstreamAttempts int

	// HTTP
	APIPort     int
	CORSOrigins []string

	// Data
	Timezone  string
	Location  *time.Location
	CoinNames map[string]struct{}
	CoinsFile string
	ExportDir string
}

// coinsFile is the layout of COINS_FILE.
type coinsFile struct {
	Coins []string `yaml:"coins"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		CoinGeckoAPIKey: envStr("COIN_GECKO_DEMO_API_KEY", ""),

		CoinGeckoBaseURL: envStr("COIN_GECKO_BASE_URL", "https://api.coingecko.com/api/v3"),
		FearGreedURL:     envStr("FEAR_GREED_URL", "https://api.alternative.me/fng/"),
		UpstreamTimeout:  time.Duration(envInt("UPSTREAM_TIMEOUT_SECONDS", 10)) * time.Second,
		UpstreamAttempts: envInt("UPSTREAM_MAX_ATTEMPTS", 3),

		APIPort:     envInt("API_PORT", 8000),
		CORSOrigins: envList("CORS_ALLOW_ORIGINS", []string{"http://localhost", "http://localhost:5173", "http://localhost:3000"}),

		Timezone:  envStr("TIMEZONE", "UTC"),
		CoinsFile: envStr("COINS_FILE", ""),
		ExportDir: envStr("EXPORT_DIR", os.TempDir()),
	}

	names := DefaultCoinNames
	if cfg.CoinsFile != "" {
		fromFile, err := loadCoinsFile(cfg.CoinsFile)
		if err != nil {
			return nil, err
		}
		names = fromFile
	}
	names = envList("COIN_NAMES", names)
	cfg.CoinNames = lowerSet(names)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

func loadCoinsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read coins file: %w", err)
	}
	var f coinsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse coins file: %w", err)
	}
	return f.Coins, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.CoinGeckoAPIKey == "" {
		errs = append(errs, fmt.Sprintf("COIN_GECKO_DEMO_API_KEY is required (%v)", ErrMissingCredential))
	}
	if c.CoinGeckoBaseURL == "" || c.FearGreedURL == "" {
		errs = append(errs, "upstream base URLs must not be empty")
	}
	if len(c.CoinNames) == 0 {
		errs = append(errs, "coin allow-list is empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Sprintf("API_PORT %d is out of range", c.APIPort))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, "UPSTREAM_TIMEOUT_SECONDS must be positive")
	}
	if len(c.CORSOrigins) == 0 {
		fmt.Println("[WARN] CORS_ALLOW_ORIGINS is empty - browsers on other origins will be refused")
	}

	if len(errs) > 0 {
		err := fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
		if c.CoinGeckoAPIKey == "" {
			return errors.Join(ErrMissingCredential, err)
		}
		return err
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Fear & Greed Correlation Gateway ===")
	fmt.Printf("API port: %d\n", c.APIPort)
	fmt.Printf("CoinGecko: %s (key %s)\n", c.CoinGeckoBaseURL, maskKey(c.CoinGeckoAPIKey))
	fmt.Printf("Fear & Greed: %s\n", c.FearGreedURL)
	fmt.Printf("Upstream timeout: %s, attempts: %d\n", c.UpstreamTimeout, c.UpstreamAttempts)
	fmt.Printf("Timezone: %s\n", c.Timezone)
	fmt.Printf("CORS origins: %s\n", strings.Join(c.CORSOrigins, ", "))
	fmt.Printf("Coins allowed: %d%s\n", len(c.CoinNames), boolLabel(c.CoinsFile != "", " (from "+c.CoinsFile+")", ""))
	fmt.Printf("Export dir: %s\n", c.ExportDir)
	fmt.Println("========================================")
}

// SortedCoinNames returns the allow-list in a stable order.
func (c *Config) SortedCoinNames() []string {
	out := make([]string, 0, len(c.CoinNames))
	for n := range c.CoinNames {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envList splits a comma separated variable, dropping blanks.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func lowerSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			set[strings.ToLower(n)] = struct{}{}
		}
	}
	return set
}

func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) <= 6 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
