// Package credentials loads API keys and exposes them as a rotation pool.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// maxEnvKeys is the highest numbered GROQ_API_KEY_N variable scanned.
const maxEnvKeys = 5

// fileCreds mirrors the credentials.toml layout.
type fileCreds struct {
	Groq *groqCreds `toml:"groq"`
}

type groqCreds struct {
	APIKey    string   `toml:"api_key"`
	ExtraKeys []string `toml:"extra_keys"`
}

// Pool is an immutable, ordered set of validated API keys. Rotation is a
// pure index operation; keys are never removed or marked dead — a
// rate-limited key is assumed to recover after the engine's backoff.
type Pool struct {
	keys []string
}

// StandardPaths returns the credential file locations in priority order.
func StandardPaths() []string {
	paths := []string{"credentials.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "forge", "credentials.toml"))
	}
	return paths
}

// LoadPool gathers keys from the environment (GROQ_API_KEY plus
// GROQ_API_KEY_2..5) and the first credentials.toml found on the
// standard paths. Zero valid keys is a configuration error.
func LoadPool() (*Pool, error) {
	var keys []string
	keys = appendValid(keys, os.Getenv("GROQ_API_KEY"))
	for i := 2; i <= maxEnvKeys; i++ {
		keys = appendValid(keys, os.Getenv(fmt.Sprintf("GROQ_API_KEY_%d", i)))
	}

	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		var fc fileCreds
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if fc.Groq != nil {
			keys = appendValid(keys, fc.Groq.APIKey)
			for _, k := range fc.Groq.ExtraKeys {
				keys = appendValid(keys, k)
			}
		}
		break
	}

	return NewPool(keys)
}

// NewPool builds a pool from the given keys, discarding invalid ones.
func NewPool(keys []string) (*Pool, error) {
	var valid []string
	for _, k := range keys {
		if k = strings.TrimSpace(k); isValid(k) {
			valid = append(valid, k)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("no valid API keys found: set GROQ_API_KEY or create credentials.toml")
	}
	return &Pool{keys: valid}, nil
}

// isValid rejects empty values and unedited placeholders from .env templates.
func isValid(key string) bool {
	return key != "" && !strings.HasPrefix(key, "your_")
}

func appendValid(keys []string, key string) []string {
	if key = strings.TrimSpace(key); isValid(key) {
		return append(keys, key)
	}
	return keys
}

// Len returns the number of keys in the pool.
func (p *Pool) Len() int {
	return len(p.keys)
}

// Key returns the key at index i.
func (p *Pool) Key(i int) string {
	return p.keys[i]
}

// Keys returns a copy of all keys in pool order.
func (p *Pool) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// NextAfter returns the index following i, wrapping to 0.
func (p *Pool) NextAfter(i int) int {
	return (i + 1) % len(p.keys)
}

// Masked returns a log-safe identifier for the key at index i.
func (p *Pool) Masked(i int) string {
	k := p.keys[i]
	if len(k) <= 12 {
		return k[:1] + "..."
	}
	return k[:8] + "..." + k[len(k)-4:]
}
