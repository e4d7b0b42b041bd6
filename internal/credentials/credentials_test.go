package credentials

import (
	"os"
	"testing"
)

// isolateEnv clears every credential source so a test sees only what it sets.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("GROQ_API_KEY_2", "")
	t.Setenv("GROQ_API_KEY_3", "")
	t.Setenv("GROQ_API_KEY_4", "")
	t.Setenv("GROQ_API_KEY_5", "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestNewPoolFiltersInvalid(t *testing.T) {
	pool, err := NewPool([]string{
		"gsk_live_abc123def456",
		"",
		"  ",
		"your_api_key_here",
		"gsk_live_xyz789uvw012",
	})
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	if pool.Len() != 2 {
		t.Errorf("expected 2 valid keys, got %d", pool.Len())
	}
	if pool.Key(0) != "gsk_live_abc123def456" {
		t.Errorf("key order not preserved: %q", pool.Key(0))
	}
}

func TestNewPoolTrimsWhitespace(t *testing.T) {
	pool, err := NewPool([]string{"  gsk_live_abc123def456  "})
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	if pool.Key(0) != "gsk_live_abc123def456" {
		t.Errorf("key not trimmed: %q", pool.Key(0))
	}
}

func TestNewPoolEmpty(t *testing.T) {
	_, err := NewPool([]string{"", "your_key"})
	if err == nil {
		t.Fatal("expected error for zero valid keys")
	}
}

func TestLoadPoolFromEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk_live_primary00001")
	t.Setenv("GROQ_API_KEY_2", "gsk_live_second000002")
	t.Setenv("GROQ_API_KEY_3", "your_api_key_here")
	t.Setenv("GROQ_API_KEY_5", "gsk_live_fifth0000005")

	pool, err := LoadPool()
	if err != nil {
		t.Fatalf("LoadPool failed: %v", err)
	}
	if pool.Len() != 3 {
		t.Fatalf("expected 3 keys, got %d", pool.Len())
	}
	if pool.Key(0) != "gsk_live_primary00001" {
		t.Errorf("primary key not first: %q", pool.Key(0))
	}
	if pool.Key(2) != "gsk_live_fifth0000005" {
		t.Errorf("numbered keys out of order: %q", pool.Key(2))
	}
}

func TestLoadPoolMergesFile(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk_live_fromenv00001")
	writeFile(t, "credentials.toml", `
[groq]
api_key = "gsk_live_fromfile0001"
extra_keys = ["gsk_live_fromfile0002", "your_placeholder"]
`)

	pool, err := LoadPool()
	if err != nil {
		t.Fatalf("LoadPool failed: %v", err)
	}
	if pool.Len() != 3 {
		t.Fatalf("expected 3 keys (env + file + extra), got %d", pool.Len())
	}
	// Environment keys stay ahead of file keys.
	if pool.Key(0) != "gsk_live_fromenv00001" {
		t.Errorf("env key not first: %q", pool.Key(0))
	}
	if pool.Key(1) != "gsk_live_fromfile0001" {
		t.Errorf("file key not second: %q", pool.Key(1))
	}
}

func TestLoadPoolNoSources(t *testing.T) {
	isolateEnv(t)
	if _, err := LoadPool(); err == nil {
		t.Fatal("expected error with no keys configured")
	}
}

func TestLoadPoolBadFile(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk_live_fromenv00001")
	writeFile(t, "credentials.toml", "not [valid toml")

	if _, err := LoadPool(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNextAfterWraps(t *testing.T) {
	pool, _ := NewPool([]string{"gsk_live_aaaaaaaaaaaa", "gsk_live_bbbbbbbbbbbb", "gsk_live_cccccccccccc"})
	if got := pool.NextAfter(0); got != 1 {
		t.Errorf("NextAfter(0) = %d", got)
	}
	if got := pool.NextAfter(2); got != 0 {
		t.Errorf("NextAfter(2) = %d, want wrap to 0", got)
	}
}

func TestKeysReturnsCopy(t *testing.T) {
	pool, _ := NewPool([]string{"gsk_live_aaaaaaaaaaaa", "gsk_live_bbbbbbbbbbbb"})
	keys := pool.Keys()
	keys[0] = "mutated"
	if pool.Key(0) != "gsk_live_aaaaaaaaaaaa" {
		t.Error("Keys exposed internal slice")
	}
}

func TestMasked(t *testing.T) {
	pool, _ := NewPool([]string{"gsk_live_abcdefgh1234", "gsk_short"})
	if got := pool.Masked(0); got != "gsk_live...1234" {
		t.Errorf("Masked(0) = %q", got)
	}
	// Short keys reveal a single character only.
	if got := pool.Masked(1); got != "g..." {
		t.Errorf("Masked(1) = %q", got)
	}
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
