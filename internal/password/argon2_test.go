package password

import (
	"strings"
	"testing"
)

func testHasher(t *testing.T) *Argon2 {
	t.Helper()
	h, err := New(Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	h := testHasher(t)

	encoded, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %q", encoded)
	}

	ok, err := h.Verify("correct horse battery staple", encoded)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("correct password rejected")
	}

	ok, err = h.Verify("wrong password", encoded)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}

func TestHashSaltsAreUnique(t *testing.T) {
	h := testHasher(t)

	a, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("same input")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same input are identical")
	}
}

func TestVerifyUsesEmbeddedParameters(t *testing.T) {
	// A hash produced under one parameter set verifies under a hasher
	// configured differently: parameters travel in the encoding.
	strong, err := New(Config{
		Memory:      16 * 1024,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	encoded, err := strong.Hash("travelling parameters")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	ok, err := testHasher(t).Verify("travelling parameters", encoded)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("cross-parameter verification failed")
	}
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	h := testHasher(t)

	valid, err := h.Hash("baseline")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	parts := strings.Split(valid, "$")

	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"garbage", "not-a-phc-string"},
		{"wrong algorithm", strings.Replace(valid, "argon2id", "argon2i", 1)},
		{"wrong version", strings.Replace(valid, "v=19", "v=18", 1)},
		{"missing sections", "$argon2id$v=19$m=8192,t=1,p=1"},
		{"bad salt encoding", strings.Replace(valid, parts[4], "!!!!", 1)},
		{"undersized memory", strings.Replace(valid, "m=8192", "m=64", 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.Verify("baseline", tt.encoded); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestConfigFloors(t *testing.T) {
	base := Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"memory", func(c *Config) { c.Memory = 1024 }},
		{"time", func(c *Config) { c.Time = 0 }},
		{"parallelism", func(c *Config) { c.Parallelism = 0 }},
		{"salt", func(c *Config) { c.SaltLength = 8 }},
		{"key", func(c *Config) { c.KeyLength = 8 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if _, err := New(cfg); err == nil {
				t.Fatal("expected config rejection")
			}
		})
	}

	if _, err := New(base); err != nil {
		t.Fatalf("floor config must pass: %v", err)
	}
}

func TestDefaultParameters(t *testing.T) {
	h, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	encoded, err := h.Hash("production parameters")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.Contains(encoded, "m=65536,t=3,p=2") {
		t.Fatalf("unexpected default parameters in %q", encoded)
	}
}
