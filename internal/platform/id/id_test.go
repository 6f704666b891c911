package id

import (
	"encoding/base32"
	"strings"
	"testing"
)

func TestNewIDIsLowercaseBase32(t *testing.T) {
	generated, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if len(generated) != 26 {
		t.Fatalf("id length = %d, want 26", len(generated))
	}
	if strings.ContainsAny(generated, "=/+") {
		t.Fatalf("id %q contains non-base32 characters", generated)
	}
	if generated != strings.ToLower(generated) {
		t.Fatalf("id %q is not lowercase", generated)
	}

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.ToUpper(generated))
	if err != nil {
		t.Fatalf("decode id: %v", err)
	}
	if len(raw) != 16 {
		t.Fatalf("decoded length = %d, want 16", len(raw))
	}
	if version := raw[6] >> 4; version != 4 {
		t.Fatalf("uuid version = %d, want 4", version)
	}
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]bool, 64)
	for i := 0; i < 64; i++ {
		generated, err := NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if seen[generated] {
			t.Fatalf("duplicate id %q", generated)
		}
		seen[generated] = true
	}
}
