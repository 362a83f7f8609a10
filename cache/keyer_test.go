package cache

import (
	"strings"
	"testing"
)

func TestDefaultKeyer_Deterministic(t *testing.T) {
	k := NewDefaultKeyer()

	a, err := k.Key("db", map[string]any{"host": "db-1", "port": 5432, "opts": []any{"ssl", map[string]any{"z": 1, "a": 2}}})
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	b, _ := k.Key("db", map[string]any{"opts": []any{"ssl", map[string]any{"a": 2, "z": 1}}, "port": 5432, "host": "db-1"})

	if a != b {
		t.Errorf("Key() not deterministic: %q != %q", a, b)
	}
	if !strings.HasPrefix(a, "health:db:") || len(a) != len("health:db:")+16 {
		t.Errorf("Key() = %q, want health:db:<16 hex>", a)
	}
}

func TestDefaultKeyer_DistinctInputs(t *testing.T) {
	k := NewDefaultKeyer()

	tests := []struct {
		component string
		input     any
	}{
		{"db", nil},
		{"db", []string{"primary"}},
		{"db", []string{"replica"}},
		{"cache", nil},
	}

	seen := make(map[string]bool)
	for _, tt := range tests {
		key, err := k.Key(tt.component, tt.input)
		if err != nil {
			t.Fatalf("Key(%q, %v) error = %v", tt.component, tt.input, err)
		}
		if seen[key] {
			t.Errorf("Key(%q, %v) = %q collides", tt.component, tt.input, key)
		}
		seen[key] = true
	}
}

func TestDefaultKeyer_Errors(t *testing.T) {
	k := NewDefaultKeyer()

	if _, err := k.Key("db", func() {}); err == nil {
		t.Error("Key() with unmarshalable input should fail")
	}
	if _, err := k.Key(strings.Repeat("x", MaxKeyLength), nil); err == nil {
		t.Error("Key() exceeding MaxKeyLength should fail")
	}
}
