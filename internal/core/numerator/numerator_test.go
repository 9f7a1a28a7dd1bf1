package numerator

import (
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		id   int64
		want string
	}{
		{"default width", DefaultConfig("INV"), 1, "INV-000001"},
		{"mid range", DefaultConfig("INV"), 4217, "INV-004217"},
		{"exact width", DefaultConfig("INV"), 999999, "INV-999999"},
		{"overflow keeps digits", DefaultConfig("INV"), 1234567, "INV-1234567"},
		{"zero width falls back", Config{Prefix: "S"}, 7, "S-000007"},
		{"custom width", Config{Prefix: "R", PadWidth: 3}, 12, "R-012"},
		{"no prefix", Config{PadWidth: 4}, 5, "0005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.cfg, tt.id); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSequencer_MonotonicAndUnique(t *testing.T) {
	seq := NewSequencer(DefaultConfig("INV"))

	seen := make(map[string]bool)
	prev := ""
	for id := int64(1); id <= 2000; id++ {
		num := seq.Number(id)
		if seen[num] {
			t.Fatalf("duplicate number %s", num)
		}
		seen[num] = true
		if prev != "" && num <= prev {
			t.Fatalf("expected %s > %s", num, prev)
		}
		prev = num
	}
}

func TestFormat_Deterministic(t *testing.T) {
	cfg := DefaultConfig("INV")
	if Format(cfg, 42) != Format(cfg, 42) {
		t.Fatal("expected identical output for identical input")
	}
}
