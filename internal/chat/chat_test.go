package chat

import (
	"strings"
	"testing"
)

func TestTitleFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"short text kept whole", "hello", "hello"},
		{"exactly thirty characters", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"truncated to thirty", strings.Repeat("a", 31), strings.Repeat("a", 30)},
		{"long sentence", "this is a rather long first message for a chat", "this is a rather long first me"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TitleFromText(tt.text)
			if got != tt.want {
				t.Errorf("TitleFromText(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{"shorter than limit", "abc", 5, "abc"},
		{"equal to limit", "abcde", 5, "abcde"},
		{"over limit", "abcdef", 5, "abcde"},
		{"zero limit", "abc", 0, ""},
		{"multi-byte runes not split", "日本語のテキスト", 3, "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.s, tt.n)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
			}
		})
	}
}

func TestGenerator_NewID(t *testing.T) {
	g := NewGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := g.NewID()
		if !strings.HasPrefix(id, "chat_") {
			t.Fatalf("NewID() = %q, want chat_ prefix", id)
		}
		if seen[id] {
			t.Fatalf("NewID() returned duplicate id %q", id)
		}
		seen[id] = true
	}
}
