package chat

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{"plain text", "hello", "hello", nil},
		{"trims surrounding whitespace", "  hello world \n", "hello world", nil},
		{"empty string", "", "", ErrEmptyMessage},
		{"whitespace only", "   \t\n  ", "", ErrEmptyMessage},
		{"single character", "x", "x", nil},
		{"exactly at limit", strings.Repeat("a", MaxMessageLength), strings.Repeat("a", MaxMessageLength), nil},
		{"trimmed down to limit", " " + strings.Repeat("a", MaxMessageLength) + " ", strings.Repeat("a", MaxMessageLength), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Validate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate_TooLong(t *testing.T) {
	_, err := Validate(strings.Repeat("a", MaxMessageLength+1))

	var tooLong *TooLongError
	if !errors.As(err, &tooLong) {
		t.Fatalf("Validate() error = %v, want *TooLongError", err)
	}
	if tooLong.Limit != MaxMessageLength {
		t.Errorf("TooLongError.Limit = %d, want %d", tooLong.Limit, MaxMessageLength)
	}
}

func TestValidate_CountsRunesNotBytes(t *testing.T) {
	// 4000 three-byte runes are 12000 bytes but still within the limit.
	text := strings.Repeat("世", MaxMessageLength)
	got, err := Validate(text)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != text {
		t.Errorf("Validate() modified multi-byte input")
	}

	if _, err := Validate(text + "界"); err == nil {
		t.Error("Validate() accepted input one rune over the limit")
	}
}
