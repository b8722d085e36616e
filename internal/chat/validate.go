package chat

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrEmptyMessage indicates the message text is empty after trimming.
var ErrEmptyMessage = errors.New("message cannot be empty")

// TooLongError indicates the message text exceeds the length limit.
type TooLongError struct {
	Limit int
}

func (e *TooLongError) Error() string {
	return fmt.Sprintf("message is too long: maximum %d characters allowed", e.Limit)
}

// Validate trims whitespace from raw input and checks it against the
// message rules. On success it returns the trimmed text unchanged
// otherwise. Pure: no side effects, no I/O.
func Validate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageLength {
		return "", &TooLongError{Limit: MaxMessageLength}
	}
	return trimmed, nil
}
