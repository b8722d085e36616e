package storage

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/raphaelgruber/parley/internal/chat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadPayload(t *testing.T, payload string) []chat.Thread {
	t.Helper()
	slot := &memSlot{data: []byte(payload), ok: true}
	return newTestStore(slot).Load()
}

func TestSanitize_DropsInvalidThreads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantIDs []string
	}{
		{
			name:    "missing id dropped",
			payload: `[{"title":"no id","messages":[]},{"id":"chat_1","messages":[]}]`,
			wantIDs: []string{"chat_1"},
		},
		{
			name:    "non-string id dropped",
			payload: `[{"id":42,"messages":[]},{"id":"chat_1","messages":[]}]`,
			wantIDs: []string{"chat_1"},
		},
		{
			name:    "missing messages dropped",
			payload: `[{"id":"chat_1"},{"id":"chat_2","messages":[]}]`,
			wantIDs: []string{"chat_2"},
		},
		{
			name:    "messages not an array dropped",
			payload: `[{"id":"chat_1","messages":"oops"},{"id":"chat_2","messages":[]}]`,
			wantIDs: []string{"chat_2"},
		},
		{
			name:    "non-object element dropped",
			payload: `["hello",{"id":"chat_1","messages":[]}]`,
			wantIDs: []string{"chat_1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			threads := loadPayload(t, tt.payload)
			if len(threads) != len(tt.wantIDs) {
				t.Fatalf("Load() returned %d threads, want %d", len(threads), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if threads[i].ID != id {
					t.Errorf("thread[%d].ID = %q, want %q", i, threads[i].ID, id)
				}
			}
		})
	}
}

func TestSanitize_TitleDefaults(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"missing title", `[{"id":"chat_1","messages":[]}]`, chat.DefaultTitle},
		{"empty title", `[{"id":"chat_1","title":"","messages":[]}]`, chat.DefaultTitle},
		{"numeric title coerced", `[{"id":"chat_1","title":7,"messages":[]}]`, "7"},
		{"zero title", `[{"id":"chat_1","title":0,"messages":[]}]`, chat.DefaultTitle},
		{"object title", `[{"id":"chat_1","title":{"a":1},"messages":[]}]`, chat.DefaultTitle},
		{
			"overlong title clamped",
			fmt.Sprintf(`[{"id":"chat_1","title":%q,"messages":[]}]`, strings.Repeat("t", chat.MaxTitleLength+20)),
			strings.Repeat("t", chat.MaxTitleLength),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			threads := loadPayload(t, tt.payload)
			if len(threads) != 1 {
				t.Fatalf("Load() returned %d threads, want 1", len(threads))
			}
			if threads[0].Title != tt.want {
				t.Errorf("Title = %q, want %q", threads[0].Title, tt.want)
			}
		})
	}
}

func TestSanitize_DropsInvalidMessages(t *testing.T) {
	payload := `[{"id":"chat_1","messages":[
		{"id":"m1","text":"keep me","sender":"user","timestamp":123},
		{"text":"no id","sender":"user","timestamp":123},
		{"id":"m3","sender":"user","timestamp":123},
		{"id":"m4","text":"","sender":"user","timestamp":123},
		{"id":"m5","text":"no sender","timestamp":123},
		{"id":"m6","text":"bad sender type","sender":9,"timestamp":123},
		{"id":"m7","text":"also kept","sender":"ai","timestamp":456}
	]}]`

	threads := loadPayload(t, payload)
	if len(threads) != 1 {
		t.Fatalf("Load() returned %d threads, want 1", len(threads))
	}

	msgs := threads[0].Messages
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].ID != "m1" || msgs[1].ID != "m7" {
		t.Errorf("kept messages %q and %q, want m1 and m7", msgs[0].ID, msgs[1].ID)
	}
	if msgs[1].Sender != chat.SenderAssistant {
		t.Errorf("Sender = %q, want %q", msgs[1].Sender, chat.SenderAssistant)
	}
}

func TestSanitize_ClampsMessageText(t *testing.T) {
	long := strings.Repeat("x", chat.MaxMessageLength+50)
	payload := fmt.Sprintf(`[{"id":"chat_1","messages":[{"id":"m1","text":%q,"sender":"user","timestamp":1}]}]`, long)

	threads := loadPayload(t, payload)
	if len(threads) != 1 || len(threads[0].Messages) != 1 {
		t.Fatalf("unexpected shape: %+v", threads)
	}
	if got := len(threads[0].Messages[0].Text); got != chat.MaxMessageLength {
		t.Errorf("message text length = %d, want %d", got, chat.MaxMessageLength)
	}
}

func TestSanitize_TimestampDefaults(t *testing.T) {
	const now = int64(1700000000000)
	payload := `[{"id":"chat_1","createdAt":"yesterday","messages":[
		{"id":"m1","text":"a","sender":"user","timestamp":-5},
		{"id":"m2","text":"b","sender":"user","timestamp":1650000000000},
		{"id":"m3","text":"c","sender":"user","timestamp":"1650000000000"}
	]}]`

	threads := loadPayload(t, payload)
	if len(threads) != 1 {
		t.Fatalf("Load() returned %d threads, want 1", len(threads))
	}
	if threads[0].CreatedAt != now {
		t.Errorf("CreatedAt = %d, want clock default %d", threads[0].CreatedAt, now)
	}
	if threads[0].Messages[0].Timestamp != now {
		t.Errorf("negative timestamp = %d, want clock default %d", threads[0].Messages[0].Timestamp, now)
	}
	if threads[0].Messages[1].Timestamp != 1650000000000 {
		t.Errorf("valid timestamp rewritten to %d", threads[0].Messages[1].Timestamp)
	}
	if threads[0].Messages[2].Timestamp != 1650000000000 {
		t.Errorf("numeric-string timestamp = %d, want coerced 1650000000000", threads[0].Messages[2].Timestamp)
	}
}

func TestSanitize_CoercesScalarFields(t *testing.T) {
	payload := `[{"id":"c1","title":7,"messages":[
		{"id":"m1","text":"x","sender":"user","timestamp":"1650000000000"},
		{"id":"m2","text":42,"sender":"user","timestamp":1}
	]}]`

	threads := loadPayload(t, payload)
	if len(threads) != 1 {
		t.Fatalf("Load() returned %d threads, want 1", len(threads))
	}
	if threads[0].Title != "7" {
		t.Errorf("Title = %q, want numeric value rendered as %q", threads[0].Title, "7")
	}
	msgs := threads[0].Messages
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Timestamp != 1650000000000 {
		t.Errorf("Timestamp = %d, want coerced 1650000000000", msgs[0].Timestamp)
	}
	if msgs[1].Text != "42" {
		t.Errorf("Text = %q, want numeric value rendered as %q", msgs[1].Text, "42")
	}
}

func TestSanitize_CapsThreadCount(t *testing.T) {
	over := make([]chat.Thread, chat.MaxChats+5)
	for i := range over {
		over[i] = chat.Thread{ID: fmt.Sprintf("chat_%d", i), Messages: []chat.Message{}, CreatedAt: 1}
	}

	threads := loadPayload(t, string(mustJSON(t, over)))
	if len(threads) != chat.MaxChats {
		t.Errorf("Load() kept %d threads, want %d", len(threads), chat.MaxChats)
	}
	if threads[0].ID != "chat_0" {
		t.Errorf("truncation kept the wrong end: first id %q", threads[0].ID)
	}
}
