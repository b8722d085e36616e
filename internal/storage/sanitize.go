package storage

import (
	"encoding/json"
	"strconv"

	"github.com/raphaelgruber/parley/internal/chat"
)

// rawThread and rawMessage decode persisted data without trusting its
// types. Every field is checked and coerced individually so one bad
// field drops or defaults, rather than failing the whole load.
type rawThread struct {
	ID        any             `json:"id"`
	Title     any             `json:"title"`
	Messages  json.RawMessage `json:"messages"`
	CreatedAt any             `json:"createdAt"`
}

type rawMessage struct {
	ID        any `json:"id"`
	Text      any `json:"text"`
	Sender    any `json:"sender"`
	Timestamp any `json:"timestamp"`
}

// sanitize normalizes untrusted persisted threads. It never fails:
// threads missing an id or a messages array are dropped, messages
// missing id/text/sender are dropped, titles and texts are coerced to
// strings and clamped to their limits, timestamps are coerced to
// numbers defaulting to the current time, and the thread list is
// truncated to chat.MaxChats. Must never panic or return an error.
func (s *Store) sanitize(items []json.RawMessage) []chat.Thread {
	threads := make([]chat.Thread, 0, len(items))

	for _, item := range items {
		if len(threads) >= chat.MaxChats {
			break
		}

		var rt rawThread
		if err := json.Unmarshal(item, &rt); err != nil {
			continue // not an object
		}

		id, ok := asString(rt.ID)
		if !ok || id == "" {
			continue
		}

		var rawMsgs []rawMessage
		if rt.Messages == nil || json.Unmarshal(rt.Messages, &rawMsgs) != nil {
			continue // messages missing or not an array
		}

		title, ok := coerceString(rt.Title)
		if !ok {
			title = chat.DefaultTitle
		}

		t := chat.Thread{
			ID:        id,
			Title:     chat.Truncate(title, chat.MaxTitleLength),
			Messages:  make([]chat.Message, 0, len(rawMsgs)),
			CreatedAt: s.epochMillis(rt.CreatedAt),
		}

		for _, rm := range rawMsgs {
			msgID, ok := asString(rm.ID)
			if !ok || msgID == "" {
				continue
			}
			text, ok := coerceString(rm.Text)
			if !ok {
				continue
			}
			sender, ok := asString(rm.Sender)
			if !ok || sender == "" {
				continue
			}

			t.Messages = append(t.Messages, chat.Message{
				ID:        msgID,
				Text:      chat.Truncate(text, chat.MaxMessageLength),
				Sender:    chat.Sender(sender),
				Timestamp: s.epochMillis(rm.Timestamp),
			})
		}

		threads = append(threads, t)
	}

	return threads
}

// epochMillis coerces a decoded JSON value to a positive epoch-ms
// timestamp. Numeric strings count as numbers; anything else defaults
// to the current time.
func (s *Store) epochMillis(v any) int64 {
	switch t := v.(type) {
	case float64:
		if t > 0 {
			return int64(t)
		}
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil && f > 0 {
			return int64(f)
		}
	}
	return s.now()
}

// coerceString renders a decoded JSON scalar as a string. Empty strings,
// zero, false, and non-scalar values report ok=false so the caller can
// default or drop.
func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		if t != 0 {
			return strconv.FormatFloat(t, 'f', -1, 64), true
		}
	case bool:
		if t {
			return "true", true
		}
	}
	return "", false
}

func asString(v any) (string, bool) {
	str, ok := v.(string)
	return str, ok
}
