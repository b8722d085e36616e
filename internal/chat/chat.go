// Package chat defines the conversation domain model: threads, messages,
// and the rules that bound them.
package chat

// Limits on the conversation store. These match the persisted format, so
// changing them changes what older payloads sanitize to.
const (
	// MaxMessageLength is the maximum length of a single message text.
	MaxMessageLength = 4000

	// MaxChats is the maximum number of threads kept in the store.
	MaxChats = 100

	// MaxTitleLength bounds persisted thread titles.
	MaxTitleLength = 100

	// titleLength is how much of the first user message becomes the title.
	titleLength = 30

	// DefaultTitle is the title of a thread before its first message.
	DefaultTitle = "New Chat"
)

// Sender attributes a message to one side of the conversation.
// The values are the persisted wire values.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "ai"
)

// Message is a single utterance. Immutable once committed to a thread.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Sender    Sender `json:"sender"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
}

// Thread is one conversation: an append-only sequence of messages plus
// metadata. Messages are in insertion order, which is conversation order.
type Thread struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt int64     `json:"createdAt"` // epoch milliseconds
}

// TitleFromText derives a thread title from its first user message.
func TitleFromText(text string) string {
	return Truncate(text, titleLength)
}

// Truncate shortens s to at most n characters, counting by runes so
// multi-byte text is never split mid-character.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
