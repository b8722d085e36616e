// Package session owns thread and message mutation. The controller
// mediates every outgoing message through validation and rate limiting,
// drives the completion exchange, and flushes the store after each
// committed mutation.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/raphaelgruber/parley/internal/ai"
	"github.com/raphaelgruber/parley/internal/chat"
	"github.com/raphaelgruber/parley/internal/storage"
)

// Precondition errors. All of them are rejected before any store
// mutation and never require rollback.
var (
	// ErrBusy indicates a completion request is already in flight.
	ErrBusy = errors.New("a message is already being sent, please wait")

	// ErrTooManyChats indicates the thread limit has been reached.
	ErrTooManyChats = errors.New("chat limit reached, delete a chat to continue")

	// ErrUnknownChat indicates the given id references no thread.
	ErrUnknownChat = errors.New("chat not found")

	// ErrNoActiveChat indicates an operation that needs an active thread
	// was invoked without one.
	ErrNoActiveChat = errors.New("no active chat")
)

// Controller is the session state machine. It is the single source of
// truth for threads and the only writer of messages. At most one
// completion request is outstanding across the entire store; while it is
// in flight, operations that would mutate the active conversation fail
// with ErrBusy.
type Controller struct {
	mu       sync.Mutex
	threads  []chat.Thread // most-recently-created first
	activeID string
	sending  bool
	lastErr  string

	store     *storage.Store
	completer ai.Completer
	limiter   *Limiter
	ids       chat.IDGenerator
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithLimiter replaces the default rate limiter.
func WithLimiter(l *Limiter) Option {
	return func(c *Controller) { c.limiter = l }
}

// WithIDGenerator replaces the default id generator.
func WithIDGenerator(g chat.IDGenerator) Option {
	return func(c *Controller) { c.ids = g }
}

// WithClock replaces the message timestamp clock.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a controller and loads the persisted store. The most
// recently created thread, if any, becomes active.
func New(store *storage.Store, completer ai.Completer, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		store:     store,
		completer: completer,
		limiter:   NewLimiter(MinSendInterval),
		ids:       chat.NewGenerator(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.threads = store.Load()
	if len(c.threads) > 0 {
		c.activeID = c.threads[0].ID
	}
	return c
}

// NewChat creates an empty thread at the front of the list and makes it
// active. Fails with ErrTooManyChats at the thread limit.
func (c *Controller) NewChat() (chat.Thread, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.newChatLocked()
}

func (c *Controller) newChatLocked() (chat.Thread, error) {
	if len(c.threads) >= chat.MaxChats {
		return chat.Thread{}, c.fail(ErrTooManyChats)
	}

	t := chat.Thread{
		ID:        c.ids.NewID(),
		Title:     chat.DefaultTitle,
		Messages:  []chat.Message{},
		CreatedAt: c.now().UnixMilli(),
	}
	c.threads = append([]chat.Thread{t}, c.threads...)
	c.activeID = t.ID
	c.lastErr = ""
	c.flushLocked()
	return t, nil
}

// Switch makes the thread with the given id active. Fails with ErrBusy
// while a send is in flight. Does not touch messages.
func (c *Controller) Switch(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sending {
		return c.fail(ErrBusy)
	}
	if c.indexOf(id) < 0 {
		return c.fail(ErrUnknownChat)
	}
	c.activeID = id
	c.lastErr = ""
	return nil
}

// Delete removes the thread with the given id. Deleting the active
// thread fails with ErrBusy while a send is in flight; otherwise the
// next most recent remaining thread becomes active, or none.
func (c *Controller) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sending && id == c.activeID {
		return c.fail(ErrBusy)
	}
	idx := c.indexOf(id)
	if idx < 0 {
		return c.fail(ErrUnknownChat)
	}

	c.threads = append(c.threads[:idx], c.threads[idx+1:]...)
	if id == c.activeID {
		c.activeID = ""
		if len(c.threads) > 0 {
			c.activeID = c.threads[0].ID
		}
	}
	c.lastErr = ""
	c.flushLocked()
	return nil
}

// Clear resets the active thread to no messages and the default title,
// keeping its id and creation time. Fails with ErrBusy while a send is
// in flight.
func (c *Controller) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sending {
		return c.fail(ErrBusy)
	}
	idx := c.indexOf(c.activeID)
	if idx < 0 {
		return c.fail(ErrNoActiveChat)
	}

	c.threads[idx].Messages = []chat.Message{}
	c.threads[idx].Title = chat.DefaultTitle
	c.lastErr = ""
	c.flushLocked()
	return nil
}

// Send runs the send-message protocol: validate, rate-limit, optimistic
// append, remote completion, then commit or rollback. When no thread is
// active, a new one is created and Send returns without sending; the
// caller must resubmit against the new thread.
func (c *Controller) Send(ctx context.Context, rawText string) error {
	text, err := chat.Validate(rawText)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.fail(err)
	}

	c.mu.Lock()

	if err := c.limiter.Allow(); err != nil {
		defer c.mu.Unlock()
		return c.fail(err)
	}

	if c.activeID == "" {
		_, err := c.newChatLocked()
		c.mu.Unlock()
		return err
	}

	if c.sending {
		defer c.mu.Unlock()
		return c.fail(ErrBusy)
	}

	// Optimistic write: stage the user message before the remote call.
	threadID := c.activeID
	idx := c.indexOf(threadID)
	t := &c.threads[idx]
	prevTitle := t.Title

	userMsg := chat.Message{
		ID:        c.ids.NewID(),
		Text:      text,
		Sender:    chat.SenderUser,
		Timestamp: c.now().UnixMilli(),
	}
	t.Messages = append(t.Messages, userMsg)
	if len(t.Messages) == 1 {
		t.Title = chat.TitleFromText(text)
	}
	c.sending = true
	c.lastErr = ""
	c.flushLocked()
	c.mu.Unlock()

	reply, cerr := c.completer.Complete(ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sending = false

	// The thread may have been deleted while the request was in flight;
	// a response for a vanished thread is discarded, never mis-applied.
	idx = c.indexOf(threadID)
	if idx < 0 {
		if cerr != nil {
			return c.fail(cerr)
		}
		return nil
	}
	t = &c.threads[idx]

	if cerr != nil {
		// Compensate: undo the staged message and restore the title.
		for i := len(t.Messages) - 1; i >= 0; i-- {
			if t.Messages[i].ID == userMsg.ID {
				t.Messages = append(t.Messages[:i], t.Messages[i+1:]...)
				break
			}
		}
		if len(t.Messages) == 0 {
			t.Title = prevTitle
		}
		c.lastErr = cerr.Error()
		c.flushLocked()
		return cerr
	}

	t.Messages = append(t.Messages, chat.Message{
		ID:        c.ids.NewID(),
		Text:      reply,
		Sender:    chat.SenderAssistant,
		Timestamp: c.now().UnixMilli(),
	})
	c.flushLocked()
	return nil
}

// Threads returns a copy of the thread list, most recently created first.
func (c *Controller) Threads() []chat.Thread {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]chat.Thread, len(c.threads))
	for i, t := range c.threads {
		out[i] = copyThread(t)
	}
	return out
}

// Active returns a copy of the active thread, if any.
func (c *Controller) Active() (chat.Thread, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(c.activeID)
	if idx < 0 {
		return chat.Thread{}, false
	}
	return copyThread(c.threads[idx]), true
}

// ActiveID returns the id of the active thread, or "" if none.
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// Sending reports whether a completion request is in flight.
func (c *Controller) Sending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sending
}

// LastError returns the user-facing message of the most recent failure,
// or "" if the last operation succeeded.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// fail records err as the last error and returns it. Caller must hold
// the lock.
func (c *Controller) fail(err error) error {
	c.lastErr = err.Error()
	return err
}

// flushLocked persists the store. Flush failures never roll back the
// in-memory mutation; they only augment the last error. Caller must
// hold the lock.
func (c *Controller) flushLocked() {
	if err := c.store.Save(c.threads); err != nil {
		c.logger.Warn("failed to persist chats", "error", err)
		if c.lastErr == "" {
			c.lastErr = err.Error()
		} else {
			c.lastErr += "; " + err.Error()
		}
	}
}

// indexOf returns the position of the thread with the given id, or -1.
// Caller must hold the lock.
func (c *Controller) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, t := range c.threads {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func copyThread(t chat.Thread) chat.Thread {
	msgs := make([]chat.Message, len(t.Messages))
	copy(msgs, t.Messages)
	t.Messages = msgs
	return t
}
