package chat

import (
	"errors"
	"strings"
	"time"
)

// Role identifies who wrote a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Greeting opens every transcript
const Greeting = "Hello darling! I am Rosie, your sweet consultant. Looking for something specific or need help designing a custom cake?"

var (
	ErrBusy         = errors.New("an advice request is already in flight")
	ErrEmptyMessage = errors.New("message is empty")
	ErrNotPending   = errors.New("no advice request in flight")
)

// Message is one transcript entry
type Message struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Chat is the widget state of one session: open flag, transcript and the
// single outstanding request guard.
type Chat struct {
	Open         bool      `json:"open"`
	Pending      bool      `json:"pending"`
	PendingSince time.Time `json:"pending_since"`
	Messages     []Message `json:"messages"`
}

// New creates a closed chat seeded with the greeting
func New(now time.Time) *Chat {
	return &Chat{
		Messages: []Message{{Role: RoleAssistant, Text: Greeting, At: now}},
	}
}

// Begin records the user's message and marks a request in flight, returning
// the text to send.
func (c *Chat) Begin(text string, now time.Time) (string, error) {
	if c.Pending {
		return "", ErrBusy
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	c.Messages = append(c.Messages, Message{Role: RoleUser, Text: text, At: now})
	c.Pending = true
	c.PendingSince = now
	return text, nil
}

// Expire releases a guard held for at least after, returning whether it did.
// A request that old has settled even if its reply was never recorded.
func (c *Chat) Expire(now time.Time, after time.Duration) bool {
	if !c.Pending || now.Sub(c.PendingSince) < after {
		return false
	}
	c.Pending = false
	c.PendingSince = time.Time{}
	return true
}

// Complete appends the assistant's reply and releases the guard
func (c *Chat) Complete(reply string, now time.Time) error {
	if !c.Pending {
		return ErrNotPending
	}
	c.Messages = append(c.Messages, Message{Role: RoleAssistant, Text: reply, At: now})
	c.Pending = false
	c.PendingSince = time.Time{}
	return nil
}
