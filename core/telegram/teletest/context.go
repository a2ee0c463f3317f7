// Package teletest provides an in-memory tele.Context for handler tests.
package teletest

import (
	"sync"

	tele "gopkg.in/telebot.v4"
)

// Outgoing is a message a handler sent through the context.
type Outgoing struct {
	Text  string
	Opts  []any
	Reply bool
}

// Context implements the parts of tele.Context used by the bot core.
// Calling anything else panics on the nil embedded interface.
type Context struct {
	tele.Context

	mu     sync.Mutex
	update tele.Update
	store  map[string]any
	sent   []Outgoing
	// SendErr, when set, is returned by Send and Reply.
	SendErr error
}

// NewText builds a private-chat text update from userID.
func NewText(updateID int, userID int64, text string) *Context {
	return &Context{
		update: tele.Update{
			ID: updateID,
			Message: &tele.Message{
				ID:     updateID,
				Sender: &tele.User{ID: userID, FirstName: "test"},
				Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
				Text:   text,
			},
		},
		store: make(map[string]any),
	}
}

func (c *Context) Update() tele.Update { return c.update }

func (c *Context) Message() *tele.Message { return c.update.Message }

func (c *Context) Sender() *tele.User {
	if c.update.Message == nil {
		return nil
	}
	return c.update.Message.Sender
}

func (c *Context) Chat() *tele.Chat {
	if c.update.Message == nil {
		return nil
	}
	return c.update.Message.Chat
}

func (c *Context) Text() string {
	if c.update.Message == nil {
		return ""
	}
	return c.update.Message.Text
}

func (c *Context) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = val
}

func (c *Context) Send(what any, opts ...any) error { return c.record(what, opts, false) }

func (c *Context) Reply(what any, opts ...any) error { return c.record(what, opts, true) }

func (c *Context) record(what any, opts []any, reply bool) error {
	if c.SendErr != nil {
		return c.SendErr
	}
	text, _ := what.(string)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, Outgoing{Text: text, Opts: opts, Reply: reply})
	return nil
}

// Sent returns everything sent so far.
func (c *Context) Sent() []Outgoing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Outgoing(nil), c.sent...)
}

// Texts returns the text of everything sent so far.
func (c *Context) Texts() []string {
	var out []string
	for _, m := range c.Sent() {
		out = append(out, m.Text)
	}
	return out
}
