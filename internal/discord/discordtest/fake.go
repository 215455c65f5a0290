// Package discordtest provides an in-memory discord.Client for tests.
package discordtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/muratoffalex/gachicord/internal/discord"
)

var ErrUnknownMessage = errors.New("unknown message")

// Client records every outgoing request. Exported fields configure its
// answers and must be set before use.
type Client struct {
	User        discord.User
	ChannelType discord.ChannelType
	ChannelErr  error
	SendErr     error
	EditErr     error

	mu       sync.Mutex
	nextID   int
	messages map[string]*discord.Message
	sent     []discord.OutgoingMessage
	edits    []discord.EditMessage
	typing   int
}

func NewClient() *Client {
	return &Client{
		User:        discord.User{ID: "100", Username: "gachicord", Bot: true},
		ChannelType: discordgo.ChannelTypeGuildText,
		messages:    make(map[string]*discord.Message),
	}
}

// AddMessage makes msg available to GetMessage.
func (c *Client) AddMessage(msg *discord.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[msg.ID] = msg
}

func (c *Client) Send(_ context.Context, msg discord.OutgoingMessage) (*discord.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return nil, c.SendErr
	}
	c.sent = append(c.sent, msg)
	c.nextID++
	out := &discord.Message{
		ID:        fmt.Sprintf("sent-%d", c.nextID),
		ChannelID: msg.ChannelID,
		Content:   msg.Content,
		Author:    c.User,
	}
	if msg.ReplyTo != nil {
		out.ReplyToID = msg.ReplyTo.ID
	}
	c.messages[out.ID] = out
	return out, nil
}

func (c *Client) Edit(_ context.Context, edit discord.EditMessage) (*discord.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.EditErr != nil {
		return nil, c.EditErr
	}
	c.edits = append(c.edits, edit)
	msg, ok := c.messages[edit.MessageID]
	if !ok {
		return nil, ErrUnknownMessage
	}
	msg.Content = edit.Content
	return msg, nil
}

func (c *Client) GetMessage(_ context.Context, _, messageID string) (*discord.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, ok := c.messages[messageID]
	if !ok {
		return nil, ErrUnknownMessage
	}
	copied := *msg
	return &copied, nil
}

func (c *Client) GetChannelType(context.Context, string) (discord.ChannelType, error) {
	return c.ChannelType, c.ChannelErr
}

func (c *Client) SendTyping(context.Context, string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.typing++
	return nil
}

func (c *Client) Self() discord.User {
	return c.User
}

func (c *Client) Sent() []discord.OutgoingMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]discord.OutgoingMessage(nil), c.sent...)
}

func (c *Client) Edits() []discord.EditMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]discord.EditMessage(nil), c.edits...)
}

// SentTexts returns the content of every sent message in order.
func (c *Client) SentTexts() []string {
	var texts []string
	for _, m := range c.Sent() {
		texts = append(texts, m.Content)
	}
	return texts
}

// EditTexts returns the content of every edit in order.
func (c *Client) EditTexts() []string {
	var texts []string
	for _, e := range c.Edits() {
		texts = append(texts, e.Content)
	}
	return texts
}

func (c *Client) TypingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}
