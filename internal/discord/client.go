package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/muratoffalex/gachicord/internal/logger"
)

const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentMessageContent

var ErrNotConnected = errors.New("discord session is not open")

type BotClient struct {
	session *discordgo.Session
	logger  logger.Logger

	mu     sync.RWMutex
	ctx    context.Context
	remove func()
	self   User
}

func NewBotClient(token string, log logger.Logger) (*BotClient, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = Intents
	session.StateEnabled = true

	return &BotClient{
		session: session,
		logger:  log.WithField("component", "discord"),
	}, nil
}

// Start registers handler for incoming messages and opens the gateway
// connection. Every message is handled in its own goroutine, ctx is passed to
// each invocation.
func (c *BotClient) Start(ctx context.Context, handler MessageHandler) error {
	c.mu.Lock()
	c.ctx = ctx
	c.remove = c.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		if m == nil || m.Message == nil {
			return
		}
		handler(c.context(), adaptMessage(m.Message))
	})
	c.mu.Unlock()

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}

	if u := c.session.State.User; u != nil {
		c.mu.Lock()
		c.self = adaptUser(u)
		c.mu.Unlock()
		c.logger.WithFields(logger.Fields{
			"id":       u.ID,
			"username": u.Username,
		}).Info("Connected to Discord")
	}
	return nil
}

func (c *BotClient) Close() error {
	c.mu.Lock()
	if c.remove != nil {
		c.remove()
		c.remove = nil
	}
	c.mu.Unlock()
	return c.session.Close()
}

func (c *BotClient) context() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

func (c *BotClient) Self() User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.self
}

func (c *BotClient) Send(ctx context.Context, msg OutgoingMessage) (*Message, error) {
	sent, err := c.session.ChannelMessageSendComplex(
		msg.ChannelID,
		msg.toMessageSend(),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return nil, err
	}
	return adaptMessage(sent), nil
}

func (c *BotClient) Edit(ctx context.Context, edit EditMessage) (*Message, error) {
	updated, err := c.session.ChannelMessageEditComplex(edit.toMessageEdit(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return adaptMessage(updated), nil
}

func (c *BotClient) GetMessage(ctx context.Context, channelID, messageID string) (*Message, error) {
	msg, err := c.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return adaptMessage(msg), nil
}

func (c *BotClient) GetChannelType(ctx context.Context, channelID string) (ChannelType, error) {
	if c.session.State != nil {
		if ch, err := c.session.State.Channel(channelID); err == nil {
			return ch.Type, nil
		}
	}
	ch, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	return ch.Type, nil
}

func (c *BotClient) SendTyping(ctx context.Context, channelID string) error {
	return c.session.ChannelTyping(channelID, discordgo.WithContext(ctx))
}

func adaptMessage(m *discordgo.Message) *Message {
	if m == nil {
		return nil
	}

	msg := &Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.Author = adaptUser(m.Author)
	}
	for _, a := range m.Attachments {
		if a == nil {
			continue
		}
		msg.Attachments = append(msg.Attachments, Attachment{
			ID:          a.ID,
			URL:         a.URL,
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}
	if m.MessageReference != nil && m.MessageReference.MessageID != "" {
		msg.ReplyToID = m.MessageReference.MessageID
	}
	if m.ReferencedMessage != nil {
		msg.ReplyTo = adaptMessage(m.ReferencedMessage)
		if msg.ReplyToID == "" {
			msg.ReplyToID = m.ReferencedMessage.ID
		}
	}
	return msg
}

func adaptUser(u *discordgo.User) User {
	return User{
		ID:       u.ID,
		Username: u.Username,
		Bot:      u.Bot,
	}
}
