package discord

import (
	"bytes"
	"context"

	"github.com/bwmarrin/discordgo"
)

type ChannelType = discordgo.ChannelType

type Message struct {
	ID          string
	ChannelID   string
	GuildID     string
	Content     string
	Author      User
	Attachments []Attachment
	// ReplyToID is the id of the referenced message, ReplyTo is set when
	// Discord delivered the referenced message inline.
	ReplyToID string
	ReplyTo   *Message
}

func (m *Message) IsReply() bool {
	return m.ReplyToID != ""
}

type User struct {
	ID       string
	Username string
	Bot      bool
}

type Attachment struct {
	ID          string
	URL         string
	Filename    string
	ContentType string
	Size        int
}

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f File) toDiscord() *discordgo.File {
	return &discordgo.File{
		Name:        f.Name,
		ContentType: f.ContentType,
		Reader:      bytes.NewReader(f.Data),
	}
}

func toDiscordFiles(files []File) []*discordgo.File {
	if len(files) == 0 {
		return nil
	}
	result := make([]*discordgo.File, 0, len(files))
	for _, f := range files {
		result = append(result, f.toDiscord())
	}
	return result
}

// OutgoingMessage is a new message, optionally replying to another one.
type OutgoingMessage struct {
	ChannelID string
	Content   string
	ReplyTo   *Message
	Files     []File
}

func NewMessage(channelID, text string) OutgoingMessage {
	return OutgoingMessage{
		ChannelID: channelID,
		Content:   text,
	}
}

// NewReply answers msg and pings its author.
func NewReply(msg *Message, text string) OutgoingMessage {
	return OutgoingMessage{
		ChannelID: msg.ChannelID,
		Content:   text,
		ReplyTo:   msg,
	}
}

func (m OutgoingMessage) WithFiles(files ...File) OutgoingMessage {
	m.Files = append(m.Files, files...)
	return m
}

func (m OutgoingMessage) toMessageSend() *discordgo.MessageSend {
	send := &discordgo.MessageSend{
		Content: m.Content,
		Files:   toDiscordFiles(m.Files),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			RepliedUser: m.ReplyTo != nil,
		},
	}
	if m.ReplyTo != nil {
		send.Reference = &discordgo.MessageReference{
			MessageID: m.ReplyTo.ID,
			ChannelID: m.ReplyTo.ChannelID,
			GuildID:   m.ReplyTo.GuildID,
		}
	}
	return send
}

// EditMessage replaces the content of an existing message and attaches Files.
type EditMessage struct {
	ChannelID string
	MessageID string
	Content   string
	Files     []File
}

func NewEditMessage(msg *Message, text string) EditMessage {
	return EditMessage{
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
		Content:   text,
	}
}

func (m EditMessage) WithFiles(files ...File) EditMessage {
	m.Files = append(m.Files, files...)
	return m
}

func (m EditMessage) toMessageEdit() *discordgo.MessageEdit {
	edit := discordgo.NewMessageEdit(m.ChannelID, m.MessageID).SetContent(m.Content)
	edit.Files = toDiscordFiles(m.Files)
	edit.AllowedMentions = &discordgo.MessageAllowedMentions{RepliedUser: true}
	return edit
}

type MessageHandler func(ctx context.Context, msg *Message)

type Client interface {
	Send(ctx context.Context, msg OutgoingMessage) (*Message, error)
	Edit(ctx context.Context, edit EditMessage) (*Message, error)
	GetMessage(ctx context.Context, channelID, messageID string) (*Message, error)
	GetChannelType(ctx context.Context, channelID string) (ChannelType, error)
	SendTyping(ctx context.Context, channelID string) error
	Self() User
}
