package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripMention(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"plain mention", "<@123> hello there", "hello there", true},
		{"nickname mention", "<@!123> hi", "hi", true},
		{"leading whitespace", "  <@123>   img cat ", "img cat", true},
		{"mention only", "<@123>", "", true},
		{"other user", "<@456> hello", "<@456> hello", false},
		{"mention not first", "hello <@123>", "hello <@123>", false},
		{"no mention", "hello", "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := StripMention(tt.content, "123")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStripMentionEmptyBotID(t *testing.T) {
	got, ok := StripMention("<@> hi", "")
	assert.False(t, ok)
	assert.Equal(t, "<@> hi", got)
}

func TestIsTextChannel(t *testing.T) {
	assert.True(t, IsTextChannel(discordgo.ChannelTypeGuildText))
	assert.True(t, IsTextChannel(discordgo.ChannelTypeGuildPublicThread))
	assert.True(t, IsTextChannel(discordgo.ChannelTypeGuildPrivateThread))
	assert.False(t, IsTextChannel(discordgo.ChannelTypeDM))
	assert.False(t, IsTextChannel(discordgo.ChannelTypeGuildVoice))
	assert.False(t, IsTextChannel(discordgo.ChannelTypeGuildForum))
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage(Attachment{ContentType: "image/png"}))
	assert.False(t, IsImage(Attachment{ContentType: "video/mp4"}))
	assert.False(t, IsImage(Attachment{}))
}

func TestMessageLink(t *testing.T) {
	assert.Equal(t,
		"https://discord.com/channels/g/c/m",
		MessageLink(&Message{ID: "m", ChannelID: "c", GuildID: "g"}),
	)
	assert.Equal(t,
		"https://discord.com/channels/@me/c/m",
		MessageLink(&Message{ID: "m", ChannelID: "c"}),
	)
}

func TestAdaptMessage(t *testing.T) {
	assert.Nil(t, adaptMessage(nil))

	msg := adaptMessage(&discordgo.Message{
		ID:        "2",
		ChannelID: "c",
		GuildID:   "g",
		Content:   "<@1> edit make it blue",
		Author:    &discordgo.User{ID: "u", Username: "alice"},
		Attachments: []*discordgo.MessageAttachment{
			{ID: "a", URL: "https://cdn/a.png", Filename: "a.png", ContentType: "image/png", Size: 10},
			nil,
		},
		MessageReference: &discordgo.MessageReference{MessageID: "1"},
		ReferencedMessage: &discordgo.Message{
			ID:        "1",
			ChannelID: "c",
			Content:   "a cat",
			Author:    &discordgo.User{ID: "b", Username: "bot", Bot: true},
		},
	})

	require.NotNil(t, msg)
	assert.Equal(t, "2", msg.ID)
	assert.Equal(t, User{ID: "u", Username: "alice"}, msg.Author)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "https://cdn/a.png", msg.Attachments[0].URL)
	assert.True(t, msg.IsReply())
	assert.Equal(t, "1", msg.ReplyToID)
	require.NotNil(t, msg.ReplyTo)
	assert.True(t, msg.ReplyTo.Author.Bot)
	assert.Equal(t, "a cat", msg.ReplyTo.Content)
}

func TestAdaptMessageWithoutAuthor(t *testing.T) {
	msg := adaptMessage(&discordgo.Message{ID: "1", Content: "x"})
	require.NotNil(t, msg)
	assert.Equal(t, User{}, msg.Author)
	assert.False(t, msg.IsReply())
}
