package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// StripMention removes a leading mention of botID from content. The second
// value reports whether content started with such a mention.
func StripMention(content, botID string) (string, bool) {
	if botID == "" {
		return content, false
	}
	trimmed := strings.TrimLeft(content, " \t\n")
	for _, mention := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		if rest, ok := strings.CutPrefix(trimmed, mention); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return content, false
}

func IsTextChannel(t ChannelType) bool {
	switch t {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread,
		discordgo.ChannelTypeGuildNewsThread:
		return true
	}
	return false
}

func IsImage(a Attachment) bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

func MessageLink(msg *Message) string {
	guild := msg.GuildID
	if guild == "" {
		guild = "@me"
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guild, msg.ChannelID, msg.ID)
}
