package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/muratoffalex/gachicord/internal/ai"
	"github.com/muratoffalex/gachicord/internal/app/di"
	"github.com/muratoffalex/gachicord/internal/chunk"
	"github.com/muratoffalex/gachicord/internal/commands"
	"github.com/muratoffalex/gachicord/internal/commands/base"
	"github.com/muratoffalex/gachicord/internal/conversation"
	"github.com/muratoffalex/gachicord/internal/directive"
	"github.com/muratoffalex/gachicord/internal/discord"
	"github.com/muratoffalex/gachicord/internal/logger"
)

const (
	CommandName           = "chat"
	previousMessagePrefix = "Previous message: "
)

type Command struct {
	*base.Command
	store  conversation.Store
	chat   ai.ChatCompleter
	parser *directive.Parser
	limit  int
}

func New(di *di.Container) *Command {
	cmd := &Command{
		store:  di.Store,
		chat:   di.Chat,
		parser: directive.NewParser(directive.DefaultLimits()),
		limit:  di.Cfg.Discord().MessageLimit,
	}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	msg := req.Message
	userID := msg.Author.ID
	settings := c.parser.Parse(req.Args)
	if settings.Content == "" {
		settings.Content = c.Resolver.Prompt(ctx, msg, "")
	}
	if settings.Content == "" {
		_, err := c.Reply(ctx, msg, c.L("mention.empty", nil))
		return err
	}

	log := c.Logger.WithFields(logger.Fields{
		"user_id":     userID,
		"message_id":  msg.ID,
		"max_tokens":  settings.MaxTokens,
		"temperature": settings.Temperature,
	})

	placeholder, err := c.Discord.Send(ctx, discord.NewMessage(msg.ChannelID, c.L("chat.placeholder", nil)))
	if err != nil {
		return fmt.Errorf("failed to send placeholder: %w", err)
	}

	var turns []conversation.Turn
	if ref := c.Resolver.Referenced(ctx, msg); ref != nil && ref.Content != "" {
		turns = append(turns, conversation.UserTurn(previousMessagePrefix+ref.Content))
	}
	turns = append(turns, conversation.UserTurn(settings.Content))
	history := c.store.Append(userID, turns...)

	c.Typing(ctx, msg.ChannelID)
	answer, err := c.chat.Complete(ctx, ai.CompletionRequest{
		Messages:    toMessages(history),
		MaxTokens:   &settings.MaxTokens,
		Temperature: &settings.Temperature,
	})
	answer = strings.TrimSpace(answer)
	switch {
	case errors.Is(err, ai.ErrEmptyResponse) || (err == nil && answer == ""):
		log.Warn("Chat model returned an empty answer")
		return c.edit(ctx, placeholder, c.L("chat.couldNotProcess", nil))
	case err != nil:
		log.WithError(err).WithField("error_type", ai.ErrorTypeOf(err)).Error("Chat completion failed")
		return c.edit(ctx, placeholder, c.L("error", nil))
	}

	c.store.Append(userID, conversation.AssistantTurn(answer))

	chunks := chunk.Split(answer, c.limit)
	if len(chunks) == 0 {
		return c.edit(ctx, placeholder, c.L("chat.emptyResponse", nil))
	}
	if err := c.edit(ctx, placeholder, chunks[0]); err != nil {
		return err
	}
	for _, part := range chunks[1:] {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if _, err := c.Discord.Send(ctx, discord.NewMessage(msg.ChannelID, part)); err != nil {
			return fmt.Errorf("failed to send chunk: %w", err)
		}
	}

	log.WithField("chunks", len(chunks)).Debug("Chat answer sent")
	return nil
}

func (c *Command) edit(ctx context.Context, placeholder *discord.Message, text string) error {
	_, err := c.Discord.Edit(ctx, discord.NewEditMessage(placeholder, text))
	return err
}

func toMessages(turns []conversation.Turn) []ai.Message {
	messages := make([]ai.Message, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, ai.Message{Role: t.Role, Content: t.Content})
	}
	return messages
}
