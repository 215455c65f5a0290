package core

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/muratoffalex/gachicord/internal/commands"
	"github.com/muratoffalex/gachicord/internal/config"
	"github.com/muratoffalex/gachicord/internal/database"
	"github.com/muratoffalex/gachicord/internal/discord"
	"github.com/muratoffalex/gachicord/internal/logger"
	"github.com/muratoffalex/gachicord/internal/service"
	"github.com/muratoffalex/gachicord/internal/service/inflight"
)

const (
	keywordPrefix  = "!"
	DefaultCommand = "chat"
)

var ErrNoCommand = errors.New("no command can handle the message")

type Bot struct {
	commands  map[string]commands.Command
	logger    logger.Logger
	db        database.Database
	discord   discord.Client
	guard     *inflight.Guard
	resolver  *service.Resolver
	cfg       *config.Config
	localizer *service.Localizer
}

func NewBot(
	client discord.Client,
	guard *inflight.Guard,
	logger logger.Logger,
	db database.Database,
	cfg *config.Config,
	localizer *service.Localizer,
	resolver *service.Resolver,
) (*Bot, error) {
	if client == nil {
		return nil, errors.New("discord client is required")
	}
	return &Bot{
		commands:  make(map[string]commands.Command),
		discord:   client,
		guard:     guard,
		cfg:       cfg,
		logger:    logger,
		db:        db,
		localizer: localizer,
		resolver:  resolver,
	}, nil
}

// HandleMessage is the gateway entry point. It runs on its own goroutine for
// every MESSAGE_CREATE event.
func (b *Bot) HandleMessage(ctx context.Context, msg *discord.Message) {
	if msg == nil || msg.Author.Bot {
		return
	}

	content, mentioned := discord.StripMention(msg.Content, b.discord.Self().ID)
	if !mentioned {
		return
	}

	release, ok := b.guard.TryAcquire(msg.ID)
	if !ok {
		log := b.logger.WithField("message_id", msg.ID)
		if active := b.guard.GetActiveRequest(msg.ID); active != nil {
			log = log.WithFields(logger.Fields{
				"command": active.Command,
				"elapsed": time.Since(active.StartedAt).String(),
			})
		}
		log.Debug("Message is already being processed")
		return
	}
	defer release()

	log := b.logger.WithFields(logger.Fields{
		"message_id": msg.ID,
		"channel_id": msg.ChannelID,
		"user_id":    msg.Author.ID,
		"username":   msg.Author.Username,
	})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Recovered from panic while handling message")
			b.sendErrorMessage(ctx, msg)
		}
	}()

	if !b.cfg.Discord().IsChannelAllowed(msg.ChannelID) {
		log.Warn("Message from a channel that is not allowed")
		return
	}

	b.saveUser(ctx, msg)

	channelType, err := b.discord.GetChannelType(ctx, msg.ChannelID)
	if err != nil {
		log.WithError(err).Warn("Failed to resolve channel type")
	} else if !discord.IsTextChannel(channelType) {
		b.reply(ctx, msg, b.localizer.Localize("channel.textOnly", nil))
		return
	}

	if content == "" {
		content = b.resolver.Prompt(ctx, msg, "")
	}
	if content == "" {
		b.reply(ctx, msg, b.localizer.Localize("mention.empty", nil))
		return
	}

	if err := b.Dispatch(ctx, msg, content); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("Message handling cancelled")
			return
		}
		log.WithError(err).WithField("link", discord.MessageLink(msg)).Error("Failed to handle message")
		b.sendErrorMessage(ctx, msg)
	}
}

// Dispatch routes content to the command named by its leading keyword, or to
// the chat command when there is none.
func (b *Bot) Dispatch(ctx context.Context, msg *discord.Message, content string) error {
	keyword, args := splitKeyword(content)
	cmd := b.findCommand(keyword)
	if cmd == nil {
		keyword, args = "", content
		cmd = b.commands[DefaultCommand]
	}
	if cmd == nil {
		return ErrNoCommand
	}

	b.guard.SetCommand(msg.ID, cmd.Name())
	b.logger.WithFields(logger.Fields{
		"command":    cmd.Name(),
		"message_id": msg.ID,
		"user_id":    msg.Author.ID,
	}).Info("Handling command")

	return cmd.Handle(ctx, commands.Request{
		Message: msg,
		Keyword: keyword,
		Args:    args,
	})
}

func (b *Bot) RegisterCommand(cmd commands.Command) {
	if cmd == nil {
		b.logger.Error("Attempting to register nil command")
		return
	}

	name := cmd.Name()
	if name == "" {
		b.logger.Error("Attempting to register command with empty name")
		return
	}

	b.logger.WithFields(logger.Fields{
		"command": name,
	}).Debug("Registering command")

	b.commands[name] = cmd
}

func (b *Bot) GetCommands() map[string]commands.Command {
	return b.commands
}

func (b *Bot) findCommand(keyword string) commands.Command {
	if keyword == "" {
		return nil
	}
	if cmd, ok := b.commands[keyword]; ok {
		return cmd
	}
	for _, cmd := range b.commands {
		if slices.Contains(cmd.Aliases(), keyword) {
			return cmd
		}
	}
	return nil
}

// splitKeyword returns the lower-cased command keyword without the leading
// "!" and the trimmed rest of content. Directives such as !tokens=100 are not
// keywords.
func splitKeyword(content string) (string, string) {
	content = strings.TrimSpace(content)
	first, rest := content, ""
	if i := strings.IndexFunc(content, unicode.IsSpace); i >= 0 {
		first, rest = content[:i], content[i:]
	}
	name, ok := strings.CutPrefix(first, keywordPrefix)
	if !ok || name == "" || strings.ContainsAny(name, "=!") {
		return "", content
	}
	return strings.ToLower(name), strings.TrimSpace(rest)
}

func (b *Bot) saveUser(ctx context.Context, msg *discord.Message) {
	if b.db == nil {
		return
	}
	user := database.User{
		ID:       msg.Author.ID,
		Username: msg.Author.Username,
	}
	stored, err := b.db.GetUser(user.ID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		b.logger.WithField("user_id", user.ID).Info("Store new user")
	case err != nil:
		b.logger.WithError(err).Error("Error get user by id")
	case stored.Username == user.Username:
		return
	}
	if err := b.db.SaveUser(ctx, user); err != nil {
		b.logger.WithError(err).WithField("user_id", user.ID).Error("Error save user")
	}
}

func (b *Bot) reply(ctx context.Context, msg *discord.Message, text string) {
	if _, err := b.discord.Send(ctx, discord.NewReply(msg, text)); err != nil {
		b.logger.WithError(err).WithField("message_id", msg.ID).Error("Failed to send reply")
	}
}

func (b *Bot) sendErrorMessage(ctx context.Context, msg *discord.Message) {
	b.reply(ctx, msg, b.localizer.Localize("error", nil))
}
