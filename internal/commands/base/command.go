package base

import (
	"context"
	"errors"
	"time"

	"github.com/muratoffalex/gachicord/internal/app/di"
	"github.com/muratoffalex/gachicord/internal/commands"
	"github.com/muratoffalex/gachicord/internal/config"
	"github.com/muratoffalex/gachicord/internal/database"
	"github.com/muratoffalex/gachicord/internal/discord"
	"github.com/muratoffalex/gachicord/internal/logger"
	"github.com/muratoffalex/gachicord/internal/media"
	"github.com/muratoffalex/gachicord/internal/service"
	"golang.org/x/time/rate"
)

const maxThrottleWait = time.Minute

type Command struct {
	command   commands.Command
	Discord   discord.Client
	Logger    logger.Logger
	Cfg       *config.Config
	DB        database.Database
	Resolver  *service.Resolver
	Localizer *service.Localizer
	limiter   *rate.Limiter
}

func NewCommand(cmd commands.Command, di *di.Container) *Command {
	c := &Command{
		command:   cmd,
		Discord:   di.Discord,
		Logger:    di.Logger.WithField("command", cmd.Name()),
		Cfg:       di.Cfg,
		DB:        di.DB,
		Resolver:  di.Resolver,
		Localizer: di.Localizer,
	}
	if cfg := c.Cfg.GetCommandConfig(cmd.Name()); cfg.Throttled() {
		c.limiter = newLimiter(commands.ThrottleConfig{
			Period:   cfg.Throttle.Period,
			Requests: cfg.Throttle.Requests,
		})
	}
	return c
}

func newLimiter(cfg commands.ThrottleConfig) *rate.Limiter {
	requests := max(cfg.Requests, 1)
	return rate.NewLimiter(rate.Every(cfg.Period/time.Duration(requests)), requests)
}

func (c *Command) Name() string {
	return ""
}

func (c *Command) Aliases() []string {
	return []string{}
}

// Handle checks that the command is enabled, waits for a throttle slot and
// runs Execute.
func (c *Command) Handle(ctx context.Context, req commands.Request) error {
	name := c.command.Name()
	cfg := c.Cfg.GetCommandConfig(name)
	if !cfg.Enabled {
		_, err := c.Reply(ctx, req.Message, c.L("command.disabled", map[string]any{"Command": name}))
		return err
	}

	if c.limiter != nil {
		waitCtx, cancel := context.WithTimeout(ctx, maxThrottleWait)
		err := c.limiter.Wait(waitCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Logger.WithField("user_id", req.Message.Author.ID).Warn("Command throttled")
			_, err := c.Reply(ctx, req.Message, c.L("command.throttled", map[string]any{"Command": name}))
			return err
		}
	}

	return c.command.Execute(ctx, req)
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	return nil
}

func (c *Command) L(messageID string, data map[string]any) string {
	return c.Localizer.Localize(messageID, data)
}

func (c *Command) Reply(ctx context.Context, msg *discord.Message, text string) (*discord.Message, error) {
	return c.Discord.Send(ctx, discord.NewReply(msg, text))
}

func (c *Command) Typing(ctx context.Context, channelID string) {
	if err := c.Discord.SendTyping(ctx, channelID); err != nil {
		c.Logger.WithError(err).Debug("Failed to send typing indicator")
	}
}

// Deliver replaces the progress message with the generated file, or with the
// localized failure text when result is not successful.
func (c *Command) Deliver(ctx context.Context, progress *discord.Message, result media.Result, file discord.File, failureID string) error {
	edit := discord.NewEditMessage(progress, "")
	if result.Success {
		file.Data = result.Data
		edit = edit.WithFiles(file)
	} else {
		edit.Content = c.L(failureID, map[string]any{"Error": result.Message})
	}
	_, err := c.Discord.Edit(ctx, edit)
	return err
}

func (c *Command) LogGeneration(ctx context.Context, msg *discord.Message, kind database.GenerationKind, provider, prompt string, success bool) {
	if c.DB == nil {
		return
	}
	err := c.DB.LogGeneration(ctx, database.Generation{
		UserID:   msg.Author.ID,
		Kind:     kind,
		Provider: provider,
		Prompt:   prompt,
		Success:  success,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		c.Logger.WithError(err).Error("Failed to log generation")
	}
}
