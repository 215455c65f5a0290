package edit

import (
	"context"

	"github.com/muratoffalex/gachicord/internal/ai"
	"github.com/muratoffalex/gachicord/internal/app/di"
	"github.com/muratoffalex/gachicord/internal/commands"
	"github.com/muratoffalex/gachicord/internal/commands/base"
	"github.com/muratoffalex/gachicord/internal/database"
	"github.com/muratoffalex/gachicord/internal/discord"
	"github.com/muratoffalex/gachicord/internal/media"
)

const CommandName = "edit"

type Command struct {
	*base.Command
	images *media.ImageService
}

func New(di *di.Container) *Command {
	cmd := &Command{images: di.Images}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	msg := req.Message
	prompt := c.Resolver.Prompt(ctx, msg, req.Args)
	if prompt == "" {
		_, err := c.Reply(ctx, msg, c.L("edit.promptRequired", nil))
		return err
	}

	baseImage, err := c.Resolver.Image(ctx, msg)
	if err != nil {
		c.Logger.WithError(err).WithField("message_id", msg.ID).Warn("Failed to process attached image")
		_, err := c.Reply(ctx, msg, c.L("image.attachmentFailed", nil))
		return err
	}
	if baseImage == nil {
		_, err := c.Reply(ctx, msg, c.L("edit.imageRequired", nil))
		return err
	}

	progress, err := c.Reply(ctx, msg, c.L("image.modifying", map[string]any{
		"Provider": c.images.DisplayName(ai.ProviderStability),
	}))
	if err != nil {
		return err
	}

	result := c.images.Edit(ctx, prompt, baseImage)
	c.LogGeneration(ctx, msg, database.KindEdit, ai.ProviderStability, prompt, result.Success)

	err = c.Deliver(ctx, progress, result, discord.File{
		Name:        ai.ProviderStability + "-generated-image.png",
		ContentType: "image/png",
	}, "image.modifyFailed")
	if err != nil {
		c.Logger.WithError(err).WithField("message_id", msg.ID).Error("Failed to deliver edited image")
		_, err = c.Reply(ctx, msg, c.L("image.error", nil))
	}
	return err
}
