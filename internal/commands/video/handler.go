package video

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

const (
	CommandName = "video"
	fileName    = "stability-generated-video.mp4"
)

type Command struct {
	*base.Command
	video *media.VideoService
}

func New(di *di.Container) *Command {
	cmd := &Command{video: di.Video}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	msg := req.Message
	prompt := c.Resolver.Prompt(ctx, msg, req.Args)

	image, err := c.Resolver.Image(ctx, msg)
	if err != nil {
		c.Logger.WithError(err).WithField("message_id", msg.ID).Warn("Failed to process attached image")
		_, err := c.Reply(ctx, msg, c.L("image.attachmentFailed", nil))
		return err
	}
	if image == nil {
		_, err := c.Reply(ctx, msg, c.L("video.imageRequired", nil))
		return err
	}

	progress, err := c.Reply(ctx, msg, c.L("video.generating", nil))
	if err != nil {
		return err
	}

	result := c.video.Generate(ctx, image)
	c.LogGeneration(ctx, msg, database.KindVideo, ai.ProviderStability, prompt, result.Success)

	err = c.Deliver(ctx, progress, result, discord.File{
		Name:        fileName,
		ContentType: "video/mp4",
	}, "video.failed")
	if err != nil {
		c.Logger.WithError(err).WithField("message_id", msg.ID).Error("Failed to deliver video")
		_, err = c.Reply(ctx, msg, c.L("video.error", nil))
	}
	return err
}
