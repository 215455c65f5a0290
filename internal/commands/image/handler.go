package image

import (
	"context"

	"github.com/muratoffalex/gachicord/internal/ai"
	"github.com/muratoffalex/gachicord/internal/app/di"
	"github.com/muratoffalex/gachicord/internal/commands"
	"github.com/muratoffalex/gachicord/internal/commands/base"
	"github.com/muratoffalex/gachicord/internal/database"
	"github.com/muratoffalex/gachicord/internal/discord"
	"github.com/muratoffalex/gachicord/internal/logger"
	"github.com/muratoffalex/gachicord/internal/media"
)

// Variant binds a command keyword to an image provider.
type Variant struct {
	Keyword  string
	Provider string
}

var (
	Dalle     = Variant{Keyword: "img", Provider: ai.ProviderDalle}
	Gemini    = Variant{Keyword: "gimg", Provider: ai.ProviderGemini}
	Stability = Variant{Keyword: "simg", Provider: ai.ProviderStability}
	Recraft   = Variant{Keyword: "rimg", Provider: ai.ProviderRecraft}

	Variants = []Variant{Dalle, Gemini, Stability, Recraft}
)

type Command struct {
	*base.Command
	variant Variant
	images  *media.ImageService
}

func New(di *di.Container, variant Variant) *Command {
	cmd := &Command{
		variant: variant,
		images:  di.Images,
	}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return c.variant.Keyword
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	msg := req.Message
	prompt := c.Resolver.Prompt(ctx, msg, req.Args)
	if prompt == "" {
		_, err := c.Reply(ctx, msg, c.L("image.promptRequired", map[string]any{"Command": c.variant.Keyword}))
		return err
	}

	baseImage, err := c.Resolver.Image(ctx, msg)
	if err != nil {
		c.Logger.WithError(err).WithField("message_id", msg.ID).Warn("Failed to process attached image")
		_, err := c.Reply(ctx, msg, c.L("image.attachmentFailed", nil))
		return err
	}

	progressID, failureID, kind := "image.generating", "image.generateFailed", database.KindImage
	if baseImage != nil {
		progressID, failureID, kind = "image.modifying", "image.modifyFailed", database.KindEdit
	}

	progress, err := c.Reply(ctx, msg, c.L(progressID, map[string]any{
		"Provider": c.images.DisplayName(c.variant.Provider),
	}))
	if err != nil {
		return err
	}

	result := c.images.Generate(ctx, c.variant.Provider, prompt, baseImage)
	c.LogGeneration(ctx, msg, kind, c.variant.Provider, prompt, result.Success)

	err = c.Deliver(ctx, progress, result, discord.File{
		Name:        c.variant.Provider + "-generated-image.png",
		ContentType: "image/png",
	}, failureID)
	if err != nil {
		c.Logger.WithError(err).WithFields(logger.Fields{
			"message_id": msg.ID,
			"provider":   c.variant.Provider,
		}).Error("Failed to deliver image")
		_, err = c.Reply(ctx, msg, c.L("image.error", nil))
	}
	return err
}
