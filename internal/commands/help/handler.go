package help

import (
	"context"

	"github.com/muratoffalex/gachicord/internal/app/di"
	"github.com/muratoffalex/gachicord/internal/chunk"
	"github.com/muratoffalex/gachicord/internal/commands"
	"github.com/muratoffalex/gachicord/internal/commands/base"
	"github.com/muratoffalex/gachicord/internal/discord"
)

const CommandName = "help"

type Command struct {
	*base.Command
	limit int
}

func New(di *di.Container) *Command {
	cmd := &Command{limit: di.Cfg.Discord().MessageLimit}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Aliases() []string {
	return []string{"commands"}
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	for i, part := range chunk.Split(c.L("help.text", nil), c.limit) {
		out := discord.NewMessage(req.Message.ChannelID, part)
		if i == 0 {
			out = discord.NewReply(req.Message, part)
		}
		if _, err := c.Discord.Send(ctx, out); err != nil {
			return err
		}
	}
	return nil
}
