package system

import (
	"context"

	"github.com/muratoffalex/gachicord/internal/app/di"
	"github.com/muratoffalex/gachicord/internal/commands"
	"github.com/muratoffalex/gachicord/internal/commands/base"
	"github.com/muratoffalex/gachicord/internal/conversation"
)

const CommandName = "system"

type Command struct {
	*base.Command
	store conversation.Store
}

func New(di *di.Container) *Command {
	cmd := &Command{store: di.Store}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	if req.Args == "" {
		_, err := c.Reply(ctx, req.Message, c.L("system.empty", nil))
		return err
	}

	userID := req.Message.Author.ID
	turns := c.store.Get(userID)
	turns[0] = conversation.SystemTurn(req.Args)
	c.store.Set(userID, turns)

	_, err := c.Reply(ctx, req.Message, c.L("system.updated", nil))
	return err
}
