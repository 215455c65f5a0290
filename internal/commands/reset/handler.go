package reset

import (
	"context"

	"github.com/muratoffalex/gachicord/internal/app/di"
	"github.com/muratoffalex/gachicord/internal/commands"
	"github.com/muratoffalex/gachicord/internal/commands/base"
	"github.com/muratoffalex/gachicord/internal/conversation"
)

const CommandName = "clear"

type Command struct {
	*base.Command
	store      conversation.Store
	dispatcher commands.Dispatcher
}

func New(di *di.Container, dispatcher commands.Dispatcher) *Command {
	cmd := &Command{
		store:      di.Store,
		dispatcher: dispatcher,
	}
	cmd.Command = base.NewCommand(cmd, di)
	return cmd
}

func (c *Command) Name() string {
	return CommandName
}

// Execute resets the history. Text following the keyword is handled as a new
// message on the fresh history.
func (c *Command) Execute(ctx context.Context, req commands.Request) error {
	c.store.Delete(req.Message.Author.ID)
	c.Logger.WithField("user_id", req.Message.Author.ID).Info("Conversation cleared")

	if req.Args == "" {
		_, err := c.Reply(ctx, req.Message, c.L("clear.done", nil))
		return err
	}
	return c.dispatcher.Dispatch(ctx, req.Message, req.Args)
}
