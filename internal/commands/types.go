package commands

import (
	"context"
	"time"

	"github.com/muratoffalex/gachicord/internal/discord"
)

// Request is one inbound message routed to a command. Args is the message
// text with the bot mention and the command keyword removed.
type Request struct {
	Message *discord.Message
	Keyword string
	Args    string
}

type Command interface {
	Name() string
	Aliases() []string
	Handle(ctx context.Context, req Request) error
	Execute(ctx context.Context, req Request) error
}

// Dispatcher routes free text as if it was sent in msg.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg *discord.Message, content string) error
}

type ThrottleConfig struct {
	Period   time.Duration
	Requests int
}
