package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/muratoffalex/gachicord/internal/commands"
	"github.com/muratoffalex/gachicord/internal/commands/commandtest"
	"github.com/muratoffalex/gachicord/internal/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommand struct {
	name    string
	aliases []string
	err     error
	panics  bool

	mu       sync.Mutex
	requests []commands.Request
}

func (c *stubCommand) Name() string      { return c.name }
func (c *stubCommand) Aliases() []string { return c.aliases }

func (c *stubCommand) Handle(ctx context.Context, req commands.Request) error {
	return c.Execute(ctx, req)
}

func (c *stubCommand) Execute(_ context.Context, req commands.Request) error {
	if c.panics {
		panic("boom")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	return c.err
}

func (c *stubCommand) calls() []commands.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]commands.Request(nil), c.requests...)
}

type testBot struct {
	*Bot
	env   *commandtest.Env
	chat  *stubCommand
	image *stubCommand
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()
	env := commandtest.NewEnv(t, nil)
	c := env.Container
	bot, err := NewBot(c.Discord, c.Guard, c.Logger, c.DB, c.Cfg, c.Localizer, c.Resolver)
	require.NoError(t, err)

	chat := &stubCommand{name: DefaultCommand}
	image := &stubCommand{name: "img", aliases: []string{"dalle"}}
	bot.RegisterCommand(chat)
	bot.RegisterCommand(image)
	return &testBot{Bot: bot, env: env, chat: chat, image: image}
}

func mention(text string) string {
	return "<@100> " + text
}

func TestNewBot_RequiresClient(t *testing.T) {
	_, err := NewBot(nil, nil, nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestHandleMessage_IgnoresBots(t *testing.T) {
	b := newTestBot(t)
	msg := commandtest.Message("1", mention("hello"))
	msg.Author.Bot = true

	b.HandleMessage(context.Background(), msg)

	assert.Empty(t, b.chat.calls())
	assert.Empty(t, b.env.Client.Sent())
}

func TestHandleMessage_RequiresLeadingMention(t *testing.T) {
	b := newTestBot(t)

	b.HandleMessage(context.Background(), commandtest.Message("1", "hello <@100>"))
	b.HandleMessage(context.Background(), commandtest.Message("2", "hello"))

	assert.Empty(t, b.chat.calls())
	assert.Empty(t, b.env.Client.Sent())
}

func TestHandleMessage_NicknameMention(t *testing.T) {
	b := newTestBot(t)

	b.HandleMessage(context.Background(), commandtest.Message("1", "<@!100> hi there"))

	calls := b.chat.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "hi there", calls[0].Args)
}

func TestHandleMessage_RoutesKeyword(t *testing.T) {
	tests := []struct {
		name    string
		content string
		args    string
		keyword string
	}{
		{name: "name", content: "!img a red fox", args: "a red fox", keyword: "img"},
		{name: "case insensitive", content: "!IMG a red fox", args: "a red fox", keyword: "img"},
		{name: "alias", content: "!dalle a red fox", args: "a red fox", keyword: "dalle"},
		{name: "no args", content: "!img", args: "", keyword: "img"},
		{name: "newline separated", content: "!img\na red fox", args: "a red fox", keyword: "img"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBot(t)

			b.HandleMessage(context.Background(), commandtest.Message("1", mention(tt.content)))

			calls := b.image.calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.args, calls[0].Args)
			assert.Equal(t, tt.keyword, calls[0].Keyword)
			assert.Empty(t, b.chat.calls())
		})
	}
}

func TestHandleMessage_FallsBackToChat(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "plain text", content: "how are you?"},
		{name: "unknown keyword", content: "!unknown do things"},
		{name: "keyword prefix", content: "!imgcat please"},
		{name: "directive", content: "!tokens=100 tell me a joke"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBot(t)

			b.HandleMessage(context.Background(), commandtest.Message("1", mention(tt.content)))

			calls := b.chat.calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.content, calls[0].Args)
			assert.Empty(t, calls[0].Keyword)
			assert.Empty(t, b.image.calls())
		})
	}
}

func TestHandleMessage_NonTextChannel(t *testing.T) {
	b := newTestBot(t)
	b.env.Client.ChannelType = discordgo.ChannelTypeGuildVoice

	b.HandleMessage(context.Background(), commandtest.Message("1", mention("hello")))

	assert.Empty(t, b.chat.calls())
	assert.Equal(t, []string{b.env.L("channel.textOnly", nil)}, b.env.Client.SentTexts())
}

func TestHandleMessage_ChannelLookupFailureIsNotFatal(t *testing.T) {
	b := newTestBot(t)
	b.env.Client.ChannelErr = errors.New("unavailable")

	b.HandleMessage(context.Background(), commandtest.Message("1", mention("hello")))

	assert.Len(t, b.chat.calls(), 1)
}

func TestHandleMessage_EmptyMention(t *testing.T) {
	b := newTestBot(t)
	msg := commandtest.Message("1", "<@100>")

	b.HandleMessage(context.Background(), msg)

	assert.Empty(t, b.chat.calls())
	sent := b.env.Client.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, b.env.L("mention.empty", nil), sent[0].Content)
	assert.Equal(t, msg, sent[0].ReplyTo)
}

func TestHandleMessage_EmptyMentionUsesRepliedText(t *testing.T) {
	b := newTestBot(t)
	b.env.Client.AddMessage(&discord.Message{ID: "0", ChannelID: "chan-1", Content: "what is this?"})
	msg := commandtest.Message("1", "<@100>")
	msg.ReplyToID = "0"

	b.HandleMessage(context.Background(), msg)

	calls := b.chat.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "what is this?", calls[0].Args)
}

func TestHandleMessage_CommandError(t *testing.T) {
	b := newTestBot(t)
	b.image.err = errors.New("provider down")

	b.HandleMessage(context.Background(), commandtest.Message("1", mention("!img fox")))

	assert.Equal(t, []string{b.env.L("error", nil)}, b.env.Client.SentTexts())
}

func TestHandleMessage_CancelledIsSilent(t *testing.T) {
	b := newTestBot(t)
	b.image.err = context.Canceled

	b.HandleMessage(context.Background(), commandtest.Message("1", mention("!img fox")))

	assert.Empty(t, b.env.Client.Sent())
}

func TestHandleMessage_RecoversFromPanic(t *testing.T) {
	b := newTestBot(t)
	b.image.panics = true

	assert.NotPanics(t, func() {
		b.HandleMessage(context.Background(), commandtest.Message("1", mention("!img fox")))
	})
	assert.Equal(t, []string{b.env.L("error", nil)}, b.env.Client.SentTexts())
	assert.False(t, b.env.Container.Guard.IsActive("1"))
}

func TestHandleMessage_DropsDuplicateDelivery(t *testing.T) {
	b := newTestBot(t)
	release, ok := b.env.Container.Guard.TryAcquire("1")
	require.True(t, ok)
	defer release()

	b.HandleMessage(context.Background(), commandtest.Message("1", mention("hello")))

	assert.Empty(t, b.chat.calls())
}

func TestHandleMessage_SavesUser(t *testing.T) {
	b := newTestBot(t)

	b.HandleMessage(context.Background(), commandtest.Message("1", mention("hello")))

	user, err := b.env.Container.DB.GetUser("user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.PublicID)
}

func TestDispatch_WithoutChatCommand(t *testing.T) {
	env := commandtest.NewEnv(t, nil)
	c := env.Container
	bot, err := NewBot(c.Discord, c.Guard, c.Logger, c.DB, c.Cfg, c.Localizer, c.Resolver)
	require.NoError(t, err)

	err = bot.Dispatch(context.Background(), commandtest.Message("1", "hi"), "hi")
	assert.ErrorIs(t, err, ErrNoCommand)
}

func TestRegisterCommand_IgnoresInvalid(t *testing.T) {
	b := newTestBot(t)
	b.RegisterCommand(nil)
	b.RegisterCommand(&stubCommand{})

	assert.Len(t, b.GetCommands(), 2)
}

func TestSplitKeyword(t *testing.T) {
	tests := []struct {
		content string
		keyword string
		rest    string
	}{
		{"!img cat", "img", "cat"},
		{"  !Search   go generics ", "search", "go generics"},
		{"hello !img", "", "hello !img"},
		{"!", "", "!"},
		{"!temp=0.5 hi", "", "!temp=0.5 hi"},
		{"!!img", "", "!!img"},
	}
	for _, tt := range tests {
		keyword, rest := splitKeyword(tt.content)
		assert.Equal(t, tt.keyword, keyword, tt.content)
		assert.Equal(t, tt.rest, rest, tt.content)
	}
}
