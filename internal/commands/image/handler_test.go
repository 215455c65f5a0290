package image

import (
	"context"
	"errors"
	"testing"

	"github.com/muratoffalex/gachicord/internal/ai"
	"github.com/muratoffalex/gachicord/internal/commands"
	"github.com/muratoffalex/gachicord/internal/commands/commandtest"
	"github.com/muratoffalex/gachicord/internal/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommand(t *testing.T, env map[string]string, variant Variant) (*Command, *commandtest.Env, *commandtest.Generator) {
	t.Helper()
	e := commandtest.NewEnv(t, env)
	gen := &commandtest.Generator{ID: variant.Provider, Display: "Fake " + variant.Provider, Data: []byte("png-bytes")}
	e.Container.AI.RegisterProvider(gen)
	return New(e.Container, variant), e, gen
}

func request(id, args string) commands.Request {
	return commands.Request{Message: commandtest.Message(id, "!img "+args), Keyword: "img", Args: args}
}

func TestVariants(t *testing.T) {
	keywords := map[string]string{}
	for _, v := range Variants {
		keywords[v.Keyword] = v.Provider
	}
	assert.Equal(t, map[string]string{
		"img":  ai.ProviderDalle,
		"gimg": ai.ProviderGemini,
		"simg": ai.ProviderStability,
		"rimg": ai.ProviderRecraft,
	}, keywords)
}

func TestExecute_Generates(t *testing.T) {
	cmd, env, gen := newCommand(t, nil, Dalle)
	assert.Equal(t, "img", cmd.Name())

	require.NoError(t, cmd.Handle(context.Background(), request("1", "a red fox")))

	assert.Equal(t, []string{"a red fox"}, gen.Prompts())
	assert.Nil(t, gen.Bases()[0])
	assert.Equal(t, []string{env.L("image.generating", map[string]any{"Provider": "Fake dalle"})}, env.Client.SentTexts())

	edits := env.Client.Edits()
	require.Len(t, edits, 1)
	assert.Empty(t, edits[0].Content)
	require.Len(t, edits[0].Files, 1)
	assert.Equal(t, discord.File{Name: "dalle-generated-image.png", ContentType: "image/png", Data: []byte("png-bytes")}, edits[0].Files[0])

	count, err := env.Container.DB.CountGenerations(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExecute_PromptRequired(t *testing.T) {
	cmd, env, gen := newCommand(t, nil, Recraft)

	require.NoError(t, cmd.Handle(context.Background(), request("1", "")))

	assert.Equal(t, []string{env.L("image.promptRequired", map[string]any{"Command": "rimg"})}, env.Client.SentTexts())
	assert.Empty(t, gen.Prompts())
}

func TestExecute_PromptFromReply(t *testing.T) {
	cmd, env, gen := newCommand(t, nil, Dalle)
	env.Client.AddMessage(&discord.Message{ID: "0", ChannelID: "chan-1", Content: "a lighthouse at dusk"})
	req := request("1", "")
	req.Message.ReplyToID = "0"

	require.NoError(t, cmd.Handle(context.Background(), req))

	assert.Equal(t, []string{"a lighthouse at dusk"}, gen.Prompts())
}

func TestExecute_ModifiesAttachedImage(t *testing.T) {
	cmd, env, gen := newCommand(t, nil, Stability)
	req := request("1", "make it blue")
	env.Attach(t, req.Message, []byte("original"))

	require.NoError(t, cmd.Handle(context.Background(), req))

	bases := gen.Bases()
	require.Len(t, bases, 1)
	require.NotNil(t, bases[0])
	assert.Equal(t, []byte("original"), bases[0].Data)
	assert.Equal(t, "image/png", bases[0].ContentType)
	assert.Equal(t, []string{env.L("image.modifying", map[string]any{"Provider": "Fake stability"})}, env.Client.SentTexts())
}

func TestExecute_ModifiesRepliedImage(t *testing.T) {
	cmd, env, gen := newCommand(t, nil, Stability)
	original := commandtest.Message("0", "")
	env.Attach(t, original, []byte("replied"))
	env.Client.AddMessage(original)
	req := request("1", "add a hat")
	req.Message.ReplyToID = "0"

	require.NoError(t, cmd.Handle(context.Background(), req))

	require.NotNil(t, gen.Bases()[0])
	assert.Equal(t, []byte("replied"), gen.Bases()[0].Data)
}

func TestExecute_AttachmentFailure(t *testing.T) {
	cmd, env, gen := newCommand(t, nil, Dalle)
	req := request("1", "a fox")
	req.Message.Attachments = []discord.Attachment{{
		ID:          "big",
		URL:         "https://cdn.discordapp.com/attachments/big.png",
		ContentType: "image/png",
		Size:        100 << 20,
	}}

	require.NoError(t, cmd.Handle(context.Background(), req))

	assert.Equal(t, []string{env.L("image.attachmentFailed", nil)}, env.Client.SentTexts())
	assert.Empty(t, gen.Prompts())
}

func TestExecute_ProviderFailure(t *testing.T) {
	cmd, env, gen := newCommand(t, nil, Dalle)
	gen.Err = errors.New("quota exceeded")

	require.NoError(t, cmd.Handle(context.Background(), request("1", "a fox")))

	edits := env.Client.EditTexts()
	require.Len(t, edits, 1)
	assert.Contains(t, edits[0], "quota exceeded")
	assert.Empty(t, env.Client.Edits()[0].Files)

	count, err := env.Container.DB.CountGenerations(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExecute_DeliveryFailure(t *testing.T) {
	cmd, env, _ := newCommand(t, nil, Dalle)
	env.Client.EditErr = errors.New("payload too large")

	require.NoError(t, cmd.Handle(context.Background(), request("1", "a fox")))

	sent := env.Client.SentTexts()
	require.Len(t, sent, 2)
	assert.Equal(t, env.L("image.error", nil), sent[1])
}

func TestHandle_Throttled(t *testing.T) {
	cmd, env, gen := newCommand(t, map[string]string{
		"GACHICORD_COMMANDS__IMG__THROTTLE__PERIOD":   "1h",
		"GACHICORD_COMMANDS__IMG__THROTTLE__REQUESTS": "1",
	}, Dalle)

	require.NoError(t, cmd.Handle(context.Background(), request("1", "first")))
	require.NoError(t, cmd.Handle(context.Background(), request("2", "second")))

	assert.Equal(t, []string{"first"}, gen.Prompts())
	sent := env.Client.SentTexts()
	assert.Equal(t, env.L("command.throttled", map[string]any{"Command": "img"}), sent[len(sent)-1])
}
