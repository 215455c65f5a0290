// Package commandtest builds dependency containers for command tests.
package commandtest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/muratoffalex/gachicord/internal/ai"
	"github.com/muratoffalex/gachicord/internal/app/di"
	"github.com/muratoffalex/gachicord/internal/cache"
	"github.com/muratoffalex/gachicord/internal/config"
	"github.com/muratoffalex/gachicord/internal/conversation"
	"github.com/muratoffalex/gachicord/internal/database"
	"github.com/muratoffalex/gachicord/internal/discord"
	"github.com/muratoffalex/gachicord/internal/discord/discordtest"
	"github.com/muratoffalex/gachicord/internal/logger"
	"github.com/muratoffalex/gachicord/internal/media"
	"github.com/muratoffalex/gachicord/internal/service"
	"github.com/muratoffalex/gachicord/internal/service/inflight"
	"github.com/stretchr/testify/require"
)

// Env holds the container together with the fakes behind it.
type Env struct {
	Container *di.Container
	Client    *discordtest.Client
	Chat      *FakeChat
	Logger    *logger.TestLogger
}

// NewEnv loads the default configuration, applying env as environment
// variables first, and wires it to fakes and a temporary database.
func NewEnv(t *testing.T, env map[string]string) *Env {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DISCORD_TOKEN", "test-token")
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := config.Load()
	require.NoError(t, err)

	log := logger.NewTestLogger()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db")
	db, err := database.NewSQLiteDB(dsn, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	localizer, err := service.NewLocalizer("en")
	require.NoError(t, err)

	mem := cache.NewMemoryCache()
	c := cache.NewMultiLevelCache(mem, cache.NewDBCache(db), log)
	client := discordtest.NewClient()
	store := conversation.NewMemoryStore(conversation.Options{
		MaxMessages: cfg.Conversation().MaxMessages,
		Timeout:     time.Hour,
	}, log)
	t.Cleanup(store.Teardown)

	chat := &FakeChat{}
	registry := ai.NewProviderRegistry(log)

	return &Env{
		Container: &di.Container{
			Discord:     client,
			Logger:      log,
			DB:          db,
			Cache:       c,
			MemoryCache: mem,
			Cfg:         cfg,
			Store:       store,
			Chat:        chat,
			AI:          registry,
			Images:      media.NewImageService(registry, log),
			Resolver:    service.NewResolver(client, c, http.DefaultClient, log),
			Guard:       inflight.NewGuard(),
			HttpClient:  http.DefaultClient,
			Localizer:   localizer,
		},
		Client: client,
		Chat:   chat,
		Logger: log,
	}
}

// L returns the English text for id.
func (e *Env) L(id string, data map[string]any) string {
	return e.Container.Localizer.Localize(id, data)
}

// Message builds a message from a regular user in a text channel.
func Message(id, content string) *discord.Message {
	return &discord.Message{
		ID:        id,
		ChannelID: "chan-1",
		GuildID:   "guild-1",
		Content:   content,
		Author:    discord.User{ID: "user-1", Username: "alice"},
	}
}

// Attach adds an image attachment to msg whose content is already cached, so
// resolving it never touches the network.
func (e *Env) Attach(t *testing.T, msg *discord.Message, data []byte) discord.Attachment {
	t.Helper()
	a := discord.Attachment{
		ID:          fmt.Sprintf("att-%s-%d", msg.ID, len(msg.Attachments)),
		Filename:    "photo.png",
		ContentType: "image/png",
		Size:        len(data),
	}
	a.URL = "https://cdn.discordapp.com/attachments/" + a.ID + "/photo.png"
	require.NoError(t, e.Container.Cache.Set(cache.AttachmentKey(a.URL), data, cache.AttachmentTTL))
	msg.Attachments = append(msg.Attachments, a)
	return a
}

// PNG encodes a gradient image of the given size.
func PNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := range width {
		for y := range height {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// FakeChat answers every completion with Answer and Err.
type FakeChat struct {
	Answer string
	Err    error

	mu       sync.Mutex
	requests []ai.CompletionRequest
}

func (f *FakeChat) Complete(_ context.Context, request ai.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, request)
	return f.Answer, f.Err
}

func (f *FakeChat) Requests() []ai.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ai.CompletionRequest(nil), f.requests...)
}

// Generator is an ai.ImageGenerator returning Data or Err.
type Generator struct {
	ID      string
	Display string
	Data    []byte
	Err     error

	mu      sync.Mutex
	prompts []string
	bases   []*ai.Image
}

func (g *Generator) Name() string        { return g.ID }
func (g *Generator) DisplayName() string { return g.Display }

func (g *Generator) GenerateImage(_ context.Context, prompt string, base *ai.Image) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	g.bases = append(g.bases, base)
	return g.Data, g.Err
}

func (g *Generator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

func (g *Generator) Bases() []*ai.Image {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*ai.Image(nil), g.bases...)
}
