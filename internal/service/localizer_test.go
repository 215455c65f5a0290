package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizerEnglish(t *testing.T) {
	l, err := NewLocalizer("en")
	require.NoError(t, err)

	assert.Equal(t, "System prompt updated successfully!", l.Localize("system.updated", nil))
	assert.Equal(t,
		"🎨 Generating your image with DALL-E 3, please wait...",
		l.Localize("image.generating", map[string]any{"Provider": "DALL-E 3"}),
	)
	assert.Equal(t,
		"Failed to generate video: boom",
		l.Localize("video.failed", map[string]any{"Error": "boom"}),
	)
	assert.True(t, strings.Contains(l.Localize("help.text", nil), "!video"))
}

func TestLocalizerUnknownKey(t *testing.T) {
	l, err := NewLocalizer("en")
	require.NoError(t, err)

	assert.Equal(t, "no.such.key", l.Localize("no.such.key", nil))
}

func TestLocalizerRussian(t *testing.T) {
	l, err := NewLocalizer("ru")
	require.NoError(t, err)

	assert.Equal(t, "ru", l.Language().String())
	assert.Equal(t, "Системный промпт обновлён!", l.Localize("system.updated", nil))
}

func TestLocalizerFallsBackToEnglish(t *testing.T) {
	l, err := NewLocalizer("de")
	require.NoError(t, err)

	assert.Equal(t, "I can only respond in text channels.", l.Localize("channel.textOnly", nil))
}

func TestLocalizerInvalidLanguage(t *testing.T) {
	_, err := NewLocalizer("not a language!")
	assert.Error(t, err)
}

func TestLocaleFilesHaveSameKeys(t *testing.T) {
	en, err := NewLocalizer("en")
	require.NoError(t, err)
	ru, err := NewLocalizer("ru")
	require.NoError(t, err)

	for _, key := range []string{
		"error", "mention.empty", "channel.textOnly", "chat.couldNotProcess",
		"clear.done", "image.promptRequired", "video.imageRequired",
		"search.queryRequired", "help.text",
	} {
		assert.NotEqual(t, key, en.Localize(key, map[string]any{"Command": "img"}), key)
		assert.NotEqual(t, key, ru.Localize(key, map[string]any{"Command": "img"}), key)
	}
}
