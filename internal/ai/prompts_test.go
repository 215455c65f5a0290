package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/muratoffalex/gachicord/internal/logger"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, request CompletionRequest) (string, error) {
	args := m.Called(ctx, request)
	return args.String(0), args.Error(1)
}

func systemPromptIs(prefix string) any {
	return mock.MatchedBy(func(r CompletionRequest) bool {
		return len(r.Messages) == 2 && r.Messages[0].Role == RoleSystem &&
			len(r.Messages[0].Content) >= len(prefix) && r.Messages[0].Content[:len(prefix)] == prefix
	})
}

func TestPromptAssistant_Translate(t *testing.T) {
	completer := &mockCompleter{}
	completer.On("Complete", mock.Anything, systemPromptIs("Translate")).Return(" a cat on a roof \n", nil).Once()

	assistant := NewPromptAssistant(completer, logger.NewTestLogger())
	assert.Equal(t, "a cat on a roof", assistant.Translate(context.Background(), "кот на крыше"))
	completer.AssertExpectations(t)
}

func TestPromptAssistant_FallbackOnError(t *testing.T) {
	completer := &mockCompleter{}
	completer.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("down"))

	log := logger.NewTestLogger()
	assistant := NewPromptAssistant(completer, log)
	ctx := context.Background()

	assert.Equal(t, "кот", assistant.Translate(ctx, "кот"))
	assert.Equal(t, "replace the cat", assistant.ExtractSubject(ctx, "replace the cat"))
	assert.Equal(t, DefaultRecraftStyle, assistant.ExtractStyle(ctx, "anything"))
	assert.True(t, log.HasEntry("warn", "Prompt translation failed, using original prompt"))
}

func TestPromptAssistant_EmptyAnswer(t *testing.T) {
	completer := &mockCompleter{}
	completer.On("Complete", mock.Anything, mock.Anything).Return("   ", nil)

	assistant := NewPromptAssistant(completer, logger.NewTestLogger())
	assert.Equal(t, "prompt", assistant.ExtractSubject(context.Background(), "prompt"))
}

func TestPromptAssistant_NoCompleter(t *testing.T) {
	assistant := NewPromptAssistant(nil, logger.NewTestLogger())
	assert.Equal(t, "prompt", assistant.Translate(context.Background(), "prompt"))
}

func TestPromptAssistant_ExtractStyle(t *testing.T) {
	tests := []struct {
		answer string
		want   string
	}{
		{"icon", RecraftStyleIcon},
		{" Vector_Illustration. ", RecraftStyleVector},
		{"\"realistic_image\"", RecraftStyleRealistic},
		{"The best style is digital_illustration", RecraftStyleDigital},
		{"watercolor", DefaultRecraftStyle},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			completer := &mockCompleter{}
			completer.On("Complete", mock.Anything, systemPromptIs("Pick the image style")).Return(tt.answer, nil)

			assistant := NewPromptAssistant(completer, logger.NewTestLogger())
			assert.Equal(t, tt.want, assistant.ExtractStyle(context.Background(), "prompt"))
		})
	}
}
