package ai

import (
	"context"
	"slices"
	"strings"

	"github.com/muratoffalex/gachicord/internal/logger"
)

const (
	RecraftStyleRealistic    = "realistic_image"
	RecraftStyleDigital      = "digital_illustration"
	RecraftStyleVector       = "vector_illustration"
	RecraftStyleIcon         = "icon"
	DefaultRecraftStyle      = RecraftStyleDigital
	utilityMaxTokens         = 200
	translatePromptMessage   = "Translate the following image generation prompt to English. If it is already in English, return it unchanged. Reply with the prompt only, without quotes or explanations."
	extractSubjectMessage    = "The user wants to edit an image. From the instruction below, extract the object in the existing image that has to be replaced. Reply with a short noun phrase in English only, without quotes or explanations."
	extractStyleMessageStart = "Pick the image style that best matches the prompt below. Reply with exactly one of: "
)

var RecraftStyles = []string{
	RecraftStyleRealistic,
	RecraftStyleDigital,
	RecraftStyleVector,
	RecraftStyleIcon,
}

// PromptAssistant rewrites user prompts with a small utility chat model.
// Every helper degrades to a sensible fallback when the model is missing or fails.
type PromptAssistant struct {
	completer ChatCompleter
	logger    logger.Logger
}

func NewPromptAssistant(completer ChatCompleter, log logger.Logger) *PromptAssistant {
	return &PromptAssistant{
		completer: completer,
		logger:    log.WithField("component", "prompt_assistant"),
	}
}

// Translate returns prompt translated to English, or prompt itself on failure.
func (a *PromptAssistant) Translate(ctx context.Context, prompt string) string {
	translated, err := a.ask(ctx, translatePromptMessage, prompt)
	if err != nil {
		a.logger.WithError(err).Warn("Prompt translation failed, using original prompt")
		return prompt
	}
	a.logger.WithField("prompt", translated).Debug("Translated prompt")
	return translated
}

// ExtractSubject returns what should be searched for in a search-and-replace edit.
func (a *PromptAssistant) ExtractSubject(ctx context.Context, prompt string) string {
	subject, err := a.ask(ctx, extractSubjectMessage, prompt)
	if err != nil {
		a.logger.WithError(err).Warn("Subject extraction failed, using full prompt")
		return prompt
	}
	a.logger.WithField("subject", subject).Debug("Extracted subject for search")
	return subject
}

// ExtractStyle maps prompt to one of RecraftStyles.
func (a *PromptAssistant) ExtractStyle(ctx context.Context, prompt string) string {
	answer, err := a.ask(ctx, extractStyleMessageStart+strings.Join(RecraftStyles, ", ")+".", prompt)
	if err != nil {
		a.logger.WithError(err).Warn("Style extraction failed, using default style")
		return DefaultRecraftStyle
	}
	return normalizeStyle(answer)
}

func normalizeStyle(answer string) string {
	answer = strings.ToLower(strings.Trim(strings.TrimSpace(answer), "\"'`."))
	if slices.Contains(RecraftStyles, answer) {
		return answer
	}
	for _, style := range RecraftStyles {
		if strings.Contains(answer, style) {
			return style
		}
	}
	return DefaultRecraftStyle
}

func (a *PromptAssistant) ask(ctx context.Context, instruction, prompt string) (string, error) {
	if a.completer == nil {
		return "", ErrProviderNotConfigured
	}
	maxTokens := utilityMaxTokens
	temperature := 0.0
	answer, err := a.completer.Complete(ctx, CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: instruction},
			{Role: RoleUser, Content: prompt},
		},
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ErrEmptyResponse
	}
	return answer, nil
}
