package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/muratoffalex/gachicord/internal/ai"
	"github.com/muratoffalex/gachicord/internal/logger"
)

type ImageService struct {
	registry *ai.ProviderRegistry
	logger   logger.Logger
}

func NewImageService(registry *ai.ProviderRegistry, log logger.Logger) *ImageService {
	return &ImageService{
		registry: registry,
		logger:   log.WithField("service", "image"),
	}
}

// DisplayName returns the human-readable name of provider, or provider itself.
func (s *ImageService) DisplayName(provider string) string {
	generator, err := s.registry.GetProvider(provider)
	if err != nil {
		return provider
	}
	return generator.DisplayName()
}

// Generate never returns an error: every failure is folded into Result.
func (s *ImageService) Generate(ctx context.Context, provider, prompt string, base *ai.Image) Result {
	log := s.logger.WithFields(logger.Fields{
		"provider": provider,
		"edit":     base != nil,
	})

	generator, err := s.registry.GetProvider(provider)
	if err != nil {
		log.WithError(err).Error("Unknown image provider")
		return failure(fmt.Sprintf("Error generating image: %v", err))
	}

	data, err := generator.GenerateImage(ctx, prompt, base)
	switch {
	case errors.Is(err, ErrUnsupportedEdit):
		return failure(fmt.Sprintf(
			"Image modifications are not supported by %s. Please use DALL-E 3, Stability AI, or Recraft.ai instead.",
			generator.DisplayName(),
		))
	case err != nil:
		log.WithError(err).WithField("error_type", ai.ErrorTypeOf(err)).Error("Image generation failed")
		return failure(fmt.Sprintf("Error generating image: %v", err))
	case len(data) == 0:
		return failure(fmt.Sprintf("Error generating image: %v", ai.ErrNoImage))
	}

	verb := "generated"
	if base != nil {
		verb = "modified"
	}
	log.WithField("bytes", len(data)).Info("Image ready")
	return success(data, fmt.Sprintf("Image %s using %s", verb, generator.DisplayName()))
}

// Edit runs a search-and-replace edit and requires base.
func (s *ImageService) Edit(ctx context.Context, prompt string, base *ai.Image) Result {
	if base == nil {
		return failure(fmt.Sprintf("Error generating image: %v", ErrImageRequired))
	}
	return s.Generate(ctx, ai.ProviderStability, prompt, base)
}
