package ai

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/muratoffalex/gachicord/internal/logger"
)

// ImageGenerator produces an image from prompt, optionally starting from base.
type ImageGenerator interface {
	Name() string
	DisplayName() string
	GenerateImage(ctx context.Context, prompt string, base *Image) ([]byte, error)
}

type ProviderRegistry struct {
	providers      map[string]ImageGenerator
	providersMutex sync.RWMutex
	logger         logger.Logger
}

func NewProviderRegistry(log logger.Logger) *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ImageGenerator),
		logger:    log,
	}
}

func (r *ProviderRegistry) RegisterProvider(provider ImageGenerator) {
	r.providersMutex.Lock()
	defer r.providersMutex.Unlock()
	r.providers[provider.Name()] = provider
	r.logger.WithField("provider", provider.Name()).Debug("Image provider registered")
}

func (r *ProviderRegistry) GetProvider(name string) (ImageGenerator, error) {
	r.providersMutex.RLock()
	defer r.providersMutex.RUnlock()

	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
}

func (r *ProviderRegistry) Providers() []string {
	r.providersMutex.RLock()
	defer r.providersMutex.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
