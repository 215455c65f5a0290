package media

import (
	"context"
	"fmt"

	"github.com/muratoffalex/gachicord/internal/ai"
)

type DalleAPI interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

type GeminiAPI interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

type StabilityImageAPI interface {
	TextToImage(ctx context.Context, prompt string) ([]byte, error)
	SearchAndReplace(ctx context.Context, image *ai.Image, searchPrompt, prompt string) ([]byte, error)
}

type RecraftAPI interface {
	Generate(ctx context.Context, prompt, style string) ([]byte, error)
	ImageToImage(ctx context.Context, image *ai.Image, prompt string) ([]byte, error)
}

// PromptRewriter is satisfied by *ai.PromptAssistant.
type PromptRewriter interface {
	Translate(ctx context.Context, prompt string) string
	ExtractSubject(ctx context.Context, prompt string) string
	ExtractStyle(ctx context.Context, prompt string) string
}

type dalleGenerator struct {
	api DalleAPI
}

func NewDalleGenerator(api DalleAPI) ai.ImageGenerator {
	return &dalleGenerator{api: api}
}

func (g *dalleGenerator) Name() string        { return ai.ProviderDalle }
func (g *dalleGenerator) DisplayName() string { return "DALL-E 3" }

// GenerateImage ignores base: DALL-E 3 only supports text-to-image.
func (g *dalleGenerator) GenerateImage(ctx context.Context, prompt string, _ *ai.Image) ([]byte, error) {
	return g.api.Generate(ctx, prompt)
}

type geminiGenerator struct {
	api GeminiAPI
}

func NewGeminiGenerator(api GeminiAPI) ai.ImageGenerator {
	return &geminiGenerator{api: api}
}

func (g *geminiGenerator) Name() string        { return ai.ProviderGemini }
func (g *geminiGenerator) DisplayName() string { return "Google Gemini" }

func (g *geminiGenerator) GenerateImage(ctx context.Context, prompt string, base *ai.Image) ([]byte, error) {
	if base != nil {
		return nil, ErrUnsupportedEdit
	}
	return g.api.Generate(ctx, prompt)
}

type stabilityGenerator struct {
	api      StabilityImageAPI
	rewriter PromptRewriter
}

func NewStabilityGenerator(api StabilityImageAPI, rewriter PromptRewriter) ai.ImageGenerator {
	return &stabilityGenerator{api: api, rewriter: rewriter}
}

func (g *stabilityGenerator) Name() string        { return ai.ProviderStability }
func (g *stabilityGenerator) DisplayName() string { return "Stability AI" }

// GenerateImage translates prompt to English first; with a base image it
// runs a search-and-replace edit on the resized image.
func (g *stabilityGenerator) GenerateImage(ctx context.Context, prompt string, base *ai.Image) ([]byte, error) {
	translated := g.rewriter.Translate(ctx, prompt)
	if base == nil {
		return g.api.TextToImage(ctx, translated)
	}

	resized, err := resizeForStability(base)
	if err != nil {
		return nil, err
	}
	subject := g.rewriter.ExtractSubject(ctx, translated)
	return g.api.SearchAndReplace(ctx, resized, subject, translated)
}

func resizeForStability(base *ai.Image) (*ai.Image, error) {
	data, err := Resize(base.Data)
	if err != nil {
		return nil, fmt.Errorf("resize image: %w", err)
	}
	return &ai.Image{Data: data, ContentType: "image/png", Filename: "image.png"}, nil
}

type recraftGenerator struct {
	api      RecraftAPI
	rewriter PromptRewriter
}

func NewRecraftGenerator(api RecraftAPI, rewriter PromptRewriter) ai.ImageGenerator {
	return &recraftGenerator{api: api, rewriter: rewriter}
}

func (g *recraftGenerator) Name() string        { return ai.ProviderRecraft }
func (g *recraftGenerator) DisplayName() string { return "Recraft.ai" }

func (g *recraftGenerator) GenerateImage(ctx context.Context, prompt string, base *ai.Image) ([]byte, error) {
	if base != nil {
		return g.api.ImageToImage(ctx, base, prompt)
	}
	return g.api.Generate(ctx, prompt, g.rewriter.ExtractStyle(ctx, prompt))
}
