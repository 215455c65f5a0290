package di

import (
	"net/http"
	"time"

	"github.com/muratoffalex/gachicord/internal/ai"
	"github.com/muratoffalex/gachicord/internal/cache"
	"github.com/muratoffalex/gachicord/internal/config"
	"github.com/muratoffalex/gachicord/internal/conversation"
	"github.com/muratoffalex/gachicord/internal/database"
	"github.com/muratoffalex/gachicord/internal/discord"
	"github.com/muratoffalex/gachicord/internal/logger"
	"github.com/muratoffalex/gachicord/internal/media"
	"github.com/muratoffalex/gachicord/internal/network"
	"github.com/muratoffalex/gachicord/internal/service"
	"github.com/muratoffalex/gachicord/internal/service/inflight"
)

type Container struct {
	Discord     discord.Client
	Gateway     *discord.BotClient
	Logger      logger.Logger
	DB          database.Database
	Cache       cache.Cache
	MemoryCache *cache.MemoryCache
	Cfg         *config.Config
	Store       conversation.Store
	Chat        ai.ChatCompleter
	AI          *ai.ProviderRegistry
	Images      *media.ImageService
	Video       *media.VideoService
	Search      *service.SearchService
	Resolver    *service.Resolver
	Guard       *inflight.Guard
	HttpClient  *http.Client
	Localizer   *service.Localizer
}

func NewContainer(cfg *config.Config) (*Container, error) {
	logCfg := cfg.Log()
	l := logger.NewLogrusLogger(&logCfg)

	db, err := database.NewSQLiteDB(cfg.GetDatabaseDSN(), l)
	if err != nil {
		return nil, err
	}

	memoryCache := cache.NewMemoryCache()
	dbCache := cache.NewDBCache(db)
	c := cache.NewMultiLevelCache(memoryCache, dbCache, l)
	localizer, err := service.NewLocalizer(cfg.Global().InterfaceLanguage)
	if err != nil {
		l.WithError(err).Fatal("Error create localizer")
	}

	container := &Container{
		Logger:      l,
		DB:          db,
		Cache:       c,
		MemoryCache: memoryCache,
		Cfg:         cfg,
		Localizer:   localizer,
		Guard:       inflight.NewGuard(),
	}

	httpCfg := network.NewDefaultHTTPClientConfig(cfg.HTTP())
	container.HttpClient = network.SetupHTTPClient(httpCfg, l)
	downloadHTTPClient := network.SetupHTTPClient(network.NewDownloadHTTPClientConfig(cfg.HTTP()), l)

	convCfg := cfg.Conversation()
	container.Store = conversation.NewMemoryStore(conversation.Options{
		MaxMessages:   convCfg.MaxMessages,
		Timeout:       convCfg.Timeout,
		SystemMessage: convCfg.SystemPrompt,
	}, l)

	chatCfg := cfg.Chat()
	chat := ai.NewOpenAICompatibleClient(ai.ProviderChat, chatCfg.BaseURL, chatCfg.APIKey, chatCfg.Model, l, container.HttpClient)
	if !chat.Configured() {
		l.Warn("Chat model is not configured, chat requests will fail")
	}
	container.Chat = chat

	utilityCfg := cfg.Utility()
	utility := ai.NewOpenAICompatibleClient(ai.ProviderUtility, utilityCfg.BaseURL, utilityCfg.APIKey, utilityCfg.Model, l, container.HttpClient)
	prompts := ai.NewPromptAssistant(utility, l)

	openaiCfg := cfg.OpenAI()
	geminiCfg := cfg.Gemini()
	stabilityCfg := cfg.Stability()
	recraftCfg := cfg.Recraft()
	stability := ai.NewStabilityClient(stabilityCfg.BaseURL, stabilityCfg.APIKey, l, container.HttpClient)

	registry := ai.NewProviderRegistry(l)
	registry.RegisterProvider(media.NewDalleGenerator(
		ai.NewDalleClient(openaiCfg.BaseURL, openaiCfg.APIKey, openaiCfg.Model, l, container.HttpClient),
	))
	registry.RegisterProvider(media.NewGeminiGenerator(
		ai.NewGeminiClient(geminiCfg.APIKey, geminiCfg.Model, l, container.HttpClient),
	))
	registry.RegisterProvider(media.NewStabilityGenerator(stability, prompts))
	registry.RegisterProvider(media.NewRecraftGenerator(
		ai.NewRecraftClient(recraftCfg.BaseURL, recraftCfg.APIKey, l, container.HttpClient),
		prompts,
	))
	for _, name := range registry.Providers() {
		l.WithField("provider", name).Info("Initialized image provider")
	}
	container.AI = registry
	container.Images = media.NewImageService(registry, l)
	container.Video = media.NewVideoService(stability, stabilityCfg.PollInterval, stabilityCfg.PollAttempts, l)

	searchCfg := cfg.Search()
	var perplexity service.Asker
	if searchCfg.Configured() {
		perplexity = ai.NewOpenAICompatibleClient(ai.ProviderSearch, searchCfg.BaseURL, searchCfg.APIKey, searchCfg.Model, l, container.HttpClient)
	}
	ddg := service.NewDuckDuckGoSearch(downloadHTTPClient, 1*time.Second)
	container.Search = service.NewSearchService(searchCfg.Provider, perplexity, ddg, c, l)

	gateway, err := discord.NewBotClient(cfg.Discord().Token, l)
	if err != nil {
		return nil, err
	}
	l.Info("Discord client initialized")
	container.Gateway = gateway
	container.Discord = gateway
	container.Resolver = service.NewResolver(gateway, c, downloadHTTPClient, l)

	return container, nil
}
