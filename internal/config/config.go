package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
)

const (
	GLOBAL_LANGUAGE                  = "global.interface_language"
	GLOBAL_GENERATION_RETENTION_DAYS = "global.generation_retention_days"
	DISCORD_TOKEN                    = "discord.token"
	DISCORD_MESSAGE_LIMIT            = "discord.message_limit"
	DISCORD_ALLOWED_CHANNELS         = "discord.allowed_channels"
	HTTP_PROXY                       = "http.proxy"
	HTTP_NO_PROXY                    = "http.no_proxy"
	AI_CHAT_BASE_URL                 = "ai.chat.base_url"
	AI_CHAT_API_KEY                  = "ai.chat.api_key"
	AI_CHAT_MODEL                    = "ai.chat.model"
	AI_UTILITY_BASE_URL              = "ai.utility.base_url"
	AI_UTILITY_API_KEY               = "ai.utility.api_key"
	AI_UTILITY_MODEL                 = "ai.utility.model"
	AI_SEARCH_PROVIDER               = "ai.search.provider"
	AI_SEARCH_BASE_URL               = "ai.search.base_url"
	AI_SEARCH_API_KEY                = "ai.search.api_key"
	AI_SEARCH_MODEL                  = "ai.search.model"
	AI_OPENAI_BASE_URL               = "ai.openai.base_url"
	AI_OPENAI_API_KEY                = "ai.openai.api_key"
	AI_OPENAI_MODEL                  = "ai.openai.model"
	AI_GEMINI_API_KEY                = "ai.gemini.api_key"
	AI_GEMINI_MODEL                  = "ai.gemini.model"
	AI_STABILITY_BASE_URL            = "ai.stability.base_url"
	AI_STABILITY_API_KEY             = "ai.stability.api_key"
	AI_STABILITY_POLL_INTERVAL       = "ai.stability.poll_interval"
	AI_STABILITY_POLL_ATTEMPTS       = "ai.stability.poll_attempts"
	AI_RECRAFT_BASE_URL              = "ai.recraft.base_url"
	AI_RECRAFT_API_KEY               = "ai.recraft.api_key"
	CONVERSATION_MAX_MESSAGES        = "conversation.max_messages"
	CONVERSATION_TIMEOUT             = "conversation.timeout"
	CONVERSATION_SYSTEM_PROMPT       = "conversation.system_prompt"
	DATABASE_DSN                     = "database.dsn"
	LOGGING_LEVEL                    = "logging.level"
	LOGGING_WRITE_IN_FILE            = "logging.write_in_file"
	LOGGING_FILE_PATH                = "logging.file_path"

	SearchProviderPerplexity = "perplexity"
	SearchProviderDuckDuckGo = "duckduckgo"
)

var ErrTokenRequired = errors.New("discord token is required")

// Environment variable names understood for compatibility with older deployments.
var legacyEnv = map[string]string{
	"DISCORD_TOKEN":      DISCORD_TOKEN,
	"DEEPSEEK_API_URL":   AI_CHAT_BASE_URL,
	"DEEPSEEK_API_KEY":   AI_CHAT_API_KEY,
	"OPENAI_API_KEY":     AI_OPENAI_API_KEY,
	"GEMINI_API_KEY":     AI_GEMINI_API_KEY,
	"STABILITY_API_KEY":  AI_STABILITY_API_KEY,
	"RECRAFT_API_KEY":    AI_RECRAFT_API_KEY,
	"PERPLEXITY_API_URL": AI_SEARCH_BASE_URL,
	"PERPLEXITY_API_KEY": AI_SEARCH_API_KEY,
}

var defaultSQLitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(10000)",
	"synchronous(NORMAL)",
	"foreign_keys(ON)",
}

// Commands without a period are not throttled.
var commandDefaults = map[string]throttleOptions{
	"chat":   {},
	"clear":  {},
	"system": {},
	"help":   {},
	"img":    {Period: 30 * time.Second, Requests: 2},
	"gimg":   {Period: 30 * time.Second, Requests: 2},
	"simg":   {Period: 30 * time.Second, Requests: 2},
	"rimg":   {Period: 30 * time.Second, Requests: 2},
	"edit":   {Period: 30 * time.Second, Requests: 2},
	"video":  {Period: time.Minute, Requests: 1},
	"search": {Period: 10 * time.Second, Requests: 3},
}

type Config struct {
	k *koanf.Koanf
}

var configPath string

func init() {
	flag.StringVar(&configPath, "config", "", "Path to config file")
}

func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]any{
		GLOBAL_LANGUAGE:                  "en",
		GLOBAL_GENERATION_RETENTION_DAYS: 30,
		DISCORD_TOKEN:                    "",
		DISCORD_MESSAGE_LIMIT:            1500,
		DISCORD_ALLOWED_CHANNELS:         []string{},
		HTTP_PROXY:                       nil,
		HTTP_NO_PROXY:                    []string{},
		AI_CHAT_BASE_URL:                 "https://api.deepseek.com",
		AI_CHAT_MODEL:                    "deepseek-chat",
		AI_UTILITY_BASE_URL:              "",
		AI_UTILITY_API_KEY:               "",
		AI_UTILITY_MODEL:                 "",
		AI_SEARCH_PROVIDER:               SearchProviderPerplexity,
		AI_SEARCH_BASE_URL:               "https://api.perplexity.ai",
		AI_SEARCH_MODEL:                  "sonar",
		AI_OPENAI_BASE_URL:               "https://api.openai.com/v1",
		AI_OPENAI_MODEL:                  "dall-e-3",
		AI_GEMINI_MODEL:                  "imagen-3.0-generate-002",
		AI_STABILITY_BASE_URL:            "https://api.stability.ai",
		AI_STABILITY_POLL_INTERVAL:       5 * time.Second,
		AI_STABILITY_POLL_ATTEMPTS:       60,
		AI_RECRAFT_BASE_URL:              "https://external.api.recraft.ai/v1",
		CONVERSATION_MAX_MESSAGES:        20,
		CONVERSATION_TIMEOUT:             2 * time.Hour,
		CONVERSATION_SYSTEM_PROMPT:       "You are a helpful assistant.",
		DATABASE_DSN:                     "gachicord.db",
		LOGGING_LEVEL:                    "info",
		LOGGING_WRITE_IN_FILE:            false,
	}
	for name, throttle := range commandDefaults {
		defaults["commands."+name+".enabled"] = true
		if throttle.Period > 0 {
			defaults["commands."+name+".throttle.period"] = throttle.Period
			defaults["commands."+name+".throttle.requests"] = throttle.Requests
		}
	}
	k.Load(confmap.Provider(defaults, "."), nil)

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("error loading config %s: %v", path, err)
			}
			break
		}
	}

	k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		if value == "" {
			return "", nil
		}
		return legacyEnv[key], value
	}), nil)

	// GACHICORD_AI__CHAT__API_KEY -> ai.chat.api_key
	k.Load(env.Provider("GACHICORD_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "GACHICORD_")),
			"__", ".",
		)
	}), nil)

	if k.String(DISCORD_TOKEN) == "" {
		return nil, ErrTokenRequired
	}

	return &Config{k: k}, nil
}

func (c *Config) GetCommandConfig(name string) CommandConfig {
	requests := c.k.Int(fmt.Sprintf("commands.%s.throttle.requests", name))
	if requests == 0 {
		requests = 1
	}
	return CommandConfig{
		Name:    name,
		Enabled: c.k.Bool(fmt.Sprintf("commands.%s.enabled", name)),
		Throttle: throttleOptions{
			Period:   c.k.Duration(fmt.Sprintf("commands.%s.throttle.period", name)),
			Requests: requests,
		},
	}
}

func (c *Config) Discord() DiscordConfig {
	limit := c.k.Int(DISCORD_MESSAGE_LIMIT)
	if limit <= 0 || limit > DiscordMaxMessageLength {
		limit = DiscordMaxMessageLength
	}
	return DiscordConfig{
		Token:           c.k.String(DISCORD_TOKEN),
		MessageLimit:    limit,
		AllowedChannels: c.k.Strings(DISCORD_ALLOWED_CHANNELS),
	}
}

func (c *Config) Chat() ChatModelConfig {
	return ChatModelConfig{
		BaseURL: c.k.String(AI_CHAT_BASE_URL),
		APIKey:  c.k.String(AI_CHAT_API_KEY),
		Model:   c.k.String(AI_CHAT_MODEL),
	}
}

// Utility falls back to the chat model for every unset field.
func (c *Config) Utility() ChatModelConfig {
	chat := c.Chat()
	cfg := ChatModelConfig{
		BaseURL: c.k.String(AI_UTILITY_BASE_URL),
		APIKey:  c.k.String(AI_UTILITY_API_KEY),
		Model:   c.k.String(AI_UTILITY_MODEL),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = chat.BaseURL
		if cfg.APIKey == "" {
			cfg.APIKey = chat.APIKey
		}
	}
	if cfg.Model == "" {
		cfg.Model = chat.Model
	}
	return cfg
}

func (c *Config) Search() SearchConfig {
	return SearchConfig{
		Provider: strings.ToLower(c.k.String(AI_SEARCH_PROVIDER)),
		ChatModelConfig: ChatModelConfig{
			BaseURL: c.k.String(AI_SEARCH_BASE_URL),
			APIKey:  c.k.String(AI_SEARCH_API_KEY),
			Model:   c.k.String(AI_SEARCH_MODEL),
		},
	}
}

func (c *Config) OpenAI() ImageProviderConfig {
	return ImageProviderConfig{
		BaseURL: c.k.String(AI_OPENAI_BASE_URL),
		APIKey:  c.k.String(AI_OPENAI_API_KEY),
		Model:   c.k.String(AI_OPENAI_MODEL),
	}
}

func (c *Config) Gemini() ImageProviderConfig {
	return ImageProviderConfig{
		APIKey: c.k.String(AI_GEMINI_API_KEY),
		Model:  c.k.String(AI_GEMINI_MODEL),
	}
}

func (c *Config) Stability() StabilityConfig {
	return StabilityConfig{
		ImageProviderConfig: ImageProviderConfig{
			BaseURL: c.k.String(AI_STABILITY_BASE_URL),
			APIKey:  c.k.String(AI_STABILITY_API_KEY),
		},
		PollInterval: c.k.Duration(AI_STABILITY_POLL_INTERVAL),
		PollAttempts: c.k.Int(AI_STABILITY_POLL_ATTEMPTS),
	}
}

func (c *Config) Recraft() ImageProviderConfig {
	return ImageProviderConfig{
		BaseURL: c.k.String(AI_RECRAFT_BASE_URL),
		APIKey:  c.k.String(AI_RECRAFT_API_KEY),
	}
}

func (c *Config) Conversation() ConversationConfig {
	return ConversationConfig{
		MaxMessages:  c.k.Int(CONVERSATION_MAX_MESSAGES),
		Timeout:      c.k.Duration(CONVERSATION_TIMEOUT),
		SystemPrompt: c.k.String(CONVERSATION_SYSTEM_PROMPT),
	}
}

func (c *Config) Log() LoggingConfig {
	return LoggingConfig{
		LogLevel:    c.k.String(LOGGING_LEVEL),
		WriteInFile: c.k.Bool(LOGGING_WRITE_IN_FILE),
		FilePath:    c.k.String(LOGGING_FILE_PATH),
	}
}

// GetDatabaseDSN appends the default pragmas that the configured DSN does not set itself.
func (c *Config) GetDatabaseDSN() string {
	dsn := c.k.String(DATABASE_DSN)
	path, query, _ := strings.Cut(dsn, "?")

	var params []string
	if query != "" {
		params = strings.Split(query, "&")
	}

	for _, pragma := range defaultSQLitePragmas {
		name, _, _ := strings.Cut(pragma, "(")
		exists := slices.ContainsFunc(params, func(p string) bool {
			return strings.HasPrefix(p, "_pragma="+name+"(")
		})
		if !exists {
			params = append(params, "_pragma="+pragma)
		}
	}

	return path + "?" + strings.Join(params, "&")
}

func (c *Config) Global() globalConfig {
	return globalConfig{
		GenerationRetentionDays: c.k.Int(GLOBAL_GENERATION_RETENTION_DAYS),
		InterfaceLanguage:       c.k.String(GLOBAL_LANGUAGE),
	}
}

func (c *Config) HTTP() HTTPConfig {
	var proxy string
	if proxyValue := c.k.Get(HTTP_PROXY); proxyValue != nil {
		proxy, _ = proxyValue.(string)
	}

	return HTTPConfig{
		proxy:   &proxy,
		noProxy: c.k.Strings(HTTP_NO_PROXY),
	}
}

func getConfigPaths() []string {
	if configPath != "" {
		return []string{configPath}
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, _ := os.UserHomeDir()
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		"gachicord.toml",
		"config.toml",
		filepath.Join(xdgConfig, "gachicord", "config.toml"),
		"/etc/gachicord/config.toml",
	}
}
