package config

import (
	"os"
	"slices"
	"strings"
	"time"
)

// DiscordMaxMessageLength is the hard limit Discord puts on message content.
const DiscordMaxMessageLength = 2000

type globalConfig struct {
	GenerationRetentionDays int    `koanf:"generation_retention_days"`
	InterfaceLanguage       string `koanf:"interface_language"`
}

type HTTPConfig struct {
	proxy   *string  `koanf:"proxy"`
	noProxy []string `koanf:"no_proxy"`
}

func (c HTTPConfig) GetProxy() string {
	if c.proxy != nil && *c.proxy != "" {
		return *c.proxy
	}
	if proxyURL := os.Getenv("HTTPS_PROXY"); proxyURL != "" {
		return proxyURL
	}
	if proxyURL := os.Getenv("https_proxy"); proxyURL != "" {
		return proxyURL
	}
	if proxyURL := os.Getenv("HTTP_PROXY"); proxyURL != "" {
		return proxyURL
	}
	if proxyURL := os.Getenv("http_proxy"); proxyURL != "" {
		return proxyURL
	}
	return ""
}

func (c HTTPConfig) GetNoProxy() []string {
	if len(c.noProxy) > 0 {
		return c.noProxy
	}
	noProxy := os.Getenv("NO_PROXY")
	if noProxy == "" {
		noProxy = os.Getenv("no_proxy")
	}
	if noProxy == "" {
		return nil
	}
	var hosts []string
	for host := range strings.SplitSeq(noProxy, ",") {
		if host = strings.TrimSpace(host); host != "" {
			hosts = append(hosts, host)
		}
	}
	return hosts
}

func NewHTTPConfig(proxy string, noProxy []string) HTTPConfig {
	return HTTPConfig{proxy: &proxy, noProxy: noProxy}
}

type LoggingConfig struct {
	LogLevel    string `koanf:"level"`
	WriteInFile bool   `koanf:"write_in_file"`
	FilePath    string `koanf:"file_path"`
}

func (c LoggingConfig) Level() string {
	return strings.ToLower(c.LogLevel)
}

func (c LoggingConfig) IsDebug() bool {
	return c.Level() == "debug" || c.Level() == "trace"
}

type DiscordConfig struct {
	Token           string   `koanf:"token"`
	MessageLimit    int      `koanf:"message_limit"`
	AllowedChannels []string `koanf:"allowed_channels"`
}

// IsChannelAllowed reports whether the bot may answer in channelID.
// An empty allow list permits every channel.
func (c DiscordConfig) IsChannelAllowed(channelID string) bool {
	if len(c.AllowedChannels) == 0 {
		return true
	}
	return slices.Contains(c.AllowedChannels, channelID)
}

type ChatModelConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
}

func (c ChatModelConfig) Configured() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

type SearchConfig struct {
	ChatModelConfig
	Provider string `koanf:"provider"`
}

type ImageProviderConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
}

type StabilityConfig struct {
	ImageProviderConfig
	PollInterval time.Duration `koanf:"poll_interval"`
	PollAttempts int           `koanf:"poll_attempts"`
}

type ConversationConfig struct {
	MaxMessages  int           `koanf:"max_messages"`
	Timeout      time.Duration `koanf:"timeout"`
	SystemPrompt string        `koanf:"system_prompt"`
}

type throttleOptions struct {
	Period   time.Duration `koanf:"period"`
	Requests int           `koanf:"requests"`
}

type CommandConfig struct {
	Name     string
	Enabled  bool            `koanf:"enabled"`
	Throttle throttleOptions `koanf:"throttle"`
}

func (c CommandConfig) Throttled() bool {
	return c.Throttle.Period > 0
}
