package ai

const (
	ProviderChat      = "chat"
	ProviderUtility   = "utility"
	ProviderSearch    = "perplexity"
	ProviderDalle     = "dalle"
	ProviderGemini    = "gemini"
	ProviderStability = "stability"
	ProviderRecraft   = "recraft"

	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

var SupportedRoles = []string{
	RoleSystem,
	RoleUser,
	RoleAssistant,
}
