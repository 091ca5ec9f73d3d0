package types

import "fmt"

// AIProvider identifies an LLM backend a user can configure
type AIProvider string

const (
	AIProviderOpenAI     AIProvider = "openai"
	AIProviderDeepSeek   AIProvider = "deepseek"
	AIProviderGroq       AIProvider = "groq"
	AIProviderOpenRouter AIProvider = "openrouter"
	AIProviderGemini     AIProvider = "gemini"
	AIProviderClaude     AIProvider = "claude"
)

// AllAIProviders returns all providers a user can select
func AllAIProviders() []AIProvider {
	return []AIProvider{
		AIProviderOpenAI,
		AIProviderDeepSeek,
		AIProviderGroq,
		AIProviderOpenRouter,
		AIProviderGemini,
		AIProviderClaude,
	}
}

// IsValid checks if the provider is valid
func (p AIProvider) IsValid() bool {
	for _, v := range AllAIProviders() {
		if p == v {
			return true
		}
	}
	return false
}

// String returns the string representation of the provider
func (p AIProvider) String() string {
	return string(p)
}

// ParseAIProvider parses a string into an AIProvider
func ParseAIProvider(s string) (AIProvider, error) {
	p := AIProvider(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid AI provider: %s", s)
	}
	return p, nil
}
