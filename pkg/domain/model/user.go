package model

import (
	"time"

	"github.com/secmon-lab/riskpilot/pkg/domain/types"
)

// UserProfile is the profile of an authenticated identity
type UserProfile struct {
	ID           types.UserID
	Email        string
	DisplayName  string
	Organization string
	JobTitle     string
	AI           *AIConfig
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AIConfig selects the LLM backend used for a user's generation requests.
// SealedAPIKey holds the encrypted key; the clear key never reaches storage.
type AIConfig struct {
	Provider     types.AIProvider
	Model        string
	SealedAPIKey string `masq:"secret"`
	KeyHint      string
}

// MaskKey returns a display hint such as "••••abcd" for an API key
func MaskKey(key string) string {
	const visible = 4
	if len(key) <= visible {
		return "••••"
	}
	return "••••" + key[len(key)-visible:]
}

// CopyUserProfile creates a deep copy of a profile
func CopyUserProfile(u *UserProfile) *UserProfile {
	if u == nil {
		return nil
	}
	copied := *u
	if u.AI != nil {
		ai := *u.AI
		copied.AI = &ai
	}
	return &copied
}
