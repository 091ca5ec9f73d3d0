package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Authentication errors
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid authentication token")

	// Not found errors
	ErrProjectNotFound = errors.New("project not found")
	ErrRiskNotFound    = errors.New("risk not found")

	// Access control errors
	ErrAccessDenied = errors.New("access denied")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")

	// AI errors
	ErrAINotConfigured = errors.New("AI provider is not configured")
)

// Context keys for error values
const (
	ProjectIDKey = "project_id"
	RiskIDKey    = "risk_id"
	UserIDKey    = "user_id"
)
