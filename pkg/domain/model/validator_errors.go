package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrMissingRequired = goerr.New("required field is missing")
	ErrInvalidScore    = goerr.New("invalid probability or impact score")
	ErrInvalidCategory = goerr.New("invalid risk category")
	ErrInvalidStatus   = goerr.New("invalid risk status")
	ErrInvalidRole     = goerr.New("invalid team role")
	ErrInvalidEmail    = goerr.New("invalid email address")
	ErrDuplicateMember = goerr.New("duplicate team member")
	ErrInvalidAIConfig = goerr.New("invalid AI configuration")
	ErrFieldTooLong    = goerr.New("field value is too long")
)

// Context keys for error values
const (
	FieldNameKey  = "field"
	FieldValueKey = "value"
	EmailKey      = "email"
)

// Length limits applied to user supplied text
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 10000
	MaxTags              = 20
	MaxTeamMembers       = 100
)
