package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// ProjectID is the UUID of a project
type ProjectID string

// NewProjectID generates a new random ProjectID
func NewProjectID() ProjectID {
	return ProjectID(uuid.NewString())
}

// Validate checks that the ID is a UUID
func (id ProjectID) Validate() error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return goerr.Wrap(err, "invalid project ID", goerr.V("id", string(id)))
	}
	return nil
}

func (id ProjectID) String() string {
	return string(id)
}

// RiskID is the UUID of a risk, unique within its project
type RiskID string

// NewRiskID generates a new random RiskID
func NewRiskID() RiskID {
	return RiskID(uuid.NewString())
}

// Validate checks that the ID is a UUID
func (id RiskID) Validate() error {
	if _, err := uuid.Parse(string(id)); err != nil {
		return goerr.Wrap(err, "invalid risk ID", goerr.V("id", string(id)))
	}
	return nil
}

func (id RiskID) String() string {
	return string(id)
}

// UserID is the subject of the authenticated identity
type UserID string

func (id UserID) String() string {
	return string(id)
}
