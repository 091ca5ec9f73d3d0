package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
)

func TestErrors_ErrorsAreDistinct(t *testing.T) {
	all := []error{
		usecase.ErrUnauthenticated,
		usecase.ErrInvalidToken,
		usecase.ErrProjectNotFound,
		usecase.ErrRiskNotFound,
		usecase.ErrAccessDenied,
		usecase.ErrInvalidInput,
		usecase.ErrAINotConfigured,
	}

	for i, a := range all {
		gt.Value(t, a).NotNil()
		for j, b := range all {
			if i != j {
				gt.Bool(t, errors.Is(a, b)).False()
			}
		}
	}
}
