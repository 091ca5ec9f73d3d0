package http

import (
	"net/http"
	"strings"

	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
)

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.uc.User.Profile(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toProfileJSON(profile), nil)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	profile, err := s.uc.User.UpdateProfile(r.Context(), usecase.ProfileInput{
		DisplayName:  req.DisplayName,
		Organization: req.Organization,
		JobTitle:     req.JobTitle,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toProfileJSON(profile), nil)
}

func (s *Server) setAIConfig(w http.ResponseWriter, r *http.Request) {
	var req aiConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	profile, err := s.uc.User.SetAIConfig(r.Context(), usecase.AIConfigInput{
		Provider: types.AIProvider(strings.ToLower(strings.TrimSpace(req.Provider))),
		Model:    req.Model,
		APIKey:   req.APIKey,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toProfileJSON(profile), nil)
}

func (s *Server) clearAIConfig(w http.ResponseWriter, r *http.Request) {
	profile, err := s.uc.User.ClearAIConfig(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toProfileJSON(profile), nil)
}

func (s *Server) listProviders(w http.ResponseWriter, r *http.Request) {
	list, err := s.uc.User.Providers(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toProvidersJSON(list), nil)
}
