package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
)

func projectIDParam(r *http.Request) types.ProjectID {
	return types.ProjectID(chi.URLParam(r, "projectID"))
}

func riskIDParam(r *http.Request) types.RiskID {
	return types.RiskID(chi.URLParam(r, "riskID"))
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	views, err := s.uc.Project.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	resp := make([]projectJSON, len(views))
	for i, v := range views {
		resp[i] = toProjectJSON(v, false)
	}
	writeData(r.Context(), w, http.StatusOK, resp, map[string]any{"count": len(resp)})
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	view, err := s.uc.Project.Create(r.Context(), usecase.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Team:        toTeam(req.Team),
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusCreated, toProjectJSON(view, true), nil)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	view, err := s.uc.Project.Get(r.Context(), projectIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toProjectJSON(view, true), nil)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	view, err := s.uc.Project.Update(r.Context(), projectIDParam(r), usecase.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toProjectJSON(view, true), nil)
}

func (s *Server) updateTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	view, err := s.uc.Project.UpdateTeam(r.Context(), projectIDParam(r), toTeam(req.Team))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toProjectJSON(view, false), nil)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Project.Delete(r.Context(), projectIDParam(r)); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, map[string]bool{"deleted": true}, nil)
}
