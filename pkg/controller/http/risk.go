package http

import (
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/domain/types"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
)

func parseRiskFilter(r *http.Request) (usecase.RiskFilter, error) {
	q := r.URL.Query()
	var filter usecase.RiskFilter

	if v := strings.ToLower(q.Get("status")); v != "" {
		status, err := types.ParseRiskStatus(v)
		if err != nil {
			return filter, goerr.Wrap(errBadRequest, "invalid status filter", goerr.V("status", v))
		}
		filter.Status = status
	}
	if v := strings.ToLower(q.Get("category")); v != "" {
		category, err := types.ParseCategory(v)
		if err != nil {
			return filter, goerr.Wrap(errBadRequest, "invalid category filter", goerr.V("category", v))
		}
		filter.Category = category
	}
	if v := strings.ToLower(q.Get("priority")); v != "" {
		priority, err := types.ParsePriority(v)
		if err != nil {
			return filter, goerr.Wrap(errBadRequest, "invalid priority filter", goerr.V("priority", v))
		}
		filter.Priority = priority
	}
	return filter, nil
}

func (s *Server) listRisks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRiskFilter(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	views, err := s.uc.Risk.List(r.Context(), projectIDParam(r), filter)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	resp := make([]riskJSON, len(views))
	for i, v := range views {
		resp[i] = toRiskViewJSON(v)
	}
	writeData(r.Context(), w, http.StatusOK, resp, map[string]any{"count": len(resp)})
}

func (s *Server) createRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	view, err := s.uc.Risk.Create(r.Context(), projectIDParam(r), req.input())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusCreated, toRiskViewJSON(view), nil)
}

func (s *Server) getRisk(w http.ResponseWriter, r *http.Request) {
	view, err := s.uc.Risk.Get(r.Context(), projectIDParam(r), riskIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toRiskViewJSON(view), nil)
}

func (s *Server) updateRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	view, err := s.uc.Risk.Update(r.Context(), projectIDParam(r), riskIDParam(r), req.input())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toRiskViewJSON(view), nil)
}

func (s *Server) updateRiskStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	status := types.RiskStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	view, err := s.uc.Risk.UpdateStatus(r.Context(), projectIDParam(r), riskIDParam(r), status)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toRiskViewJSON(view), nil)
}

func (s *Server) deleteRisk(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Risk.Delete(r.Context(), projectIDParam(r), riskIDParam(r)); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, map[string]bool{"deleted": true}, nil)
}

func (s *Server) regenerateMitigation(w http.ResponseWriter, r *http.Request) {
	view, err := s.uc.Risk.RegenerateMitigation(r.Context(), projectIDParam(r), riskIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toRiskViewJSON(view), nil)
}

func (s *Server) regenerateSolutions(w http.ResponseWriter, r *http.Request) {
	view, err := s.uc.Risk.RegenerateSolutions(r.Context(), projectIDParam(r), riskIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toRiskViewJSON(view), nil)
}

func (s *Server) generateRisks(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	result, err := s.uc.Generate.Generate(r.Context(), projectIDParam(r), usecase.GenerateInput{
		Count:    req.Count,
		Guidance: req.Guidance,
		Save:     req.Save,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	resp := make([]riskJSON, len(result.Risks))
	for i, risk := range result.Risks {
		resp[i] = toRiskJSON(risk, result.Permissions)
	}
	status := http.StatusOK
	if result.Saved {
		status = http.StatusCreated
	}
	writeData(r.Context(), w, status, resp, map[string]any{
		"count": len(resp),
		"saved": result.Saved,
	})
}
