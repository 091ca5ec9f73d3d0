package http

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/secmon-lab/riskpilot/pkg/usecase"
	"github.com/secmon-lab/riskpilot/pkg/utils/safe"
)

func writeReport(w http.ResponseWriter, r *http.Request, report *usecase.Report) {
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": report.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(report.Data)))
	if report.ArchiveURL != "" {
		w.Header().Set("X-Archive-URL", report.ArchiveURL)
	}
	w.WriteHeader(http.StatusOK)
	safe.Write(r.Context(), w, report.Data)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	report, err := s.uc.Export.CSV(r.Context(), projectIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeReport(w, r, report)
}

func (s *Server) exportPDF(w http.ResponseWriter, r *http.Request) {
	report, err := s.uc.Export.PDF(r.Context(), projectIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeReport(w, r, report)
}

func (s *Server) getMatrix(w http.ResponseWriter, r *http.Request) {
	layout, err := s.uc.Export.Matrix(r.Context(), projectIDParam(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeData(r.Context(), w, http.StatusOK, toMatrixJSON(layout), nil)
}
