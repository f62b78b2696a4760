package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-generator/services"
	"github.com/Dosada05/tournament-generator/storage"
)

type ExportHandler struct {
	exportService services.ExportService
}

func NewExportHandler(es services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: es}
}

// WorkbookHandler handles GET /tournaments/{tournamentID}/schedule.xlsx.
func (h *ExportHandler) WorkbookHandler(w http.ResponseWriter, r *http.Request) {
	data, err := h.exportService.Workbook(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeFile(w, storage.ContentTypeXLSX, "schedule.xlsx", data)
}

// RoundChartHandler handles GET /tournaments/{tournamentID}/charts/rounds.png.
func (h *ExportHandler) RoundChartHandler(w http.ResponseWriter, r *http.Request) {
	data, err := h.exportService.RoundChart(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeFile(w, storage.ContentTypePNG, "rounds.png", data)
}

// DurationChartHandler handles GET /tournaments/{tournamentID}/charts/durations.png?runs=N.
func (h *ExportHandler) DurationChartHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := getIntQuery(r, "runs", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	data, err := h.exportService.DurationChart(r.Context(), chi.URLParam(r, "tournamentID"), runs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeFile(w, storage.ContentTypePNG, "durations.png", data)
}

// PublishHandler handles POST /tournaments/{tournamentID}/publish.
func (h *ExportHandler) PublishHandler(w http.ResponseWriter, r *http.Request) {
	files, err := h.exportService.Publish(r.Context(), chi.URLParam(r, "tournamentID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"files": files}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
