package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-generator/export"
	"github.com/Dosada05/tournament-generator/services"
)

type SimulationHandler struct {
	simulationService services.SimulationService
}

func NewSimulationHandler(ss services.SimulationService) *SimulationHandler {
	return &SimulationHandler{simulationService: ss}
}

// EstimateHandler handles POST /simulations?runs=N with a tournament document as body
// (JSON, or YAML with a yaml content type). Nothing is stored.
func (h *SimulationHandler) EstimateHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := getIntQuery(r, "runs", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var doc *export.Document
	if isYAMLRequest(r.Header.Get("Content-Type")) {
		doc, err = export.ReadYAML(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
	} else {
		doc = &export.Document{}
		if err := readJSON(w, r, doc); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	report, err := h.simulationService.Estimate(r.Context(), doc, runs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"estimate": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SimulateTournamentHandler handles POST /tournaments/{tournamentID}/simulations?runs=N.
func (h *SimulationHandler) SimulateTournamentHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := getIntQuery(r, "runs", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	record, err := h.simulationService.EstimateTournament(r.Context(), chi.URLParam(r, "tournamentID"), runs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"simulation": record}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HistoryHandler handles GET /tournaments/{tournamentID}/simulations.
func (h *SimulationHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := getIntQuery(r, "limit", 20)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	records, err := h.simulationService.History(r.Context(), chi.URLParam(r, "tournamentID"), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"simulations": records}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
