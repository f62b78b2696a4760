package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-generator/export"
	"github.com/Dosada05/tournament-generator/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: ts}
}

func isYAMLRequest(contentType string) bool {
	return strings.Contains(contentType, "yaml")
}

// CreateHandler handles POST /tournaments. A YAML body is read as a tournament document,
// a JSON body as services.CreateTournamentInput.
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if isYAMLRequest(r.Header.Get("Content-Type")) {
		doc, err := export.ReadYAML(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		input.Document = doc
	} else if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	record, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": record}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler handles GET /tournaments/{tournamentID}. ?format=yaml returns the document as YAML.
func (h *TournamentHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tournamentID")

	doc, err := h.tournamentService.GetDocument(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "yaml" {
		var buf bytes.Buffer
		if err := export.WriteYAML(&buf, doc); err != nil {
			serverErrorResponse(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": doc}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /tournaments.
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := getIntQuery(r, "limit", 50)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	offset, err := getIntQuery(r, "offset", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	records, err := h.tournamentService.List(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": records}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /tournaments/{tournamentID}.
func (h *TournamentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.tournamentService.Delete(r.Context(), chi.URLParam(r, "tournamentID")); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
