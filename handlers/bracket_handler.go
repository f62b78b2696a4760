package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tournament-generator/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

type setResultsInput struct {
	Scores map[string]int `json:"scores"`
}

// GenerateGamesHandler handles POST /tournaments/{tournamentID}/rounds/{round}/games.
// ?order=true also orders the games to spread out rest time.
func (h *BracketHandler) GenerateGamesHandler(w http.ResponseWriter, r *http.Request) {
	round, err := getIntFromURL(r, "round")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	order, err := getBoolQuery(r, "order")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	games, err := h.bracketService.GenerateGames(r.Context(), chi.URLParam(r, "tournamentID"), round, order)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"games": games}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetResultsHandler handles PUT /tournaments/{tournamentID}/games/{gameID}/results.
func (h *BracketHandler) SetResultsHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIntFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input setResultsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Scores) == 0 {
		badRequestResponse(w, r, errors.New("scores are required"))
		return
	}

	game, err := h.bracketService.SetResults(r.Context(), chi.URLParam(r, "tournamentID"), gameID, input.Scores)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetResultsHandler handles DELETE /tournaments/{tournamentID}/games/{gameID}/results.
func (h *BracketHandler) ResetResultsHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIntFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	game, err := h.bracketService.ResetResults(r.Context(), chi.URLParam(r, "tournamentID"), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"game": game}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ProgressHandler handles POST /tournaments/{tournamentID}/rounds/{round}/progress.
// ?blank=true moves placeholder teams instead of the real ones.
func (h *BracketHandler) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	round, err := getIntFromURL(r, "round")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	blank, err := getBoolQuery(r, "blank")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	moves, err := h.bracketService.Progress(r.Context(), chi.URLParam(r, "tournamentID"), round, blank)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"moves": moves}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetProgressionHandler handles DELETE /tournaments/{tournamentID}/rounds/{round}/progress.
func (h *BracketHandler) ResetProgressionHandler(w http.ResponseWriter, r *http.Request) {
	round, err := getIntFromURL(r, "round")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.bracketService.ResetProgression(r.Context(), chi.URLParam(r, "tournamentID"), round); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StandingsHandler handles GET /tournaments/{tournamentID}/standings?order=points|score.
func (h *BracketHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	standings, err := h.bracketService.Standings(r.Context(), chi.URLParam(r, "tournamentID"), r.URL.Query().Get("order"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
