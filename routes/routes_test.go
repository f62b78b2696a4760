package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Dosada05/tournament-generator/brackets"
	"github.com/Dosada05/tournament-generator/db"
	"github.com/Dosada05/tournament-generator/eventbus"
	"github.com/Dosada05/tournament-generator/handlers"
	"github.com/Dosada05/tournament-generator/metrics"
	"github.com/Dosada05/tournament-generator/middleware"
	"github.com/Dosada05/tournament-generator/repositories"
	"github.com/Dosada05/tournament-generator/services"
	"github.com/Dosada05/tournament-generator/storage"
)

var jwtSecret = []byte("routes-test")

type testServer struct {
	*httptest.Server
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")

	conn, err := db.Connect("sqlite", ":memory:", time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, repositories.Migrate(context.Background(), conn, repositories.DialectSQLite))

	tournamentRepo := repositories.NewTournamentRepository(conn, repositories.DialectSQLite)
	simulationRepo := repositories.NewSimulationRepository(conn, repositories.DialectSQLite)

	exportDir := t.TempDir()
	uploader, err := storage.NewDirUploader(exportDir, "http://example.test/exports")
	require.NoError(t, err)

	m := metrics.New()
	hub := brackets.NewHub(logger)

	tournamentService := services.NewTournamentService(conn, tournamentRepo, simulationRepo, logger, tracer)
	bracketService := services.NewBracketService(conn, tournamentRepo, brackets.NewRandomizer(1), eventbus.Discard{}, m, logger, tracer)
	simulationService := services.NewSimulationService(conn, tournamentRepo, simulationRepo, 3, 1, logger, m, tracer)
	exportService := services.NewExportService(tournamentRepo, simulationService, uploader, logger, tracer)

	router := chi.NewRouter()
	SetupRoutes(router, Handlers{
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Bracket:    handlers.NewBracketHandler(bracketService),
		Simulation: handlers.NewSimulationHandler(simulationService),
		Export:     handlers.NewExportHandler(exportService),
		WebSocket:  handlers.NewWebSocketHandler(hub, nil, logger),
	}, Options{
		JWTSecret: jwtSecret,
		Metrics:   m.Handler(),
		ExportDir: exportDir,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	token, err := middleware.IssueToken(jwtSecret, "organizer-1", middleware.RoleOrganizer, time.Hour)
	require.NoError(t, err)
	return &testServer{Server: srv, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any, auth bool) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestTournamentFlow(t *testing.T) {
	srv := newTestServer(t)

	input := map[string]any{
		"name":   "Cup",
		"preset": "single_elimination",
		"teams":  []string{"Ants", "Bees", "Cats", "Dogs"},
		"seed":   2,
	}
	resp, _ := srv.do(t, http.MethodPost, "/tournaments", input, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := srv.do(t, http.MethodPost, "/tournaments", input, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created struct {
		Tournament struct {
			ID string `json:"id"`
		} `json:"tournament"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	id := created.Tournament.ID
	require.NotEmpty(t, id)
	base := "/tournaments/" + id

	resp, body = srv.do(t, http.MethodPost, base+"/rounds/0/games?order=true", nil, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var generated struct {
		Games []struct {
			ID      int      `json:"id"`
			TeamIDs []string `json:"team_ids"`
		} `json:"games"`
	}
	require.NoError(t, json.Unmarshal(body, &generated))
	require.Len(t, generated.Games, 2)

	for _, g := range generated.Games {
		scores := map[string]any{"scores": map[string]int{g.TeamIDs[0]: 2, g.TeamIDs[1]: 0}}
		resp, body = srv.do(t, http.MethodPut, base+"/games/"+strconv.Itoa(g.ID)+"/results", scores, true)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	}

	resp, body = srv.do(t, http.MethodPost, base+"/rounds/0/progress", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, string(body), generated.Games[0].TeamIDs[0])

	resp, body = srv.do(t, http.MethodGet, base+"/standings?order=score", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, _ = srv.do(t, http.MethodGet, base+"/schedule.xlsx", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = srv.do(t, http.MethodGet, base+"/charts/rounds.png", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	resp, body = srv.do(t, http.MethodPost, base+"/simulations?runs=2", nil, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	resp, body = srv.do(t, http.MethodGet, base+"/simulations", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"runs": 2`)

	resp, body = srv.do(t, http.MethodPost, base+"/publish", nil, true)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	resp, _ = srv.do(t, http.MethodGet, "/exports/tournaments/"+id+"/schedule.xlsx", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = srv.do(t, http.MethodGet, "/metrics", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "tournament_generator_games_generated_total 2")

	resp, _ = srv.do(t, http.MethodDelete, base, nil, true)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = srv.do(t, http.MethodGet, base, nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestErrorStatuses(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := srv.do(t, http.MethodGet, "/tournaments/missing", nil, false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodPost, "/tournaments", map[string]any{"name": "Cup", "preset": "swiss", "teams": []string{"a", "b"}}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodPost, "/tournaments", map[string]any{"name": "Cup", "preset": "double_elimination", "teams": []string{"a", "b"}}, true)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodPost, "/tournaments", map[string]any{"title": "Cup"}, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodPost, "/tournaments/missing/rounds/x/games", nil, true)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEstimateDocument(t *testing.T) {
	srv := newTestServer(t)
	yaml := `
name: League
timing: {play: 20m, game_wait: 5m}
teams: [{id: a, name: Ants}, {id: b, name: Bees}, {id: c, name: Cats}, {id: d, name: Dogs}]
rounds:
  - name: Round 1
    groups:
      - {id: g, name: League, teams: [a, b, c, d]}
`
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/simulations?runs=3", bytes.NewBufferString(yaml))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/yaml")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Estimate services.EstimateReport `json:"estimate"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 3, out.Estimate.Runs)
	assert.Equal(t, 6, out.Estimate.MaxGames)
	// 6 games of 20m with 5 breaks of 5m in between.
	assert.Equal(t, 145*time.Minute, out.Estimate.MaxDuration)
}
