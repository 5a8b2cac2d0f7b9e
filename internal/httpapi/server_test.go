package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ojpark/agentchess/internal/arena"
	"github.com/ojpark/agentchess/pkg/gamedto"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := arena.NewDirectory()
	coord := arena.NewCoordinator(dir, arena.Options{
		ThinkDelay:  5 * time.Millisecond,
		WaitCeiling: 500 * time.Millisecond,
	}, zap.NewNop())
	t.Cleanup(coord.Drain)

	srv := httptest.NewServer(NewServer(coord, dir, zap.NewNop(), Options{DefaultLevel: 5}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func createAgentGame(t *testing.T, srv *httptest.Server) gamedto.Snapshot {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/games", gamedto.CreateGameRequest{Opponent: "agent", Color: "white"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	created := decodeBody[gamedto.CreateGameResponse](t, resp)
	return created.Game
}

func TestCreateGameDefaults(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/games", gamedto.CreateGameRequest{})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	created := decodeBody[gamedto.CreateGameResponse](t, resp)
	if created.Game.White != "agent" || created.Game.Black != "computer" {
		t.Fatalf("unexpected slots: white=%s black=%s", created.Game.White, created.Game.Black)
	}
	if created.Game.Level != 5 {
		t.Fatalf("level should default to 5, got %d", created.Game.Level)
	}
	if len(created.Game.ID) != 8 {
		t.Fatalf("expected 8-char id, got %q", created.Game.ID)
	}
}

func TestCreateGameBlackGetsComputerOpening(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/games", gamedto.CreateGameRequest{Opponent: "computer", Color: "black", Level: 2})
	created := decodeBody[gamedto.CreateGameResponse](t, resp)
	if !strings.Contains(created.Note, "first move") {
		t.Fatalf("expected opening note, got %q", created.Note)
	}

	turnResp, err := http.Get(srv.URL + "/api/games/" + created.Game.ID + "/turn?side=black")
	if err != nil {
		t.Fatalf("GET turn: %v", err)
	}
	turn := decodeBody[gamedto.TurnResponse](t, turnResp)
	if turn.TimedOut {
		t.Fatalf("computer never opened")
	}
	if len(turn.Game.MovesUCI) != 1 || turn.Game.Turn != "black" {
		t.Fatalf("unexpected state after opening: %+v", turn.Game)
	}
}

func TestSubmitMoveRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	game := createAgentGame(t, srv)

	resp := postJSON(t, srv.URL+"/api/games/"+game.ID+"/moves", gamedto.SubmitMoveRequest{Move: "e2e4"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("move status %d", resp.StatusCode)
	}
	moved := decodeBody[gamedto.MoveResponse](t, resp)
	if moved.Game.Turn != "black" || len(moved.Game.MovesUCI) != 1 {
		t.Fatalf("unexpected game after move: %+v", moved.Game)
	}
	if !strings.Contains(moved.Board, "♙") {
		t.Fatalf("board rendering missing: %q", moved.Board)
	}
}

func TestSubmitMoveMalformedIsBadRequest(t *testing.T) {
	srv := newTestServer(t)
	game := createAgentGame(t, srv)

	resp := postJSON(t, srv.URL+"/api/games/"+game.ID+"/moves", gamedto.SubmitMoveRequest{Move: "zz99"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	apiErr := decodeBody[gamedto.ErrorResponse](t, resp)
	if apiErr.Kind != gamedto.ErrKindMalformedMove || !apiErr.Retryable {
		t.Fatalf("unexpected error payload: %+v", apiErr)
	}
}

func TestSubmitMoveIllegalCarriesSample(t *testing.T) {
	srv := newTestServer(t)
	game := createAgentGame(t, srv)

	resp := postJSON(t, srv.URL+"/api/games/"+game.ID+"/moves", gamedto.SubmitMoveRequest{Move: "e2e5"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	apiErr := decodeBody[gamedto.ErrorResponse](t, resp)
	if apiErr.Kind != gamedto.ErrKindIllegalMove {
		t.Fatalf("unexpected kind: %s", apiErr.Kind)
	}
	if len(apiErr.SampleMoves) == 0 || len(apiErr.SampleMoves) > 3 {
		t.Fatalf("expected 1-3 sample moves, got %v", apiErr.SampleMoves)
	}
}

func TestFalseWinClaimIsConflict(t *testing.T) {
	srv := newTestServer(t)
	game := createAgentGame(t, srv)

	resp := postJSON(t, srv.URL+"/api/games/"+game.ID+"/moves", gamedto.SubmitMoveRequest{Move: "e2e4", ClaimWin: true})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	apiErr := decodeBody[gamedto.ErrorResponse](t, resp)
	if apiErr.Kind != gamedto.ErrKindFalseWinClaim {
		t.Fatalf("unexpected kind: %s", apiErr.Kind)
	}

	getResp, err := http.Get(srv.URL + "/api/games/" + game.ID)
	if err != nil {
		t.Fatalf("GET game: %v", err)
	}
	got := decodeBody[gamedto.MoveResponse](t, getResp)
	if len(got.Game.MovesUCI) != 0 {
		t.Fatalf("rejected claim mutated the game: %v", got.Game.MovesUCI)
	}
}

func TestUnknownGameIsNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/games/nope1234")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	apiErr := decodeBody[gamedto.ErrorResponse](t, resp)
	if apiErr.Kind != gamedto.ErrKindSessionNotFound {
		t.Fatalf("unexpected kind: %s", apiErr.Kind)
	}
}

func TestListGames(t *testing.T) {
	srv := newTestServer(t)
	first := createAgentGame(t, srv)
	second := createAgentGame(t, srv)

	resp, err := http.Get(srv.URL + "/api/games")
	if err != nil {
		t.Fatalf("GET list: %v", err)
	}
	list := decodeBody[gamedto.ListGamesResponse](t, resp)
	if len(list.Games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(list.Games))
	}
	if list.Games[0].ID != first.ID || list.Games[1].ID != second.ID {
		t.Fatalf("listing order wrong: %+v", list.Games)
	}
}

func TestDashboardAndGamePages(t *testing.T) {
	srv := newTestServer(t)
	game := createAgentGame(t, srv)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("dashboard content type %q", ct)
	}

	pageResp, err := http.Get(srv.URL + "/game/" + game.ID)
	if err != nil {
		t.Fatalf("GET game page: %v", err)
	}
	defer pageResp.Body.Close()
	if pageResp.StatusCode != http.StatusOK {
		t.Fatalf("game page status %d", pageResp.StatusCode)
	}
}

func TestTurnResponseCarriesUIWhenRequested(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/games", gamedto.CreateGameRequest{Opponent: "agent", ShowUI: true})
	created := decodeBody[gamedto.CreateGameResponse](t, resp)

	turnResp, err := http.Get(srv.URL + "/api/games/" + created.Game.ID + "/turn?side=white")
	if err != nil {
		t.Fatalf("GET turn: %v", err)
	}
	turn := decodeBody[gamedto.TurnResponse](t, turnResp)
	if !strings.Contains(turn.BoardHTML, created.Game.ID) {
		t.Fatalf("expected interactive board in turn response")
	}
	if turn.Board == "" {
		t.Fatalf("markdown board missing")
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	createAgentGame(t, srv)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	health := decodeBody[gamedto.HealthResponse](t, resp)
	if health.Status != "ok" || health.Games != 1 {
		t.Fatalf("unexpected health: %+v", health)
	}
}
