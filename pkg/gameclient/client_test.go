package gameclient

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ojpark/agentchess/internal/arena"
	"github.com/ojpark/agentchess/internal/httpapi"
	"github.com/ojpark/agentchess/pkg/gamedto"
)

func newTestBackend(t *testing.T) *httptest.Server {
	t.Helper()
	dir := arena.NewDirectory()
	coord := arena.NewCoordinator(dir, arena.Options{
		ThinkDelay:  5 * time.Millisecond,
		WaitCeiling: 500 * time.Millisecond,
	}, zap.NewNop())
	t.Cleanup(coord.Drain)

	srv := httptest.NewServer(httpapi.NewServer(coord, dir, zap.NewNop(), httpapi.Options{DefaultLevel: 5}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestClientGameRoundTrip(t *testing.T) {
	backend := newTestBackend(t)
	client := NewClient(backend.URL, WithWaitTimeout(2*time.Second))
	ctx := context.Background()

	health, err := client.Health(ctx)
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Status != "ok" || health.Games != 0 {
		t.Fatalf("unexpected health: %+v", health)
	}

	created, err := client.CreateGame(ctx, gamedto.CreateGameRequest{Opponent: "computer", Color: "white", Level: 2})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	id := created.Game.ID

	moved, err := client.SubmitMove(ctx, id, gamedto.SubmitMoveRequest{Move: "e2e4"})
	if err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if moved.Game.Turn != "black" {
		t.Fatalf("expected black to move, got %s", moved.Game.Turn)
	}

	turn, err := client.WaitTurn(ctx, id, "white")
	if err != nil {
		t.Fatalf("WaitTurn: %v", err)
	}
	if turn.TimedOut {
		t.Fatalf("computer never replied")
	}
	if len(turn.Game.MovesUCI) != 2 {
		t.Fatalf("expected two plies, got %v", turn.Game.MovesUCI)
	}

	list, err := client.ListGames(ctx)
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(list.Games) != 1 || list.Games[0].ID != id {
		t.Fatalf("unexpected listing: %+v", list.Games)
	}
}

func TestClientSurfacesErrorKinds(t *testing.T) {
	backend := newTestBackend(t)
	client := NewClient(backend.URL)
	ctx := context.Background()

	created, err := client.CreateGame(ctx, gamedto.CreateGameRequest{Opponent: "agent"})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	_, err = client.SubmitMove(ctx, created.Game.ID, gamedto.SubmitMoveRequest{Move: "e2e5"})
	var wire gamedto.ErrorResponse
	if !errors.As(err, &wire) {
		t.Fatalf("expected wire error, got %v", err)
	}
	if wire.Kind != gamedto.ErrKindIllegalMove || len(wire.SampleMoves) == 0 {
		t.Fatalf("unexpected wire error: %+v", wire)
	}

	_, err = client.GetGame(ctx, "missing1")
	if !errors.As(err, &wire) || wire.Kind != gamedto.ErrKindSessionNotFound {
		t.Fatalf("expected session_not_found, got %v", err)
	}
}

func TestWatcherStreamsSnapshots(t *testing.T) {
	backend := newTestBackend(t)
	client := NewClient(backend.URL)
	ctx := context.Background()

	created, err := client.CreateGame(ctx, gamedto.CreateGameRequest{Opponent: "agent"})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	snaps := make(chan *gamedto.Snapshot, 8)
	watcher := NewWatcher(backend.URL, created.Game.ID, func(s *gamedto.Snapshot) { snaps <- s })
	if err := watcher.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer watcher.Close()

	select {
	case snap := <-snaps:
		if snap.ID != created.Game.ID || len(snap.MovesUCI) != 0 {
			t.Fatalf("unexpected initial frame: %+v", snap)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no initial frame")
	}

	if _, err := client.SubmitMove(ctx, created.Game.ID, gamedto.SubmitMoveRequest{Move: "e2e4"}); err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}

	select {
	case snap := <-snaps:
		if len(snap.MovesUCI) != 1 || snap.MovesUCI[0] != "e2e4" {
			t.Fatalf("unexpected update frame: %+v", snap)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no update frame after move")
	}
}
