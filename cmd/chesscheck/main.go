package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/ojpark/agentchess/pkg/gameclient"
	"github.com/ojpark/agentchess/pkg/gamedto"
)

// chesscheck probes a running chess server end to end: health, game
// creation, one move, and the computer's reply.
func main() {
	baseURL := os.Getenv("CHESS_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := gameclient.NewClient(baseURL,
		gameclient.WithTimeout(8*time.Second),
		gameclient.WithWaitTimeout(40*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		log.Fatalf("/healthz error: %v", err)
	}
	log.Printf("/healthz ok: status=%s games=%d", health.Status, health.Games)

	created, err := client.CreateGame(ctx, gamedto.CreateGameRequest{Opponent: "computer", Color: "white", Level: 3})
	if err != nil {
		log.Fatalf("create game error: %v", err)
	}
	log.Printf("game created: id=%s white=%s black=%s level=%d", created.Game.ID, created.Game.White, created.Game.Black, created.Game.Level)

	moved, err := client.SubmitMove(ctx, created.Game.ID, gamedto.SubmitMoveRequest{Move: "e2e4"})
	if err != nil {
		log.Fatalf("submit move error: %v", err)
	}
	log.Printf("move accepted: turn=%s moves=%v", moved.Game.Turn, moved.Game.MovesUCI)

	for {
		turn, err := client.WaitTurn(ctx, created.Game.ID, "white")
		if err != nil {
			log.Fatalf("wait turn error: %v", err)
		}
		if turn.TimedOut {
			log.Printf("wait timed out; retrying")
			continue
		}
		log.Printf("computer replied: moves=%v fen=%s", turn.Game.MovesUCI, turn.Game.FEN)
		break
	}

	log.Printf("probe ok")
}
