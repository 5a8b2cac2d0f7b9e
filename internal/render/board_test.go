package render

import (
	"strings"
	"testing"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestMarkdownStartPosition(t *testing.T) {
	md, err := Markdown(startFEN)
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	lines := strings.Split(md, "\n")
	if len(lines) != 10 {
		t.Fatalf("expected header + separator + 8 ranks, got %d lines", len(lines))
	}
	if lines[0] != "| Rank | a | b | c | d | e | f | g | h |" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if !strings.Contains(lines[2], "♜") || !strings.Contains(lines[2], "♚") {
		t.Fatalf("rank 8 missing black pieces: %q", lines[2])
	}
	if !strings.Contains(lines[9], "♖") || !strings.Contains(lines[9], "♔") {
		t.Fatalf("rank 1 missing white pieces: %q", lines[9])
	}
	if !strings.HasPrefix(lines[2], "| **8** |") || !strings.HasPrefix(lines[9], "| **1** |") {
		t.Fatalf("rank labels wrong: %q / %q", lines[2], lines[9])
	}
}

func TestMarkdownRejectsGarbage(t *testing.T) {
	if _, err := Markdown("not a fen"); err == nil {
		t.Fatalf("expected error for malformed FEN")
	}
}

func TestBoardHTMLEmbedsGameState(t *testing.T) {
	page, err := BoardHTML(startFEN, "abcd1234", true)
	if err != nil {
		t.Fatalf("BoardHTML: %v", err)
	}
	if !strings.Contains(page, "abcd1234") {
		t.Fatalf("page missing game id")
	}
	if !strings.Contains(page, "rnbqkbnr") {
		t.Fatalf("page missing FEN")
	}
	if !strings.Contains(page, "/moves") {
		t.Fatalf("page missing move submission endpoint")
	}
}

func TestDashboardListsGames(t *testing.T) {
	rows := []GameRow{
		{ID: "aaaa1111", White: "agent", Black: "computer", Turn: "white", FEN: startFEN},
		{ID: "bbbb2222", White: "agent", Black: "agent", Turn: "black", FEN: startFEN, Result: "White wins"},
	}
	page, err := Dashboard(rows)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if !strings.Contains(page, `/game/aaaa1111`) || !strings.Contains(page, `/game/bbbb2222`) {
		t.Fatalf("dashboard missing game links")
	}
	if !strings.Contains(page, "white to move") {
		t.Fatalf("dashboard missing live-game status")
	}
	if !strings.Contains(page, "White wins") {
		t.Fatalf("dashboard missing finished-game result")
	}
}
