package render

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// GameRow is one dashboard listing entry. Kept free of arena types so the
// renderer stays a leaf package.
type GameRow struct {
	ID     string
	White  string
	Black  string
	Turn   string
	FEN    string
	Result string
}

// Markdown renders a FEN position as a Markdown table with unicode pieces,
// rank 8 at the top.
func Markdown(fen string) (string, error) {
	board, err := boardFromFEN(fen)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("| Rank | a | b | c | d | e | f | g | h |\n")
	b.WriteString("|:---:|:---:|:---:|:---:|:---:|:---:|:---:|:---:|:---:|\n")

	ranks := []nchess.Rank{nchess.Rank8, nchess.Rank7, nchess.Rank6, nchess.Rank5, nchess.Rank4, nchess.Rank3, nchess.Rank2, nchess.Rank1}
	files := []nchess.File{nchess.FileA, nchess.FileB, nchess.FileC, nchess.FileD, nchess.FileE, nchess.FileF, nchess.FileG, nchess.FileH}
	for i, rank := range ranks {
		fmt.Fprintf(&b, "| **%d** |", 8-i)
		for _, file := range files {
			symbol := " "
			if piece := board.Piece(nchess.NewSquare(file, rank)); piece != nchess.NoPiece {
				symbol = pieceSymbol(piece)
			}
			fmt.Fprintf(&b, " %s |", symbol)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func boardFromFEN(fen string) (*nchess.Board, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse FEN: %w", err)
	}
	return nchess.NewGame(opt).Position().Board(), nil
}

func pieceSymbol(piece nchess.Piece) string {
	white := piece.Color() == nchess.White
	switch piece.Type() {
	case nchess.King:
		if white {
			return "♔"
		}
		return "♚"
	case nchess.Queen:
		if white {
			return "♕"
		}
		return "♛"
	case nchess.Rook:
		if white {
			return "♖"
		}
		return "♜"
	case nchess.Bishop:
		if white {
			return "♗"
		}
		return "♝"
	case nchess.Knight:
		if white {
			return "♘"
		}
		return "♞"
	case nchess.Pawn:
		if white {
			return "♙"
		}
		return "♟"
	default:
		return " "
	}
}
