package engine

import (
	"math/rand"
	"sync"
	"time"

	nchess "github.com/corentings/chess/v2"
)

const (
	mateScore = 9999
	infScore  = 1 << 30
)

// Material values in decipawns. The king carries a sentinel high value so it
// dominates any exchange the search can see.
var pieceValues = map[nchess.PieceType]int{
	nchess.Pawn:   10,
	nchess.Knight: 30,
	nchess.Bishop: 30,
	nchess.Rook:   50,
	nchess.Queen:  90,
	nchess.King:   900,
}

// Selector picks a move for the side to move under a strength profile:
// either a deliberate blunder (uniform random legal move) or the best move
// from a depth-bounded material minimax with alpha-beta pruning.
type Selector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSelector() *Selector {
	return NewSelectorWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewSelectorWithSource injects the random source so blunder and tie-break
// draws are reproducible under test.
func NewSelectorWithSource(src rand.Source) *Selector {
	return &Selector{rnd: rand.New(src)}
}

// SelectMove returns the move to play at the given strength level, or nil
// when the position has no legal moves. Levels outside 1-10 use DefaultLevel.
func (s *Selector) SelectMove(pos *nchess.Position, level int) *nchess.Move {
	profile := ProfileFor(level)
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rnd.Float64() < profile.BlunderRate {
		return &moves[s.rnd.Intn(len(moves))]
	}
	return s.bestMove(pos, moves, profile.SearchDepth)
}

// bestMove runs the root of the search. Legal moves are shuffled first so
// ties break non-deterministically; only strictly improving scores replace
// the current best, keeping the first-seen move on tied scores.
func (s *Selector) bestMove(pos *nchess.Position, moves []nchess.Move, depth int) *nchess.Move {
	s.rnd.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })

	maximizing := pos.Turn() == nchess.White
	bestValue := -infScore
	if !maximizing {
		bestValue = infScore
	}
	alpha, beta := -infScore, infScore

	var best *nchess.Move
	for i := range moves {
		child := pos.Update(&moves[i])
		if child == nil {
			continue
		}
		value := minimax(child, depth-1, alpha, beta)
		if maximizing {
			if value > bestValue {
				bestValue = value
				best = &moves[i]
			}
			if bestValue > alpha {
				alpha = bestValue
			}
		} else {
			if value < bestValue {
				bestValue = value
				best = &moves[i]
			}
			if bestValue < beta {
				beta = bestValue
			}
		}
	}

	if best == nil {
		// Every branch scored identically against the sentinel bound; any
		// legal move is as good as another.
		return &moves[s.rnd.Intn(len(moves))]
	}
	return best
}

// minimax explores one ply at a time. White to move maximizes, black to move
// minimizes; the evaluation itself is fixed-perspective (white-positive).
func minimax(pos *nchess.Position, depth, alpha, beta int) int {
	status := pos.Status()
	if depth <= 0 || status == nchess.Checkmate || status == nchess.Stalemate {
		return evaluate(pos)
	}
	moves := pos.ValidMoves()
	if len(moves) == 0 {
		return evaluate(pos)
	}

	if pos.Turn() == nchess.White {
		best := -infScore
		for i := range moves {
			child := pos.Update(&moves[i])
			if child == nil {
				continue
			}
			value := minimax(child, depth-1, alpha, beta)
			if value > best {
				best = value
			}
			if value > alpha {
				alpha = value
			}
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := infScore
	for i := range moves {
		child := pos.Update(&moves[i])
		if child == nil {
			continue
		}
		value := minimax(child, depth-1, alpha, beta)
		if value < best {
			best = value
		}
		if value < beta {
			beta = value
		}
		if beta <= alpha {
			break
		}
	}
	return best
}

// evaluate scores a position from white's perspective: checkmate is a
// large-magnitude score against the side to move, dead draws are zero,
// anything else is the signed material sum.
func evaluate(pos *nchess.Position) int {
	switch pos.Status() {
	case nchess.Checkmate:
		if pos.Turn() == nchess.White {
			return -mateScore
		}
		return mateScore
	case nchess.Stalemate:
		return 0
	}

	board := pos.Board()
	if insufficientMaterial(board) {
		return 0
	}

	score := 0
	for file := nchess.FileA; file <= nchess.FileH; file++ {
		for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
			piece := board.Piece(nchess.NewSquare(file, rank))
			if piece == nchess.NoPiece {
				continue
			}
			value := pieceValues[piece.Type()]
			if piece.Color() == nchess.White {
				score += value
			} else {
				score -= value
			}
		}
	}
	return score
}

// insufficientMaterial reports the dead positions the evaluation treats as
// drawn: bare kings, or a single minor piece beside the kings.
func insufficientMaterial(board *nchess.Board) bool {
	minors := 0
	for file := nchess.FileA; file <= nchess.FileH; file++ {
		for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
			piece := board.Piece(nchess.NewSquare(file, rank))
			if piece == nchess.NoPiece || piece.Type() == nchess.King {
				continue
			}
			switch piece.Type() {
			case nchess.Knight, nchess.Bishop:
				minors++
			default:
				return false
			}
		}
	}
	return minors <= 1
}
