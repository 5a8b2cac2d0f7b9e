package arena

import (
	"sync"
	"time"

	nchess "github.com/corentings/chess/v2"

	"github.com/ojpark/agentchess/internal/engine"
)

// Session is one game's mutable record: the position, the immutable config,
// and the turn signal. The coordinator is the only writer of the game; all
// mutation happens under mu.
type Session struct {
	ID     string
	Config SessionConfig

	mu       sync.Mutex
	game     *nchess.Game
	signal   *turnSignal
	selector *engine.Selector

	createdAt time.Time
	updatedAt time.Time
}

func newSession(id string, cfg SessionConfig) *Session {
	now := time.Now()
	s := &Session{
		ID:        id,
		Config:    cfg,
		game:      nchess.NewGame(),
		signal:    newTurnSignal(),
		createdAt: now,
		updatedAt: now,
	}
	if cfg.HasComputer() {
		s.selector = engine.NewSelector()
	}
	return s
}

// Changed returns a channel that closes the next time the session state
// advances. Take it before reading a snapshot so no update is missed.
func (s *Session) Changed() <-chan struct{} { return s.signal.Wait() }

// Snapshot copies the observable state without blocking writers for long.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	positions := s.game.Positions()
	moves := s.game.Moves()
	uci := make([]string, 0, len(moves))
	san := make([]string, 0, len(moves))
	for i, mv := range moves {
		uci = append(uci, mv.String())
		san = append(san, nchess.AlgebraicNotation{}.Encode(positions[i], mv))
	}
	outcome := s.game.Outcome()
	return Snapshot{
		ID:        s.ID,
		FEN:       s.game.FEN(),
		Turn:      sideOf(s.game.Position().Turn()),
		MovesUCI:  uci,
		MovesSAN:  san,
		Over:      outcome != nchess.NoOutcome,
		Result:    resultText(outcome),
		Config:    s.Config,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

func (s *Session) summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	outcome := s.game.Outcome()
	return Summary{
		ID:        s.ID,
		FEN:       s.game.FEN(),
		White:     s.Config.White,
		Black:     s.Config.Black,
		Turn:      sideOf(s.game.Position().Turn()),
		Over:      outcome != nchess.NoOutcome,
		Result:    resultText(outcome),
		CreatedAt: s.createdAt,
	}
}

func sideOf(c nchess.Color) Side {
	if c == nchess.White {
		return White
	}
	return Black
}

func resultText(o nchess.Outcome) string {
	switch o {
	case nchess.WhiteWon:
		return "White wins"
	case nchess.BlackWon:
		return "Black wins"
	case nchess.Draw:
		return "Draw"
	default:
		return ""
	}
}
