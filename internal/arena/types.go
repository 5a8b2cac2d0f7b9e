package arena

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ojpark/agentchess/internal/engine"
)

var (
	ErrSessionNotFound = errors.New("game session not found")
	ErrMalformedMove   = errors.New("malformed move text")
	ErrIllegalMove     = errors.New("illegal move")
	ErrFalseWinClaim   = errors.New("win claimed without checkmate")
)

// IllegalMoveError carries a short sample of legal moves to guide retry.
type IllegalMoveError struct {
	Move   string
	Sample []string
}

func (e *IllegalMoveError) Error() string {
	if len(e.Sample) == 0 {
		return fmt.Sprintf("illegal move %q", e.Move)
	}
	return fmt.Sprintf("illegal move %q (sample legal moves: %s)", e.Move, strings.Join(e.Sample, ", "))
}

func (e *IllegalMoveError) Unwrap() error { return ErrIllegalMove }

// Side identifies a board side. White is the first mover.
type Side string

const (
	White Side = "white"
	Black Side = "black"
)

func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// ParticipantKind says what occupies one side of a session.
type ParticipantKind string

const (
	ParticipantComputer ParticipantKind = "computer"
	ParticipantAgent    ParticipantKind = "agent"
	ParticipantHuman    ParticipantKind = "human"
)

// SessionConfig is immutable after creation. Both slots are explicit: no
// side is ever inferred from the other.
type SessionConfig struct {
	White ParticipantKind
	Black ParticipantKind

	// OwnerSide is the slot of the caller that created the session; wait
	// requests default to it when no side is given.
	OwnerSide Side

	// Level is the computer strength (1-10). Only meaningful when a slot is
	// ParticipantComputer.
	Level int

	ShowUI bool
}

// KindFor returns the participant kind occupying the given side.
func (c SessionConfig) KindFor(side Side) ParticipantKind {
	if side == White {
		return c.White
	}
	return c.Black
}

// HasComputer reports whether either slot is the built-in computer player.
func (c SessionConfig) HasComputer() bool {
	return c.White == ParticipantComputer || c.Black == ParticipantComputer
}

func (c *SessionConfig) normalize() error {
	for _, kind := range []ParticipantKind{c.White, c.Black} {
		switch kind {
		case ParticipantComputer, ParticipantAgent, ParticipantHuman:
		default:
			return fmt.Errorf("unknown participant kind: %q", kind)
		}
	}
	switch c.OwnerSide {
	case White, Black:
	case "":
		c.OwnerSide = White
	default:
		return fmt.Errorf("unknown side: %q", c.OwnerSide)
	}
	if c.Level < 1 || c.Level > 10 {
		c.Level = engine.DefaultLevel
	}
	return nil
}

// Snapshot is a wake-free copy of a session's observable state.
type Snapshot struct {
	ID       string
	FEN      string
	Turn     Side
	MovesUCI []string
	MovesSAN []string

	Over   bool
	Result string

	Config    SessionConfig
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the directory listing entry for one session.
type Summary struct {
	ID        string
	FEN       string
	White     ParticipantKind
	Black     ParticipantKind
	Turn      Side
	Over      bool
	Result    string
	CreatedAt time.Time
}

// WaitResult is the outcome of waiting for the opponent. TimedOut is a
// normal, retryable outcome rather than an error.
type WaitResult struct {
	Snapshot Snapshot
	TimedOut bool
}
