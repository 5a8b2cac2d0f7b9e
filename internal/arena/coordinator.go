package arena

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	nchess "github.com/corentings/chess/v2"
	"go.uber.org/zap"
)

const (
	DefaultThinkDelay  = 500 * time.Millisecond
	DefaultWaitCeiling = 30 * time.Second

	legalSampleSize = 3
)

var uciMovePattern = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// Options tunes the coordinator's timing knobs.
type Options struct {
	// ThinkDelay is the deliberate pause before a computer reply.
	ThinkDelay time.Duration
	// WaitCeiling bounds how long WaitForOpponentMove blocks before
	// returning the retryable timeout outcome.
	WaitCeiling time.Duration
}

// Coordinator orchestrates move submission, waiter wake-up, and deferred
// computer moves across all sessions in a directory.
type Coordinator struct {
	dir    *Directory
	opts   Options
	logger *zap.Logger
	wg     sync.WaitGroup
}

func NewCoordinator(dir *Directory, opts Options, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ThinkDelay <= 0 {
		opts.ThinkDelay = DefaultThinkDelay
	}
	if opts.WaitCeiling <= 0 {
		opts.WaitCeiling = DefaultWaitCeiling
	}
	return &Coordinator{dir: dir, opts: opts, logger: logger}
}

// StartSession creates a session and, when the computer slot owns the
// opening move, schedules that move right away.
func (c *Coordinator) StartSession(cfg SessionConfig) (Snapshot, error) {
	sess, err := c.dir.Create(cfg)
	if err != nil {
		return Snapshot{}, err
	}
	snap := sess.Snapshot()
	c.logger.Info("session_create",
		zap.String("session_id", sess.ID),
		zap.String("white", string(sess.Config.White)),
		zap.String("black", string(sess.Config.Black)),
		zap.String("owner_side", string(sess.Config.OwnerSide)),
		zap.Int("level", sess.Config.Level),
	)
	if sess.Config.KindFor(snap.Turn) == ParticipantComputer {
		c.Schedule(func() { c.computerTurn(sess) })
	}
	return snap, nil
}

// SubmitMove validates and applies one move for the side to move.
//
// Failure modes: ErrSessionNotFound, ErrMalformedMove (text does not parse
// as UCI), IllegalMoveError (parsed but not legal here, with a sample of
// legal moves), ErrFalseWinClaim (claimWin set but the move does not mate —
// the position is left exactly as before). On success all waiters are woken
// exactly once and, if the opponent slot is the computer and the game is
// not over, the computer reply is scheduled; the caller never blocks on it.
func (c *Coordinator) SubmitMove(ctx context.Context, id, moveText string, claimWin bool) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	sess, err := c.dir.Get(id)
	if err != nil {
		return Snapshot{}, err
	}

	text := strings.ToLower(strings.TrimSpace(moveText))
	if !uciMovePattern.MatchString(text) {
		return Snapshot{}, fmt.Errorf("%w: %q (use start and end squares, like e2e4)", ErrMalformedMove, moveText)
	}

	sess.mu.Lock()
	pos := sess.game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, text)
	if err != nil {
		sess.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: %q", ErrMalformedMove, moveText)
	}

	legal := findLegal(pos, mv)
	if legal == nil {
		sample := sampleMoves(pos, legalSampleSize)
		sess.mu.Unlock()
		return Snapshot{}, &IllegalMoveError{Move: text, Sample: sample}
	}

	// Apply on a clone and commit by swapping, so a rejected win claim
	// leaves the live game untouched.
	trial := sess.game.Clone()
	if err := trial.Move(legal, nil); err != nil {
		sess.mu.Unlock()
		return Snapshot{}, fmt.Errorf("apply move %s: %w", text, err)
	}
	if claimWin && trial.Method() != nchess.Checkmate {
		sess.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: %s does not deliver checkmate", ErrFalseWinClaim, text)
	}

	sess.game = trial
	sess.updatedAt = time.Now()
	snap := sess.snapshotLocked()
	next := sess.Config.KindFor(snap.Turn)
	sess.mu.Unlock()

	sess.signal.Broadcast()
	c.logger.Info("move_submit",
		zap.String("session_id", sess.ID),
		zap.String("uci", text),
		zap.String("turn", string(snap.Turn)),
		zap.Bool("claim_win", claimWin),
		zap.Bool("over", snap.Over),
	)

	if !snap.Over && next == ParticipantComputer {
		c.Schedule(func() { c.computerTurn(sess) })
	}
	return snap, nil
}

// WaitForOpponentMove blocks until it is side's turn or the game is over,
// up to the configured ceiling. The same turn rule applies to every
// participant kind. An empty or unknown side defaults to the session
// owner's slot. Timeout is reported in the result, not as an error.
func (c *Coordinator) WaitForOpponentMove(ctx context.Context, id string, side Side) (WaitResult, error) {
	sess, err := c.dir.Get(id)
	if err != nil {
		return WaitResult{}, err
	}
	if side != White && side != Black {
		side = sess.Config.OwnerSide
	}

	deadline := time.NewTimer(c.opts.WaitCeiling)
	defer deadline.Stop()

	for {
		// Take the signal channel before checking the condition so a
		// broadcast between check and select is never lost.
		ch := sess.Changed()
		snap := sess.Snapshot()
		if snap.Over || snap.Turn == side {
			return WaitResult{Snapshot: snap}, nil
		}

		select {
		case <-ch:
			// Woken; the wake may cover several events, so loop and
			// re-check the authoritative condition.
		case <-deadline.C:
			return WaitResult{Snapshot: snap, TimedOut: true}, nil
		case <-ctx.Done():
			return WaitResult{}, ctx.Err()
		}
	}
}

// KickOffComputer schedules the computer's move when the computer slot is
// to move; otherwise it is a no-op. Scheduling twice is harmless, the
// deferred step re-checks whose turn it is before selecting.
func (c *Coordinator) KickOffComputer(id string) error {
	sess, err := c.dir.Get(id)
	if err != nil {
		return err
	}
	snap := sess.Snapshot()
	if snap.Over || sess.Config.KindFor(snap.Turn) != ParticipantComputer {
		return nil
	}
	c.Schedule(func() { c.computerTurn(sess) })
	return nil
}

// Schedule runs fn as a tracked background task. Deferred work always goes
// through here; it never depends on discovering an ambient scheduler.
func (c *Coordinator) Schedule(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

// Drain blocks until every scheduled task has finished. Used on shutdown.
func (c *Coordinator) Drain() { c.wg.Wait() }

// computerTurn performs the deferred computer move: pause, select, apply,
// wake. A nil selection means the previous move ended the game; the session
// is left untouched.
func (c *Coordinator) computerTurn(sess *Session) {
	time.Sleep(c.opts.ThinkDelay)

	sess.mu.Lock()
	if sess.game.Outcome() != nchess.NoOutcome {
		sess.mu.Unlock()
		return
	}
	if sess.Config.KindFor(sideOf(sess.game.Position().Turn())) != ParticipantComputer {
		sess.mu.Unlock()
		return
	}
	if sess.selector == nil {
		sess.mu.Unlock()
		c.logger.Warn("computer_turn_without_selector", zap.String("session_id", sess.ID))
		return
	}
	mv := sess.selector.SelectMove(sess.game.Position(), sess.Config.Level)
	if mv == nil {
		sess.mu.Unlock()
		return
	}
	uci := mv.String()
	if err := sess.game.Move(mv, nil); err != nil {
		sess.mu.Unlock()
		c.logger.Error("computer_move_rejected",
			zap.String("session_id", sess.ID),
			zap.String("uci", uci),
			zap.Error(err),
		)
		return
	}
	sess.updatedAt = time.Now()
	snap := sess.snapshotLocked()
	sess.mu.Unlock()

	sess.signal.Broadcast()
	c.logger.Info("computer_move",
		zap.String("session_id", sess.ID),
		zap.String("uci", uci),
		zap.Int("level", sess.Config.Level),
		zap.Bool("over", snap.Over),
	)
}

func findLegal(pos *nchess.Position, mv *nchess.Move) *nchess.Move {
	moves := pos.ValidMoves()
	want := mv.String()
	for i := range moves {
		if moves[i].String() == want {
			return &moves[i]
		}
	}
	return nil
}

func sampleMoves(pos *nchess.Position, limit int) []string {
	moves := pos.ValidMoves()
	if len(moves) < limit {
		limit = len(moves)
	}
	out := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, moves[i].String())
	}
	return out
}
