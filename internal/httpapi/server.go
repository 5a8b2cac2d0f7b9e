package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ojpark/agentchess/internal/arena"
	"github.com/ojpark/agentchess/internal/render"
	"github.com/ojpark/agentchess/pkg/gamedto"
)

// Options tunes the API surface.
type Options struct {
	// AllowedOrigins is passed to the websocket accept check.
	AllowedOrigins []string
	// DefaultLevel fills in the computer strength when a create request
	// leaves it out.
	DefaultLevel int
}

// Server exposes the arena over JSON HTTP plus a small HTML dashboard.
type Server struct {
	coord  *arena.Coordinator
	dir    *arena.Directory
	logger *zap.Logger
	opts   Options
}

func NewServer(coord *arena.Coordinator, dir *arena.Directory, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{coord: coord, dir: dir, logger: logger, opts: opts}
}

// Handler builds the route table. Method-qualified patterns keep dispatch in
// the mux instead of per-handler switches.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games", s.handleListGames)
	mux.HandleFunc("GET /api/games/{id}", s.handleGetGame)
	mux.HandleFunc("POST /api/games/{id}/moves", s.handleSubmitMove)
	mux.HandleFunc("GET /api/games/{id}/turn", s.handleWaitTurn)
	mux.HandleFunc("GET /api/games/{id}/ws", s.handleWatch)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /game/{id}", s.handleGamePage)
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	return mux
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req gamedto.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorKind(w, http.StatusBadRequest, gamedto.ErrKindMalformedMove, fmt.Sprintf("invalid request body: %v", err), true)
		return
	}

	if req.Level == 0 {
		req.Level = s.opts.DefaultLevel
	}
	cfg, err := sessionConfigFrom(req)
	if err != nil {
		s.writeErrorKind(w, http.StatusBadRequest, gamedto.ErrKindMalformedMove, err.Error(), true)
		return
	}

	snap, err := s.coord.StartSession(cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := gamedto.CreateGameResponse{Game: toSnapshotDTO(snap)}
	if cfg.KindFor(arena.White) == arena.ParticipantComputer && cfg.OwnerSide == arena.Black {
		resp.Note = "Computer (white) is making the first move. Poll the turn endpoint to pick up the reply."
	} else {
		resp.Note = fmt.Sprintf("It is %s's turn.", snap.Turn)
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	summaries := s.dir.List()
	resp := gamedto.ListGamesResponse{Games: make([]gamedto.GameSummary, 0, len(summaries))}
	for _, sum := range summaries {
		resp.Games = append(resp.Games, toSummaryDTO(sum))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.dir.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	snap := sess.Snapshot()
	resp := gamedto.MoveResponse{Game: toSnapshotDTO(snap)}
	if board, err := render.Markdown(snap.FEN); err == nil {
		resp.Board = board
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitMove(w http.ResponseWriter, r *http.Request) {
	var req gamedto.SubmitMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorKind(w, http.StatusBadRequest, gamedto.ErrKindMalformedMove, fmt.Sprintf("invalid request body: %v", err), true)
		return
	}

	snap, err := s.coord.SubmitMove(r.Context(), r.PathValue("id"), req.Move, req.ClaimWin)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := gamedto.MoveResponse{Game: toSnapshotDTO(snap)}
	if board, err := render.Markdown(snap.FEN); err == nil {
		resp.Board = board
	}
	if snap.Over {
		resp.Advice = fmt.Sprintf("Move accepted. Game over: %s. No further actions needed.", snap.Result)
	} else {
		resp.Advice = "Move accepted. Wait on the turn endpoint for the opponent's reply."
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWaitTurn(w http.ResponseWriter, r *http.Request) {
	side := arena.Side(strings.ToLower(r.URL.Query().Get("side")))
	wr, err := s.coord.WaitForOpponentMove(r.Context(), r.PathValue("id"), side)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := gamedto.TurnResponse{TimedOut: wr.TimedOut, Game: toSnapshotDTO(wr.Snapshot)}
	if board, err := render.Markdown(wr.Snapshot.FEN); err == nil {
		resp.Board = board
	}
	if wr.Snapshot.Config.ShowUI {
		whiteView := wr.Snapshot.Config.OwnerSide == arena.White
		if page, err := render.BoardHTML(wr.Snapshot.FEN, wr.Snapshot.ID, whiteView); err == nil {
			resp.BoardHTML = page
		}
	}
	switch {
	case wr.TimedOut:
		resp.Advice = "Timeout: no move received yet. Call the turn endpoint again immediately."
	case wr.Snapshot.Over:
		resp.Advice = fmt.Sprintf("Game over: %s.", wr.Snapshot.Result)
	default:
		resp.Advice = "It is your turn. Decide a move and submit it to the moves endpoint."
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, gamedto.HealthResponse{Status: "ok", Games: s.dir.Len()})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summaries := s.dir.List()
	rows := make([]render.GameRow, 0, len(summaries))
	for _, sum := range summaries {
		rows = append(rows, render.GameRow{
			ID:     sum.ID,
			White:  string(sum.White),
			Black:  string(sum.Black),
			Turn:   string(sum.Turn),
			FEN:    sum.FEN,
			Result: sum.Result,
		})
	}
	page, err := render.Dashboard(rows)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeHTML(w, page)
}

func (s *Server) handleGamePage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.dir.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	snap := sess.Snapshot()
	page, err := render.BoardHTML(snap.FEN, snap.ID, snap.Config.OwnerSide == arena.White)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeHTML(w, page)
}

// sessionConfigFrom maps the public create request onto explicit two-slot
// session config. The creator's slot is always the agent; the opponent kind
// fills the other slot.
func sessionConfigFrom(req gamedto.CreateGameRequest) (arena.SessionConfig, error) {
	opponent := arena.ParticipantKind(strings.ToLower(req.Opponent))
	if opponent == "" {
		opponent = arena.ParticipantComputer
	}
	switch opponent {
	case arena.ParticipantComputer, arena.ParticipantAgent, arena.ParticipantHuman:
	default:
		return arena.SessionConfig{}, fmt.Errorf("unknown opponent kind: %q", req.Opponent)
	}

	owner := arena.Side(strings.ToLower(req.Color))
	if owner == "" {
		owner = arena.White
	}
	if owner != arena.White && owner != arena.Black {
		return arena.SessionConfig{}, fmt.Errorf("unknown color: %q", req.Color)
	}

	cfg := arena.SessionConfig{OwnerSide: owner, Level: req.Level, ShowUI: req.ShowUI}
	if owner == arena.White {
		cfg.White = arena.ParticipantAgent
		cfg.Black = opponent
	} else {
		cfg.Black = arena.ParticipantAgent
		cfg.White = opponent
	}
	return cfg, nil
}

func toSnapshotDTO(snap arena.Snapshot) gamedto.Snapshot {
	return gamedto.Snapshot{
		ID:        snap.ID,
		FEN:       snap.FEN,
		Turn:      string(snap.Turn),
		White:     string(snap.Config.White),
		Black:     string(snap.Config.Black),
		Level:     snap.Config.Level,
		MovesUCI:  snap.MovesUCI,
		MovesSAN:  snap.MovesSAN,
		Over:      snap.Over,
		Result:    snap.Result,
		CreatedAt: snap.CreatedAt,
		UpdatedAt: snap.UpdatedAt,
	}
}

func toSummaryDTO(sum arena.Summary) gamedto.GameSummary {
	return gamedto.GameSummary{
		ID:        sum.ID,
		FEN:       sum.FEN,
		White:     string(sum.White),
		Black:     string(sum.Black),
		Turn:      string(sum.Turn),
		Over:      sum.Over,
		Result:    sum.Result,
		CreatedAt: sum.CreatedAt,
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("response_encode_failed", zap.Error(err))
	}
}

func (s *Server) writeHTML(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(page)); err != nil {
		s.logger.Warn("response_write_failed", zap.Error(err))
	}
}

// writeError maps arena failures onto wire error kinds and status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var illegal *arena.IllegalMoveError
	switch {
	case errors.As(err, &illegal):
		s.writeJSON(w, http.StatusUnprocessableEntity, gamedto.ErrorResponse{
			Kind:        gamedto.ErrKindIllegalMove,
			Message:     illegal.Error(),
			SampleMoves: illegal.Sample,
			Retryable:   true,
		})
	case errors.Is(err, arena.ErrSessionNotFound):
		s.writeErrorKind(w, http.StatusNotFound, gamedto.ErrKindSessionNotFound, err.Error(), false)
	case errors.Is(err, arena.ErrMalformedMove):
		s.writeErrorKind(w, http.StatusBadRequest, gamedto.ErrKindMalformedMove, err.Error(), true)
	case errors.Is(err, arena.ErrFalseWinClaim):
		s.writeErrorKind(w, http.StatusConflict, gamedto.ErrKindFalseWinClaim, err.Error(), true)
	default:
		s.logger.Error("request_failed", zap.Error(err))
		s.writeErrorKind(w, http.StatusInternalServerError, gamedto.ErrKindInternal, "internal error", false)
	}
}

func (s *Server) writeErrorKind(w http.ResponseWriter, status int, kind, message string, retryable bool) {
	s.writeJSON(w, status, gamedto.ErrorResponse{Kind: kind, Message: message, Retryable: retryable})
}
