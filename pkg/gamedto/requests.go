package gamedto

type CreateGameRequest struct {
	// Opponent is "computer", "agent" or "human"; empty defaults to computer.
	Opponent string `json:"opponent,omitempty"`
	// Color is the creator's side, "white" or "black"; empty defaults to white.
	Color  string `json:"color,omitempty"`
	Level  int    `json:"level,omitempty"`
	ShowUI bool   `json:"show_ui,omitempty"`
}

type CreateGameResponse struct {
	Game Snapshot `json:"game"`
	// Note tells the caller what happens next, e.g. that the computer is
	// already making the opening move.
	Note string `json:"note,omitempty"`
}

type SubmitMoveRequest struct {
	Move     string `json:"move"`
	ClaimWin bool   `json:"claim_win,omitempty"`
}

type MoveResponse struct {
	Game   Snapshot `json:"game"`
	Board  string   `json:"board,omitempty"`
	Advice string   `json:"advice,omitempty"`
}

type TurnResponse struct {
	TimedOut bool     `json:"timed_out"`
	Game     Snapshot `json:"game"`
	Board    string   `json:"board,omitempty"`
	// BoardHTML carries the interactive board page when the game was
	// created with show_ui.
	BoardHTML string `json:"board_html,omitempty"`
	Advice    string `json:"advice,omitempty"`
}
