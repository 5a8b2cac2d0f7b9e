package gamedto

// Error kinds carried on the wire. Clients branch on Kind rather than
// parsing the message text.
const (
	ErrKindSessionNotFound = "session_not_found"
	ErrKindMalformedMove   = "malformed_move"
	ErrKindIllegalMove     = "illegal_move"
	ErrKindFalseWinClaim   = "false_win_claim"
	ErrKindInternal        = "internal"
)

type ErrorResponse struct {
	Kind        string   `json:"kind"`
	Message     string   `json:"message"`
	SampleMoves []string `json:"sample_moves,omitempty"`
	Retryable   bool     `json:"retryable"`
}

func (e ErrorResponse) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Kind != "" {
		return e.Kind
	}
	return "chess api error"
}
