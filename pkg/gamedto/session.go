package gamedto

import "time"

type Snapshot struct {
	ID        string    `json:"id"`
	FEN       string    `json:"fen"`
	Turn      string    `json:"turn"`
	White     string    `json:"white"`
	Black     string    `json:"black"`
	Level     int       `json:"level"`
	MovesUCI  []string  `json:"moves_uci"`
	MovesSAN  []string  `json:"moves_san"`
	Over      bool      `json:"over"`
	Result    string    `json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GameSummary struct {
	ID        string    `json:"id"`
	FEN       string    `json:"fen"`
	White     string    `json:"white"`
	Black     string    `json:"black"`
	Turn      string    `json:"turn"`
	Over      bool      `json:"over"`
	Result    string    `json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ListGamesResponse struct {
	Games []GameSummary `json:"games"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Games  int    `json:"games"`
}
