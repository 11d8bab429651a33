package entity

import "github.com/rocketscienceinc/tictactoe-solver/internal/tictactoe"

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"

	PlayerTie = "-"
)

// GameState describes a board to a driver.
type GameState struct {
	Board   tictactoe.Board `json:"board"`
	Status  string          `json:"status"`
	Turn    tictactoe.Mark  `json:"player_turn"`
	Winner  string          `json:"winner"`
	Outcome *int            `json:"outcome,omitempty"`
}

func NewGameState(board tictactoe.Board) *GameState {
	state := &GameState{
		Board:  board,
		Status: StatusOngoing,
		Turn:   board.Turn(),
	}

	outcome, err := board.OutcomeValue()
	if err != nil {
		// the game continues
		return state
	}

	state.Status = StatusFinished
	state.Turn = tictactoe.EmptyCell
	state.Outcome = &outcome

	if winner := board.Winner(); winner != tictactoe.EmptyCell {
		state.Winner = string(winner)
	} else {
		state.Winner = PlayerTie
	}

	return state
}

func (that *GameState) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *GameState) IsOngoing() bool {
	return that.Status == StatusOngoing
}
