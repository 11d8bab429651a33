package entity

import "github.com/rocketscienceinc/tictactoe-solver/internal/tictactoe"

// Analysis is the engine's verdict for a board, as cached and served.
type Analysis struct {
	Board  tictactoe.Board `json:"board"`
	Turn   tictactoe.Mark  `json:"turn"`
	Move   tictactoe.Move  `json:"move"`
	Value  int             `json:"value"`
	Nodes  int             `json:"nodes"`
	Cached bool            `json:"cached"`
}

func NewAnalysis(board tictactoe.Board, result tictactoe.Result) *Analysis {
	return &Analysis{
		Board: board,
		Turn:  board.Turn(),
		Move:  result.Move,
		Value: result.Value,
		Nodes: result.Nodes,
	}
}
