package tictactoe

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
)

// Mark is the content of a single cell.
type Mark string

const (
	EmptyCell Mark = ""
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
)

const size = 3

var (
	ErrInvalidMove  = errors.New("invalid move")
	ErrPrecondition = errors.New("precondition violated")
	ErrInvalidBoard = errors.New("invalid board")

	WinCombos = [][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Move is a (row, column) coordinate of the cell to mark.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// MoveFromCell converts a row-major cell index into a Move.
func MoveFromCell(cell int) Move {
	return Move{Row: cell / size, Col: cell % size}
}

// Cell returns the row-major cell index of the move.
func (that Move) Cell() int {
	return that.Row*size + that.Col
}

func (that Move) inRange() bool {
	return that.Row >= 0 && that.Row < size && that.Col >= 0 && that.Col < size
}

func (that Move) String() string {
	return fmt.Sprintf("(%d,%d)", that.Row, that.Col)
}

// Board is a 3x3 grid of marks in row-major order. It is a value type:
// every transition returns a new Board.
type Board [size * size]Mark

// Initial returns the all-empty board.
func Initial() Board {
	return Board{}
}

func (that Board) count() (int, int) {
	var x, o int
	for _, cell := range that {
		switch cell {
		case PlayerX:
			x++
		case PlayerO:
			o++
		}
	}
	return x, o
}

// Turn returns the mark whose move it is.
func (that Board) Turn() Mark {
	if x, o := that.count(); o < x {
		return PlayerO
	}
	return PlayerX
}

// LegalMoves returns the empty cells in row-major order.
func (that Board) LegalMoves() []Move {
	moves := make([]Move, 0, len(that))
	for i, cell := range that {
		if cell == EmptyCell {
			moves = append(moves, MoveFromCell(i))
		}
	}
	return moves
}

// Apply returns a new board with the cell at move set to the current turn.
func (that Board) Apply(move Move) (Board, error) {
	if !move.inRange() {
		return that, fmt.Errorf("%w: %w: %s", ErrInvalidMove, apperror.ErrInvalidCell, move)
	}

	if that[move.Cell()] != EmptyCell {
		return that, fmt.Errorf("%w: %w: %s", ErrInvalidMove, apperror.ErrCellOccupied, move)
	}

	return that.place(move), nil
}

// place marks a cell known to be empty.
func (that Board) place(move Move) Board {
	next := that
	next[move.Cell()] = that.Turn()
	return next
}

// Winner returns the mark of a completed line, or EmptyCell when there is none.
func (that Board) Winner() Mark {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}
	return EmptyCell
}

func (that Board) isFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}
	return true
}

// IsTerminal reports whether the game on this board is over.
func (that Board) IsTerminal() bool {
	return that.Winner() != EmptyCell || that.isFull()
}

// OutcomeValue returns +1 when X won, -1 when O won and 0 for a draw.
// It fails with ErrPrecondition on a board that is not terminal.
func (that Board) OutcomeValue() (int, error) {
	if !that.IsTerminal() {
		return 0, fmt.Errorf("%w: %w", ErrPrecondition, apperror.ErrGameIsNotFinished)
	}
	return that.outcome(), nil
}

// outcome assumes a terminal board.
func (that Board) outcome() int {
	switch that.Winner() {
	case PlayerX:
		return 1
	case PlayerO:
		return -1
	default:
		return 0
	}
}

// Validate checks that every cell holds a known mark and that the mark
// counts could have been produced by alternating play starting with X.
func (that Board) Validate() error {
	for i, cell := range that {
		switch cell {
		case EmptyCell, PlayerX, PlayerO:
		default:
			return fmt.Errorf("%w: unknown mark %q in cell %d", ErrInvalidBoard, cell, i)
		}
	}

	if x, o := that.count(); x != o && x != o+1 {
		return fmt.Errorf("%w: %d X marks and %d O marks", ErrInvalidBoard, x, o)
	}

	return nil
}

// UnmarshalJSON accepts exactly one mark per cell.
func (that *Board) UnmarshalJSON(data []byte) error {
	var cells []Mark
	if err := json.Unmarshal(data, &cells); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBoard, err)
	}

	if len(cells) != len(that) {
		return fmt.Errorf("%w: %d cells, want %d", ErrInvalidBoard, len(cells), len(that))
	}

	copy(that[:], cells)

	return nil
}

// Key renders the board as 9 characters, '.' standing for an empty cell.
func (that Board) Key() string {
	var sb strings.Builder
	sb.Grow(len(that))
	for _, cell := range that {
		if cell == EmptyCell {
			sb.WriteByte('.')
			continue
		}
		sb.WriteString(string(cell))
	}
	return sb.String()
}

func (that Board) String() string {
	key := that.Key()
	return key[0:3] + "\n" + key[3:6] + "\n" + key[6:9]
}
