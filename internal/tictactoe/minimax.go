package tictactoe

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
)

// Sentinels used only as initial running values and bounds, never returned
// as the value of a board.
const (
	minusInfinity = math.MinInt
	plusInfinity  = math.MaxInt
)

// Result is the outcome of a search from a non-terminal board.
type Result struct {
	Move  Move `json:"move"`
	Value int  `json:"value"`
	Nodes int  `json:"nodes"`
}

type searcher struct {
	nodes int
}

// BestMove returns the optimal move for the side to play on board.
func BestMove(board Board) (Move, error) {
	result, err := Search(board)
	if err != nil {
		return Move{}, err
	}

	return result.Move, nil
}

// Search explores the game tree below board and returns the optimal move
// together with the exact minimax value of board.
func Search(board Board) (Result, error) {
	if result, done, err := shortcut(board); done {
		return result, err
	}

	s := &searcher{nodes: 1}
	maximize := board.Turn() == PlayerX
	best := Result{Value: initialValue(maximize)}

	for _, move := range board.LegalMoves() {
		child := board.place(move)

		var value int
		if maximize {
			value = s.scoreForMinimizer(child, best.Value)
		} else {
			value = s.scoreForMaximizer(child, best.Value)
		}

		if improves(maximize, value, best.Value) {
			best.Move, best.Value = move, value
		}
	}

	best.Nodes = s.nodes

	return best, nil
}

// SearchParallel scores every root move in its own goroutine. Root moves
// are searched with an open bound, so the chosen move is the first optimal
// one in LegalMoves order.
func SearchParallel(ctx context.Context, board Board) (Result, error) {
	if result, done, err := shortcut(board); done {
		return result, err
	}

	maximize := board.Turn() == PlayerX
	moves := board.LegalMoves()
	values := make([]int, len(moves))
	nodes := make([]int, len(moves))

	g, gctx := errgroup.WithContext(ctx)
	for i, move := range moves {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			s := &searcher{}
			child := board.place(move)
			if maximize {
				values[i] = s.scoreForMinimizer(child, minusInfinity)
			} else {
				values[i] = s.scoreForMaximizer(child, plusInfinity)
			}
			nodes[i] = s.nodes

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("parallel search aborted: %w", err)
	}

	best := Result{Value: initialValue(maximize), Nodes: 1}
	for i, move := range moves {
		if improves(maximize, values[i], best.Value) {
			best.Move, best.Value = move, values[i]
		}
		best.Nodes += nodes[i]
	}

	return best, nil
}

// shortcut handles terminal boards and the empty board, reporting done when
// no search is needed.
func shortcut(board Board) (Result, bool, error) {
	if board.IsTerminal() {
		return Result{}, true, fmt.Errorf("%w: %w", ErrPrecondition, apperror.ErrGameFinished)
	}

	// every opening move draws under optimal play
	if board == Initial() {
		return Result{Move: Move{Row: 0, Col: 0}, Value: 0, Nodes: 1}, true, nil
	}

	return Result{}, false, nil
}

func (that *searcher) scoreForMaximizer(board Board, bound int) int {
	that.nodes++

	if board.IsTerminal() {
		return board.outcome()
	}

	best := minusInfinity
	for _, move := range board.LegalMoves() {
		best = max(best, that.scoreForMinimizer(board.place(move), best))
		// the minimizing caller already holds bound, it will not pick this branch
		if best > bound {
			return best
		}
	}

	return best
}

func (that *searcher) scoreForMinimizer(board Board, bound int) int {
	that.nodes++

	if board.IsTerminal() {
		return board.outcome()
	}

	best := plusInfinity
	for _, move := range board.LegalMoves() {
		best = min(best, that.scoreForMaximizer(board.place(move), best))
		if best < bound {
			return best
		}
	}

	return best
}

func initialValue(maximize bool) int {
	if maximize {
		return minusInfinity
	}
	return plusInfinity
}

func improves(maximize bool, value, best int) bool {
	if maximize {
		return value > best
	}
	return value < best
}
