package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-solver/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solver/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solver/internal/tictactoe"
)

const (
	x = tictactoe.PlayerX
	o = tictactoe.PlayerO
	e = tictactoe.EmptyCell
)

var errRedisDown = errors.New("redis down")

type mockAnalysisRepo struct {
	mock.Mock
}

func (that *mockAnalysisRepo) Save(ctx context.Context, analysis *entity.Analysis) error {
	args := that.Called(ctx, analysis)
	return args.Error(0)
}

func (that *mockAnalysisRepo) GetByBoard(ctx context.Context, board tictactoe.Board) (*entity.Analysis, error) {
	args := that.Called(ctx, board)
	return args.Get(0).(*entity.Analysis), args.Error(1)
}

func (that *mockAnalysisRepo) DeleteByBoard(ctx context.Context, board tictactoe.Board) error {
	args := that.Called(ctx, board)
	return args.Error(0)
}

func newMockAnalysisRepo(t *testing.T) *mockAnalysisRepo {
	t.Helper()

	repo := &mockAnalysisRepo{}
	t.Cleanup(func() { repo.AssertExpectations(t) })

	return repo
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnalysisUseCase_BestMove(t *testing.T) {
	ctx := context.Background()

	winInOne := tictactoe.Board{
		x, x, e,
		o, o, e,
		x, e, o,
	}

	t.Run("Computes and caches on a miss", func(t *testing.T) {
		for _, parallel := range []bool{false, true} {
			// Given: an empty cache
			repo := newMockAnalysisRepo(t)
			useCase := NewAnalysisUseCase(discardLogger(), repo, parallel)

			repo.On("GetByBoard", mock.Anything, winInOne).
				Return(&entity.Analysis{}, repository.ErrAnalysisNotFound).
				Once()
			repo.On("Save", mock.Anything, mock.AnythingOfType("*entity.Analysis")).
				Return(nil).
				Once()

			// When: asking for the best move
			analysis, err := useCase.BestMove(ctx, winInOne)

			// Then: the winning move is returned
			require.NoError(t, err)
			assert.Equal(t, tictactoe.Move{Row: 0, Col: 2}, analysis.Move)
			assert.Equal(t, 1, analysis.Value)
			assert.Equal(t, x, analysis.Turn)
			assert.False(t, analysis.Cached)
			assert.Positive(t, analysis.Nodes)
		}
	})

	t.Run("Serves cached analysis", func(t *testing.T) {
		// Given: a cache holding the board
		repo := newMockAnalysisRepo(t)
		useCase := NewAnalysisUseCase(discardLogger(), repo, false)

		stored := &entity.Analysis{Board: winInOne, Turn: x, Move: tictactoe.Move{Row: 0, Col: 2}, Value: 1, Nodes: 7}
		repo.On("GetByBoard", mock.Anything, winInOne).Return(stored, nil).Once()

		// When: asking for the best move
		analysis, err := useCase.BestMove(ctx, winInOne)

		// Then: the cached value is returned without saving
		require.NoError(t, err)
		assert.True(t, analysis.Cached)
		assert.Equal(t, 7, analysis.Nodes)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("Evicts a cached move that is not legal", func(t *testing.T) {
		// Given: a cache entry pointing at an occupied cell
		repo := newMockAnalysisRepo(t)
		useCase := NewAnalysisUseCase(discardLogger(), repo, false)

		stale := &entity.Analysis{Board: winInOne, Turn: x, Move: tictactoe.Move{Row: 0, Col: 0}, Value: 1}
		repo.On("GetByBoard", mock.Anything, winInOne).Return(stale, nil).Once()
		repo.On("DeleteByBoard", mock.Anything, winInOne).Return(nil).Once()
		repo.On("Save", mock.Anything, mock.AnythingOfType("*entity.Analysis")).Return(nil).Once()

		// When: asking for the best move
		analysis, err := useCase.BestMove(ctx, winInOne)

		// Then: the entry is evicted and the move recomputed
		require.NoError(t, err)
		assert.False(t, analysis.Cached)
		assert.Equal(t, tictactoe.Move{Row: 0, Col: 2}, analysis.Move)
	})

	t.Run("Evicts a cached entry stored for another board", func(t *testing.T) {
		// Given: a cache entry whose board does not match the key
		repo := newMockAnalysisRepo(t)
		useCase := NewAnalysisUseCase(discardLogger(), repo, false)

		stale := &entity.Analysis{Board: tictactoe.Initial(), Turn: x, Move: tictactoe.Move{Row: 2, Col: 1}}
		repo.On("GetByBoard", mock.Anything, winInOne).Return(stale, nil).Once()
		repo.On("DeleteByBoard", mock.Anything, winInOne).Return(errRedisDown).Once()
		repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

		// When: asking for the best move
		analysis, err := useCase.BestMove(ctx, winInOne)

		// Then: an eviction failure does not fail the request
		require.NoError(t, err)
		assert.Equal(t, tictactoe.Move{Row: 0, Col: 2}, analysis.Move)
	})

	t.Run("Cache failures do not fail the request", func(t *testing.T) {
		// Given: a cache that is down
		repo := newMockAnalysisRepo(t)
		useCase := NewAnalysisUseCase(discardLogger(), repo, false)

		repo.On("GetByBoard", mock.Anything, winInOne).Return((*entity.Analysis)(nil), errRedisDown).Once()
		repo.On("Save", mock.Anything, mock.Anything).Return(errRedisDown).Once()

		// When: asking for the best move
		analysis, err := useCase.BestMove(ctx, winInOne)

		// Then: the engine answers anyway
		require.NoError(t, err)
		assert.Equal(t, tictactoe.Move{Row: 0, Col: 2}, analysis.Move)
	})

	t.Run("Terminal board", func(t *testing.T) {
		// Given: a board X has already won
		board := tictactoe.Board{
			x, x, x,
			o, o, e,
			e, e, e,
		}
		repo := newMockAnalysisRepo(t)
		useCase := NewAnalysisUseCase(discardLogger(), repo, false)

		repo.On("GetByBoard", mock.Anything, board).
			Return(&entity.Analysis{}, repository.ErrAnalysisNotFound).
			Once()

		// When: asking for the best move
		_, err := useCase.BestMove(ctx, board)

		// Then: a precondition error is returned
		require.ErrorIs(t, err, tictactoe.ErrPrecondition)
		assert.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Invalid board is rejected before the cache", func(t *testing.T) {
		repo := newMockAnalysisRepo(t)
		useCase := NewAnalysisUseCase(discardLogger(), repo, false)

		_, err := useCase.BestMove(ctx, tictactoe.Board{o, o, e, e, e, e, e, e, e})

		require.ErrorIs(t, err, tictactoe.ErrInvalidBoard)
	})
}

func TestAnalysisUseCase_Apply(t *testing.T) {
	ctx := context.Background()
	useCase := NewAnalysisUseCase(discardLogger(), newMockAnalysisRepo(t), false)

	t.Run("Winning move finishes the game", func(t *testing.T) {
		board := tictactoe.Board{
			x, x, e,
			o, o, e,
			e, e, e,
		}

		state, err := useCase.Apply(ctx, board, tictactoe.Move{Row: 0, Col: 2})

		require.NoError(t, err)
		assert.True(t, state.IsFinished())
		assert.Equal(t, string(x), state.Winner)
		require.NotNil(t, state.Outcome)
		assert.Equal(t, 1, *state.Outcome)
	})

	t.Run("Occupied cell", func(t *testing.T) {
		board := tictactoe.Board{x, e, e, e, e, e, e, e, e}

		_, err := useCase.Apply(ctx, board, tictactoe.Move{Row: 0, Col: 0})

		require.ErrorIs(t, err, tictactoe.ErrInvalidMove)
		assert.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Finished game", func(t *testing.T) {
		board := tictactoe.Board{
			x, x, x,
			o, o, e,
			e, e, e,
		}

		_, err := useCase.Apply(ctx, board, tictactoe.Move{Row: 1, Col: 2})

		assert.ErrorIs(t, err, tictactoe.ErrPrecondition)
	})
}

func TestAnalysisUseCase_State(t *testing.T) {
	ctx := context.Background()
	useCase := NewAnalysisUseCase(discardLogger(), newMockAnalysisRepo(t), false)

	state, err := useCase.State(ctx, tictactoe.Initial())

	require.NoError(t, err)
	assert.True(t, state.IsOngoing())
	assert.Equal(t, x, state.Turn)

	_, err = useCase.State(ctx, tictactoe.Board{"?", e, e, e, e, e, e, e, e})
	assert.ErrorIs(t, err, tictactoe.ErrInvalidBoard)
}
