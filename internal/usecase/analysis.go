package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solver/internal/repository"
	"github.com/rocketscienceinc/tictactoe-solver/internal/tictactoe"
)

type AnalysisUseCase interface {
	State(ctx context.Context, board tictactoe.Board) (*entity.GameState, error)
	Apply(ctx context.Context, board tictactoe.Board, move tictactoe.Move) (*entity.GameState, error)
	BestMove(ctx context.Context, board tictactoe.Board) (*entity.Analysis, error)
}

type analysisRepo interface {
	Save(ctx context.Context, analysis *entity.Analysis) error
	GetByBoard(ctx context.Context, board tictactoe.Board) (*entity.Analysis, error)
	DeleteByBoard(ctx context.Context, board tictactoe.Board) error
}

// searchFunc matches tictactoe.SearchParallel.
type searchFunc func(ctx context.Context, board tictactoe.Board) (tictactoe.Result, error)

type analysisUseCase struct {
	logger       *slog.Logger
	analysisRepo analysisRepo
	search       searchFunc
}

// NewAnalysisUseCase builds the use case. With parallel set the engine fans
// out over root moves.
func NewAnalysisUseCase(logger *slog.Logger, analysisRepo analysisRepo, parallel bool) AnalysisUseCase {
	search := func(_ context.Context, board tictactoe.Board) (tictactoe.Result, error) {
		return tictactoe.Search(board)
	}
	if parallel {
		search = tictactoe.SearchParallel
	}

	return &analysisUseCase{
		logger:       logger.With("component", "analysis"),
		analysisRepo: analysisRepo,
		search:       search,
	}
}

func (that *analysisUseCase) State(_ context.Context, board tictactoe.Board) (*entity.GameState, error) {
	if err := board.Validate(); err != nil {
		return nil, fmt.Errorf("failed to describe board: %w", err)
	}

	return entity.NewGameState(board), nil
}

func (that *analysisUseCase) Apply(_ context.Context, board tictactoe.Board, move tictactoe.Move) (*entity.GameState, error) {
	if err := board.Validate(); err != nil {
		return nil, fmt.Errorf("failed to apply move: %w", err)
	}

	if board.IsTerminal() {
		return nil, fmt.Errorf("failed to apply move: %w", tictactoe.ErrPrecondition)
	}

	next, err := board.Apply(move)
	if err != nil {
		return nil, fmt.Errorf("failed to apply move: %w", err)
	}

	return entity.NewGameState(next), nil
}

func (that *analysisUseCase) BestMove(ctx context.Context, board tictactoe.Board) (*entity.Analysis, error) {
	log := that.logger.With("method", "BestMove", "board", board.Key())

	if err := board.Validate(); err != nil {
		return nil, fmt.Errorf("failed to analyse board: %w", err)
	}

	cached, err := that.analysisRepo.GetByBoard(ctx, board)
	switch {
	case err == nil && isUsable(board, cached):
		cached.Cached = true
		log.Debug("analysis served from cache")
		return cached, nil
	case err == nil:
		log.Warn("evicting stale analysis", "move", cached.Move.String())
		if err = that.analysisRepo.DeleteByBoard(ctx, board); err != nil && !errors.Is(err, repository.ErrAnalysisNotFound) {
			log.Error("failed to evict analysis", "error", err)
		}
	case errors.Is(err, repository.ErrAnalysisNotFound):
	default:
		log.Error("failed to read analysis cache", "error", err)
	}

	result, err := that.search(ctx, board)
	if err != nil {
		return nil, fmt.Errorf("failed to search best move: %w", err)
	}

	analysis := entity.NewAnalysis(board, result)

	if err = that.analysisRepo.Save(ctx, analysis); err != nil {
		log.Error("failed to save analysis", "error", err)
	}

	log.Debug("analysis computed", "move", result.Move.String(), "value", result.Value, "nodes", result.Nodes)

	return analysis, nil
}

// isUsable reports whether a cached analysis still answers for board.
func isUsable(board tictactoe.Board, cached *entity.Analysis) bool {
	if cached.Board != board || cached.Turn != board.Turn() {
		return false
	}

	_, err := board.Apply(cached.Move)

	return err == nil
}
