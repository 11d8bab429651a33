package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solver/internal/tictactoe"
)

var ErrAnalysisNotFound = errors.New("analysis not found")

type AnalysisRepository interface {
	Save(ctx context.Context, analysis *entity.Analysis) error
	GetByBoard(ctx context.Context, board tictactoe.Board) (*entity.Analysis, error)
	DeleteByBoard(ctx context.Context, board tictactoe.Board) error
}

type dbAnalysis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAnalysisRepository stores analyses under "analysis:<board key>". A zero
// ttl keeps entries forever.
func NewAnalysisRepository(client *redis.Client, ttl time.Duration) AnalysisRepository {
	return &dbAnalysis{
		client: client,
		ttl:    ttl,
	}
}

func analysisKey(board tictactoe.Board) string {
	return "analysis:" + board.Key()
}

func (that *dbAnalysis) Save(ctx context.Context, analysis *entity.Analysis) error {
	stored := *analysis
	stored.Cached = false

	analysisJSON, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("could not marshal analysis: %w", err)
	}

	err = that.client.Set(ctx, analysisKey(analysis.Board), analysisJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set analysis: %w", err)
	}

	return nil
}

func (that *dbAnalysis) GetByBoard(ctx context.Context, board tictactoe.Board) (*entity.Analysis, error) {
	response, err := that.client.Get(ctx, analysisKey(board)).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.Analysis{}, ErrAnalysisNotFound
	}

	if err != nil {
		return &entity.Analysis{}, fmt.Errorf("failed to get analysis by board: %w", err)
	}

	var existing entity.Analysis
	if err = json.Unmarshal([]byte(response), &existing); err != nil {
		return &entity.Analysis{}, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}

	return &existing, nil
}

func (that *dbAnalysis) DeleteByBoard(ctx context.Context, board tictactoe.Board) error {
	deleted, err := that.client.Del(ctx, analysisKey(board)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}

	if deleted == 0 {
		return ErrAnalysisNotFound
	}

	return nil
}
