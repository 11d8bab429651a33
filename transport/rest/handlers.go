package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-solver/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solver/internal/tictactoe"
)

type analysisUseCase interface {
	State(ctx context.Context, board tictactoe.Board) (*entity.GameState, error)
	Apply(ctx context.Context, board tictactoe.Board, move tictactoe.Move) (*entity.GameState, error)
	BestMove(ctx context.Context, board tictactoe.Board) (*entity.Analysis, error)
}

// Request is the body accepted by every board endpoint.
type Request struct {
	Board *tictactoe.Board `json:"board"`
	Move  *tictactoe.Move `json:"move,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Handlers struct {
	logger   *slog.Logger
	analysis analysisUseCase
}

func NewHandlers(logger *slog.Logger, analysis analysisUseCase) *Handlers {
	return &Handlers{
		logger:   logger.With("component", "rest"),
		analysis: analysis,
	}
}

func (that *Handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		that.logger.Error("failed to write pong", "error", err)
	}
}

func (that *Handlers) State(w http.ResponseWriter, r *http.Request) {
	req, ok := that.decode(w, r)
	if !ok {
		return
	}

	state, err := that.analysis.State(r.Context(), *req.Board)
	if err != nil {
		that.writeError(w, "State", err)
		return
	}

	that.writeJSON(w, http.StatusOK, state)
}

func (that *Handlers) Apply(w http.ResponseWriter, r *http.Request) {
	req, ok := that.decode(w, r)
	if !ok {
		return
	}

	if req.Move == nil {
		that.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "move is required"})
		return
	}

	state, err := that.analysis.Apply(r.Context(), *req.Board, *req.Move)
	if err != nil {
		that.writeError(w, "Apply", err)
		return
	}

	that.writeJSON(w, http.StatusOK, state)
}

func (that *Handlers) BestMove(w http.ResponseWriter, r *http.Request) {
	req, ok := that.decode(w, r)
	if !ok {
		return
	}

	analysis, err := that.analysis.BestMove(r.Context(), *req.Board)
	if err != nil {
		that.writeError(w, "BestMove", err)
		return
	}

	that.writeJSON(w, http.StatusOK, analysis)
}

func (that *Handlers) decode(w http.ResponseWriter, r *http.Request) (*Request, bool) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		message := "invalid request body"
		if errors.Is(err, tictactoe.ErrInvalidBoard) {
			message = err.Error()
		}

		that.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message})
		return nil, false
	}

	if req.Board == nil {
		that.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "board is required"})
		return nil, false
	}

	return &req, true
}

func (that *Handlers) writeError(w http.ResponseWriter, method string, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, tictactoe.ErrInvalidBoard), errors.Is(err, tictactoe.ErrInvalidMove):
		status = http.StatusBadRequest
	case errors.Is(err, tictactoe.ErrPrecondition):
		status = http.StatusConflict
	default:
		that.logger.Error("request failed", "method", method, "error", err)
	}

	that.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
