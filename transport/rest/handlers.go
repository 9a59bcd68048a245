package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/probability"
	"github.com/rocketscienceinc/tictactoe-engine/internal/service"
)

type gameUseCase interface {
	CreateSession(ctx context.Context, req entity.MatchRequest) (entity.Snapshot, error)
	StartMatch(ctx context.Context, id string, req entity.MatchRequest) (entity.Snapshot, error)
	Snapshot(ctx context.Context, id string) (entity.Snapshot, error)
	MakeTurn(ctx context.Context, id string, cell int) (entity.Snapshot, error)
	NextRound(ctx context.Context, id string) (entity.Snapshot, error)
	CloseSession(ctx context.Context, id string) error
	Probability(ctx context.Context, board entity.Board) probability.Split
	AIMove(board entity.Board, difficulty entity.Difficulty) (int, error)
}

type handlers struct {
	logger *slog.Logger
	game   gameUseCase
}

func newHandlers(logger *slog.Logger, game gameUseCase) *handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		game:   game,
	}
}

type moveRequest struct {
	Cell *int `json:"cell"`
}

type tournamentResultRequest struct {
	Score1 int    `json:"score1"`
	Score2 int    `json:"score2"`
	P1     string `json:"p1"`
	P2     string `json:"p2"`
}

type errorResponse struct {
	Error    string           `json:"error"`
	Snapshot *entity.Snapshot `json:"snapshot,omitempty"`
}

func (that *handlers) aiMove(w http.ResponseWriter, r *http.Request) {
	board, err := decodeBoard(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err, nil)
		return
	}

	level := entity.ParseDifficulty(r.URL.Query().Get("level"))

	cell, err := that.game.AIMove(board, level)
	if err != nil {
		if !errors.Is(err, service.ErrNoAvailableMoves) {
			that.logger.Error("failed to pick ai move", "error", err)
		}
		writeError(w, statusFor(err), err, nil)
		return
	}

	writeJSON(w, http.StatusOK, cell)
}

func (that *handlers) probability(w http.ResponseWriter, r *http.Request) {
	board, err := decodeBoard(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err, nil)
		return
	}

	writeJSON(w, http.StatusOK, that.game.Probability(r.Context(), board))
}

func (that *handlers) tournamentResult(w http.ResponseWriter, r *http.Request) {
	var req tournamentResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err, nil)
		return
	}

	writeJSON(w, http.StatusOK, entity.TournamentResult(req.P1, req.Score1, req.P2, req.Score2))
}

func (that *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req entity.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err, nil)
		return
	}

	snapshot, err := that.game.CreateSession(r.Context(), req)
	if err != nil {
		that.writeGameError(w, "CreateSession", err, nil)
		return
	}

	writeJSON(w, http.StatusCreated, snapshot)
}

func (that *handlers) startMatch(w http.ResponseWriter, r *http.Request) {
	var req entity.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err, nil)
		return
	}

	snapshot, err := that.game.StartMatch(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		that.writeGameError(w, "StartMatch", err, &snapshot)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.game.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeGameError(w, "GetSession", err, nil)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *handlers) makeMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		writeError(w, http.StatusBadRequest, apperror.ErrInvalidCell, nil)
		return
	}

	snapshot, err := that.game.MakeTurn(r.Context(), chi.URLParam(r, "id"), *req.Cell)
	if err != nil {
		that.writeGameError(w, "MakeMove", err, &snapshot)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *handlers) nextRound(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.game.NextRound(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeGameError(w, "NextRound", err, &snapshot)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func (that *handlers) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := that.game.CloseSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeGameError(w, "CloseSession", err, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeGameError logs only unexpected failures; rejected moves are ordinary traffic.
func (that *handlers) writeGameError(w http.ResponseWriter, method string, err error, snapshot *entity.Snapshot) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
	}

	if snapshot != nil && snapshot.ID == "" {
		snapshot = nil
	}

	writeError(w, status, err, snapshot)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidCell), errors.Is(err, apperror.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNoActiveGame),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrRoundOver),
		errors.Is(err, apperror.ErrRoundInProgress),
		errors.Is(err, apperror.ErrMatchComplete),
		errors.Is(err, service.ErrNoAvailableMoves):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeBoard(r *http.Request) (entity.Board, error) {
	var cells []string
	if err := json.NewDecoder(r.Body).Decode(&cells); err != nil {
		return entity.Board{}, err
	}

	// short boards are padded with empty cells, extra entries are ignored
	return entity.NewBoard(cells), nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, err error, snapshot *entity.Snapshot) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Snapshot: snapshot})
}
