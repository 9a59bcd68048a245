package probability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var ErrInvalidSplit = errors.New("probability split does not sum to 100")

// Source is an authoritative probability provider, possibly remote.
type Source interface {
	Probability(ctx context.Context, board entity.Board) (Split, error)
}

// Estimator asks the Source first and falls back to Heuristic on any failure.
type Estimator struct {
	logger  *slog.Logger
	source  Source
	timeout time.Duration
}

func NewEstimator(logger *slog.Logger, source Source, timeout time.Duration) *Estimator {
	return &Estimator{
		logger:  logger.With("component", "probability"),
		source:  source,
		timeout: timeout,
	}
}

func (that *Estimator) Estimate(ctx context.Context, board entity.Board) Split {
	if that.source == nil {
		return Heuristic(board)
	}

	split, err := that.fromSource(ctx, board)
	if err != nil {
		that.logger.Warn("probability source failed, using local heuristic", "error", err)
		return Heuristic(board)
	}

	return split
}

type sourceResult struct {
	split Split
	err   error
}

// fromSource never waits longer than the timeout, even for a source that ignores its context.
func (that *Estimator) fromSource(ctx context.Context, board entity.Board) (Split, error) {
	if that.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, that.timeout)
		defer cancel()
	}

	resultCh := make(chan sourceResult, 1)
	go func() {
		split, err := that.source.Probability(ctx, board)
		resultCh <- sourceResult{split: split, err: err}
	}()

	select {
	case <-ctx.Done():
		return Split{}, fmt.Errorf("probability source: %w", ctx.Err())
	case result := <-resultCh:
		if result.err != nil {
			return Split{}, fmt.Errorf("probability source: %w", result.err)
		}

		if !result.split.Valid() {
			return Split{}, fmt.Errorf("%w: %+v", ErrInvalidSplit, result.split)
		}

		return result.split, nil
	}
}
