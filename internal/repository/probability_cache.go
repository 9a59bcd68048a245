package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/probability"
)

const probabilityKeyPrefix = "probability:"

// ProbabilityCache remembers splits of an underlying source per board position.
type ProbabilityCache struct {
	logger *slog.Logger
	client *redis.Client
	source probability.Source
	ttl    time.Duration
}

func NewProbabilityCache(logger *slog.Logger, client *redis.Client, source probability.Source, ttl time.Duration) *ProbabilityCache {
	return &ProbabilityCache{
		logger: logger.With("component", "probabilityCache"),
		client: client,
		source: source,
		ttl:    ttl,
	}
}

func (that *ProbabilityCache) Probability(ctx context.Context, board entity.Board) (probability.Split, error) {
	log := that.logger.With("method", "Probability")
	key := boardKey(board)

	cached, err := that.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var split probability.Split
		if err = json.Unmarshal([]byte(cached), &split); err == nil && split.Valid() {
			return split, nil
		}
		log.Warn("dropping unreadable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		log.Warn("failed to read cache", "key", key, "error", err)
	}

	split, err := that.source.Probability(ctx, board)
	if err != nil {
		return probability.Split{}, fmt.Errorf("probability source: %w", err)
	}

	splitJSON, err := json.Marshal(split)
	if err != nil {
		return split, nil
	}

	if err = that.client.Set(ctx, key, splitJSON, that.ttl).Err(); err != nil {
		log.Warn("failed to write cache", "key", key, "error", err)
	}

	return split, nil
}

// boardKey encodes the nine cells as one character each, "." for empty.
func boardKey(board entity.Board) string {
	var sb strings.Builder
	sb.WriteString(probabilityKeyPrefix)

	for _, cell := range board {
		if cell == entity.EmptyCell {
			sb.WriteByte('.')
			continue
		}
		sb.WriteString(cell)
	}

	return sb.String()
}
