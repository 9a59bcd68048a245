package service

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	x = entity.PlayerX
	o = entity.PlayerO
	e = entity.EmptyCell
)

func newSeededBot(seed uint64) BotService {
	return NewBotService(rand.New(rand.NewPCG(seed, seed+1)))
}

func playOut(t *testing.T, bot BotService, board entity.Board, levels map[string]entity.Difficulty) string {
	t.Helper()

	for !entity.IsTerminal(board) {
		mark := entity.MarkToMove(board)

		cell, err := bot.NextMove(board, mark, levels[mark])
		require.NoError(t, err)
		require.Equal(t, e, board[cell], "bot picked an occupied cell")

		board[cell] = mark
	}

	return entity.DetermineResult(board)
}

func TestBotService_NextMove_Hard(t *testing.T) {
	t.Run("Takes the immediate win over the block", func(t *testing.T) {
		// Given: X threatens row 0-1-2 and O can complete row 3-4-5
		bot := newSeededBot(1)
		board := entity.Board{x, x, e, o, o, e, e, e, e}

		// When: the hard bot plays O
		cell, err := bot.NextMove(board, o, entity.DifficultyHard)

		// Then: it wins at 5
		require.NoError(t, err)
		assert.Equal(t, 5, cell)
	})

	t.Run("Blocks a threat it cannot outrun", func(t *testing.T) {
		// Given: X threatens the top row, O has no win
		bot := newSeededBot(1)
		board := entity.Board{x, x, e, e, o, e, e, e, e}

		// When: the hard bot plays O
		cell, err := bot.NextMove(board, o, entity.DifficultyHard)

		// Then: it blocks at 2
		require.NoError(t, err)
		assert.Equal(t, 2, cell)
	})

	t.Run("Breaks ties by the lowest cell", func(t *testing.T) {
		// Given: an empty board, where every opening is a draw
		bot := newSeededBot(1)

		// When: the hard bot opens as X
		cell, err := bot.NextMove(entity.Board{}, x, entity.DifficultyHard)

		// Then: it picks cell 0
		require.NoError(t, err)
		assert.Equal(t, 0, cell)
	})

	t.Run("Does not mutate the caller's board", func(t *testing.T) {
		bot := newSeededBot(1)
		board := entity.Board{x, e, e, e, o, e, e, e, x}
		before := board

		_, err := bot.NextMove(board, o, entity.DifficultyHard)
		require.NoError(t, err)

		assert.Equal(t, before, board)
	})

	t.Run("Hard against hard always draws", func(t *testing.T) {
		bot := newSeededBot(1)
		levels := map[string]entity.Difficulty{x: entity.DifficultyHard, o: entity.DifficultyHard}

		// Given: the empty board and every single-move opening
		starts := []entity.Board{{}}
		for cell := range len(entity.Board{}) {
			var board entity.Board
			board[cell] = x
			starts = append(starts, board)
		}

		for _, start := range starts {
			// Then: optimal play on both sides ends in a tie
			assert.Equal(t, entity.PlayerTie, playOut(t, bot, start, levels), "start %v", start)
		}
	})

	t.Run("Hard never loses to a random player", func(t *testing.T) {
		bot := newSeededBot(42)

		for game := 0; game < 30; game++ {
			hardMark := x
			if game%2 == 1 {
				hardMark = o
			}
			levels := map[string]entity.Difficulty{
				hardMark:                  entity.DifficultyHard,
				entity.Opponent(hardMark): entity.DifficultyEasy,
			}

			result := playOut(t, bot, entity.Board{}, levels)

			assert.NotEqual(t, entity.Opponent(hardMark), result, "game %d", game)
		}
	})
}

func TestBotService_NextMove_Medium(t *testing.T) {
	t.Run("Wins at cell zero", func(t *testing.T) {
		// Given: O can win at index 0 while X threatens row 3-4-5
		board := entity.Board{e, o, o, x, x, e, x, e, e}

		for seed := uint64(0); seed < 20; seed++ {
			// When: the medium bot plays O
			cell, err := newSeededBot(seed).NextMove(board, o, entity.DifficultyMedium)

			// Then: index 0 is taken, not mistaken for "no move"
			require.NoError(t, err)
			assert.Equal(t, 0, cell)
		}
	})

	t.Run("Blocks at cell zero", func(t *testing.T) {
		// Given: X threatens row 0-1-2 through cell 0, O has no win
		board := entity.Board{e, x, x, o, e, e, e, e, e}

		for seed := uint64(0); seed < 20; seed++ {
			cell, err := newSeededBot(seed).NextMove(board, o, entity.DifficultyMedium)

			require.NoError(t, err)
			assert.Equal(t, 0, cell)
		}
	})

	t.Run("Prefers the win over the block", func(t *testing.T) {
		board := entity.Board{x, x, e, o, o, e, e, e, e}

		for seed := uint64(0); seed < 20; seed++ {
			cell, err := newSeededBot(seed).NextMove(board, o, entity.DifficultyMedium)

			require.NoError(t, err)
			assert.Equal(t, 5, cell)
		}
	})

	t.Run("Always returns an empty cell", func(t *testing.T) {
		board := entity.Board{x, e, e, e, e, e, e, e, e}

		for seed := uint64(0); seed < 20; seed++ {
			cell, err := newSeededBot(seed).NextMove(board, o, entity.DifficultyMedium)

			require.NoError(t, err)
			assert.Equal(t, e, board[cell])
		}
	})
}

func TestBotService_NextMove_Easy(t *testing.T) {
	t.Run("Picks only empty cells", func(t *testing.T) {
		bot := newSeededBot(7)
		board := entity.Board{x, o, x, e, o, e, e, x, e}

		seen := map[int]bool{}
		for i := 0; i < 200; i++ {
			cell, err := bot.NextMove(board, o, entity.DifficultyEasy)
			require.NoError(t, err)
			require.Equal(t, e, board[cell])
			seen[cell] = true
		}

		// Then: every empty cell shows up eventually
		assert.Len(t, seen, len(entity.EmptyCells(board)))
	})

	t.Run("Takes the last free cell", func(t *testing.T) {
		board := entity.Board{x, o, x, x, o, o, o, x, e}

		cell, err := newSeededBot(3).NextMove(board, x, entity.DifficultyEasy)

		require.NoError(t, err)
		assert.Equal(t, 8, cell)
	})
}

func TestBotService_NextMove_NoMoves(t *testing.T) {
	bot := newSeededBot(1)

	t.Run("Full board", func(t *testing.T) {
		board := entity.Board{x, o, x, o, x, o, o, x, o}

		_, err := bot.NextMove(board, x, entity.DifficultyHard)

		require.ErrorIs(t, err, ErrNoAvailableMoves)
	})

	t.Run("Board already won", func(t *testing.T) {
		board := entity.Board{x, x, x, o, o, e, e, e, e}

		_, err := bot.NextMove(board, o, entity.DifficultyMedium)

		require.ErrorIs(t, err, ErrNoAvailableMoves)
	})
}
