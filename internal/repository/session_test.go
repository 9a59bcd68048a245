package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/testing/suite"
)

func newSnapshot(id string) entity.Snapshot {
	return entity.Snapshot{
		ID:     id,
		Mode:   entity.ModeTournament,
		Status: entity.StatusRoundRunning,
		Board:  entity.Board{"X", "", "", "", "O", "", "", "", ""},
		Turn:   entity.PlayerX,
		Players: [2]entity.Identity{
			{Name: "Ann", Score: 2, Mark: entity.PlayerX},
			{Name: "Bob", Score: 0, Mark: entity.PlayerO},
		},
		Round:       2,
		TotalRounds: 3,
		Starter:     entity.PlayerX,
		TimeLeft:    12,
		TimerActive: true,
		RoundOutcome: &entity.Outcome{
			Winner:     "Ann",
			WinnerMark: entity.PlayerX,
			Message:    "Ann wins!",
		},
	}
}

func TestSessionRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Redis, time.Minute)

	// Given: snapshots of two sessions
	first, second := newSnapshot("123"), newSnapshot("456")

	// When: CreateOrUpdate is called for both
	require.NoError(t, sessionRepo.CreateOrUpdate(ctx, first))
	require.NoError(t, sessionRepo.CreateOrUpdate(ctx, second))

	// Then: each session has its own expiring key
	keys, err := st.Keys(ctx, sessionKeyPrefix+"*")
	require.NoError(t, err)
	assert.Equal(t, []string{"session:123", "session:456"}, keys)

	ttl, err := st.Redis.TTL(ctx, sessionKeyPrefix+first.ID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestSessionRepository_GetByID(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Redis, 0)

	t.Run("GetByID_Success", func(t *testing.T) {
		require.NoError(t, st.Flush(ctx))

		// Given: a stored snapshot
		snapshot := newSnapshot("123")
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, snapshot))

		// When: GetByID is called with existing ID
		stored, err := sessionRepo.GetByID(ctx, snapshot.ID)

		// Then: the snapshot comes back unchanged
		require.NoError(t, err)
		assert.Equal(t, snapshot, stored)
	})

	t.Run("GetByID_Overwritten", func(t *testing.T) {
		require.NoError(t, st.Flush(ctx))

		snapshot := newSnapshot("123")
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, snapshot))

		// When: a later state is saved under the same id
		snapshot.Board[8] = entity.PlayerX
		snapshot.Turn = entity.PlayerO
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, snapshot))

		// Then: the latest state wins and no second key appears
		stored, err := sessionRepo.GetByID(ctx, snapshot.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerO, stored.Turn)
		assert.Equal(t, entity.PlayerX, stored.Board[8])

		keys, err := st.Keys(ctx, sessionKeyPrefix+"*")
		require.NoError(t, err)
		assert.Len(t, keys, 1)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		require.NoError(t, st.Flush(ctx))

		// When: GetByID is called with non-existent ID
		stored, err := sessionRepo.GetByID(ctx, "9999999")

		// Then: an ErrSessionNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		assert.Empty(t, stored.ID)
	})
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	ctx, st := suite.New(t)

	sessionRepo := NewSessionRepository(st.Redis, 0)

	t.Run("DeleteByID_Success", func(t *testing.T) {
		require.NoError(t, st.Flush(ctx))

		// Given: a stored snapshot
		snapshot := newSnapshot("123")
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, snapshot))

		// When: DeleteByID is called with existing ID
		err := sessionRepo.DeleteByID(ctx, snapshot.ID)

		// Then: no error should be returned and the snapshot is gone
		require.NoError(t, err)

		_, err = sessionRepo.GetByID(ctx, snapshot.ID)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		require.NoError(t, st.Flush(ctx))

		// When: DeleteByID is called with non-existent ID
		err := sessionRepo.DeleteByID(ctx, "9999999")

		// Then: an ErrSessionNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}
