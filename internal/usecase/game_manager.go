package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/probability"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const persistTimeout = 2 * time.Second

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, snapshot entity.Snapshot) error
	GetByID(ctx context.Context, id string) (entity.Snapshot, error)
	DeleteByID(ctx context.Context, id string) error
}

type botService interface {
	NextMove(board entity.Board, botMark string, difficulty entity.Difficulty) (int, error)
}

type estimator interface {
	Estimate(ctx context.Context, board entity.Board) probability.Split
}

// GameManager owns every live session and routes transport commands to them.
type GameManager struct {
	logger      *slog.Logger
	bot         botService
	estimator   estimator
	sessionRepo sessionRepo
	options     tictactoe.Options

	mu       sync.RWMutex
	sessions map[string]*tictactoe.Session
}

// NewGameManager builds the registry. sessionRepo may be nil when snapshots are not persisted.
func NewGameManager(logger *slog.Logger, bot botService, estimator estimator, sessionRepo sessionRepo, options tictactoe.Options) *GameManager {
	return &GameManager{
		logger:      logger.With("component", "gameManager"),
		bot:         bot,
		estimator:   estimator,
		sessionRepo: sessionRepo,
		options:     options,
		sessions:    make(map[string]*tictactoe.Session),
	}
}

// CreateSession registers a new session and starts the requested match on it.
func (that *GameManager) CreateSession(ctx context.Context, req entity.MatchRequest) (entity.Snapshot, error) {
	log := that.logger.With("method", "CreateSession")

	id := uuid.NewString()
	session := tictactoe.NewSession(id, that.logger, that.bot, that.options)
	session.Subscribe(that.persist)

	that.mu.Lock()
	that.sessions[id] = session
	that.mu.Unlock()

	if err := startMatch(session, req); err != nil {
		that.remove(ctx, id)
		return entity.Snapshot{}, fmt.Errorf("failed to start match: %w", err)
	}

	log.Info("session created", "sessionID", id, "mode", req.Mode)

	return session.Snapshot(), nil
}

// StartMatch starts a new match on an existing session, keeping bot-mode alternation and scores.
func (that *GameManager) StartMatch(_ context.Context, id string, req entity.MatchRequest) (entity.Snapshot, error) {
	session, err := that.GetSession(id)
	if err != nil {
		return entity.Snapshot{}, err
	}

	if err = startMatch(session, req); err != nil {
		return session.Snapshot(), fmt.Errorf("failed to start match: %w", err)
	}

	return session.Snapshot(), nil
}

func (that *GameManager) GetSession(id string) (*tictactoe.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return session, nil
}

// Snapshot reads a live session. A session unknown to this process, for example after a restart,
// is served from the last persisted state when a repository is configured.
func (that *GameManager) Snapshot(ctx context.Context, id string) (entity.Snapshot, error) {
	session, err := that.GetSession(id)
	if err == nil {
		return session.Snapshot(), nil
	}

	if that.sessionRepo == nil {
		return entity.Snapshot{}, err
	}

	stored, repoErr := that.sessionRepo.GetByID(ctx, id)
	if repoErr != nil {
		if !errors.Is(repoErr, apperror.ErrSessionNotFound) {
			that.logger.Error("failed to read session snapshot", "sessionID", id, "error", repoErr)
		}
		return entity.Snapshot{}, err
	}

	return stored, nil
}

// MakeTurn submits cell for the side on move. On rejection the unchanged snapshot is returned with the error.
func (that *GameManager) MakeTurn(_ context.Context, id string, cell int) (entity.Snapshot, error) {
	session, err := that.GetSession(id)
	if err != nil {
		return entity.Snapshot{}, err
	}

	if err = session.SubmitMove(cell); err != nil {
		return session.Snapshot(), fmt.Errorf("failed make turn: %w", err)
	}

	return session.Snapshot(), nil
}

func (that *GameManager) NextRound(_ context.Context, id string) (entity.Snapshot, error) {
	session, err := that.GetSession(id)
	if err != nil {
		return entity.Snapshot{}, err
	}

	if err = session.NextRound(); err != nil {
		return session.Snapshot(), fmt.Errorf("failed to start next round: %w", err)
	}

	return session.Snapshot(), nil
}

func (that *GameManager) ReturnToMenu(_ context.Context, id string) (entity.Snapshot, error) {
	session, err := that.GetSession(id)
	if err != nil {
		return entity.Snapshot{}, err
	}

	session.ReturnToMenu()

	return session.Snapshot(), nil
}

// CloseSession returns the session to the menu and forgets it.
func (that *GameManager) CloseSession(ctx context.Context, id string) error {
	session, err := that.GetSession(id)
	if err != nil {
		return err
	}

	session.ReturnToMenu()
	that.remove(ctx, id)

	that.logger.Info("session closed", "sessionID", id)

	return nil
}

func (that *GameManager) Subscribe(id string, observer tictactoe.Observer) (func(), error) {
	session, err := that.GetSession(id)
	if err != nil {
		return nil, err
	}

	return session.Subscribe(observer), nil
}

func (that *GameManager) Probability(ctx context.Context, board entity.Board) probability.Split {
	return that.estimator.Estimate(ctx, board)
}

// AIMove answers a stateless move query. The bot plays whichever mark is on move by counts.
func (that *GameManager) AIMove(board entity.Board, difficulty entity.Difficulty) (int, error) {
	cell, err := that.bot.NextMove(board, entity.MarkToMove(board), entity.ParseDifficulty(string(difficulty)))
	if err != nil {
		return -1, fmt.Errorf("failed to pick move: %w", err)
	}

	return cell, nil
}

func (that *GameManager) SessionCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions)
}

func (that *GameManager) remove(ctx context.Context, id string) {
	that.mu.Lock()
	delete(that.sessions, id)
	that.mu.Unlock()

	if that.sessionRepo == nil {
		return
	}

	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
		that.logger.Error("failed to delete session snapshot", "sessionID", id, "error", err)
	}
}

// persist mirrors every state change into the repository. Failures never reach gameplay.
func (that *GameManager) persist(event tictactoe.Event) {
	if that.sessionRepo == nil {
		return
	}

	log := that.logger.With("method", "persist", "sessionID", event.Snapshot.ID)

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if event.Type == tictactoe.EventMenu {
		if err := that.sessionRepo.DeleteByID(ctx, event.Snapshot.ID); err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
			log.Error("failed to delete session snapshot", "error", err)
		}
		return
	}

	if err := that.sessionRepo.CreateOrUpdate(ctx, event.Snapshot); err != nil {
		log.Error("failed to save session snapshot", "event", event.Type, "error", err)
	}
}

func startMatch(session *tictactoe.Session, req entity.MatchRequest) error {
	switch req.Mode {
	case entity.ModePVP:
		return session.StartPVP(req.Player1, req.Player2)
	case entity.ModeBot:
		return session.StartVsBot(req.Player1, req.Difficulty)
	case entity.ModeTournament:
		return session.StartTournament(req.Player1, req.Player2, req.Rounds)
	default:
		return fmt.Errorf("%w: %q", apperror.ErrUnknownMode, req.Mode)
	}
}
