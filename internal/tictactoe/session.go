package tictactoe

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	DefaultPreRoundDelay = 3 * time.Second

	winPoints  = 2
	drawPoints = 1
)

type botService interface {
	NextMove(board entity.Board, botMark string, difficulty entity.Difficulty) (int, error)
}

type Options struct {
	TurnTimeout   time.Duration
	PreRoundDelay time.Duration
	Clock         clock.Clock
}

// Session is one player's game context: mode, identities, scores, the live round and its timer.
// Every command runs to completion under the session lock.
type Session struct {
	mu sync.Mutex

	id     string
	logger *slog.Logger
	bot    botService
	clock  clock.Clock
	timer  *TurnTimer

	preRoundDelay time.Duration
	pendingRound  *clock.Timer
	pendingGen    uint64

	subscriptions []subscription
	nextSubID     int
	pending       []Event

	notifyMu   sync.Mutex
	notifyCond *sync.Cond
	nextTicket uint64
	delivered  uint64

	mode         entity.Mode
	status       string
	players      [2]entity.Identity
	difficulty   entity.Difficulty
	humanMark    string
	botMark      string
	humanStartsX bool

	round        *Round
	roundNumber  int
	totalRounds  int
	starter      string
	timerEnabled bool

	roundOutcome *entity.Outcome
	matchOutcome *entity.Outcome
}

func NewSession(id string, logger *slog.Logger, bot botService, opts Options) *Session {
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	delay := opts.PreRoundDelay
	if delay <= 0 {
		delay = DefaultPreRoundDelay
	}

	session := &Session{
		id:            id,
		logger:        logger.With("component", "session", "sessionID", id),
		bot:           bot,
		clock:         clk,
		timer:         NewTurnTimer(clk, opts.TurnTimeout),
		preRoundDelay: delay,
		status:        entity.StatusIdle,
		humanStartsX:  true,
	}
	session.notifyCond = sync.NewCond(&session.notifyMu)

	return session
}

func (that *Session) ID() string {
	return that.id
}

// Subscribe registers an observer and returns a function that removes it.
func (that *Session) Subscribe(observer Observer) func() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextSubID++
	id := that.nextSubID
	that.subscriptions = append(that.subscriptions, subscription{id: id, observer: observer})

	var once sync.Once
	return func() {
		once.Do(func() {
			that.mu.Lock()
			defer that.mu.Unlock()

			for i, sub := range that.subscriptions {
				if sub.id == id {
					that.subscriptions = append(that.subscriptions[:i:i], that.subscriptions[i+1:]...)
					return
				}
			}
		})
	}
}

// StartPVP starts a two-human match. X always belongs to the first name.
func (that *Session) StartPVP(name1, name2 string) error {
	that.mu.Lock()
	defer that.unlockAndNotify()

	that.resetMatch(entity.ModePVP)
	that.players = [2]entity.Identity{
		{Name: nameOrDefault(name1, entity.DefaultPlayerOneName)},
		{Name: nameOrDefault(name2, entity.DefaultPlayerTwoName)},
	}

	return that.startRound()
}

// StartVsBot starts a match against the automated opponent. The human's mark alternates
// between matches; scores carry over from the previous bot match until the menu is reached.
func (that *Session) StartVsBot(name string, difficulty entity.Difficulty) error {
	that.mu.Lock()
	defer that.unlockAndNotify()

	scores := [2]int{}
	if that.mode == entity.ModeBot {
		scores = [2]int{that.players[0].Score, that.players[1].Score}
	}

	that.resetMatch(entity.ModeBot)
	that.players = [2]entity.Identity{
		{Name: nameOrDefault(name, entity.DefaultHumanName), Score: scores[0]},
		{Name: entity.BotName, Score: scores[1]},
	}
	that.difficulty = entity.ParseDifficulty(string(difficulty))

	that.humanMark = entity.PlayerO
	if that.humanStartsX {
		that.humanMark = entity.PlayerX
	}
	that.botMark = entity.Opponent(that.humanMark)
	that.humanStartsX = !that.humanStartsX

	return that.startRound()
}

// StartTournament starts a fixed-length match; fewer than two rounds is raised to two.
func (that *Session) StartTournament(name1, name2 string, rounds int) error {
	that.mu.Lock()
	defer that.unlockAndNotify()

	that.resetMatch(entity.ModeTournament)
	that.players = [2]entity.Identity{
		{Name: nameOrDefault(name1, entity.DefaultPlayerOneName)},
		{Name: nameOrDefault(name2, entity.DefaultPlayerTwoName)},
	}
	that.totalRounds = max(rounds, entity.MinTournamentRounds)

	return that.startRound()
}

// SubmitMove plays the side on move at cell. Rejections return an error and change nothing.
func (that *Session) SubmitMove(cell int) error {
	that.mu.Lock()
	defer that.unlockAndNotify()

	if err := that.confirmPlayable(); err != nil {
		return err
	}

	if that.mode == entity.ModeBot && that.round.Turn != that.humanMark {
		return apperror.ErrNotYourTurn
	}

	if err := that.round.MakeTurn(that.round.Turn, cell); err != nil {
		return fmt.Errorf("move rejected: %w", err)
	}

	that.timer.Stop()
	that.emitMove(EventMove, cell)

	if that.round.IsOver() {
		that.finishRound()
		return nil
	}

	switch that.mode {
	case entity.ModeTournament:
		that.timerEnabled = true
		that.armTimer()
	case entity.ModeBot:
		return that.playBot()
	}

	return nil
}

// NextRound starts another round on demand. In a tournament it skips the remaining pre-round delay.
func (that *Session) NextRound() error {
	that.mu.Lock()
	defer that.unlockAndNotify()

	switch {
	case that.mode == entity.ModeNone:
		return apperror.ErrNoActiveGame
	case that.status == entity.StatusMatchComplete:
		return apperror.ErrMatchComplete
	case that.status == entity.StatusRoundRunning:
		return apperror.ErrRoundInProgress
	}

	if that.mode == entity.ModeTournament {
		that.cancelPendingRound()
		return that.advanceTournament()
	}

	that.roundNumber++
	that.starter = entity.PlayerX

	return that.startRound()
}

// ReturnToMenu clears the whole match. The bot-mode mark alternation survives.
func (that *Session) ReturnToMenu() {
	that.mu.Lock()
	defer that.unlockAndNotify()

	that.resetMatch(entity.ModeNone)
	that.status = entity.StatusIdle
	that.roundNumber = 0
	that.players = [2]entity.Identity{}

	that.emit(EventMenu)
}

// NameForMark resolves which identity owns mark under the current mode.
func (that *Session) NameForMark(mark string) string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.players[that.identityForMark(mark)].Name
}

func (that *Session) Snapshot() entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshot()
}

func (that *Session) resetMatch(mode entity.Mode) {
	that.timer.Stop()
	that.cancelPendingRound()

	that.mode = mode
	that.difficulty = ""
	that.humanMark, that.botMark = "", ""
	that.round = nil
	that.roundNumber = 1
	that.totalRounds = 0
	that.starter = entity.PlayerX
	that.timerEnabled = false
	that.roundOutcome = nil
	that.matchOutcome = nil
}

func (that *Session) startRound() error {
	that.timer.Stop()
	that.round = NewRound(that.starter)
	that.status = entity.StatusRoundRunning
	that.roundOutcome = nil
	that.timerEnabled = that.mode == entity.ModeBot

	that.emit(EventRoundStarted)
	that.logger.Info("round started", "mode", that.mode, "round", that.roundNumber, "starter", that.starter)

	if that.mode == entity.ModeBot && that.round.Turn == that.botMark {
		return that.playBot()
	}

	that.armTimer()

	return nil
}

// playBot lets the automated side move on the live round and hands the turn back.
func (that *Session) playBot() error {
	cell, err := that.bot.NextMove(that.round.Board, that.botMark, that.difficulty)
	if err != nil {
		that.logger.Error("bot found no move on a running round", "board", that.round.Board, "error", err)
		return fmt.Errorf("%w: %w", apperror.ErrEngineInvariant, err)
	}

	if err = that.round.MakeTurn(that.botMark, cell); err != nil {
		that.logger.Error("bot produced an illegal move", "cell", cell, "error", err)
		return fmt.Errorf("%w: %w", apperror.ErrEngineInvariant, err)
	}

	that.emitMove(EventBotMove, cell)

	if that.round.IsOver() {
		that.finishRound()
		return nil
	}

	that.armTimer()

	return nil
}

func (that *Session) armTimer() {
	if !that.timerEnabled {
		return
	}

	that.timer.Start(that.handleExpiry)
}

// handleExpiry forfeits the side on move, unless a move or reset already superseded this countdown.
func (that *Session) handleExpiry(generation uint64) {
	that.mu.Lock()
	defer that.unlockAndNotify()

	if !that.timer.IsCurrent(generation) || that.round == nil || that.round.IsOver() {
		return
	}

	loser := that.round.Turn
	if _, err := that.round.Forfeit(); err != nil {
		return
	}

	that.logger.Info("turn timed out", "mark", loser, "round", that.roundNumber)
	that.finishRound()
}

// finishRound is the single scoring path for line wins, draws and forfeits.
func (that *Session) finishRound() {
	that.timer.Stop()
	that.status = entity.StatusRoundOver

	outcome := entity.Outcome{Forfeit: that.round.Forfeited}
	if that.round.IsDraw() {
		that.players[0].Score += drawPoints
		that.players[1].Score += drawPoints
		outcome.Draw = true
		outcome.Message = "It's a draw!"
	} else {
		winner := that.players[that.identityForMark(that.round.Winner)]
		that.players[that.identityForMark(that.round.Winner)].Score += winPoints
		outcome.Winner = winner.Name
		outcome.WinnerMark = that.round.Winner
		outcome.Message = winner.Name + " wins!"
		if outcome.Forfeit {
			outcome.Message = "Time's up! " + outcome.Message
		}
	}
	that.roundOutcome = &outcome

	eventType := EventRoundEnded
	if outcome.Forfeit {
		eventType = EventTimeout
	}
	that.emit(eventType)
	that.logger.Info("round ended", "round", that.roundNumber, "winner", that.round.Winner, "forfeit", outcome.Forfeit)

	if that.mode != entity.ModeTournament {
		return
	}

	if that.roundNumber >= that.totalRounds {
		that.status = entity.StatusMatchComplete
		result := entity.TournamentResult(that.players[0].Name, that.players[0].Score, that.players[1].Name, that.players[1].Score)
		that.matchOutcome = &result

		that.emit(EventMatchCompleted)
		that.logger.Info("tournament complete", "winner", result.Winner, "draw", result.Draw)

		return
	}

	that.schedulePendingRound()
}

func (that *Session) schedulePendingRound() {
	that.cancelPendingRound()

	generation := that.pendingGen
	that.pendingRound = that.clock.AfterFunc(that.preRoundDelay, func() {
		that.startPendingRound(generation)
	})
}

func (that *Session) startPendingRound(generation uint64) {
	that.mu.Lock()
	defer that.unlockAndNotify()

	if that.pendingRound == nil || that.pendingGen != generation {
		return
	}
	that.pendingRound = nil

	if err := that.advanceTournament(); err != nil {
		that.logger.Error("failed to start next tournament round", "error", err)
	}
}

func (that *Session) cancelPendingRound() {
	if that.pendingRound != nil {
		that.pendingRound.Stop()
		that.pendingRound = nil
	}
	that.pendingGen++
}

func (that *Session) advanceTournament() error {
	that.roundNumber++
	that.starter = entity.Opponent(that.starter)

	return that.startRound()
}

// identityForMark returns 0 for the first identity and 1 for the second.
func (that *Session) identityForMark(mark string) int {
	switch that.mode {
	case entity.ModeBot:
		if mark == that.humanMark {
			return 0
		}
	case entity.ModeTournament:
		if mark == that.starter {
			return 0
		}
	default:
		if mark == entity.PlayerX {
			return 0
		}
	}

	return 1
}

func (that *Session) marks() [2]string {
	switch that.mode {
	case entity.ModeBot:
		return [2]string{that.humanMark, that.botMark}
	case entity.ModeTournament:
		return [2]string{that.starter, entity.Opponent(that.starter)}
	case entity.ModePVP:
		return [2]string{entity.PlayerX, entity.PlayerO}
	default:
		return [2]string{}
	}
}

func (that *Session) confirmPlayable() error {
	switch {
	case that.mode == entity.ModeNone:
		return apperror.ErrNoActiveGame
	case that.status == entity.StatusMatchComplete:
		return apperror.ErrMatchComplete
	case that.round == nil || that.round.IsOver():
		return apperror.ErrRoundOver
	default:
		return nil
	}
}

func (that *Session) snapshot() entity.Snapshot {
	snapshot := entity.Snapshot{
		ID:          that.id,
		Mode:        that.mode,
		Status:      that.status,
		Players:     that.players,
		Difficulty:  that.difficulty,
		Round:       that.roundNumber,
		TotalRounds: that.totalRounds,
		Starter:     that.starter,
		TimeLeft:    that.timer.Remaining(),
		TimerActive: that.timer.Active(),
	}

	marks := that.marks()
	for i := range snapshot.Players {
		snapshot.Players[i].Mark = marks[i]
	}

	if that.round != nil {
		snapshot.Board = that.round.Board
		snapshot.Turn = that.round.Turn
	}

	if that.roundOutcome != nil {
		outcome := *that.roundOutcome
		snapshot.RoundOutcome = &outcome
	}

	if that.matchOutcome != nil {
		outcome := *that.matchOutcome
		snapshot.MatchOutcome = &outcome
	}

	return snapshot
}

func (that *Session) emit(eventType string) {
	that.pending = append(that.pending, Event{Type: eventType, Cell: -1, Snapshot: that.snapshot()})
}

func (that *Session) emitMove(eventType string, cell int) {
	that.pending = append(that.pending, Event{Type: eventType, Cell: cell, Snapshot: that.snapshot()})
}

// unlockAndNotify releases the lock and then delivers the events queued by the operation.
// Operations deliver in the order they held the lock; a later one waits for the earlier delivery to finish.
func (that *Session) unlockAndNotify() {
	events := that.pending
	that.pending = nil

	if len(events) == 0 {
		that.mu.Unlock()
		return
	}

	observers := make([]Observer, 0, len(that.subscriptions))
	for _, sub := range that.subscriptions {
		observers = append(observers, sub.observer)
	}

	ticket := that.nextTicket
	that.nextTicket++

	that.mu.Unlock()

	that.notifyMu.Lock()
	for that.delivered != ticket {
		that.notifyCond.Wait()
	}
	that.notifyMu.Unlock()

	for _, event := range events {
		for _, observer := range observers {
			observer(event)
		}
	}

	that.notifyMu.Lock()
	that.delivered++
	that.notifyCond.Broadcast()
	that.notifyMu.Unlock()
}

func nameOrDefault(name, fallback string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return fallback
}
