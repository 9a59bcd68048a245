package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/probability"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

const (
	sessionQueryParam = "session"
	eventBufferSize   = 32
	writeWait         = 10 * time.Second
)

type gameUseCase interface {
	Snapshot(ctx context.Context, id string) (entity.Snapshot, error)
	StartMatch(ctx context.Context, id string, req entity.MatchRequest) (entity.Snapshot, error)
	MakeTurn(ctx context.Context, id string, cell int) (entity.Snapshot, error)
	NextRound(ctx context.Context, id string) (entity.Snapshot, error)
	ReturnToMenu(ctx context.Context, id string) (entity.Snapshot, error)
	Subscribe(id string, observer tictactoe.Observer) (func(), error)
	Probability(ctx context.Context, board entity.Board) probability.Split
}

type handlerFunc func(ctx context.Context, conn *connection, message *Message) error

// Server pushes session events to websocket clients and accepts their commands.
type Server struct {
	logger   *slog.Logger
	game     gameUseCase
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, game gameUseCase) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		game:   game,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionSessionStart] = server.handleStart
	server.handlers[actionSessionMove] = server.handleMove
	server.handlers[actionSessionNext] = server.handleNext
	server.handlers[actionSessionMenu] = server.handleMenu

	return server
}

// connection serialises writes; gorilla allows one concurrent writer.
type connection struct {
	conn      *websocket.Conn
	sessionID string

	writeMu sync.Mutex
	events  chan tictactoe.Event
}

func (that *connection) write(message Message) error {
	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return that.conn.WriteJSON(message)
}

// ServeHTTP upgrades the request and serves one client bound to the session in the query string.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	sessionID := r.URL.Query().Get(sessionQueryParam)
	conn := &connection{
		sessionID: sessionID,
		events:    make(chan tictactoe.Event, eventBufferSize),
	}

	// only live sessions accept a socket
	unsubscribe, err := that.game.Subscribe(sessionID, func(event tictactoe.Event) {
		select {
		case conn.events <- event:
		default:
			log.Warn("dropping event for slow client", "sessionID", sessionID, "event", event.Type)
		}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	defer unsubscribe()

	ws, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer ws.Close()
	conn.conn = ws

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	snapshot, err := that.game.Snapshot(ctx, sessionID)
	if err != nil {
		log.Error("failed to read session", "sessionID", sessionID, "error", err)
		return
	}

	go that.pushEvents(ctx, conn)

	if err = that.sendSnapshot(ctx, conn, actionSessionState, snapshot); err != nil {
		log.Error("failed to send initial state", "error", err)
		return
	}

	log.Info("WebSocket connection established", "sessionID", sessionID)

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Error("error handling messages", "sessionID", sessionID, "error", err)
	}
}

// handleMessages - processes messages from the client until it goes away.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	for {
		var message Message
		if err := conn.conn.ReadJSON(&message); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}

			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return nil
			}

			return err
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			if err := that.sendErrorResponse(conn, message.Action, "unknown action"); err != nil {
				return err
			}
			continue
		}

		if err := handler(ctx, conn, &message); err != nil {
			return err
		}
	}
}

func (that *Server) pushEvents(ctx context.Context, conn *connection) {
	log := that.logger.With("method", "pushEvents", "sessionID", conn.sessionID)

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-conn.events:
			split := that.game.Probability(ctx, event.Snapshot.Board)
			payload := ResponsePayload{
				Event:       event.Type,
				Snapshot:    &event.Snapshot,
				Probability: &split,
			}
			if event.Cell >= 0 {
				cell := event.Cell
				payload.Cell = &cell
			}

			if err := that.sendMessage(conn, actionSessionEvent, payload); err != nil {
				log.Error("failed to push event", "event", event.Type, "error", err)
				return
			}
		}
	}
}
