package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

func (that *Server) handleStart(ctx context.Context, conn *connection, msg *Message) error {
	var payloadReq RequestPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil || payloadReq.Match == nil {
		return that.sendErrorResponse(conn, msg.Action, "Match is required")
	}

	if _, err := that.game.StartMatch(ctx, conn.sessionID, *payloadReq.Match); err != nil {
		return that.sendGameError(conn, msg.Action, err)
	}

	return nil
}

func (that *Server) handleMove(ctx context.Context, conn *connection, msg *Message) error {
	var payloadReq RequestPayload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil || payloadReq.Cell == nil {
		return that.sendErrorResponse(conn, msg.Action, "Cell is required")
	}

	if _, err := that.game.MakeTurn(ctx, conn.sessionID, *payloadReq.Cell); err != nil {
		return that.sendGameError(conn, msg.Action, err)
	}

	return nil
}

func (that *Server) handleNext(ctx context.Context, conn *connection, msg *Message) error {
	if _, err := that.game.NextRound(ctx, conn.sessionID); err != nil {
		return that.sendGameError(conn, msg.Action, err)
	}

	return nil
}

func (that *Server) handleMenu(ctx context.Context, conn *connection, msg *Message) error {
	if _, err := that.game.ReturnToMenu(ctx, conn.sessionID); err != nil {
		return that.sendGameError(conn, msg.Action, err)
	}

	return nil
}

// sendGameError reports a rejected command; only a vanished session ends the connection.
func (that *Server) sendGameError(conn *connection, action string, err error) error {
	if sendErr := that.sendErrorResponse(conn, action, err.Error()); sendErr != nil {
		return sendErr
	}

	if errors.Is(err, apperror.ErrSessionNotFound) {
		return fmt.Errorf("session %s: %w", conn.sessionID, err)
	}

	return nil
}

func (that *Server) sendSnapshot(ctx context.Context, conn *connection, action string, snapshot entity.Snapshot) error {
	split := that.game.Probability(ctx, snapshot.Board)

	return that.sendMessage(conn, action, ResponsePayload{Snapshot: &snapshot, Probability: &split})
}

func (that *Server) sendMessage(conn *connection, action string, payload ResponsePayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = conn.write(Message{Action: action, Payload: payloadJSON}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendErrorResponse(conn *connection, action, errorMsg string) error {
	if err := that.sendMessage(conn, action, ResponsePayload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
