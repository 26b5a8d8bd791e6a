// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/events"
	"github.com/jason-s-yu/loveletter/internal/middleware"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	Subprotocol  = "game"
	writeTimeout = 5 * time.Second
)

// ClientMessage is an incoming websocket frame. Only the fields the type needs are read.
type ClientMessage struct {
	Type   string            `json:"type"`
	Card   *models.CardType  `json:"card,omitempty"`
	Target *uuid.UUID        `json:"target,omitempty"`
	Guess  *models.CardType  `json:"guess,omitempty"`
	Keep   *models.CardType  `json:"keep,omitempty"`
	Return []models.CardType `json:"return,omitempty"`
}

type reply struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

var errLeft = errors.New("player left the room")

// serveWS joins or reconnects the caller to the room, then relays actions until the socket
// closes. A dropped connection marks the player disconnected, not gone.
func (h *RoomHandler) serveWS(w http.ResponseWriter, r *http.Request) {
	ident, identErr := identityFromRequest(r)
	roomID, roomOK := roomIDParam(r)

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{Subprotocol},
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.WithError(err).Warn("websocket accept")
		return
	}
	defer c.CloseNow()

	switch {
	case c.Subprotocol() != Subprotocol:
		c.Close(BadSubprotocolError, "client must use the 'game' subprotocol")
		return
	case identErr != nil:
		c.Close(InvalidIdentityError, identErr.Error())
		return
	case !roomOK:
		c.Close(InvalidRoomIDError, "invalid room id")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client, release := h.hub.Register(roomID, ident.ID)
	if err := h.attach(ctx, roomID, ident, r.URL.Query().Get("secret")); err != nil {
		release()
		wctx, wcancel := context.WithTimeout(context.Background(), writeTimeout)
		wsjson.Write(wctx, c, errorFrame(err))
		wcancel()
		c.Close(JoinRejectedError, "join rejected")
		return
	}

	room := roomID.String()
	middleware.LogWebSocketConnect(h.log, r.RemoteAddr, room, ident.ID)

	go h.writePump(ctx, cancel, c, client)
	readErr := h.readLoop(ctx, c, roomID, ident.ID)
	cancel()

	if release() && !errors.Is(readErr, errLeft) {
		dctx, dcancel := context.WithTimeout(context.Background(), writeTimeout)
		if _, err := h.svc.Disconnect(dctx, roomID, ident.ID); err != nil && !errors.Is(err, models.ErrRoomNotFound) {
			h.log.WithError(err).WithField("room", roomID).Warn("mark player disconnected")
		}
		dcancel()
	}
	middleware.LogWebSocketDisconnect(h.log, r.RemoteAddr, room, ident.ID, readErr)

	if errors.Is(readErr, errLeft) {
		c.Close(websocket.StatusNormalClosure, "left the room")
	}
}

// attach reconnects a seated player, or seats a new one.
func (h *RoomHandler) attach(ctx context.Context, roomID uuid.UUID, ident identity, secret string) error {
	_, err := h.svc.Reconnect(ctx, roomID, ident.ID)
	if !errors.Is(err, models.ErrPlayerNotFound) {
		return err
	}
	p := h.seatPlayer(ctx, ident)
	if _, err := h.svc.JoinRoom(ctx, roomID, p, secret); err != nil {
		return err
	}
	return h.sync(ctx, roomID, p.ID)
}

func (h *RoomHandler) sync(ctx context.Context, roomID, playerID uuid.UUID) error {
	v, err := h.svc.View(ctx, roomID, playerID)
	if err != nil {
		return err
	}
	h.hub.Send(roomID, playerID, events.ToPlayer(playerID, events.KindSyncState, v))
	return nil
}

func (h *RoomHandler) writePump(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, client *Client) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-client.Out:
			if !ok {
				if ctx.Err() == nil {
					// a newer connection for the same player took over
					c.Close(ConnectionReplaced, "connection replaced")
				}
				return
			}
			wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
			err := c.Write(wctx, websocket.MessageText, data)
			wcancel()
			if err != nil {
				h.log.WithError(err).WithField("player", client.PlayerID).Debug("websocket write")
				return
			}
		}
	}
}

func (h *RoomHandler) readLoop(ctx context.Context, c *websocket.Conn, roomID, playerID uuid.UUID) error {
	log := h.log.WithFields(logrus.Fields{"room": roomID, "player": playerID})
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.hub.Send(roomID, playerID, badRequest("invalid JSON format"))
			continue
		}
		log.WithField("type", msg.Type).Debug("websocket message")

		if err := h.handleMessage(ctx, roomID, playerID, msg); err != nil {
			if errors.Is(err, errLeft) {
				return err
			}
			h.hub.Send(roomID, playerID, errorFrame(err))
		}
	}
}

// handleMessage runs one client action. Resulting events reach clients through the hub.
func (h *RoomHandler) handleMessage(ctx context.Context, roomID, playerID uuid.UUID, msg ClientMessage) error {
	var err error
	switch msg.Type {
	case "action_start":
		_, err = h.svc.StartGame(ctx, roomID, playerID)
	case "action_draw":
		_, err = h.svc.DrawCard(ctx, roomID, playerID)
	case "action_play":
		if msg.Card == nil {
			return fmt.Errorf("%w: card is required", models.ErrCardRequirementsNotMet)
		}
		_, err = h.svc.PlayCard(ctx, roomID, playerID, *msg.Card, msg.Target, msg.Guess)
	case "action_choose":
		if msg.Keep == nil {
			return fmt.Errorf("%w: keep is required", models.ErrInvalidCardChoice)
		}
		_, err = h.svc.SubmitCardChoice(ctx, roomID, playerID, *msg.Keep, msg.Return)
	case "action_requirements":
		if msg.Card == nil {
			return fmt.Errorf("%w: card is required", models.ErrUnknownCard)
		}
		req, rerr := h.svc.GetCardRequirements(ctx, roomID, playerID, *msg.Card)
		if rerr != nil {
			return rerr
		}
		h.hub.Send(roomID, playerID, reply{Type: "requirements", Payload: req})
	case "action_sync":
		err = h.sync(ctx, roomID, playerID)
	case "action_leave":
		if _, err = h.svc.LeaveRoom(ctx, roomID, playerID); err == nil {
			return errLeft
		}
	case "ping":
		h.hub.Send(roomID, playerID, reply{Type: "pong"})
	default:
		h.hub.Send(roomID, playerID, badRequest("unknown action type: "+msg.Type))
	}
	return err
}
