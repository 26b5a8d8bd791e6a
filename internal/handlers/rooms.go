// internal/handlers/rooms.go

// Package handlers exposes rooms over HTTP and the game websocket.
package handlers

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/events"
	"github.com/jason-s-yu/loveletter/internal/game"
	"github.com/jason-s-yu/loveletter/internal/models"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// RoomHandler serves the room routes. The Service must publish to Hub for websocket clients
// to receive events.
type RoomHandler struct {
	svc *game.Service
	hub *Hub
	log logrus.FieldLogger

	users   UserStore
	results ResultSource
	history ActionHistory
}

// ResultSource returns the recorded final scores of a room.
type ResultSource interface {
	Results(ctx context.Context, roomID uuid.UUID) (map[uuid.UUID]int, error)
}

// ActionHistory returns the logged actions of a room in order.
type ActionHistory interface {
	Actions(ctx context.Context, roomID uuid.UUID) ([]models.GameActionRecord, error)
}

type HandlerOption func(*RoomHandler)

func WithUsers(u UserStore) HandlerOption {
	return func(h *RoomHandler) { h.users = u }
}

// WithResults serves GET /{roomID}/results.
func WithResults(r ResultSource) HandlerOption {
	return func(h *RoomHandler) { h.results = r }
}

// WithHistory serves GET /{roomID}/actions.
func WithHistory(a ActionHistory) HandlerOption {
	return func(h *RoomHandler) { h.history = a }
}

func NewRoomHandler(svc *game.Service, hub *Hub, logger logrus.FieldLogger, opts ...HandlerOption) *RoomHandler {
	h := &RoomHandler{svc: svc, hub: hub, log: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *RoomHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Route("/{roomID}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Delete("/", h.delete)
		r.Get("/requirements", h.requirements)
		r.Post("/round/finish", h.finishRound)
		r.Post("/finish", h.finishGame)
		r.Get("/ws", h.serveWS)
		if h.results != nil {
			r.Get("/results", h.roomResults)
		}
		if h.history != nil {
			r.Get("/actions", h.roomActions)
		}
	})
	return r
}

type createRoomRequest struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

type eventsResponse struct {
	Events []events.Event `json:"events"`
}

func roomIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "roomID"))
	return id, err == nil
}

// caller resolves the identity and room id shared by every room route.
func (h *RoomHandler) caller(w http.ResponseWriter, r *http.Request) (*models.Player, uuid.UUID, bool) {
	p, err := playerFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, badRequest(err.Error()))
		return nil, uuid.Nil, false
	}
	roomID, ok := roomIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, badRequest("invalid room id"))
		return nil, uuid.Nil, false
	}
	return p, roomID, true
}

func (h *RoomHandler) create(w http.ResponseWriter, r *http.Request) {
	ident, err := identityFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, badRequest(err.Error()))
		return
	}
	var req createRoomRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, badRequest("invalid JSON body"))
		return
	}
	host := h.seatPlayer(r.Context(), ident)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = host.Name + "'s room"
	}

	g, err := h.svc.CreateRoom(r.Context(), name, req.Secret, host)
	if err != nil {
		h.log.WithError(err).Error("create room")
		writeError(w, err)
		return
	}
	h.log.WithFields(logrus.Fields{"room": g.ID, "host": host.ID}).Info("room created")
	writeJSON(w, http.StatusCreated, game.BuildView(g, host.ID))
}

func (h *RoomHandler) view(w http.ResponseWriter, r *http.Request) {
	p, roomID, ok := h.caller(w, r)
	if !ok {
		return
	}
	v, err := h.svc.View(r.Context(), roomID, p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *RoomHandler) delete(w http.ResponseWriter, r *http.Request) {
	p, roomID, ok := h.caller(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteRoom(r.Context(), roomID, p.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RoomHandler) requirements(w http.ResponseWriter, r *http.Request) {
	p, roomID, ok := h.caller(w, r)
	if !ok {
		return
	}
	card, err := models.ParseCardType(r.URL.Query().Get("card"))
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := h.svc.GetCardRequirements(r.Context(), roomID, p.ID, card)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *RoomHandler) finishRound(w http.ResponseWriter, r *http.Request) {
	h.hostAction(w, r, h.svc.FinishRound)
}

func (h *RoomHandler) finishGame(w http.ResponseWriter, r *http.Request) {
	h.hostAction(w, r, h.svc.FinishGame)
}

// hostAction runs a room-wide action on behalf of the host and returns what the host may see.
func (h *RoomHandler) hostAction(w http.ResponseWriter, r *http.Request, action func(context.Context, uuid.UUID) ([]events.Event, error)) {
	p, roomID, ok := h.caller(w, r)
	if !ok {
		return
	}
	v, err := h.svc.View(r.Context(), roomID, p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if v.HostID != p.ID {
		writeError(w, models.ErrNotHost)
		return
	}
	evs, err := action(r.Context(), roomID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events.Filter(evs, p.ID)})
}

type resultsResponse struct {
	Scores  map[uuid.UUID]int `json:"scores"`
	Winners []uuid.UUID       `json:"winners"`
}

// roomResults serves the recorded final scores to members of a finished room.
func (h *RoomHandler) roomResults(w http.ResponseWriter, r *http.Request) {
	p, roomID, ok := h.caller(w, r)
	if !ok {
		return
	}
	v, err := h.svc.View(r.Context(), roomID, p.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if v.State != models.StateFinished {
		writeError(w, models.ErrGameNotFinished)
		return
	}
	scores, err := h.results.Results(r.Context(), roomID)
	if err != nil {
		h.log.WithError(err).WithField("room", roomID).Error("load results")
		writeError(w, err)
		return
	}
	best := lo.Max(lo.Values(scores))
	winners := lo.Filter(lo.Keys(scores), func(id uuid.UUID, _ int) bool { return scores[id] == best })
	slices.SortFunc(winners, func(a, b uuid.UUID) int { return strings.Compare(a.String(), b.String()) })
	writeJSON(w, http.StatusOK, resultsResponse{Scores: scores, Winners: winners})
}

// roomActions serves the logged actions the caller was allowed to see.
func (h *RoomHandler) roomActions(w http.ResponseWriter, r *http.Request) {
	p, roomID, ok := h.caller(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.View(r.Context(), roomID, p.ID); err != nil {
		writeError(w, err)
		return
	}
	recs, err := h.history.Actions(r.Context(), roomID)
	if err != nil {
		h.log.WithError(err).WithField("room", roomID).Error("load actions")
		writeError(w, err)
		return
	}
	visible := lo.Filter(recs, func(rec models.GameActionRecord, _ int) bool {
		return !rec.IsPrivate() || rec.RecipientID == p.ID
	})
	writeJSON(w, http.StatusOK, visible)
}
