// internal/handlers/identity.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/loveletter/internal/models"
)

// Identity headers are set by the gateway in front of this service. Browsers cannot set
// headers on a websocket upgrade, so the same values are accepted as query parameters there.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
)

var errNoIdentity = errors.New("missing or invalid " + HeaderUserID)

// UserStore records the identities seen at the gateway so display names can be resolved later.
type UserStore interface {
	EnsureUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// identity is the caller as the gateway described it. Name is empty when none was sent.
type identity struct {
	ID   uuid.UUID
	Name string
}

func identityFromRequest(r *http.Request) (identity, error) {
	rawID := r.Header.Get(HeaderUserID)
	name := r.Header.Get(HeaderUserName)
	if rawID == "" {
		rawID = r.URL.Query().Get("user_id")
		name = r.URL.Query().Get("user_name")
	}

	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil || id == uuid.Nil {
		return identity{}, errNoIdentity
	}
	return identity{ID: id, Name: strings.TrimSpace(name)}, nil
}

func defaultName(id uuid.UUID) string {
	return "Player " + id.String()[:8]
}

func playerFromRequest(r *http.Request) (*models.Player, error) {
	ident, err := identityFromRequest(r)
	if err != nil {
		return nil, err
	}
	name := ident.Name
	if name == "" {
		name = defaultName(ident.ID)
	}
	return models.NewPlayer(ident.ID, name), nil
}

// seatPlayer builds the player for a caller taking a seat. With a user store a supplied name is
// recorded, and a missing one is looked up. Store failures only cost the name.
func (h *RoomHandler) seatPlayer(ctx context.Context, ident identity) *models.Player {
	p := models.NewPlayer(ident.ID, ident.Name)
	if h.users == nil {
		if p.Name == "" {
			p.Name = defaultName(ident.ID)
		}
		return p
	}

	log := h.log.WithField("player", ident.ID)
	if ident.Name == "" {
		u, err := h.users.GetUser(ctx, ident.ID)
		switch {
		case err == nil && u.DisplayName() != "":
			p.Name = u.DisplayName()
			return p
		case err != nil && !errors.Is(err, models.ErrPlayerNotFound):
			log.WithError(err).Warn("look up user")
		}
		p.Name = defaultName(ident.ID)
	}

	u := models.User{ID: ident.ID, Username: ident.Name, IsEphemeral: ident.Name == ""}
	if err := h.users.EnsureUser(ctx, u); err != nil {
		log.WithError(err).Warn("record user")
	}
	return p
}
