// internal/handlers/errors.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jason-s-yu/loveletter/internal/models"
)

// ErrorFrame is the error message sent over websockets and HTTP alike.
type ErrorFrame struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorMapping struct {
	err    error
	code   string
	status int
}

// Order matters: typed errors unwrap to the generic sentinels listed after them.
var errorMappings = []errorMapping{
	{models.ErrRoomNotFound, "room_not_found", http.StatusNotFound},
	{models.ErrPlayerNotFound, "player_not_found", http.StatusNotFound},
	{models.ErrPlayerNotInGame, "player_not_in_game", http.StatusForbidden},
	{models.ErrNotHost, "not_host", http.StatusForbidden},
	{models.ErrInvalidSecret, "invalid_secret", http.StatusForbidden},
	{models.ErrRoomFull, "room_full", http.StatusConflict},
	{models.ErrInvalidPlayerCount, "invalid_player_count", http.StatusConflict},
	{models.ErrGameAlreadyStarted, "game_already_started", http.StatusConflict},
	{models.ErrGameNotStarted, "game_not_started", http.StatusConflict},
	{models.ErrGameFinished, "game_finished", http.StatusGone},
	{models.ErrGameNotFinished, "game_not_finished", http.StatusConflict},
	{models.ErrNotPlayersTurn, "not_your_turn", http.StatusConflict},
	{models.ErrRoundNotOver, "round_not_over", http.StatusConflict},
	{models.ErrMandatoryCardPlay, "mandatory_card", http.StatusUnprocessableEntity},
	{models.ErrCardNotHeld, "card_not_held", http.StatusUnprocessableEntity},
	{models.ErrCardRequirementsNotMet, "requirements_not_met", http.StatusUnprocessableEntity},
	{models.ErrUnknownCard, "unknown_card", http.StatusBadRequest},
	{models.ErrChoicePending, "choice_pending", http.StatusConflict},
	{models.ErrNoPendingChoice, "no_pending_choice", http.StatusConflict},
	{models.ErrInvalidCardChoice, "invalid_card_choice", http.StatusUnprocessableEntity},
	{models.ErrEmptyDeck, "empty_deck", http.StatusConflict},
	{models.ErrDeckFull, "deck_full", http.StatusConflict},
	{models.ErrInvalidTransition, "invalid_transition", http.StatusConflict},
	{models.ErrInvalidGameState, "invalid_state", http.StatusConflict},
	{context.DeadlineExceeded, "busy", http.StatusServiceUnavailable},
}

// classify maps err to a stable code and HTTP status.
func classify(err error) (string, int) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.code, m.status
		}
	}
	return "internal", http.StatusInternalServerError
}

func errorFrame(err error) ErrorFrame {
	code, status := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	return ErrorFrame{Type: "error", Code: code, Message: msg}
}

func badRequest(msg string) ErrorFrame {
	return ErrorFrame{Type: "error", Code: "bad_request", Message: msg}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	_, status := classify(err)
	writeJSON(w, status, errorFrame(err))
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
