// internal/game/utils.go
package game

import (
	"github.com/jason-s-yu/loveletter/internal/events"
)

// eventKinds lists the kinds of evs in order, for log fields.
func eventKinds(evs []events.Event) []events.Kind {
	kinds := make([]events.Kind, len(evs))
	for i, ev := range evs {
		kinds[i] = ev.Kind
	}
	return kinds
}
