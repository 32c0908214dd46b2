package viridian

import (
	"net"

	"github.com/rs/zerolog"
	"github.com/viridianmc/viridian/status"
)

// NewLogTracker returns a Tracker that only logs connecting players.
func NewLogTracker(log zerolog.Logger) status.Tracker {
	return logTracker{log: log}
}

type logTracker struct {
	log zerolog.Logger
}

func (tracker logTracker) NotifyConnect(addr net.Addr, id string, name string) {
	event := tracker.log.Info().Str("name", name)
	if addr != nil {
		event = event.Str("addr", addr.String())
	}
	if id != "" {
		event = event.Str("id", id)
	}
	event.Msg("player connected")
}
