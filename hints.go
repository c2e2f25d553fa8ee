package bolt

import (
	"fmt"
	"time"

	"github.com/graphwire/golang-bolt5-driver/log"
)

// recvTimeoutHintName is the hint a server sends to ask the client to
// bound how long it waits on a response.
const recvTimeoutHintName = "connection.recv_timeout_seconds"

// hintHandler pairs a validator with the effect to apply. The registry
// below is the single place to extend when servers grow new hints.
// Validation failures are diagnostic only and never propagate.
type hintHandler struct {
	validate func(value interface{}) error
	apply    func(c *Conn, value interface{})
}

var hintHandlers = map[string]hintHandler{
	recvTimeoutHintName: {
		validate: func(value interface{}) error {
			// The decoder yields int64 for every integer width. Bools,
			// floats, strings and nil all fail the assertion.
			seconds, ok := value.(int64)
			if !ok {
				return fmt.Errorf("only strictly positive integer values are accepted, got %T", value)
			}
			if seconds <= 0 {
				return fmt.Errorf("only strictly positive values are accepted, got %d", seconds)
			}
			return nil
		},
		apply: func(c *Conn, value interface{}) {
			seconds := value.(int64)
			c.SetTimeout(time.Duration(seconds) * time.Second)
			log.Infof("Applied %s hint: %ds", recvTimeoutHintName, seconds)
		},
	},
}

// applyHints walks the hints mapping from a HELLO SUCCESS response.
// Recognized hints are validated and applied; invalid values are
// logged and skipped; unrecognized keys are ignored so future servers
// can send hints we don't know about yet.
func (c *Conn) applyHints(metadata map[string]interface{}) {
	hints, ok := metadata["hints"].(map[string]interface{})
	if !ok {
		return
	}

	for key, value := range hints {
		handler, ok := hintHandlers[key]
		if !ok {
			continue
		}
		if err := handler.validate(value); err != nil {
			log.Warnf("Ignoring invalid %q hint value %#v: %s", key, value, err)
			continue
		}
		handler.apply(c, value)
	}
}
