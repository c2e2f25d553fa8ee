package bolt

import "fmt"

// ServerError is a FAILURE response decoded off the wire. It carries
// the server-reported code and message. Receiving one does not by
// itself make the connection unusable.
type ServerError struct {
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server failure: %s (%s)", e.Message, e.Code)
}

// newServerError builds a ServerError from FAILURE metadata.
func newServerError(metadata map[string]interface{}) *ServerError {
	e := &ServerError{}
	if code, ok := metadata["code"].(string); ok {
		e.Code = code
	}
	if message, ok := metadata["message"].(string); ok {
		e.Message = message
	}
	return e
}

// ConfigurationError means the caller asked for something this
// protocol version cannot do. It is raised before any message is
// queued or encoded, so the caller can adjust and retry.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}
