package messages

const (
	// LogoffMessageSignature is the signature byte for the LOGOFF message
	LogoffMessageSignature = 0x6B
)

// LogoffMessage Represents a LOGOFF message
type LogoffMessage struct{}

// NewLogoffMessage Gets a new LogoffMessage struct
func NewLogoffMessage() LogoffMessage {
	return LogoffMessage{}
}

// Signature gets the signature byte for the struct
func (i LogoffMessage) Signature() byte {
	return LogoffMessageSignature
}

// AllFields gets the fields to encode for the struct
func (i LogoffMessage) AllFields() []interface{} {
	return []interface{}{}
}
