package messages

const (
	// DiscardMessageSignature is the signature byte for the DISCARD message
	DiscardMessageSignature = 0x2F
)

// DiscardMessage Represents a DISCARD message
type DiscardMessage struct {
	extra map[string]interface{}
}

// NewDiscardMessage Gets a new DiscardMessage struct
func NewDiscardMessage(extra map[string]interface{}) DiscardMessage {
	return DiscardMessage{
		extra: extra,
	}
}

// Signature gets the signature byte for the struct
func (i DiscardMessage) Signature() byte {
	return DiscardMessageSignature
}

// AllFields gets the fields to encode for the struct
func (i DiscardMessage) AllFields() []interface{} {
	return []interface{}{i.extra}
}
