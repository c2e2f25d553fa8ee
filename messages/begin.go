package messages

const (
	// BeginMessageSignature is the signature byte for the BEGIN message
	BeginMessageSignature = 0x11
)

// BeginMessage Represents a BEGIN message
type BeginMessage struct {
	extra map[string]interface{}
}

// NewBeginMessage Gets a new BeginMessage struct
func NewBeginMessage(extra map[string]interface{}) BeginMessage {
	return BeginMessage{
		extra: extra,
	}
}

// Signature gets the signature byte for the struct
func (i BeginMessage) Signature() byte {
	return BeginMessageSignature
}

// AllFields gets the fields to encode for the struct
func (i BeginMessage) AllFields() []interface{} {
	return []interface{}{i.extra}
}
