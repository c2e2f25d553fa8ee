package messages

const (
	// PullMessageSignature is the signature byte for the PULL message
	PullMessageSignature = 0x3F
)

// PullMessage Represents a PULL message
type PullMessage struct {
	extra map[string]interface{}
}

// NewPullMessage Gets a new PullMessage struct
func NewPullMessage(extra map[string]interface{}) PullMessage {
	return PullMessage{
		extra: extra,
	}
}

// Signature gets the signature byte for the struct
func (i PullMessage) Signature() byte {
	return PullMessageSignature
}

// AllFields gets the fields to encode for the struct
func (i PullMessage) AllFields() []interface{} {
	return []interface{}{i.extra}
}
