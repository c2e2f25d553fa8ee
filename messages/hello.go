package messages

const (
	// HelloMessageSignature is the signature byte for the HELLO message
	HelloMessageSignature = 0x01
)

// HelloMessage Represents a HELLO message
type HelloMessage struct {
	extra map[string]interface{}
}

// NewHelloMessage Gets a new HelloMessage struct
func NewHelloMessage(extra map[string]interface{}) HelloMessage {
	return HelloMessage{
		extra: extra,
	}
}

// Signature gets the signature byte for the struct
func (i HelloMessage) Signature() byte {
	return HelloMessageSignature
}

// AllFields gets the fields to encode for the struct
func (i HelloMessage) AllFields() []interface{} {
	return []interface{}{i.extra}
}
