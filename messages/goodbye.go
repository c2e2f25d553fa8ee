package messages

const (
	// GoodbyeMessageSignature is the signature byte for the GOODBYE message
	GoodbyeMessageSignature = 0x02
)

// GoodbyeMessage Represents a GOODBYE message. The server closes the
// connection on receipt and never responds.
type GoodbyeMessage struct{}

// NewGoodbyeMessage Gets a new GoodbyeMessage struct
func NewGoodbyeMessage() GoodbyeMessage {
	return GoodbyeMessage{}
}

// Signature gets the signature byte for the struct
func (i GoodbyeMessage) Signature() byte {
	return GoodbyeMessageSignature
}

// AllFields gets the fields to encode for the struct
func (i GoodbyeMessage) AllFields() []interface{} {
	return []interface{}{}
}
