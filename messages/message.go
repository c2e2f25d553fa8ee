package messages

// Message represents a bolt protocol message: a one byte tag
// (signature) plus an ordered field list.
type Message interface {
	Signature() byte
	AllFields() []interface{}
}
