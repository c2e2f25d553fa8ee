package bolt

import (
	"bytes"
	"io"

	"github.com/graphwire/golang-bolt5-driver/encoding"
	"github.com/graphwire/golang-bolt5-driver/errors"
	"github.com/graphwire/golang-bolt5-driver/log"
	"github.com/graphwire/golang-bolt5-driver/messages"
	"github.com/graphwire/golang-bolt5-driver/metrics"
)

// responseHandler reacts to the response a queued request eventually
// gets. Any nil callback is simply skipped.
type responseHandler struct {
	onSuccess func(metadata map[string]interface{})
	onRecord  func(fields []interface{})
	onFailure func(failure *ServerError)
	onIgnored func()
}

// queuedMessage is an outbox entry: the message already encoded to
// wire bytes, plus the handler for its eventual response. GOODBYE is
// the one message the server never answers. Frames carrying
// credentials are flagged so trace logging never dumps their bytes.
type queuedMessage struct {
	data            []byte
	handler         responseHandler
	expectsResponse bool
	sensitive       bool
}

// pipeline is the ordered outbox of not-yet-sent messages and the
// ordered queue of handlers awaiting responses. The protocol has no
// correlation identifiers: response N always belongs to the N-th
// message sent, so both queues are strict FIFO and must never be
// reordered. Doing so would corrupt correlation for the rest of the
// connection's life.
type pipeline struct {
	transport io.ReadWriter
	chunkSize uint16
	outbox    []queuedMessage
	pending   []responseHandler
}

func newPipeline(transport io.ReadWriter, chunkSize uint16) *pipeline {
	return &pipeline{
		transport: transport,
		chunkSize: chunkSize,
	}
}

// queue encodes the message and appends it to the outbox. Nothing is
// transmitted until flush.
func (p *pipeline) queue(msg messages.Message, handler responseHandler) error {
	return p.enqueue(msg, handler, true)
}

// queueNoResponse appends a message the server will not answer.
func (p *pipeline) queueNoResponse(msg messages.Message) error {
	return p.enqueue(msg, responseHandler{}, false)
}

func (p *pipeline) enqueue(msg messages.Message, handler responseHandler, expectsResponse bool) error {
	var buf bytes.Buffer
	if err := encoding.NewEncoder(&buf, p.chunkSize).EncodeMessage(msg.Signature(), msg.AllFields()); err != nil {
		return errors.Wrap(err, "An error occurred encoding a message for the outbox")
	}
	_, sensitive := msg.(messages.LogonMessage)
	p.outbox = append(p.outbox, queuedMessage{
		data:            buf.Bytes(),
		handler:         handler,
		expectsResponse: expectsResponse,
		sensitive:       sensitive,
	})
	log.Tracef("Queued message %v", msg)
	return nil
}

// flush writes every queued message to the transport in FIFO order,
// then clears the outbox. Handlers of messages that expect a response
// move onto the pending queue.
func (p *pipeline) flush() error {
	for i, queued := range p.outbox {
		if _, err := p.transport.Write(queued.data); err != nil {
			// Keep what was never sent out of the pending queue, but
			// the connection is beyond saving at this point anyway.
			p.outbox = p.outbox[i:]
			return errors.Wrap(err, "An error occurred writing a queued message to the transport")
		}
		metrics.MessagesSent.Inc()
		if queued.sensitive {
			log.Tracef("Sent %d bytes, contents elided: frame carries credentials", len(queued.data))
		} else {
			log.Tracef("Sent %d bytes:\n\n%s", len(queued.data), sprintByteHex(queued.data))
		}
		if queued.expectsResponse {
			p.pending = append(p.pending, queued.handler)
		}
	}
	p.outbox = p.outbox[:0]
	return nil
}

// pendingCount reports how many responses remain to be drained.
func (p *pipeline) pendingCount() int {
	return len(p.pending)
}

// fetchOne reads exactly one message off the transport and resolves it
// against the oldest pending handler. RECORD messages belong to the
// same request as the summary that follows them, so the handler is
// pushed back to the front until SUCCESS, FAILURE or IGNORED arrives.
//
// A FAILURE is returned as a *ServerError after invoking the handler.
// Every other error return means the stream can no longer be trusted.
func (p *pipeline) fetchOne() error {
	if len(p.pending) == 0 {
		return errors.New("Received a response with no pending request handler, connection is desynchronized")
	}

	tag, fields, err := encoding.NewDecoder(p.transport).DecodeMessage()
	if err != nil {
		return errors.Wrap(err, "An error occurred decoding a response")
	}
	metrics.MessagesReceived.Inc()

	handler := p.pending[0]
	p.pending = p.pending[1:]

	switch tag {
	case messages.SuccessMessageSignature:
		metadata := fieldMap(fields)
		log.Tracef("Received SUCCESS %v", metadata)
		if handler.onSuccess != nil {
			handler.onSuccess(metadata)
		}
		return nil

	case messages.FailureMessageSignature:
		failure := newServerError(fieldMap(fields))
		log.Infof("Received FAILURE %s", failure)
		if handler.onFailure != nil {
			handler.onFailure(failure)
		}
		return failure

	case messages.RecordMessageSignature:
		if handler.onRecord != nil && len(fields) > 0 {
			if record, ok := fields[0].([]interface{}); ok {
				handler.onRecord(record)
			}
		}
		// The request isn't resolved until its summary arrives
		p.pending = append([]responseHandler{handler}, p.pending...)
		return nil

	case messages.IgnoredMessageSignature:
		log.Tracef("Received IGNORED")
		if handler.onIgnored != nil {
			handler.onIgnored()
		}
		return nil

	default:
		return errors.New("Unrecognized response message with tag %x, connection is desynchronized", tag)
	}
}

// fetchAll drains responses until no handler is pending, stopping at
// the first error.
func (p *pipeline) fetchAll() error {
	for len(p.pending) > 0 {
		if err := p.fetchOne(); err != nil {
			return err
		}
	}
	return nil
}

func fieldMap(fields []interface{}) map[string]interface{} {
	if len(fields) > 0 {
		if m, ok := fields[0].(map[string]interface{}); ok {
			return m
		}
	}
	return map[string]interface{}{}
}
