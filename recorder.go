package bolt

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/graphwire/golang-bolt5-driver/encoding"
	"github.com/graphwire/golang-bolt5-driver/errors"
	"github.com/graphwire/golang-bolt5-driver/log"
)

// recorder wraps a transport and records the exchanged messages. With
// a nil inner transport it plays back scripted responses instead,
// which is how the driver talks to a pretend server in tests: reads
// are served from the script, writes are captured for inspection.
type recorder struct {
	net.Conn
	name         string
	events       []*event
	script       [][]byte
	scriptOffset int
	closed       bool
}

// newRecorder records a live session over an established transport.
func newRecorder(name string, transport net.Conn) *recorder {
	return &recorder{name: name, Conn: transport}
}

// newPlayback builds a recorder with no transport behind it. Each
// response is a complete server message; reads drain them in order.
func newPlayback(name string, responses ...[]byte) *recorder {
	return &recorder{name: name, script: responses}
}

// addResponse appends another scripted server message.
func (r *recorder) addResponse(response []byte) {
	r.script = append(r.script, response)
}

func (r *recorder) lastEvent() *event {
	if len(r.events) > 0 {
		return r.events[len(r.events)-1]
	}
	return nil
}

// Read reads from the transport, or from the script in playback mode.
func (r *recorder) Read(p []byte) (n int, err error) {
	if r.Conn != nil {
		n, err = r.Conn.Read(p)
		r.record(p[:n], false)
		r.recordErr(err, false)
		return n, err
	}

	if r.scriptOffset >= len(r.script) {
		return 0, errors.New("Trying to read past all of the scripted responses in the recorder")
	}
	pending := r.script[r.scriptOffset]
	n = copy(p, pending)
	r.record(p[:n], false)
	if n == len(pending) {
		r.scriptOffset++
	} else {
		r.script[r.scriptOffset] = pending[n:]
	}
	return n, nil
}

// Write writes to the transport. In playback mode the bytes are only
// recorded; decode them back with writtenMessages.
func (r *recorder) Write(b []byte) (n int, err error) {
	if r.Conn != nil {
		n, err = r.Conn.Write(b)
		r.record(b[:n], true)
		r.recordErr(err, true)
		return n, err
	}

	r.record(b, true)
	return len(b), nil
}

// Close closes the transport, flushing the recording if requested. In
// playback mode it checks the script was fully consumed.
func (r *recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	if r.Conn != nil {
		if err := r.flush(); err != nil {
			return err
		}
		return r.Conn.Close()
	}
	if r.scriptOffset != len(r.script) {
		return errors.New("Didn't read all of the scripted responses in the recorder on close: %d of %d consumed", r.scriptOffset, len(r.script))
	}
	return nil
}

func (r *recorder) record(data []byte, isWrite bool) {
	if len(data) == 0 {
		return
	}

	ev := r.lastEvent()
	if ev == nil || ev.Completed || ev.IsWrite != isWrite {
		ev = newEvent(isWrite)
		r.events = append(r.events, ev)
	}

	ev.Event = append(ev.Event, data...)
	ev.Completed = bytes.HasSuffix(data, encoding.EndMessage)
}

func (r *recorder) recordErr(err error, isWrite bool) {
	if err == nil {
		return
	}

	ev := r.lastEvent()
	if ev == nil || ev.Completed || ev.IsWrite != isWrite {
		ev = newEvent(isWrite)
		r.events = append(r.events, ev)
	}
	ev.Error = err.Error()
	ev.Completed = true
}

// writtenMessage is one decoded client-to-server message.
type writtenMessage struct {
	tag    byte
	fields []interface{}
}

// writtenMessages decodes everything the client wrote, in order.
func (r *recorder) writtenMessages() ([]writtenMessage, error) {
	var raw []byte
	for _, ev := range r.events {
		if ev.IsWrite {
			raw = append(raw, ev.Event...)
		}
	}

	reader := bytes.NewReader(raw)
	decoder := encoding.NewDecoder(reader)
	var out []writtenMessage
	for reader.Len() > 0 {
		tag, fields, err := decoder.DecodeMessage()
		if err != nil {
			return nil, err
		}
		out = append(out, writtenMessage{tag: tag, fields: fields})
	}
	return out, nil
}

func (r *recorder) load(name string) error {
	path := filepath.Join("recordings", name+".json")
	file, err := os.OpenFile(path, os.O_RDONLY, 0660)
	if err != nil {
		return err
	}
	defer file.Close()
	return json.NewDecoder(file).Decode(&r.events)
}

func (r *recorder) writeRecording() error {
	path := filepath.Join("recordings", r.name+".json")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0660)
	if err != nil {
		return err
	}
	defer file.Close()
	return json.NewEncoder(file).Encode(r.events)
}

func (r *recorder) flush() error {
	if os.Getenv("RECORD_OUTPUT") != "" {
		log.Infof("Writing recording %s", r.name)
		return r.writeRecording()
	}
	return nil
}

func (r *recorder) LocalAddr() net.Addr {
	if r.Conn != nil {
		return r.Conn.LocalAddr()
	}
	return nil
}

func (r *recorder) RemoteAddr() net.Addr {
	if r.Conn != nil {
		return r.Conn.RemoteAddr()
	}
	return nil
}

func (r *recorder) SetDeadline(t time.Time) error {
	if r.Conn != nil {
		return r.Conn.SetDeadline(t)
	}
	return nil
}

func (r *recorder) SetReadDeadline(t time.Time) error {
	if r.Conn != nil {
		return r.Conn.SetReadDeadline(t)
	}
	return nil
}

func (r *recorder) SetWriteDeadline(t time.Time) error {
	if r.Conn != nil {
		return r.Conn.SetWriteDeadline(t)
	}
	return nil
}

// event is a single read or write in a recording
type event struct {
	Timestamp int64 `json:"-"`
	Event     []byte
	IsWrite   bool
	Completed bool
	Error     string
}

func newEvent(isWrite bool) *event {
	return &event{
		Timestamp: time.Now().UnixNano(),
		IsWrite:   isWrite,
	}
}
