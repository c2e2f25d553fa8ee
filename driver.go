package bolt

import (
	"bytes"
	"io"
	"net"
	"time"

	"github.com/graphwire/golang-bolt5-driver/errors"
	"github.com/graphwire/golang-bolt5-driver/log"
)

const (
	// Version is the driver version string
	Version = "1.0"
	// ClientID is the default user agent announced in HELLO
	ClientID = "GraphwireBolt/" + Version
)

var (
	magicPreamble = []byte{0x60, 0x60, 0xb0, 0x17}
	// versionOffers holds four version proposals in descending order of
	// preference. Only Bolt 5.1 is spoken; the remaining slots are
	// zeroed out.
	versionOffers = []byte{
		0x00, 0x00, 0x01, 0x05,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	version5x1         = []byte{0x00, 0x00, 0x01, 0x05}
	noVersionSupported = []byte{0x00, 0x00, 0x00, 0x00}
)

// DialOptions configures Dial beyond the connection Options it passes
// through to NewConn.
type DialOptions struct {
	// ConnectTimeout bounds the TCP dial. Zero means no bound.
	ConnectTimeout time.Duration

	// MaxConnectionLifetime is the staleness horizon in seconds;
	// negative means connections never age out.
	MaxConnectionLifetime int64

	// RecordingName, when non-empty, wraps the transport in a recorder
	// capturing every wire event. The recording is written to
	// recordings/<name>.json on close when RECORD_OUTPUT is set.
	RecordingName string

	// ConnOptions are applied to the connection before Hello.
	ConnOptions []Option
}

// Dial connects to a Bolt server, negotiates the protocol version and
// performs the authentication handshake. The returned connection is
// ready for use.
func Dial(address string, dialOpts DialOptions) (*Conn, error) {
	transport, err := net.DialTimeout("tcp", address, dialOpts.ConnectTimeout)
	if err != nil {
		log.Errorf("An error occurred connecting to %s: %s", address, err)
		return nil, errors.Wrap(err, "An error occurred connecting to %s", address)
	}
	if dialOpts.RecordingName != "" {
		transport = newRecorder(dialOpts.RecordingName, transport)
	}

	if err := handshake(transport); err != nil {
		transport.Close()
		return nil, err
	}

	conn := NewConn(address, transport, dialOpts.MaxConnectionLifetime, dialOpts.ConnOptions...)
	if err := conn.Hello(); err != nil {
		// A FAILURE here is a clean refusal (bad credentials, say); the
		// transport is still coherent, so hang up politely.
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// handshake sends the magic preamble and the version offers, then
// checks the server picked the one version we speak.
func handshake(transport net.Conn) error {
	if _, err := transport.Write(magicPreamble); err != nil {
		return errors.Wrap(err, "An error occurred sending the handshake preamble")
	}
	if _, err := transport.Write(versionOffers); err != nil {
		return errors.Wrap(err, "An error occurred sending the version offers")
	}

	chosen := make([]byte, 4)
	if _, err := io.ReadFull(transport, chosen); err != nil {
		return errors.Wrap(err, "An error occurred reading the negotiated version")
	}

	if bytes.Equal(chosen, noVersionSupported) {
		return errors.New("Server does not support any offered protocol version")
	}
	if !bytes.Equal(chosen, version5x1) {
		return errors.New("Server negotiated unsupported protocol version %x", chosen)
	}
	log.Infof("Negotiated Bolt 5.1 with %s", transport.RemoteAddr())
	return nil
}
