package bolt

import (
	"bytes"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers a handshake over a pipe with a fixed version.
func fakeServer(t *testing.T, chosen []byte) (net.Conn, <-chan []byte) {
	t.Helper()
	client, server := net.Pipe()
	received := make(chan []byte, 1)

	go func() {
		buf := make([]byte, len(magicPreamble)+len(versionOffers))
		if _, err := io.ReadFull(server, buf); err != nil {
			close(received)
			return
		}
		received <- buf
		server.Write(chosen)
		server.Close()
	}()

	return client, received
}

func TestHandshakeNegotiates5x1(t *testing.T) {
	client, received := fakeServer(t, version5x1)
	defer client.Close()

	require.NoError(t, handshake(client))

	sent := <-received
	assert.True(t, bytes.HasPrefix(sent, magicPreamble))
	assert.Equal(t, versionOffers, sent[len(magicPreamble):])
}

func TestHandshakeRejectsNoVersion(t *testing.T) {
	client, _ := fakeServer(t, noVersionSupported)
	defer client.Close()

	err := handshake(client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support")
}

func TestHandshakeRejectsOtherVersions(t *testing.T) {
	client, _ := fakeServer(t, []byte{0x00, 0x00, 0x00, 0x04})
	defer client.Close()

	err := handshake(client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported protocol version")
}
