package bolt

import (
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphwire/golang-bolt5-driver/encoding"
	"github.com/graphwire/golang-bolt5-driver/messages"
)

func TestRecorderCapturesLiveTraffic(t *testing.T) {
	client, server := net.Pipe()

	response, err := encoding.Marshal(messages.SuccessMessageSignature, []interface{}{map[string]interface{}{}})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 1024)
		if _, err := server.Read(buf); err != nil {
			return
		}
		server.Write(response)
		server.Close()
	}()

	rec := newRecorder(t.Name(), client)

	request, err := encoding.Marshal(messages.ResetMessageSignature, nil)
	require.NoError(t, err)
	_, err = rec.Write(request)
	require.NoError(t, err)

	tag, _, err := encoding.NewDecoder(rec).DecodeMessage()
	require.NoError(t, err)
	assert.Equal(t, byte(messages.SuccessMessageSignature), tag)

	<-done
	require.NoError(t, rec.Close())

	written, err := rec.writtenMessages()
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, byte(messages.ResetMessageSignature), written[0].tag)

	var reads int
	for _, ev := range rec.events {
		if !ev.IsWrite {
			reads++
			assert.True(t, ev.Completed)
		}
	}
	assert.Equal(t, 1, reads)
}

func TestRecorderPersistsAndLoads(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)
	require.NoError(t, os.MkdirAll("recordings", 0770))
	t.Setenv("RECORD_OUTPUT", "1")

	client, server := net.Pipe()
	go func() {
		buf := make([]byte, 1024)
		server.Read(buf)
		server.Close()
	}()

	rec := newRecorder("persists-and-loads", client)
	request, err := encoding.Marshal(messages.GoodbyeMessageSignature, nil)
	require.NoError(t, err)
	_, err = rec.Write(request)
	require.NoError(t, err)

	// Close flushes the recording to recordings/<name>.json
	require.NoError(t, rec.Close())

	loaded := &recorder{}
	require.NoError(t, loaded.load("persists-and-loads"))
	require.Len(t, loaded.events, 1)
	assert.True(t, loaded.events[0].IsWrite)
	assert.True(t, loaded.events[0].Completed)
	assert.Equal(t, rec.events[0].Event, loaded.events[0].Event)
}
