package encoding

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, tag byte, fields []interface{}) (byte, []interface{}) {
	t.Helper()
	data, err := Marshal(tag, fields)
	require.NoError(t, err)
	gotTag, gotFields, err := Unmarshal(data)
	require.NoError(t, err)
	return gotTag, gotFields
}

func TestRoundTripScalars(t *testing.T) {
	tag, fields := roundTrip(t, 0x70, []interface{}{
		nil,
		true,
		false,
		"",
		"hello",
		float64(1.5),
	})
	assert.Equal(t, byte(0x70), tag)
	assert.Equal(t, []interface{}{nil, true, false, "", "hello", 1.5}, fields)
}

func TestRoundTripIntegerWidths(t *testing.T) {
	// Every width the encoder can choose must come back as int64
	values := []int64{
		0, 1, -1, -16, -17, 127, -128,
		128, 255, -129, 32767, -32768,
		32768, math.MaxInt32, math.MinInt32,
		math.MaxInt32 + 1, math.MaxInt64, math.MinInt64,
	}
	in := make([]interface{}, len(values))
	for i, v := range values {
		in[i] = v
	}

	_, fields := roundTrip(t, 0x70, in)
	require.Len(t, fields, len(values))
	for i, v := range values {
		assert.Equal(t, v, fields[i], "value %d", v)
	}
}

func TestRoundTripMixedIntTypesNormalize(t *testing.T) {
	_, fields := roundTrip(t, 0x70, []interface{}{int(7), int8(7), int16(7), int32(7), uint(7)})
	for _, f := range fields {
		assert.Equal(t, int64(7), f)
	}
}

func TestRoundTripStringSizes(t *testing.T) {
	// Tiny, 8-bit, 16-bit and 32-bit length encodings
	for _, size := range []int{0, 15, 16, 255, 256, 65535, 65536} {
		in := strings.Repeat("a", size)
		_, fields := roundTrip(t, 0x70, []interface{}{in})
		require.Len(t, fields, 1)
		assert.Equal(t, in, fields[0], "string of length %d", size)
	}
}

func TestRoundTripCollections(t *testing.T) {
	_, fields := roundTrip(t, 0x70, []interface{}{
		[]interface{}{int64(1), "two", nil},
		map[string]interface{}{
			"n":      int64(-1),
			"nested": map[string]interface{}{"deep": true},
			"list":   []interface{}{int64(1), int64(2)},
		},
		[]string{"a", "b"},
		map[string]string{"k": "v"},
	})

	assert.Equal(t, []interface{}{int64(1), "two", nil}, fields[0])
	assert.Equal(t, map[string]interface{}{
		"n":      int64(-1),
		"nested": map[string]interface{}{"deep": true},
		"list":   []interface{}{int64(1), int64(2)},
	}, fields[1])
	// Typed slices and maps come back in their generic shape
	assert.Equal(t, []interface{}{"a", "b"}, fields[2])
	assert.Equal(t, map[string]interface{}{"k": "v"}, fields[3])
}

func TestMessageSpansMultipleChunks(t *testing.T) {
	big := strings.Repeat("x", 300)
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf, 64).EncodeMessage(0x70, []interface{}{big}))

	// More than one chunk means more than one length header
	raw := buf.Bytes()
	require.True(t, len(raw) > 300+2+2, "expected chunking overhead")

	tag, fields, err := NewDecoder(bytes.NewReader(raw)).DecodeMessage()
	require.NoError(t, err)
	assert.Equal(t, byte(0x70), tag)
	assert.Equal(t, big, fields[0])
}

func TestDecodeSkipsNoopChunks(t *testing.T) {
	data, err := Marshal(0x70, []interface{}{"hi"})
	require.NoError(t, err)

	padded := append([]byte{0x00, 0x00, 0x00, 0x00}, data...)
	tag, fields, err := NewDecoder(bytes.NewReader(padded)).DecodeMessage()
	require.NoError(t, err)
	assert.Equal(t, byte(0x70), tag)
	assert.Equal(t, "hi", fields[0])
}

func TestDecodeSequentialMessages(t *testing.T) {
	first, err := Marshal(0x70, []interface{}{"one"})
	require.NoError(t, err)
	second, err := Marshal(0x7F, []interface{}{"two"})
	require.NoError(t, err)

	reader := bytes.NewReader(append(first, second...))
	decoder := NewDecoder(reader)

	tag, fields, err := decoder.DecodeMessage()
	require.NoError(t, err)
	assert.Equal(t, byte(0x70), tag)
	assert.Equal(t, "one", fields[0])

	tag, fields, err = decoder.DecodeMessage()
	require.NoError(t, err)
	assert.Equal(t, byte(0x7F), tag)
	assert.Equal(t, "two", fields[0])
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	data, err := Marshal(0x70, []interface{}{"hi"})
	require.NoError(t, err)

	// Splice an extra encoded value into the message body, before the
	// end-of-message marker, so the struct's field count lies
	body := data[2 : len(data)-2]
	body = append(append([]byte{}, body...), 0xC0)
	var tampered []byte
	tampered = append(tampered, byte(len(body)>>8), byte(len(body)))
	tampered = append(tampered, body...)
	tampered = append(tampered, 0x00, 0x00)

	_, _, err = Unmarshal(tampered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Trailing data")
}

func TestDecodeRejectsUnknownMarker(t *testing.T) {
	// 0xDE is not a marker the decoder knows
	body := []byte{0xB1, 0x70, 0xDE}
	var raw []byte
	raw = append(raw, 0x00, byte(len(body)))
	raw = append(raw, body...)
	raw = append(raw, 0x00, 0x00)

	_, _, err := Unmarshal(raw)
	require.Error(t, err)
}

func TestEncodeRejectsUnsupportedType(t *testing.T) {
	_, err := Marshal(0x70, []interface{}{struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unrecognized type")
}
