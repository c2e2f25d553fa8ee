package encoding

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/graphwire/golang-bolt5-driver/errors"
)

// Encoder encodes bolt messages (a one byte tag plus an ordered field
// list) to the given stream, chunking the output as it goes.  Fields
// are encoded per the packstream rules.  Maps and slices are a special
// case, where only map[string]interface{}, map[string]string and
// []interface{} are supported.
type Encoder struct {
	w    io.Writer
	buf  []byte
	n    int
	size int
}

// NewEncoder initializes a new Encoder with the provided chunk size.
func NewEncoder(w io.Writer, chunkSize uint16) *Encoder {
	return &Encoder{w: w, buf: make([]byte, chunkSize), size: int(chunkSize)}
}

// Marshal encodes a single message to a standalone byte slice.
func Marshal(tag byte, fields []interface{}) ([]byte, error) {
	var b bytes.Buffer
	err := NewEncoder(&b, math.MaxUint16).EncodeMessage(tag, fields)
	return b.Bytes(), err
}

// Write writes to the chunking buffer. Writes are not necessarily
// written to the underlying Writer until Flush is called.
func (e *Encoder) Write(p []byte) (n int, err error) {
	var m int
	for n < len(p) {
		m = copy(e.buf[e.n:], p[n:])
		e.n += m
		n += m
		if e.n == e.size {
			if err = e.writeChunk(); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

func (e *Encoder) writeMarker(marker uint8) error {
	e.buf[e.n] = marker
	e.n++
	if e.n == e.size {
		return e.writeChunk()
	}
	return nil
}

func (e *Encoder) write(v interface{}) error {
	return binary.Write(e, binary.BigEndian, v)
}

// Flush writes whatever is left in the chunk buffer followed by the
// end-of-message marker.
func (e *Encoder) Flush() error {
	if err := e.writeChunk(); err != nil {
		return err
	}
	_, err := e.w.Write(EndMessage)
	return err
}

func (e *Encoder) writeChunk() error {
	if e.n == 0 {
		return nil
	}
	if err := binary.Write(e.w, binary.BigEndian, uint16(e.n)); err != nil {
		return err
	}
	_, err := e.w.Write(e.buf[:e.n])
	e.n = 0
	return err
}

// EncodeMessage encodes one complete message to the stream: the struct
// header carrying the tag, each field in order, then the chunk
// terminator.
func (e *Encoder) EncodeMessage(tag byte, fields []interface{}) error {
	if err := e.encodeStructHeader(tag, len(fields)); err != nil {
		return err
	}
	for _, field := range fields {
		if err := e.encode(field); err != nil {
			return errors.Wrap(err, "An error occurred encoding a message field")
		}
	}
	return e.Flush()
}

func (e *Encoder) encodeStructHeader(tag byte, length int) error {
	switch {
	case length <= 15:
		if _, err := e.Write([]byte{byte(TinyStructMarker + length)}); err != nil {
			return err
		}
	case length <= math.MaxUint8:
		if err := e.writeMarker(Struct8Marker); err != nil {
			return err
		}
		if err := e.write(uint8(length)); err != nil {
			return err
		}
	case length <= math.MaxUint16:
		if err := e.writeMarker(Struct16Marker); err != nil {
			return err
		}
		if err := e.write(uint16(length)); err != nil {
			return err
		}
	default:
		return errors.New("Message has too many fields to write: %d", length)
	}
	_, err := e.Write([]byte{tag})
	return err
}

func (e *Encoder) encode(val interface{}) error {
	switch val := val.(type) {
	case nil:
		return e.encodeNil()
	case bool:
		return e.encodeBool(val)
	case int:
		return e.encodeInt(int64(val))
	case int8:
		return e.encodeInt(int64(val))
	case int16:
		return e.encodeInt(int64(val))
	case int32:
		return e.encodeInt(int64(val))
	case int64:
		return e.encodeInt(val)
	case uint:
		return e.encodeInt(int64(val))
	case uint8:
		return e.encodeInt(int64(val))
	case uint16:
		return e.encodeInt(int64(val))
	case uint32:
		return e.encodeInt(int64(val))
	case uint64:
		if val > math.MaxInt64 {
			return errors.New("Integer too big: %d. Max integer supported: %d", val, int64(math.MaxInt64))
		}
		return e.encodeInt(int64(val))
	case float32:
		return e.encodeFloat(float64(val))
	case float64:
		return e.encodeFloat(val)
	case string:
		return e.encodeString(val)
	case []interface{}:
		return e.encodeSlice(val)
	case []string:
		slice := make([]interface{}, len(val))
		for i, s := range val {
			slice[i] = s
		}
		return e.encodeSlice(slice)
	case map[string]interface{}:
		return e.encodeMap(val)
	case map[string]string:
		m := make(map[string]interface{}, len(val))
		for k, v := range val {
			m[k] = v
		}
		return e.encodeMap(m)
	default:
		return errors.New("Unrecognized type when encoding data for Bolt transport: %T %+v", val, val)
	}
}

func (e *Encoder) encodeNil() error {
	return e.writeMarker(NilMarker)
}

func (e *Encoder) encodeBool(val bool) error {
	if val {
		return e.writeMarker(TrueMarker)
	}
	return e.writeMarker(FalseMarker)
}

func (e *Encoder) encodeInt(val int64) (err error) {
	switch {
	case val < math.MinInt32:
		// Write as INT_64
		if err = e.writeMarker(Int64Marker); err != nil {
			return err
		}
		return e.write(val)
	case val < math.MinInt16:
		// Write as INT_32
		if err = e.writeMarker(Int32Marker); err != nil {
			return err
		}
		return e.write(int32(val))
	case val < math.MinInt8:
		// Write as INT_16
		if err = e.writeMarker(Int16Marker); err != nil {
			return err
		}
		return e.write(int16(val))
	case val < -16:
		// Write as INT_8
		if err = e.writeMarker(Int8Marker); err != nil {
			return err
		}
		return e.write(int8(val))
	case val <= math.MaxInt8:
		// Write as TINY_INT
		return e.write(int8(val))
	case val <= math.MaxInt16:
		// Write as INT_16
		if err = e.writeMarker(Int16Marker); err != nil {
			return err
		}
		return e.write(int16(val))
	case val <= math.MaxInt32:
		// Write as INT_32
		if err = e.writeMarker(Int32Marker); err != nil {
			return err
		}
		return e.write(int32(val))
	default:
		// Write as INT_64
		if err = e.writeMarker(Int64Marker); err != nil {
			return err
		}
		return e.write(val)
	}
}

func (e *Encoder) encodeFloat(val float64) error {
	if err := e.writeMarker(FloatMarker); err != nil {
		return err
	}
	if err := e.write(val); err != nil {
		return errors.Wrap(err, "An error occurred writing a float to bolt")
	}
	return nil
}

func (e *Encoder) encodeString(val string) (err error) {
	bytes := []byte(val)

	length := len(bytes)
	switch {
	case length <= 15:
		if _, err = e.Write([]byte{byte(TinyStringMarker + length)}); err != nil {
			return err
		}
		_, err = e.Write(bytes)
	case length <= math.MaxUint8:
		if err = e.writeMarker(String8Marker); err != nil {
			return err
		}
		if err = e.write(uint8(length)); err != nil {
			return err
		}
		_, err = e.Write(bytes)
	case length <= math.MaxUint16:
		if err = e.writeMarker(String16Marker); err != nil {
			return err
		}
		if err = e.write(uint16(length)); err != nil {
			return err
		}
		_, err = e.Write(bytes)
	case length <= math.MaxUint32:
		if err = e.writeMarker(String32Marker); err != nil {
			return err
		}
		if err = e.write(uint32(length)); err != nil {
			return err
		}
		_, err = e.Write(bytes)
	default:
		return errors.New("String too long to write: %s", val)
	}
	return err
}

func (e *Encoder) encodeSlice(val []interface{}) error {
	length := len(val)
	switch {
	case length <= 15:
		if _, err := e.Write([]byte{byte(TinySliceMarker + length)}); err != nil {
			return err
		}
	case length <= math.MaxUint8:
		if err := e.writeMarker(Slice8Marker); err != nil {
			return err
		}
		if err := e.write(uint8(length)); err != nil {
			return err
		}
	case length <= math.MaxUint16:
		if err := e.writeMarker(Slice16Marker); err != nil {
			return err
		}
		if err := e.write(uint16(length)); err != nil {
			return err
		}
	case length <= math.MaxUint32:
		if err := e.writeMarker(Slice32Marker); err != nil {
			return err
		}
		if err := e.write(uint32(length)); err != nil {
			return err
		}
	default:
		return errors.New("Slice too long to write: %+v", val)
	}

	for _, item := range val {
		if err := e.encode(item); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeMap(val map[string]interface{}) error {
	length := len(val)
	switch {
	case length <= 15:
		if _, err := e.Write([]byte{byte(TinyMapMarker + length)}); err != nil {
			return err
		}
	case length <= math.MaxUint8:
		if err := e.writeMarker(Map8Marker); err != nil {
			return err
		}
		if err := e.write(uint8(length)); err != nil {
			return err
		}
	case length <= math.MaxUint16:
		if err := e.writeMarker(Map16Marker); err != nil {
			return err
		}
		if err := e.write(uint16(length)); err != nil {
			return err
		}
	case length <= math.MaxUint32:
		if err := e.writeMarker(Map32Marker); err != nil {
			return err
		}
		if err := e.write(uint32(length)); err != nil {
			return err
		}
	default:
		return errors.New("Map too long to write: %+v", val)
	}

	for k, v := range val {
		if err := e.encodeString(k); err != nil {
			return err
		}
		if err := e.encode(v); err != nil {
			return err
		}
	}
	return nil
}
