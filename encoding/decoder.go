package encoding

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/graphwire/golang-bolt5-driver/errors"
)

// Decoder decodes bolt messages from the protocol stream back into a
// one byte tag and an ordered field list.  All integer widths decode
// to int64 so that values survive an encode/decode round trip
// regardless of the width the peer chose on the wire.
type Decoder struct {
	r io.Reader
}

// NewDecoder creates a new Decoder object
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Unmarshal decodes a single message from a standalone byte slice.
func Unmarshal(data []byte) (byte, []interface{}, error) {
	return NewDecoder(bytes.NewReader(data)).DecodeMessage()
}

// readMessage consumes chunks off the stream until the end-of-message
// marker, returning the de-chunked message bytes.
func (d *Decoder) readMessage() (*bytes.Buffer, error) {
	output := &bytes.Buffer{}
	header := make([]byte, 2)
	for {
		if _, err := io.ReadFull(d.r, header); err != nil {
			return nil, errors.Wrap(err, "An error occurred reading a chunk header")
		}

		chunkLen := binary.BigEndian.Uint16(header)
		if chunkLen == 0 {
			if output.Len() == 0 {
				// NOOP chunk between messages, keep going
				continue
			}
			return output, nil
		}

		if _, err := io.CopyN(output, d.r, int64(chunkLen)); err != nil {
			return nil, errors.Wrap(err, "An error occurred reading chunk data")
		}
	}
}

// DecodeMessage decodes the next message on the stream
func (d *Decoder) DecodeMessage() (byte, []interface{}, error) {
	buffer, err := d.readMessage()
	if err != nil {
		return 0, nil, err
	}

	marker, err := buffer.ReadByte()
	if err != nil {
		return 0, nil, err
	}

	var length int
	switch {
	case marker >= TinyStructMarker && marker <= TinyStructMarker+0x0F:
		length = int(marker) - TinyStructMarker
	case marker == Struct8Marker:
		var size uint8
		if err := binary.Read(buffer, binary.BigEndian, &size); err != nil {
			return 0, nil, err
		}
		length = int(size)
	case marker == Struct16Marker:
		var size uint16
		if err := binary.Read(buffer, binary.BigEndian, &size); err != nil {
			return 0, nil, err
		}
		length = int(size)
	default:
		return 0, nil, errors.New("Expected a message struct marker, got: %x", marker)
	}

	tag, err := buffer.ReadByte()
	if err != nil {
		return 0, nil, err
	}

	fields := make([]interface{}, length)
	for i := 0; i < length; i++ {
		field, err := d.decode(buffer)
		if err != nil {
			return 0, nil, err
		}
		fields[i] = field
	}

	if buffer.Len() > 0 {
		return 0, nil, errors.New("Trailing data after message with tag %x", tag)
	}

	return tag, fields, nil
}

func (d *Decoder) decode(buffer *bytes.Buffer) (interface{}, error) {
	marker, err := buffer.ReadByte()
	if err != nil {
		return nil, err
	}

	switch {

	// NIL
	case marker == NilMarker:
		return nil, nil

	// BOOL
	case marker == TrueMarker:
		return true, nil
	case marker == FalseMarker:
		return false, nil

	// INT
	case marker <= 0x7F || marker >= 0xF0:
		// TINY_INT, the marker is the value
		return int64(int8(marker)), nil
	case marker == Int8Marker:
		var out int8
		err := binary.Read(buffer, binary.BigEndian, &out)
		return int64(out), err
	case marker == Int16Marker:
		var out int16
		err := binary.Read(buffer, binary.BigEndian, &out)
		return int64(out), err
	case marker == Int32Marker:
		var out int32
		err := binary.Read(buffer, binary.BigEndian, &out)
		return int64(out), err
	case marker == Int64Marker:
		var out int64
		err := binary.Read(buffer, binary.BigEndian, &out)
		return out, err

	// FLOAT
	case marker == FloatMarker:
		var out float64
		err := binary.Read(buffer, binary.BigEndian, &out)
		return out, err

	// STRING
	case marker >= TinyStringMarker && marker <= TinyStringMarker+0x0F:
		size := int(marker) - TinyStringMarker
		return string(buffer.Next(size)), nil
	case marker == String8Marker:
		var size uint8
		if err := binary.Read(buffer, binary.BigEndian, &size); err != nil {
			return nil, err
		}
		return string(buffer.Next(int(size))), nil
	case marker == String16Marker:
		var size uint16
		if err := binary.Read(buffer, binary.BigEndian, &size); err != nil {
			return nil, err
		}
		return string(buffer.Next(int(size))), nil
	case marker == String32Marker:
		var size uint32
		if err := binary.Read(buffer, binary.BigEndian, &size); err != nil {
			return nil, err
		}
		return string(buffer.Next(int(size))), nil

	// SLICE
	case marker >= TinySliceMarker && marker <= TinySliceMarker+0x0F:
		size := int(marker) - TinySliceMarker
		return d.decodeSlice(buffer, size)
	case marker == Slice8Marker:
		var size uint8
		if err := binary.Read(buffer, binary.BigEndian, &size); err != nil {
			return nil, err
		}
		return d.decodeSlice(buffer, int(size))
	case marker == Slice16Marker:
		var size uint16
		if err := binary.Read(buffer, binary.BigEndian, &size); err != nil {
			return nil, err
		}
		return d.decodeSlice(buffer, int(size))
	case marker == Slice32Marker:
		var size uint32
		if err := binary.Read(buffer, binary.BigEndian, &size); err != nil {
			return nil, err
		}
		return d.decodeSlice(buffer, int(size))

	// MAP
	case marker >= TinyMapMarker && marker <= TinyMapMarker+0x0F:
		size := int(marker) - TinyMapMarker
		return d.decodeMap(buffer, size)
	case marker == Map8Marker:
		var size uint8
		if err := binary.Read(buffer, binary.BigEndian, &size); err != nil {
			return nil, err
		}
		return d.decodeMap(buffer, int(size))
	case marker == Map16Marker:
		var size uint16
		if err := binary.Read(buffer, binary.BigEndian, &size); err != nil {
			return nil, err
		}
		return d.decodeMap(buffer, int(size))
	case marker == Map32Marker:
		var size uint32
		if err := binary.Read(buffer, binary.BigEndian, &size); err != nil {
			return nil, err
		}
		return d.decodeMap(buffer, int(size))

	default:
		return nil, errors.New("Unrecognized marker byte: %x", marker)
	}
}

func (d *Decoder) decodeSlice(buffer *bytes.Buffer, size int) ([]interface{}, error) {
	slice := make([]interface{}, size)
	for i := 0; i < size; i++ {
		item, err := d.decode(buffer)
		if err != nil {
			return nil, err
		}
		slice[i] = item
	}

	return slice, nil
}

func (d *Decoder) decodeMap(buffer *bytes.Buffer, size int) (map[string]interface{}, error) {
	mapp := make(map[string]interface{}, size)
	for i := 0; i < size; i++ {
		keyInt, err := d.decode(buffer)
		if err != nil {
			return nil, err
		}
		val, err := d.decode(buffer)
		if err != nil {
			return nil, err
		}

		key, ok := keyInt.(string)
		if !ok {
			return nil, errors.New("Unexpected key type: %T with value %+v", keyInt, keyInt)
		}
		mapp[key] = val
	}

	return mapp, nil
}
