// Package pickle reads the binary serialization Chromium uses for the form
// blobs it stores in KWallet: a little-endian uint32 payload size header
// followed by 4-byte aligned fields.
package pickle

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"golang.org/x/text/encoding/unicode"
)

const (
	headerSize = 4
	alignment  = 4
)

// ErrShort is returned when a read runs past the end of the payload.
var ErrShort = errors.New("pickle: read past end of payload")

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Reader walks a pickle payload front to back.
type Reader struct {
	payload []byte
	off     int
}

// NewReader validates the header of data and returns a Reader over its
// payload. Trailing bytes past the declared payload size are ignored.
func NewReader(data []byte) (*Reader, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("pickle: %d bytes is too short for a header", len(data))
	}
	size := binary.LittleEndian.Uint32(data)
	if uint64(size) > uint64(len(data)-headerSize) {
		return nil, fmt.Errorf("pickle: payload size %d exceeds %d available bytes", size, len(data)-headerSize)
	}
	return &Reader{payload: data[headerSize : headerSize+int(size)]}, nil
}

// Remaining reports how many payload bytes are left unread.
func (r *Reader) Remaining() int {
	return len(r.payload) - r.off
}

// advance returns the next n bytes and moves past them plus alignment padding.
func (r *Reader) advance(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, ErrShort
	}
	b := r.payload[r.off : r.off+n]
	padded := (n + alignment - 1) &^ (alignment - 1)
	r.off += min(padded, r.Remaining())
	return b, nil
}

func (r *Reader) ReadInt() (int32, error) {
	b, err := r.advance(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.ReadInt()
	return uint32(v), err
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.advance(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadBool reads a bool, which is pickled as an int.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadInt()
	return v != 0, err
}

// ReadString reads a length-prefixed byte string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadInt()
	if err != nil {
		return "", err
	}
	b, err := r.advance(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadString16 reads a UTF-16LE string prefixed with its length in code units.
func (r *Reader) ReadString16() (string, error) {
	n, err := r.ReadInt()
	if err != nil {
		return "", err
	}
	if n < 0 || int64(n) > math.MaxInt32/2 {
		return "", ErrShort
	}
	b, err := r.advance(int(n) * 2)
	if err != nil {
		return "", err
	}
	s, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("pickle: bad UTF-16 string: %w", err)
	}
	return string(s), nil
}

// Writer builds pickles. It exists so callers can produce fixtures in the
// same layout Reader consumes.
type Writer struct {
	payload []byte
}

func (w *Writer) pad() {
	for len(w.payload)%alignment != 0 {
		w.payload = append(w.payload, 0)
	}
}

func (w *Writer) WriteInt(v int32) {
	w.payload = binary.LittleEndian.AppendUint32(w.payload, uint32(v))
}

func (w *Writer) WriteUint32(v uint32) { w.WriteInt(int32(v)) }

func (w *Writer) WriteInt64(v int64) { w.WriteUint64(uint64(v)) }

func (w *Writer) WriteUint64(v uint64) {
	w.payload = binary.LittleEndian.AppendUint64(w.payload, v)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteInt(1)
	} else {
		w.WriteInt(0)
	}
}

func (w *Writer) WriteString(s string) {
	w.WriteInt(int32(len(s)))
	w.payload = append(w.payload, s...)
	w.pad()
}

func (w *Writer) WriteString16(s string) {
	b, _ := utf16le.NewEncoder().Bytes([]byte(s))
	w.WriteInt(int32(len(b) / 2))
	w.payload = append(w.payload, b...)
	w.pad()
}

// Bytes returns the pickle including its header.
func (w *Writer) Bytes() []byte {
	out := binary.LittleEndian.AppendUint32(nil, uint32(len(w.payload)))
	return append(out, w.payload...)
}
