// Package favicon converts favicon bytes of any common format to PNG.
package favicon

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
)

// MaxSize bounds the width and height of an icon Reencode will accept.
const MaxSize = 256

var (
	// ErrUnsupported is returned for data that is not an image Reencode can
	// decode.
	ErrUnsupported = errors.New("favicon: unsupported image format")
	pngMagic       = []byte("\x89PNG\r\n\x1a\n")
)

// Codec re-encodes favicons as PNG.
type Codec struct{}

// Reencode decodes data (PNG, GIF, JPEG, or an ICO holding PNG images) and
// returns it encoded as PNG.
func (Codec) Reencode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrUnsupported
	}
	if isICO(data) {
		entry, err := bestICOEntry(data)
		if err != nil {
			return nil, err
		}
		data = entry
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxSize || cfg.Height > MaxSize {
		return nil, fmt.Errorf("favicon: %dx%d is outside the accepted size", cfg.Width, cfg.Height)
	}
	if bytes.HasPrefix(data, pngMagic) {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const (
	icoHeaderSize = 6
	icoEntrySize  = 16
)

func isICO(data []byte) bool {
	return len(data) >= icoHeaderSize &&
		binary.LittleEndian.Uint16(data[0:]) == 0 &&
		binary.LittleEndian.Uint16(data[2:]) == 1 &&
		binary.LittleEndian.Uint16(data[4:]) > 0
}

// bestICOEntry returns the largest PNG-encoded image in an ICO container.
// Width and height bytes of 0 mean 256.
func bestICOEntry(data []byte) ([]byte, error) {
	count := int(binary.LittleEndian.Uint16(data[4:]))
	if len(data) < icoHeaderSize+count*icoEntrySize {
		return nil, fmt.Errorf("%w: truncated ico directory", ErrUnsupported)
	}
	var (
		best     []byte
		bestArea int
	)
	for i := 0; i < count; i++ {
		e := data[icoHeaderSize+i*icoEntrySize:]
		w, h := int(e[0]), int(e[1])
		if w == 0 {
			w = 256
		}
		if h == 0 {
			h = 256
		}
		size := binary.LittleEndian.Uint32(e[8:])
		off := binary.LittleEndian.Uint32(e[12:])
		if uint64(off)+uint64(size) > uint64(len(data)) {
			continue
		}
		img := data[off : off+size]
		if !bytes.HasPrefix(img, pngMagic) {
			continue
		}
		if area := w * h; area > bestArea {
			best, bestArea = img, area
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: ico has no PNG image", ErrUnsupported)
	}
	return best, nil
}
