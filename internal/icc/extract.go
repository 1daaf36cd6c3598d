package icc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

var (
	jpegICCMarker = []byte("ICC_PROFILE\x00")
	pngSignature  = []byte("\x89PNG\r\n\x1a\n")
)

// Extract returns the ICC profile embedded in a JPEG or PNG file, or nil when
// the file carries none or is of another format.
func Extract(data []byte) ([]byte, error) {
	switch {
	case len(data) > 2 && data[0] == 0xff && data[1] == 0xd8:
		return ExtractJPEG(data)
	case bytes.HasPrefix(data, pngSignature):
		return ExtractPNG(data)
	}
	return nil, nil
}

// ExtractJPEG reassembles the APP2 ICC_PROFILE chunks of a JPEG stream.
func ExtractJPEG(data []byte) ([]byte, error) {
	var chunks [][]byte
	total := 0

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xff {
			return nil, fmt.Errorf("%w: bad JPEG marker at %d", ErrCorrupt, pos)
		}
		marker := data[pos+1]
		switch {
		case marker == 0xff:
			pos++
			continue
		case marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7):
			pos += 2
			continue
		case marker == 0xda || marker == 0xd9:
			pos = len(data)
			continue
		}

		length := int(binary.BigEndian.Uint16(data[pos+2:]))
		if length < 2 || pos+2+length > len(data) {
			return nil, fmt.Errorf("%w: truncated JPEG segment", ErrCorrupt)
		}
		seg := data[pos+4 : pos+2+length]
		if marker == 0xe2 && bytes.HasPrefix(seg, jpegICCMarker) && len(seg) >= len(jpegICCMarker)+2 {
			seq := int(seg[len(jpegICCMarker)])
			count := int(seg[len(jpegICCMarker)+1])
			if chunks == nil {
				chunks = make([][]byte, count)
			}
			if seq < 1 || seq > len(chunks) || count != len(chunks) {
				return nil, fmt.Errorf("%w: ICC chunk %d of %d", ErrCorrupt, seq, count)
			}
			chunks[seq-1] = seg[len(jpegICCMarker)+2:]
			total += len(chunks[seq-1])
		}
		pos += 2 + length
	}

	if chunks == nil {
		return nil, nil
	}
	out := make([]byte, 0, total)
	for i, c := range chunks {
		if c == nil {
			return nil, fmt.Errorf("%w: missing ICC chunk %d", ErrCorrupt, i+1)
		}
		out = append(out, c...)
	}
	return out, nil
}

// ExtractPNG inflates the iCCP chunk of a PNG stream.
func ExtractPNG(data []byte) ([]byte, error) {
	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos:]))
		typ := string(data[pos+4 : pos+8])
		if length < 0 || pos+12+length > len(data) {
			return nil, fmt.Errorf("%w: truncated PNG chunk %q", ErrCorrupt, typ)
		}
		body := data[pos+8 : pos+8+length]

		switch typ {
		case "iCCP":
			nul := bytes.IndexByte(body, 0)
			if nul < 1 || nul+2 > len(body) {
				return nil, fmt.Errorf("%w: malformed iCCP chunk", ErrCorrupt)
			}
			if body[nul+1] != 0 {
				return nil, fmt.Errorf("%w: iCCP compression method %d", ErrUnsupported, body[nul+1])
			}
			zr, err := zlib.NewReader(bytes.NewReader(body[nul+2:]))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			defer zr.Close()
			profile, err := io.ReadAll(zr)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			return profile, nil
		case "IDAT", "IEND":
			return nil, nil
		}
		pos += 12 + length
	}
	return nil, nil
}
