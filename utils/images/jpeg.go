package images

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/jpeg"
)

// DefaultDPI matches CSS pixel, Word uses it to compute picture natural size.
const DefaultDPI = 96

// EnsureJFIF inserts JFIF APP0 segment with density in dots per inch if
// it is missing. Existing segment is left alone.
func EnsureJFIF(data []byte, dpi int) ([]byte, bool, error) {
	if len(data) < 4 {
		return nil, false, errors.New("jpeg too small")
	}
	if data[0] != 0xFF || data[1] != 0xD8 {
		return nil, false, errors.New("not a jpeg")
	}
	if data[2] == 0xFF && data[3] == 0xE0 {
		return data, false, nil
	}

	buf := new(bytes.Buffer)
	buf.Grow(len(data) + 18)
	buf.Write(data[:2])
	buf.Write([]byte{0xFF, 0xE0})
	_ = binary.Write(buf, binary.BigEndian, uint16(16))
	buf.Write([]byte{'J', 'F', 'I', 'F', 0x00, 0x01, 0x02})
	buf.WriteByte(1) // units: dots per inch
	_ = binary.Write(buf, binary.BigEndian, uint16(dpi))
	_ = binary.Write(buf, binary.BigEndian, uint16(dpi))
	buf.Write([]byte{0, 0}) // no thumbnail
	buf.Write(data[2:])
	return buf.Bytes(), true, nil
}

// EncodeJPEG encodes img with requested quality and stamps density.
func EncodeJPEG(img image.Image, quality, dpi int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	out, _, err := EnsureJFIF(buf.Bytes(), dpi)
	if err != nil {
		return nil, err
	}
	return out, nil
}
