package classfile

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/toyz/classinfo/internal/errors"
)

// reader walks big-endian class file bytes. Every read is bounds checked and
// reports the structure being read when the input is truncated.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) need(n int, structure string) error {
	if n < 0 || r.pos+n > len(r.data) {
		return r.fail(structure, fmt.Sprintf("truncated: need %d bytes, have %d", n, len(r.data)-r.pos))
	}
	return nil
}

func (r *reader) u1(structure string) (uint8, error) {
	if err := r.need(1, structure); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u2(structure string) (uint16, error) {
	if err := r.need(2, structure); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u4(structure string) (uint32, error) {
	if err := r.need(4, structure); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) bytes(n int, structure string) ([]byte, error) {
	if err := r.need(n, structure); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) skip(n int, structure string) error {
	_, err := r.bytes(n, structure)
	return err
}

func (r *reader) fail(structure, message string) *errors.ClassfileError {
	return errors.NewClassfileError(structure, message).
		WithLocation(errors.SourceLocation{Offset: r.pos})
}

// decodeModifiedUTF8 decodes the JVM's modified UTF-8: NUL is encoded as two
// bytes and supplementary characters as surrogate pairs of three bytes each
func decodeModifiedUTF8(b []byte) (string, error) {
	// fast path, plain ASCII
	ascii := true
	for _, c := range b {
		if c == 0 || c >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b), nil
	}

	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c&0x80 == 0:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", fmt.Errorf("bad 2-byte sequence at %d", i)
			}
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", fmt.Errorf("bad 3-byte sequence at %d", i)
			}
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			return "", fmt.Errorf("invalid byte %#x at %d", c, i)
		}
	}

	runes := utf16.Decode(units)
	buf := make([]byte, 0, len(runes))
	for _, r := range runes {
		buf = utf8.AppendRune(buf, r)
	}
	return string(buf), nil
}
