// Package rowversion codecs the automatic-optimistic stamp for the HTTP
// boundary: the stamp travels as an unsigned 64-bit value, rendered in
// decimal inside the Header field and as 8 big-endian bytes on the binary
// form. A missing or non-numeric header value is the caller's mistake
// (bad request), never a concurrency conflict.
package rowversion

import (
	"encoding/binary"
	"errors"
	"strconv"
)

// Header is the request/response header carrying the stamp.
const Header = "X-Row-Version"

// ErrInvalid is returned for empty, non-numeric or wrongly sized input.
var ErrInvalid = errors.New("invalid row version")

// Parse converts the decimal header value into a stamp.
func Parse(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalid
	}
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}
	return int64(u), nil
}

// Format renders a stamp as its decimal header value.
func Format(v int64) string {
	return strconv.FormatUint(uint64(v), 10)
}

// Bytes renders a stamp as 8 big-endian bytes.
func Bytes(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

// FromBytes reconstructs a stamp from its 8-byte big-endian form.
func FromBytes(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, ErrInvalid
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}
