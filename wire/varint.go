// Package wire implements the bit-exact wire primitives shared by the
// scanner and builder: LEB128 varints, tx_extra tag parsing, and the
// length-prefixed string encoding used for asset-type fields.
package wire

import goerrors "github.com/go-errors/errors"

// ErrVarintOverflow is returned when decoding a varint that would not fit in
// a uint64, or when encoding would need more than the 10-byte LEB128 limit.
var ErrVarintOverflow = goerrors.Errorf("wire: varint overflow")

// PutVarint appends the LEB128 encoding of v to dst and returns the result.
func PutVarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// Varint encodes v as a standalone LEB128 byte slice.
func Varint(v uint64) []byte {
	return PutVarint(nil, v)
}

// ReadVarint decodes a LEB128 varint from the front of b, returning the
// value and the number of bytes consumed.
func ReadVarint(b []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < 10; i++ {
		if i >= len(b) {
			return 0, 0, ErrVarintOverflow
		}
		c := b[i]
		v |= uint64(c&0x7f) << (7 * uint(i))
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, ErrVarintOverflow
}

// PutString appends a varint length prefix followed by s's bytes.
func PutString(dst []byte, s string) []byte {
	dst = PutVarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// ReadString decodes a varint-length-prefixed string from the front of b.
func ReadString(b []byte) (string, int, error) {
	n, consumed, err := ReadVarint(b)
	if err != nil {
		return "", 0, err
	}
	if uint64(len(b)-consumed) < n {
		return "", 0, ErrVarintOverflow
	}
	return string(b[consumed : consumed+int(n)]), consumed + int(n), nil
}
