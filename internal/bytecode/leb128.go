package bytecode

import "github.com/tethal/rnatrix/internal/diag"

// PutUvarint appends x to buf as canonical (shortest-form) unsigned
// LEB128 and returns the extended slice (spec.md §4.4, "unsigned for
// indices").
func PutUvarint(buf []byte, x uint64) []byte {
	for {
		b := byte(x & 0x7f)
		x >>= 7
		if x != 0 {
			buf = append(buf, b|0x80)
			continue
		}
		return append(buf, b)
	}
}

// PutVarint appends x to buf as canonical (shortest-form) signed
// SLEB128 (spec.md §4.4, "signed for jump offsets and push_int").
func PutVarint(buf []byte, x int64) []byte {
	for {
		b := byte(x & 0x7f)
		x >>= 7
		signBitSet := b&0x40 != 0
		if (x == 0 && !signBitSet) || (x == -1 && signBitSet) {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}

// PutVarintFixed5 encodes x as a 5-byte SLEB128 value, padding with
// continuation bytes as needed. 5 bytes covers any 32-bit-range
// offset, which a single function's bytecode never exceeds; the
// compiler uses this fixed width for jump immediates so patching a
// forward reference never changes the size of an instruction already
// emitted (spec.md §4.5's "reserve worst-case width" strategy).
func PutVarintFixed5(buf []byte, x int64) []byte {
	for i := 0; i < 4; i++ {
		buf = append(buf, byte(x&0x7f)|0x80)
		x >>= 7
	}
	return append(buf, byte(x&0x7f))
}

// Uvarint decodes an unsigned LEB128 value starting at buf[0],
// returning the value and the number of bytes consumed. A decoder
// accepts any valid-length encoding, not just the canonical shortest
// form (spec.md §4.4).
func Uvarint(buf []byte) (uint64, int, *diag.Error) {
	var x uint64
	var shift uint
	for i, b := range buf {
		if shift >= 64 {
			return 0, 0, diag.AtOffset(diag.InternalError, 0, "malformed LEB128: too many continuation bytes")
		}
		x |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return x, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, diag.AtOffset(diag.InternalError, 0, "malformed LEB128: truncated buffer")
}

// Varint decodes a signed SLEB128 value starting at buf[0].
func Varint(buf []byte) (int64, int, *diag.Error) {
	var x int64
	var shift uint
	var b byte
	i := 0
	for {
		if i >= len(buf) {
			return 0, 0, diag.AtOffset(diag.InternalError, 0, "malformed LEB128: truncated buffer")
		}
		if shift >= 64 {
			return 0, 0, diag.AtOffset(diag.InternalError, 0, "malformed LEB128: too many continuation bytes")
		}
		b = buf[i]
		x |= int64(b&0x7f) << shift
		shift += 7
		i++
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		x |= -1 << shift
	}
	return x, i, nil
}
