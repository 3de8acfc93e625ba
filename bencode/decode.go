package bencode

import (
	"math/big"

	"github.com/xpra-org/pixelcore/pixerr"
)

// DefaultMaxDecompressedSize bounds how large a single decoded byte
// string may be (nesting depth is bounded separately by
// defaultMaxDepth), protecting the decoder against
// hostile input per spec.md §7. It is deliberately generous; callers
// handling untrusted input over a narrow transport should set a
// tighter DecodeLimits.MaxDecompressedSize.
const DefaultMaxDecompressedSize = 256 << 20 // 256 MiB

const defaultMaxDepth = 200

// DecodeLimits configures the decoder's defenses against hostile
// input, the "configurable max_decompressed_size" spec.md §7 requires.
type DecodeLimits struct {
	// MaxDecompressedSize bounds the total bytes any single
	// byte-string value may claim. Zero means
	// DefaultMaxDecompressedSize.
	MaxDecompressedSize int
	// MaxDepth bounds list/dict nesting depth. Zero means
	// defaultMaxDepth.
	MaxDepth int
}

// Validate reports whether the limits are well-formed.
func (l DecodeLimits) Validate() error {
	if l.MaxDecompressedSize < 0 || l.MaxDepth < 0 {
		return pixerr.ErrInvalidArgument
	}
	return nil
}

func (l DecodeLimits) maxSize() int {
	if l.MaxDecompressedSize == 0 {
		return DefaultMaxDecompressedSize
	}
	return l.MaxDecompressedSize
}

func (l DecodeLimits) maxDepth() int {
	if l.MaxDepth == 0 {
		return defaultMaxDepth
	}
	return l.MaxDepth
}

// Decode parses a single bencode value from the start of b using
// DefaultMaxDecompressedSize / default depth limits, returning the
// value and the number of bytes consumed.
func Decode(b []byte) (Value, int, error) {
	return DecodeLimited(b, DecodeLimits{})
}

// DecodeLimited parses a single bencode value from the start of b,
// enforcing limits. Duplicate dictionary keys resolve last-key-wins
// (the decision recorded in SPEC_FULL.md §13, matching Go's own map
// assignment semantics).
func DecodeLimited(b []byte, limits DecodeLimits) (Value, int, error) {
	d := &decoder{buf: b, limits: limits}
	v, err := d.value(0)
	if err != nil {
		return Value{}, 0, err
	}
	return v, d.pos, nil
}

type decoder struct {
	buf    []byte
	pos    int
	limits DecodeLimits
}

func (d *decoder) value(depth int) (Value, error) {
	if depth > d.limits.maxDepth() {
		return Value{}, pixerr.Malformed(d.pos, "nesting too deep")
	}
	if d.pos >= len(d.buf) {
		return Value{}, pixerr.TruncatedAt(d.pos, "expected a value")
	}
	switch d.buf[d.pos] {
	case 'i':
		return d.integer()
	case 'l':
		return d.list(depth)
	case 'd':
		return d.dict(depth)
	default:
		if d.buf[d.pos] >= '0' && d.buf[d.pos] <= '9' {
			return d.byteString()
		}
		return Value{}, pixerr.Malformed(d.pos, "unknown type sigil")
	}
}

// integer parses i<digits>e, rejecting leading zeros (except the
// literal "0") and "-0" per spec.md §4.6.
func (d *decoder) integer() (Value, error) {
	start := d.pos
	d.pos++ // consume 'i'
	digitsStart := d.pos
	negative := false
	if d.pos < len(d.buf) && d.buf[d.pos] == '-' {
		negative = true
		d.pos++
	}
	numStart := d.pos
	for d.pos < len(d.buf) && d.buf[d.pos] >= '0' && d.buf[d.pos] <= '9' {
		d.pos++
	}
	if d.pos == numStart {
		return Value{}, pixerr.Malformed(start, "integer has no digits")
	}
	digits := d.buf[numStart:d.pos]
	if len(digits) > 1 && digits[0] == '0' {
		return Value{}, pixerr.Malformed(start, "integer has a leading zero")
	}
	if negative && len(digits) == 1 && digits[0] == '0' {
		return Value{}, pixerr.Malformed(start, "negative zero is forbidden")
	}
	if d.pos >= len(d.buf) {
		return Value{}, pixerr.TruncatedAt(d.pos, "integer missing terminator")
	}
	if d.buf[d.pos] != 'e' {
		return Value{}, pixerr.Malformed(d.pos, "integer terminator expected")
	}
	d.pos++ // consume 'e'

	n := new(big.Int)
	n.SetString(string(d.buf[digitsStart:d.pos-1]), 10)
	return Value{kind: kindInt, i: n}, nil
}

// byteString parses <len>:<bytes>, rejecting a leading-zero length
// prefix (other than the literal "0") and a length exceeding either
// the remaining input or the configured size limit.
func (d *decoder) byteString() (Value, error) {
	start := d.pos
	lenStart := d.pos
	for d.pos < len(d.buf) && d.buf[d.pos] >= '0' && d.buf[d.pos] <= '9' {
		d.pos++
	}
	digits := d.buf[lenStart:d.pos]
	if len(digits) > 1 && digits[0] == '0' {
		return Value{}, pixerr.Malformed(start, "string length has a leading zero")
	}
	if d.pos >= len(d.buf) || d.buf[d.pos] != ':' {
		return Value{}, pixerr.TruncatedAt(d.pos, "string length missing ':'")
	}
	n := new(big.Int)
	n.SetString(string(digits), 10)
	if !n.IsInt64() || n.Int64() > int64(d.limits.maxSize()) {
		return Value{}, pixerr.Overflow(start, "string length exceeds limit")
	}
	length := int(n.Int64())
	d.pos++ // consume ':'
	if len(d.buf)-d.pos < length {
		return Value{}, pixerr.TruncatedAt(d.pos, "string shorter than declared length")
	}
	b := d.buf[d.pos : d.pos+length]
	d.pos += length
	return Bytes(b), nil
}

func (d *decoder) list(depth int) (Value, error) {
	d.pos++ // consume 'l'
	var items []Value
	for {
		if d.pos >= len(d.buf) {
			return Value{}, pixerr.TruncatedAt(d.pos, "list missing terminator")
		}
		if d.buf[d.pos] == 'e' {
			d.pos++
			return Value{kind: kindList, list: items}, nil
		}
		v, err := d.value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
}

func (d *decoder) dict(depth int) (Value, error) {
	start := d.pos
	d.pos++ // consume 'd'
	m := make(map[string]Value)
	for {
		if d.pos >= len(d.buf) {
			return Value{}, pixerr.TruncatedAt(d.pos, "dict missing terminator")
		}
		if d.buf[d.pos] == 'e' {
			d.pos++
			return Value{kind: kindDict, dict: m}, nil
		}
		keyVal, err := d.value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		key, ok := keyVal.BytesValue()
		if !ok {
			return Value{}, pixerr.Malformed(start, "dict key must be a byte-string")
		}
		val, err := d.value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		m[string(key)] = val // last-key-wins on duplicates
	}
}
