// Package bencode implements the canonical bencode wire format: a
// length-prefixed, deterministic encoding for integers, byte strings,
// lists, and dictionaries, used for the control messages spec.md's
// transport exchanges (scroll lists, damage regions).
package bencode

import "math/big"

// Value is the bencode sum type: exactly one of Int, Bytes, List, or
// Dict is meaningful, selected by its variant (see IsInt, IsBytes,
// IsList, IsDict).
type Value struct {
	kind  kind
	i     *big.Int
	bytes []byte
	list  []Value
	dict  map[string]Value
}

type kind int

const (
	kindInt kind = iota
	kindBytes
	kindList
	kindDict
)

// Int constructs an integer Value from an int64.
func Int(v int64) Value {
	return Value{kind: kindInt, i: big.NewInt(v)}
}

// BigInt constructs an integer Value from an arbitrary-precision
// big.Int, per spec.md §3's "integer (arbitrary precision)".
func BigInt(v *big.Int) Value {
	return Value{kind: kindInt, i: new(big.Int).Set(v)}
}

// Bool constructs an integer Value of 0 or 1, per spec.md §4.6
// ("Boolean values serialise as integer 0 or 1").
func Bool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

// Bytes constructs a byte-string Value.
func Bytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: kindBytes, bytes: cp}
}

// String constructs a byte-string Value from a Go string.
func String(s string) Value {
	return Value{kind: kindBytes, bytes: []byte(s)}
}

// List constructs a list Value.
func List(items ...Value) Value {
	return Value{kind: kindList, list: append([]Value(nil), items...)}
}

// Dict constructs a dictionary Value from a string-keyed map.
// Iteration/encoding order is not the insertion order: Encode always
// sorts keys byte-lexicographically (spec.md §4.6's canonical form).
func Dict(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: kindDict, dict: cp}
}

// IsInt, IsBytes, IsList, IsDict report the Value's variant.
func (v Value) IsInt() bool   { return v.kind == kindInt }
func (v Value) IsBytes() bool { return v.kind == kindBytes }
func (v Value) IsList() bool  { return v.kind == kindList }
func (v Value) IsDict() bool  { return v.kind == kindDict }

// Int64 returns the value as an int64 and whether it is an integer
// Value that fits in one.
func (v Value) Int64() (int64, bool) {
	if v.kind != kindInt || !v.i.IsInt64() {
		return 0, false
	}
	return v.i.Int64(), true
}

// BigIntValue returns the underlying arbitrary-precision integer and
// whether v is an integer Value.
func (v Value) BigIntValue() (*big.Int, bool) {
	if v.kind != kindInt {
		return nil, false
	}
	return new(big.Int).Set(v.i), true
}

// BytesValue returns the underlying byte string and whether v is one.
func (v Value) BytesValue() ([]byte, bool) {
	if v.kind != kindBytes {
		return nil, false
	}
	cp := make([]byte, len(v.bytes))
	copy(cp, v.bytes)
	return cp, true
}

// StringValue is a convenience wrapper over BytesValue.
func (v Value) StringValue() (string, bool) {
	b, ok := v.BytesValue()
	if !ok {
		return "", false
	}
	return string(b), true
}

// ListValue returns the underlying list and whether v is one.
func (v Value) ListValue() ([]Value, bool) {
	if v.kind != kindList {
		return nil, false
	}
	cp := make([]Value, len(v.list))
	copy(cp, v.list)
	return cp, true
}

// DictValue returns the underlying dictionary and whether v is one.
func (v Value) DictValue() (map[string]Value, bool) {
	if v.kind != kindDict {
		return nil, false
	}
	cp := make(map[string]Value, len(v.dict))
	for k, val := range v.dict {
		cp[k] = val
	}
	return cp, true
}
