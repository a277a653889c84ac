package abi

import (
	"math/big"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

// Supported value kinds.
const (
	KindUint256 Kind = iota
	KindBool
	KindAddress
	KindBytes32
	KindString
	KindBytes
	KindTuple
)

// String returns the kind's ABI type name.
func (k Kind) String() string {
	switch k {
	case KindUint256:
		return "uint256"
	case KindBool:
		return "bool"
	case KindAddress:
		return "address"
	case KindBytes32:
		return "bytes32"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTuple:
		return "tuple"
	}
	return "unknown"
}

// Value is a tagged union holding one decoded or to-be-encoded ABI value.
// The zero Value is a uint256 zero.
type Value struct {
	kind  Kind
	num   *big.Int
	flag  bool
	str   string
	raw   []byte
	tuple []Value
}

// Uint256Value wraps an unsigned integer. The value is copied.
func Uint256Value(v *big.Int) Value {
	n := new(big.Int)
	if v != nil {
		n.Set(v)
	}
	return Value{kind: KindUint256, num: n}
}

// BoolValue wraps a boolean.
func BoolValue(b bool) Value {
	return Value{kind: KindBool, flag: b}
}

// AddressValue wraps a 0x-prefixed hex address. The address is normalized
// to lowercase; validity is checked at encode time.
func AddressValue(hexAddr string) Value {
	return Value{kind: KindAddress, str: strings.ToLower(hexAddr)}
}

// Bytes32Value wraps a fixed 32-byte word.
func Bytes32Value(b [WordSize]byte) Value {
	return Value{kind: KindBytes32, raw: append([]byte(nil), b[:]...)}
}

// StringValue wraps a dynamic string.
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// BytesValue wraps a dynamic byte slice. The contents are copied.
func BytesValue(b []byte) Value {
	return Value{kind: KindBytes, raw: append([]byte(nil), b...)}
}

// TupleValue wraps an ordered list of member values.
func TupleValue(members ...Value) Value {
	return Value{kind: KindTuple, tuple: members}
}

// Kind reports which variant the value holds.
func (v Value) Kind() Kind { return v.kind }

// Uint returns a copy of the integer variant, or zero for other kinds.
func (v Value) Uint() *big.Int {
	if v.num == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v.num)
}

// Bool returns the boolean variant.
func (v Value) Bool() bool { return v.flag }

// Address returns the lowercase 0x-prefixed address variant.
func (v Value) Address() string { return v.str }

// Bytes32 returns the fixed-word variant.
func (v Value) Bytes32() [WordSize]byte {
	var w [WordSize]byte
	copy(w[:], v.raw)
	return w
}

// Str returns the string variant.
func (v Value) Str() string { return v.str }

// Bytes returns a copy of the dynamic-bytes variant.
func (v Value) Bytes() []byte { return append([]byte(nil), v.raw...) }

// Tuple returns the member values of a tuple variant.
func (v Value) Tuple() []Value { return v.tuple }

// Equal reports whether two values hold the same kind and contents.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindUint256:
		return v.Uint().Cmp(other.Uint()) == 0
	case KindBool:
		return v.flag == other.flag
	case KindAddress, KindString:
		return v.str == other.str
	case KindBytes32, KindBytes:
		return string(v.raw) == string(other.raw)
	case KindTuple:
		if len(v.tuple) != len(other.tuple) {
			return false
		}
		for i := range v.tuple {
			if !v.tuple[i].Equal(other.tuple[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// FieldShape declares the expected type of one output field so decoding is
// checked structurally instead of guessed from the buffer.
type FieldShape struct {
	Name   string
	Type   string // "uint256", "bool", "address", "bytes32", "string", "bytes", "tuple"
	Fields []FieldShape // tuple members
}

// dynamic reports whether the field is reached through a head offset word.
func (f FieldShape) dynamic() bool {
	switch f.Type {
	case "string", "bytes":
		return true
	case "tuple":
		for _, m := range f.Fields {
			if m.dynamic() {
				return true
			}
		}
	}
	return false
}

// headSlots returns how many 32-byte head words the field occupies.
// Dynamic fields occupy one offset word; static tuples inline their members.
func (f FieldShape) headSlots() int {
	if f.dynamic() {
		return 1
	}
	if f.Type == "tuple" {
		n := 0
		for _, m := range f.Fields {
			n += m.headSlots()
		}
		return n
	}
	return 1
}

// DecodedTuple is the result of decoding a return buffer against a shape,
// with both positional and by-name access.
type DecodedTuple struct {
	names  []string
	values []Value
}

// Len returns the number of decoded fields.
func (t *DecodedTuple) Len() int { return len(t.values) }

// At returns the i-th field value.
func (t *DecodedTuple) At(i int) Value { return t.values[i] }

// Field returns the value of the named field.
func (t *DecodedTuple) Field(name string) (Value, bool) {
	for i, n := range t.names {
		if n == name {
			return t.values[i], true
		}
	}
	return Value{}, false
}
