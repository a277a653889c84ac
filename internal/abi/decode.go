package abi

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
)

// ErrTruncated reports return data too short for the declared shape, or an
// offset or length word that would read past the end of the buffer. Decoding
// fails closed: it never reads out of range and never guesses.
var ErrTruncated = errors.New("truncated return data")

// DecodeReturn decodes a return-data buffer against a declared output shape.
// Head offsets are interpreted relative to the start of data; a zero-length
// dynamic field decodes to an empty string or byte slice, not an error.
func DecodeReturn(data []byte, shape []FieldShape) (*DecodedTuple, error) {
	return decodeTuple(data, shape)
}

func decodeTuple(data []byte, shape []FieldShape) (*DecodedTuple, error) {
	tuple := &DecodedTuple{
		names:  make([]string, 0, len(shape)),
		values: make([]Value, 0, len(shape)),
	}

	headPos := 0
	for i, f := range shape {
		v, err := decodeField(data, headPos, f)
		if err != nil {
			return nil, fmt.Errorf("field %d (%s): %w", i, f.Name, err)
		}
		headPos += f.headSlots() * WordSize
		tuple.names = append(tuple.names, f.Name)
		tuple.values = append(tuple.values, v)
	}
	return tuple, nil
}

func decodeField(data []byte, headPos int, f FieldShape) (Value, error) {
	switch f.Type {
	case "uint256":
		w, err := wordAt(data, headPos)
		if err != nil {
			return Value{}, err
		}
		return Uint256Value(new(big.Int).SetBytes(w[:])), nil

	case "bool":
		w, err := wordAt(data, headPos)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(!isZeroWord(w)), nil

	case "address":
		w, err := wordAt(data, headPos)
		if err != nil {
			return Value{}, err
		}
		return AddressValue("0x" + hex.EncodeToString(w[WordSize-addressLen:])), nil

	case "bytes32":
		w, err := wordAt(data, headPos)
		if err != nil {
			return Value{}, err
		}
		return Bytes32Value(w), nil

	case "string":
		content, err := dynamicContent(data, headPos)
		if err != nil {
			return Value{}, err
		}
		return StringValue(string(content)), nil

	case "bytes":
		content, err := dynamicContent(data, headPos)
		if err != nil {
			return Value{}, err
		}
		return BytesValue(content), nil

	case "tuple":
		if !f.dynamic() {
			return decodeStaticTuple(data, headPos, f.Fields)
		}
		offset, err := offsetAt(data, headPos)
		if err != nil {
			return Value{}, err
		}
		// Offsets inside a dynamic tuple are relative to the tuple's own
		// start, so recursion gets the re-based slice.
		nested, err := decodeTuple(data[offset:], f.Fields)
		if err != nil {
			return Value{}, err
		}
		return TupleValue(nested.values...), nil
	}
	return Value{}, fmt.Errorf("%w: %s", ErrUnsupportedType, f.Type)
}

// decodeStaticTuple decodes a tuple whose members all live inline in the head.
func decodeStaticTuple(data []byte, headPos int, members []FieldShape) (Value, error) {
	values := make([]Value, 0, len(members))
	for _, m := range members {
		v, err := decodeField(data, headPos, m)
		if err != nil {
			return Value{}, err
		}
		headPos += m.headSlots() * WordSize
		values = append(values, v)
	}
	return TupleValue(values...), nil
}

// dynamicContent resolves a head offset word to the length-prefixed contents
// it points at, bounds-checking every step.
func dynamicContent(data []byte, headPos int) ([]byte, error) {
	offset, err := offsetAt(data, headPos)
	if err != nil {
		return nil, err
	}
	lengthWord, err := wordAt(data, offset)
	if err != nil {
		return nil, err
	}
	length := new(big.Int).SetBytes(lengthWord[:])
	if !length.IsUint64() || length.Uint64() > uint64(len(data)) {
		return nil, fmt.Errorf("%w: length %s exceeds buffer", ErrTruncated, length)
	}
	n := int(length.Uint64())
	start := offset + WordSize
	if start+n > len(data) {
		return nil, fmt.Errorf("%w: content of %d bytes at offset %d exceeds buffer", ErrTruncated, n, offset)
	}
	return append([]byte(nil), data[start:start+n]...), nil
}

// offsetAt reads a head word as a byte offset into data.
func offsetAt(data []byte, headPos int) (int, error) {
	w, err := wordAt(data, headPos)
	if err != nil {
		return 0, err
	}
	offset := new(big.Int).SetBytes(w[:])
	if !offset.IsUint64() || offset.Uint64() > uint64(len(data)) {
		return 0, fmt.Errorf("%w: offset %s exceeds buffer", ErrTruncated, offset)
	}
	return int(offset.Uint64()), nil
}

// wordAt reads the 32-byte word starting at pos.
func wordAt(data []byte, pos int) ([WordSize]byte, error) {
	var w [WordSize]byte
	if pos < 0 || pos+WordSize > len(data) {
		return w, fmt.Errorf("%w: word at %d in %d-byte buffer", ErrTruncated, pos, len(data))
	}
	copy(w[:], data[pos:pos+WordSize])
	return w, nil
}

func isZeroWord(w [WordSize]byte) bool {
	for _, b := range w {
		if b != 0 {
			return false
		}
	}
	return true
}
