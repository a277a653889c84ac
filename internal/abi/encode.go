package abi

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Errors returned by EncodeCall.
var (
	ErrUnsupportedType = errors.New("unsupported abi type")
	ErrArityMismatch   = errors.New("argument count does not match signature")
	ErrTypeMismatch    = errors.New("argument kind does not match signature")
	ErrValueOutOfRange = errors.New("integer does not fit in uint256")
	ErrBadAddress      = errors.New("malformed address")
)

// EncodeCall encodes a contract call as selector plus ABI-encoded arguments.
// Static arguments occupy one head word each; string/bytes arguments get an
// offset word in the head and length-prefixed, 32-byte-padded contents in
// the tail. Offsets are relative to the start of the argument block, after
// the selector.
func EncodeCall(signature string, args []Value) ([]byte, error) {
	types, err := paramTypes(signature)
	if err != nil {
		return nil, err
	}
	if len(types) != len(args) {
		return nil, fmt.Errorf("%w: signature %q wants %d, got %d", ErrArityMismatch, signature, len(types), len(args))
	}

	headSize := WordSize * len(args)
	head := make([]byte, 0, headSize)
	var tail []byte

	for i, typ := range types {
		word, dynamic, err := encodeArg(typ, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		if dynamic == nil {
			head = append(head, word[:]...)
			continue
		}
		offset := uintWord(uint64(headSize + len(tail)))
		head = append(head, offset[:]...)
		length := uintWord(uint64(len(dynamic)))
		tail = append(tail, length[:]...)
		tail = append(tail, padRight(dynamic)...)
	}

	sel := Selector(signature)
	out := make([]byte, 0, SelectorSize+len(head)+len(tail))
	out = append(out, sel[:]...)
	out = append(out, head...)
	out = append(out, tail...)
	return out, nil
}

// encodeArg encodes one argument. Static arguments return their head word;
// dynamic ones return their raw contents for tail placement.
func encodeArg(typ string, arg Value) (word [WordSize]byte, dynamic []byte, err error) {
	switch typ {
	case "uint256":
		if arg.Kind() != KindUint256 {
			return word, nil, kindError(typ, arg)
		}
		n := arg.Uint()
		if n.Sign() < 0 || n.BitLen() > 256 {
			return word, nil, fmt.Errorf("%w: %s", ErrValueOutOfRange, n)
		}
		n.FillBytes(word[:])
		return word, nil, nil

	case "bool":
		if arg.Kind() != KindBool {
			return word, nil, kindError(typ, arg)
		}
		if arg.Bool() {
			word[WordSize-1] = 1
		}
		return word, nil, nil

	case "address":
		if arg.Kind() != KindAddress {
			return word, nil, kindError(typ, arg)
		}
		raw, err := parseAddress(arg.Address())
		if err != nil {
			return word, nil, err
		}
		copy(word[WordSize-addressLen:], raw)
		return word, nil, nil

	case "bytes32":
		if arg.Kind() != KindBytes32 {
			return word, nil, kindError(typ, arg)
		}
		word = arg.Bytes32()
		return word, nil, nil

	case "string":
		if arg.Kind() != KindString {
			return word, nil, kindError(typ, arg)
		}
		return word, []byte(arg.Str()), nil

	case "bytes":
		if arg.Kind() != KindBytes {
			return word, nil, kindError(typ, arg)
		}
		b := arg.Bytes()
		if b == nil {
			b = []byte{}
		}
		return word, b, nil
	}
	return word, nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
}

// addressLen is the byte length of an EVM address.
const addressLen = 20

// parseAddress decodes a 0x-prefixed 20-byte hex address.
func parseAddress(s string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(trimmed) != addressLen*2 {
		return nil, fmt.Errorf("%w: %q", ErrBadAddress, s)
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrBadAddress, s)
	}
	return raw, nil
}

func kindError(typ string, arg Value) error {
	return fmt.Errorf("%w: signature wants %s, got %s", ErrTypeMismatch, typ, arg.Kind())
}

// uintWord encodes n as a big-endian 32-byte word.
func uintWord(n uint64) [WordSize]byte {
	var w [WordSize]byte
	for i := 0; i < 8; i++ {
		w[WordSize-1-i] = byte(n >> (8 * i))
	}
	return w
}

// padRight pads b with zeros up to the next 32-byte boundary.
func padRight(b []byte) []byte {
	rem := len(b) % WordSize
	if rem == 0 {
		return b
	}
	padded := make([]byte, len(b)+WordSize-rem)
	copy(padded, b)
	return padded
}
