// Package abi encodes contract call payloads and decodes return data and
// event payloads for the vault contract's fixed shapes.
//
// Only the types the vault surface actually uses are supported: uint256,
// bool, address, bytes32, string, bytes, and tuples of those. Unsupported
// types are rejected explicitly rather than mis-encoded.
package abi

import (
	"fmt"
	"strings"

	"github.com/gatewei/gatewei/internal/keccak"
)

// SelectorSize is the length of a function selector in bytes.
const SelectorSize = 4

// WordSize is the length of one ABI head/tail word in bytes.
const WordSize = 32

// Selector returns the 4-byte function selector for a canonical signature
// such as "hasAccess(string,address)".
func Selector(signature string) [SelectorSize]byte {
	digest := keccak.Sum256([]byte(signature))
	var sel [SelectorSize]byte
	copy(sel[:], digest[:SelectorSize])
	return sel
}

// EventTopic returns the topic-0 hash for a canonical event signature such
// as "PaymentReceived(address,address,string,uint256,uint256)".
func EventTopic(signature string) [WordSize]byte {
	return keccak.Sum256([]byte(signature))
}

// paramTypes extracts the parameter type list from a canonical signature.
func paramTypes(signature string) ([]string, error) {
	open := strings.IndexByte(signature, '(')
	closing := strings.LastIndexByte(signature, ')')
	if open < 0 || closing < open {
		return nil, fmt.Errorf("malformed signature %q", signature)
	}
	inner := signature[open+1 : closing]
	if inner == "" {
		return nil, nil
	}
	parts := strings.Split(inner, ",")
	types := make([]string, len(parts))
	for i, p := range parts {
		types[i] = strings.TrimSpace(p)
	}
	return types, nil
}

// ShapeOf builds the field shapes mirroring a signature's own parameter
// list. Field names are positional ("arg0", "arg1", ...).
func ShapeOf(signature string) ([]FieldShape, error) {
	types, err := paramTypes(signature)
	if err != nil {
		return nil, err
	}
	shapes := make([]FieldShape, len(types))
	for i, typ := range types {
		if !supportedType(typ) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, typ)
		}
		shapes[i] = FieldShape{Name: fmt.Sprintf("arg%d", i), Type: typ}
	}
	return shapes, nil
}

func supportedType(typ string) bool {
	switch typ {
	case "uint256", "bool", "address", "bytes32", "string", "bytes":
		return true
	}
	return false
}
