// Package wei converts between wei integers and decimal ether strings.
package wei

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// etherDecimals is the number of wei decimal places in one ether.
const etherDecimals = 18

// Errors returned by the parsing helpers.
var (
	ErrNotDecimal  = errors.New("not a decimal number")
	ErrNegative    = errors.New("amount must not be negative")
	ErrSubWeiUnits = errors.New("amount has sub-wei precision")
)

// ParseEther converts a decimal ether string such as "0.001" into wei.
func ParseEther(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotDecimal, s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q", ErrNegative, s)
	}
	shifted := d.Shift(etherDecimals)
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("%w: %q", ErrSubWeiUnits, s)
	}
	return shifted.BigInt(), nil
}

// ParseWei converts a base-10 wei string into an integer.
func ParseWei(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotDecimal, s)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNegative, s)
	}
	return n, nil
}

// FormatEther renders a wei amount as a decimal ether string with trailing
// zeros trimmed.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -etherDecimals).String()
}
