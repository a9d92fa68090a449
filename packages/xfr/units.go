package xfr

import (
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// NativeDecimals is the number of decimal places of the native asset type.
const NativeDecimals int32 = 6

var maxAmount = decimal.NewFromBigInt(new(big.Int).SetUint64(^uint64(0)), 0)

// FormatAmount renders an amount of the smallest unit with the given number of decimal places (e.g. 1500000 with 6
// decimals is "1.500000").
func FormatAmount(amount uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -decimals).StringFixed(decimals)
}

// ParseAmount parses a decimal amount (e.g. "1.5") into the smallest unit with the given number of decimal places.
func ParseAmount(amountString string, decimals int32) (amount uint64, err error) {
	parsed, err := decimal.NewFromString(amountString)
	if err != nil {
		return 0, errors.Wrapf(ErrParseBytesFailed, "invalid amount %q: %s", amountString, err.Error())
	}

	units := parsed.Shift(decimals)
	switch {
	case units.IsNegative():
		return 0, errors.Wrapf(ErrParseBytesFailed, "amount %q is negative", amountString)
	case !units.Equal(units.Truncate(0)):
		return 0, errors.Wrapf(ErrParseBytesFailed, "amount %q has more than %d decimal places", amountString, decimals)
	case units.GreaterThan(maxAmount):
		return 0, errors.Wrapf(ErrParseBytesFailed, "amount %q is too large", amountString)
	}

	return units.BigInt().Uint64(), nil
}
