package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
)

// unitDecimals is the number of decimals of a price written with a decimal point
const unitDecimals = 18

var ErrInvalidAmount = errors.New("invalid amount")

// Amount is an unsigned 256-bit integer. In text form it is either an integer
// (base units, decimal or 0x hex) or a decimal number of whole tokens with 18
// decimals, so "0.15" and "150000000000000000" are the same amount.
type Amount struct {
	v *big.Int
}

// NewAmount wraps v
func NewAmount(v *big.Int) Amount {
	return Amount{v: new(big.Int).Set(v)}
}

// Big returns a copy of the amount as big.Int
func (a Amount) Big() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.v)
}

func (a Amount) String() string {
	return a.Big().String()
}

// UnmarshalText parses an amount
func (a *Amount) UnmarshalText(data []byte) error {
	v, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	a.v = v
	return nil
}

// MarshalText writes the amount in base units
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// JSONSchema returns a custom schema to be used for the JSON Schema generation of this type
func (Amount) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Title:       "Amount",
		Description: "Unsigned integer in base units, or a decimal number of tokens with 18 decimals",
		Examples: []interface{}{
			"150000000000000000",
			"0.15",
		},
	}
}

// ParseAmount parses the text form of an Amount
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, ok := new(big.Int).SetString(s[2:], 16) //nolint:mnd
		if !ok || v.Sign() < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		if _, overflow := uint256.FromBig(v); overflow {
			return nil, fmt.Errorf("%w: %q does not fit in 256 bits", ErrInvalidAmount, s)
		}
		return v, nil
	}
	if !strings.Contains(s, ".") {
		v, err := uint256.FromDecimal(s)
		if err != nil || strings.HasPrefix(s, "+") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		return v.ToBig(), nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidAmount, s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	scaled := d.Shift(unitDecimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, unitDecimals)
	}
	v := scaled.BigInt()
	if _, overflow := uint256.FromBig(v); overflow {
		return nil, fmt.Errorf("%w: %q does not fit in 256 bits", ErrInvalidAmount, s)
	}
	return v, nil
}

// numberToAmountHookFunc lets amounts be written as plain numbers in the settings
// file. The parsers keep the literal text of every number, so a number is read
// with the same rules as the same text in quotes: 1 is one base unit and 1.0 is
// one token. Floats carry no literal text and are refused.
func numberToAmountHookFunc() mapstructure.DecodeHookFuncType {
	amountType := reflect.TypeOf(Amount{})
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if n, ok := data.(json.Number); ok {
			return n.String(), nil
		}
		if t != amountType {
			return data, nil
		}
		switch v := data.(type) {
		case float64, float32:
			return nil, fmt.Errorf("%w: %v has no exact text form, write it as a string", ErrInvalidAmount, v)
		case int:
			return strconv.FormatInt(int64(v), 10), nil //nolint:mnd
		case int64:
			return strconv.FormatInt(v, 10), nil //nolint:mnd
		case uint64:
			return strconv.FormatUint(v, 10), nil //nolint:mnd
		}
		return data, nil
	}
}
