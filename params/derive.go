package params

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/0xPolygon/claimdeployer/settings"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var ErrMissingParameter = errors.New("missing parameter")

// Derive resolves every field of the schema, in order. A settings field that
// is absent, or holds the zero address, fails with ErrMissingParameter.
func (s *Schema) Derive(st *settings.Settings, root common.Hash) (ParameterSet, error) {
	set := make(ParameterSet, 0, len(s.Fields))
	for _, f := range s.Fields {
		var (
			value interface{}
			err   error
		)
		switch f.Source {
		case SourceRoot:
			value = root
		case SourceZero:
			value = zeroValue(f.Type)
		case SourceConstant:
			value, err = coerce(f.Type, f.Constant)
		case SourceSettings:
			value, err = fromSettings(f, st)
		default:
			err = fmt.Errorf("unknown source %s", f.Source)
		}
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s.Identity, f.Name, err)
		}
		set = append(set, Param{Name: f.Name, Type: f.Type, Value: value})
	}
	return set, nil
}

func fromSettings(f Field, st *settings.Settings) (interface{}, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: no settings to read %s from", ErrMissingParameter, f.SettingsKey)
	}
	raw, ok := st.Lookup(f.SettingsKey)
	if !ok {
		return nil, fmt.Errorf("%w: settings key %s is not set", ErrMissingParameter, f.SettingsKey)
	}
	value, err := coerce(f.Type, raw)
	if err != nil {
		return nil, fmt.Errorf("settings key %s: %w", f.SettingsKey, err)
	}
	if addr, ok := value.(common.Address); ok && addr == (common.Address{}) {
		return nil, fmt.Errorf("%w: settings key %s holds the zero address", ErrMissingParameter, f.SettingsKey)
	}
	return value, nil
}

func zeroValue(t ParamType) interface{} {
	switch t {
	case TypeAddress:
		return common.Address{}
	case TypeUint256:
		return new(big.Int)
	default:
		return common.Hash{}
	}
}

// coerce converts v into the Go type used for t
func coerce(t ParamType, v interface{}) (interface{}, error) {
	switch t {
	case TypeAddress:
		switch val := v.(type) {
		case common.Address:
			return val, nil
		case string:
			if !common.IsHexAddress(val) {
				return nil, fmt.Errorf("invalid address %q", val)
			}
			return common.HexToAddress(val), nil
		}
	case TypeUint256:
		switch val := v.(type) {
		case *big.Int:
			if val == nil || val.Sign() < 0 || val.BitLen() > 256 { //nolint:mnd
				return nil, fmt.Errorf("invalid uint256 %v", val)
			}
			return new(big.Int).Set(val), nil
		case string:
			u, err := uint256.FromDecimal(val)
			if err != nil {
				return nil, fmt.Errorf("invalid uint256 %q: %w", val, err)
			}
			return u.ToBig(), nil
		case uint64:
			return new(big.Int).SetUint64(val), nil
		case int:
			if val < 0 {
				return nil, fmt.Errorf("invalid uint256 %d", val)
			}
			return big.NewInt(int64(val)), nil
		}
	case TypeBytes32:
		switch val := v.(type) {
		case common.Hash:
			return val, nil
		case [32]byte:
			return common.Hash(val), nil
		}
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, t)
}
