package reconcile

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/0xPolygon/claimdeployer/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

// Canonical renders v in the canonical text form of t: base-10 integer for
// uint256, lower case 0x hex for address and bytes32. It fails for values that
// can not be read as t.
func Canonical(t params.ParamType, v interface{}) (string, error) {
	switch t {
	case params.TypeUint256:
		n, err := toUint256(v)
		if err != nil {
			return "", err
		}
		return n.Dec(), nil
	case params.TypeAddress:
		b, err := toFixedBytes(v, common.AddressLength)
		if err != nil {
			return "", err
		}
		return hexutil.Encode(b), nil
	case params.TypeBytes32:
		b, err := toFixedBytes(v, common.HashLength)
		if err != nil {
			return "", err
		}
		return hexutil.Encode(b), nil
	default:
		return "", fmt.Errorf("unsupported type %q", t)
	}
}

func toUint256(v interface{}) (*uint256.Int, error) {
	switch val := v.(type) {
	case *big.Int:
		if val == nil || val.Sign() < 0 {
			return nil, fmt.Errorf("invalid uint256 %v", val)
		}
		n, overflow := uint256.FromBig(val)
		if overflow {
			return nil, fmt.Errorf("%s overflows uint256", val)
		}
		return n, nil
	case *uint256.Int:
		if val == nil {
			return nil, fmt.Errorf("nil uint256")
		}
		return val.Clone(), nil
	case uint256.Int:
		return val.Clone(), nil
	case string:
		s := strings.TrimSpace(val)
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			n, ok := new(big.Int).SetString(s[2:], 16) //nolint:mnd
			if !ok {
				return nil, fmt.Errorf("invalid uint256 %q", val)
			}
			return toUint256(n)
		}
		n, err := uint256.FromDecimal(s)
		if err != nil || strings.HasPrefix(s, "+") {
			return nil, fmt.Errorf("invalid uint256 %q", val)
		}
		return n, nil
	case int:
		return fromInt64(int64(val))
	case int32:
		return fromInt64(int64(val))
	case int64:
		return fromInt64(val)
	case uint:
		return uint256.NewInt(uint64(val)), nil
	case uint8:
		return uint256.NewInt(uint64(val)), nil
	case uint16:
		return uint256.NewInt(uint64(val)), nil
	case uint32:
		return uint256.NewInt(uint64(val)), nil
	case uint64:
		return uint256.NewInt(val), nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) || val < 0 {
			return nil, fmt.Errorf("invalid uint256 %v", val)
		}
		f := new(big.Float).SetFloat64(val)
		if !f.IsInt() {
			return nil, fmt.Errorf("invalid uint256 %v", val)
		}
		n, _ := f.Int(nil)
		return toUint256(n)
	default:
		return nil, fmt.Errorf("cannot read %T as uint256", v)
	}
}

func fromInt64(v int64) (*uint256.Int, error) {
	if v < 0 {
		return nil, fmt.Errorf("invalid uint256 %d", v)
	}
	return uint256.NewInt(uint64(v)), nil
}

func toFixedBytes(v interface{}, size int) ([]byte, error) {
	var b []byte
	switch val := v.(type) {
	case common.Address:
		b = val.Bytes()
	case *common.Address:
		if val == nil {
			return nil, fmt.Errorf("nil address")
		}
		b = val.Bytes()
	case common.Hash:
		b = val.Bytes()
	case [20]byte:
		b = val[:]
	case [32]byte:
		b = val[:]
	case []byte:
		b = val
	case string:
		decoded, err := hexutil.Decode(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("invalid hex %q: %w", val, err)
		}
		b = decoded
	default:
		return nil, fmt.Errorf("cannot read %T as %d bytes", v, size)
	}
	if len(b) != size {
		return nil, fmt.Errorf("expected %d bytes, got %d", size, len(b))
	}
	return b, nil
}
