package params

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParamType is the ABI type of a constructor parameter
type ParamType string

const (
	TypeAddress ParamType = "address"
	TypeUint256 ParamType = "uint256"
	TypeBytes32 ParamType = "bytes32"
)

// Valid reports whether the type is supported
func (t ParamType) Valid() bool {
	switch t {
	case TypeAddress, TypeUint256, TypeBytes32:
		return true
	}
	return false
}

// Param is a named constructor parameter. Derived values are common.Address,
// *big.Int or common.Hash. Values read back from a ledger may be loosely typed.
type Param struct {
	Name  string
	Type  ParamType
	Value interface{}
}

func (p Param) String() string {
	return fmt.Sprintf("%s(%s)=%s", p.Name, p.Type, FormatValue(p.Value))
}

// ParameterSet is the ordered list of constructor parameters of a contract
type ParameterSet []Param

// Get returns the parameter called name
func (s ParameterSet) Get(name string) (Param, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Names returns the parameter names in order
func (s ParameterSet) Names() []string {
	names := make([]string, len(s))
	for i, p := range s {
		names[i] = p.Name
	}
	return names
}

// Args returns the values in the form expected by the abi packer
func (s ParameterSet) Args() []interface{} {
	args := make([]interface{}, len(s))
	for i, p := range s {
		switch v := p.Value.(type) {
		case common.Hash:
			args[i] = [32]byte(v)
		default:
			args[i] = v
		}
	}
	return args
}

// Fields returns the parameters as name and printable value pairs, to be logged
func (s ParameterSet) Fields() []interface{} {
	kv := make([]interface{}, 0, 2*len(s)) //nolint:mnd
	for _, p := range s {
		kv = append(kv, p.Name, FormatValue(p.Value))
	}
	return kv
}

func (s ParameterSet) String() string {
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FormatValue prints a parameter value
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case common.Address:
		return val.Hex()
	case common.Hash:
		return val.Hex()
	case *big.Int:
		if val == nil {
			return "<nil>"
		}
		return val.String()
	case nil:
		return "<nil>"
	default:
		return fmt.Sprint(val)
	}
}
