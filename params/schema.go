package params

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Identity names a contract that can be deployed
type Identity string

// Source tells where the value of a constructor field comes from
type Source int

const (
	// SourceRoot is the merkle root of the claims
	SourceRoot Source = iota
	// SourceZero is the zero value of the field type, used as a placeholder
	SourceZero
	// SourceConstant is a fixed value carried by the schema
	SourceConstant
	// SourceSettings is read from the deployment settings
	SourceSettings
)

func (s Source) String() string {
	switch s {
	case SourceRoot:
		return "root"
	case SourceZero:
		return "zero"
	case SourceConstant:
		return "constant"
	case SourceSettings:
		return "settings"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// Field is a constructor parameter of a schema
type Field struct {
	Name   string
	Type   ParamType
	Source Source
	// Constant is the value of a SourceConstant field
	Constant interface{}
	// SettingsKey is the settings entry of a SourceSettings field
	SettingsKey string
	// Getter is the name of the contract view returning the field, Name if empty
	Getter string
}

// GetterName returns the name of the view that exposes the field on chain
func (f Field) GetterName() string {
	if f.Getter != "" {
		return f.Getter
	}
	return f.Name
}

// Schema is the ordered constructor layout of a contract identity
type Schema struct {
	Identity Identity
	Version  uint
	Fields   []Field
	// DeploymentKey is the settings entry that records a deployed instance
	DeploymentKey string
}

// Arguments returns the abi arguments of the constructor
func (s *Schema) Arguments() (abi.Arguments, error) {
	args := make(abi.Arguments, 0, len(s.Fields))
	for _, f := range s.Fields {
		t, err := abi.NewType(string(f.Type), "", nil)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		args = append(args, abi.Argument{Name: f.Name, Type: t})
	}
	return args, nil
}

// Pack ABI encodes the parameters as constructor arguments
func (s *Schema) Pack(set ParameterSet) ([]byte, error) {
	if len(set) != len(s.Fields) {
		return nil, fmt.Errorf("%s expects %d parameters, got %d", s.Identity, len(s.Fields), len(set))
	}
	for i, f := range s.Fields {
		if set[i].Name != f.Name {
			return nil, fmt.Errorf("%s parameter %d is %s, got %s", s.Identity, i, f.Name, set[i].Name)
		}
	}
	args, err := s.Arguments()
	if err != nil {
		return nil, err
	}
	return args.Pack(set.Args()...)
}

func (s *Schema) validate() error {
	if s.Identity == "" {
		return fmt.Errorf("schema without identity")
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%s: field without name", s.Identity)
		}
		if seen[f.Name] {
			return fmt.Errorf("%s: duplicated field %s", s.Identity, f.Name)
		}
		seen[f.Name] = true
		if !f.Type.Valid() {
			return fmt.Errorf("%s: field %s has unsupported type %q", s.Identity, f.Name, f.Type)
		}
		switch f.Source {
		case SourceRoot:
			if f.Type != TypeBytes32 {
				return fmt.Errorf("%s: root field %s must be bytes32", s.Identity, f.Name)
			}
		case SourceZero:
		case SourceConstant:
			if _, err := coerce(f.Type, f.Constant); err != nil {
				return fmt.Errorf("%s: constant field %s: %w", s.Identity, f.Name, err)
			}
		case SourceSettings:
			if f.SettingsKey == "" {
				return fmt.Errorf("%s: settings field %s has no key", s.Identity, f.Name)
			}
		default:
			return fmt.Errorf("%s: field %s has unknown source %s", s.Identity, f.Name, f.Source)
		}
	}
	return nil
}
