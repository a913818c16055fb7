package evmledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/0xPolygon/claimdeployer/params"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Artifact is the compiled contract of an identity
type Artifact struct {
	ContractName string
	ABI          abi.ABI
	Bytecode     []byte
}

type artifactJSON struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

// LoadArtifact reads a build artifact with contractName, abi and bytecode
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	var raw artifactJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding artifact %s: %w", path, err)
	}
	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("decoding abi of %s: %w", path, err)
	}
	bytecode, err := hexutil.Decode(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("decoding bytecode of %s: %w", path, err)
	}
	if len(bytecode) == 0 {
		return nil, fmt.Errorf("artifact %s has no bytecode", path)
	}
	return &Artifact{ContractName: raw.ContractName, ABI: parsed, Bytecode: bytecode}, nil
}

// CheckConstructor fails if the constructor inputs differ from the schema fields
func (a *Artifact) CheckConstructor(schema *params.Schema) error {
	inputs := a.ABI.Constructor.Inputs
	if len(inputs) != len(schema.Fields) {
		return fmt.Errorf("%s constructor has %d inputs, %s expects %d",
			a.ContractName, len(inputs), schema.Identity, len(schema.Fields))
	}
	for i, f := range schema.Fields {
		if inputs[i].Type.String() != string(f.Type) {
			return fmt.Errorf("%s constructor input %d (%s) is %s, %s expects %s",
				a.ContractName, i, inputs[i].Name, inputs[i].Type, f.Name, f.Type)
		}
	}
	return nil
}

// Artifacts loads the artifacts of a folder on demand
type Artifacts struct {
	dir   string
	mu    sync.Mutex
	cache map[params.Identity]*Artifact
}

func NewArtifacts(dir string) *Artifacts {
	return &Artifacts{dir: dir, cache: make(map[params.Identity]*Artifact)}
}

// Get returns the artifact of the identity, read from <dir>/<identity>.json
func (a *Artifacts) Get(id params.Identity) (*Artifact, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if art, ok := a.cache[id]; ok {
		return art, nil
	}
	art, err := LoadArtifact(filepath.Join(a.dir, string(id)+".json"))
	if err != nil {
		return nil, err
	}
	a.cache[id] = art
	return art, nil
}
