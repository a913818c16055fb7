package params

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/0xPolygon/claimdeployer/settings"
	"github.com/ethereum/go-ethereum/common"
)

const (
	BridgedTokenDeployer    Identity = "BridgedTokenDeployer"
	CowProtocolVirtualToken Identity = "CowProtocolVirtualToken"
)

// CowTokenAddress is the address of the COW token on mainnet
var CowTokenAddress = common.HexToAddress("0x5Fe27BF718937CA1c4a7818D246Cd4e755C7470c")

var (
	ErrUnknownIdentity   = errors.New("unknown contract identity")
	ErrDuplicateIdentity = errors.New("contract identity already registered")
)

// Registry holds the constructor schemas by contract identity
type Registry struct {
	mu      sync.RWMutex
	schemas map[Identity]Schema
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[Identity]Schema)}
}

// NewDefaultRegistry returns a registry with the built-in schemas
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range builtinSchemas() {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a schema. An identity can only be registered once.
func (r *Registry) Register(s Schema) error {
	if err := s.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schemas[s.Identity]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateIdentity, s.Identity)
	}
	s.Fields = append([]Field(nil), s.Fields...)
	r.schemas[s.Identity] = s
	return nil
}

// Schema returns the schema of the identity
func (r *Registry) Schema(id Identity) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIdentity, id)
	}
	s.Fields = append([]Field(nil), s.Fields...)
	return &s, nil
}

// Identities returns the registered identities, sorted
func (r *Registry) Identities() []Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]Identity, 0, len(r.schemas))
	for id := range r.schemas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Derive resolves the constructor parameters of the identity
func (r *Registry) Derive(id Identity, s *settings.Settings, root common.Hash) (ParameterSet, error) {
	schema, err := r.Schema(id)
	if err != nil {
		return nil, err
	}
	return schema.Derive(s, root)
}

func builtinSchemas() []Schema {
	return []Schema{
		{
			Identity:      BridgedTokenDeployer,
			Version:       1,
			DeploymentKey: settings.KeyBridgedTokenDeployer,
			Fields: []Field{
				{Name: "merkleRoot", Type: TypeBytes32, Source: SourceRoot},
				{Name: "foreignToken", Type: TypeAddress, Source: SourceZero},
				{Name: "nativeTokenPrice", Type: TypeUint256, Source: SourceSettings, SettingsKey: settings.KeyNativeTokenPrice},
				{Name: "multiTokenMediator", Type: TypeAddress, Source: SourceSettings,
					SettingsKey: settings.KeyMultiTokenMediatorGnosisChain},
				{Name: "communityFundsTarget", Type: TypeAddress, Source: SourceZero},
				{Name: "gnoToken", Type: TypeAddress, Source: SourceZero},
				{Name: "gnoPrice", Type: TypeUint256, Source: SourceSettings, SettingsKey: settings.KeyGnoPrice},
				{Name: "wrappedNativeToken", Type: TypeAddress, Source: SourceZero},
			},
		},
		{
			Identity:      CowProtocolVirtualToken,
			Version:       1,
			DeploymentKey: settings.KeyCowProtocolVirtualToken,
			Fields: []Field{
				{Name: "merkleRoot", Type: TypeBytes32, Source: SourceRoot},
				{Name: "cowToken", Type: TypeAddress, Source: SourceConstant, Constant: CowTokenAddress},
				{Name: "communityFundsTarget", Type: TypeAddress, Source: SourceZero},
				{Name: "investorFundsTarget", Type: TypeAddress, Source: SourceZero},
				{Name: "usdcToken", Type: TypeAddress, Source: SourceZero},
				{Name: "usdcPrice", Type: TypeUint256, Source: SourceConstant, Constant: "0"},
				{Name: "gnoToken", Type: TypeAddress, Source: SourceZero},
				{Name: "gnoPrice", Type: TypeUint256, Source: SourceSettings, SettingsKey: settings.KeyGnoPrice},
				{Name: "wrappedNativeToken", Type: TypeAddress, Source: SourceZero},
				{Name: "nativeTokenPrice", Type: TypeUint256, Source: SourceSettings, SettingsKey: settings.KeyNativeTokenPrice},
				{Name: "teamController", Type: TypeAddress, Source: SourceSettings, SettingsKey: settings.KeyTeamController},
			},
		},
	}
}
