package settings

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/mapstructure"
)

// Format of a settings file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Settings is the deployment declaration. Every field is optional: a value that
// is not known yet is left out (or set to the zero address) and only fails the
// run if a contract parameter needs it.
type Settings struct {
	Bridge          BridgeSettings       `mapstructure:"bridge" json:"bridge,omitempty"`
	VirtualCowToken VirtualTokenSettings `mapstructure:"virtualCowToken" json:"virtualCowToken,omitempty"`
	TeamController  ExpectedAddress      `mapstructure:"teamController" json:"teamController,omitempty"`
	// CowToken and CowDao expected addresses are parsed but not checked
	CowToken ExpectedAddress `mapstructure:"cowToken" json:"cowToken,omitempty"`
	CowDao   ExpectedAddress `mapstructure:"cowDao" json:"cowDao,omitempty"`

	// Recorded deployments, used when verifying
	BridgedTokenDeployer    *common.Address `mapstructure:"bridgedTokenDeployer" json:"bridgedTokenDeployer,omitempty"`
	CowProtocolVirtualToken *common.Address `mapstructure:"cowProtocolVirtualToken" json:"cowProtocolVirtualToken,omitempty"` //nolint:lll
}

// BridgeSettings are the addresses of the omnibridge
type BridgeSettings struct {
	MultiTokenMediatorGnosisChain *common.Address `mapstructure:"multiTokenMediatorGnosisChain" json:"multiTokenMediatorGnosisChain,omitempty"` //nolint:lll
	MultiTokenMediatorETH         *common.Address `mapstructure:"multiTokenMediatorETH" json:"multiTokenMediatorETH,omitempty"`
}

// VirtualTokenSettings are the prices used by the claim options
type VirtualTokenSettings struct {
	GnoPrice         *Amount `mapstructure:"gnoPrice" json:"gnoPrice,omitempty"`
	NativeTokenPrice *Amount `mapstructure:"nativeTokenPrice" json:"nativeTokenPrice,omitempty"`
	UsdcPrice        *Amount `mapstructure:"usdcPrice" json:"usdcPrice,omitempty"`
}

// ExpectedAddress is an address known ahead of its deployment
type ExpectedAddress struct {
	ExpectedAddress *common.Address `mapstructure:"expectedAddress" json:"expectedAddress,omitempty"`
}

// Keys of the values Lookup resolves
const (
	KeyMultiTokenMediatorGnosisChain = "bridge.multiTokenMediatorGnosisChain"
	KeyMultiTokenMediatorETH         = "bridge.multiTokenMediatorETH"
	KeyGnoPrice                      = "virtualCowToken.gnoPrice"
	KeyNativeTokenPrice              = "virtualCowToken.nativeTokenPrice"
	KeyUsdcPrice                     = "virtualCowToken.usdcPrice"
	KeyTeamController                = "teamController.expectedAddress"
	KeyCowToken                      = "cowToken.expectedAddress"
	KeyCowDao                        = "cowDao.expectedAddress"
	KeyBridgedTokenDeployer          = "bridgedTokenDeployer"
	KeyCowProtocolVirtualToken       = "cowProtocolVirtualToken"
)

var lookups = map[string]func(s *Settings) interface{}{
	KeyMultiTokenMediatorGnosisChain: func(s *Settings) interface{} { return addr(s.Bridge.MultiTokenMediatorGnosisChain) },
	KeyMultiTokenMediatorETH:         func(s *Settings) interface{} { return addr(s.Bridge.MultiTokenMediatorETH) },
	KeyGnoPrice:                      func(s *Settings) interface{} { return amount(s.VirtualCowToken.GnoPrice) },
	KeyNativeTokenPrice:              func(s *Settings) interface{} { return amount(s.VirtualCowToken.NativeTokenPrice) },
	KeyUsdcPrice:                     func(s *Settings) interface{} { return amount(s.VirtualCowToken.UsdcPrice) },
	KeyTeamController:                func(s *Settings) interface{} { return addr(s.TeamController.ExpectedAddress) },
	KeyCowToken:                      func(s *Settings) interface{} { return addr(s.CowToken.ExpectedAddress) },
	KeyCowDao:                        func(s *Settings) interface{} { return addr(s.CowDao.ExpectedAddress) },
	KeyBridgedTokenDeployer:          func(s *Settings) interface{} { return addr(s.BridgedTokenDeployer) },
	KeyCowProtocolVirtualToken:       func(s *Settings) interface{} { return addr(s.CowProtocolVirtualToken) },
}

func addr(a *common.Address) interface{} {
	if a == nil {
		return nil
	}
	return *a
}

func amount(a *Amount) interface{} {
	if a == nil {
		return nil
	}
	return a.Big()
}

// Lookup returns the value stored under key: a common.Address or a *big.Int.
// It returns false when the key is unknown or the value is absent.
func (s *Settings) Lookup(key string) (interface{}, bool) {
	get, ok := lookups[key]
	if !ok {
		return nil, false
	}
	v := get(s)
	return v, v != nil
}

// Address returns the address stored under key
func (s *Settings) Address(key string) (common.Address, bool) {
	v, ok := s.Lookup(key)
	if !ok {
		return common.Address{}, false
	}
	a, ok := v.(common.Address)
	return a, ok
}

// Amount returns the amount stored under key
func (s *Settings) Amount(key string) (*big.Int, bool) {
	v, ok := s.Lookup(key)
	if !ok {
		return nil, false
	}
	a, ok := v.(*big.Int)
	return a, ok
}

// Keys returns every key Lookup knows, sorted
func Keys() []string {
	keys := make([]string, 0, len(lookups))
	for k := range lookups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatFromPath picks the format from the file extension, JSON by default
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadFile reads the settings file at path
func LoadFile(path string) (*Settings, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	s, unused, err := Load(data, FormatFromPath(path))
	if err != nil {
		return nil, nil, fmt.Errorf("settings file %s: %w", path, err)
	}
	return s, unused, nil
}

// Load decodes settings. It also returns the keys present in data that no field
// uses, sorted, so they can be reported.
func Load(data []byte, format Format) (*Settings, []string, error) {
	var parser koanf.Parser
	switch format {
	case FormatJSON:
		parser = jsonParser{}
	case FormatYAML:
		parser = yamlParser{}
	default:
		return nil, nil, fmt.Errorf("unknown settings format %q", format)
	}
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, nil, fmt.Errorf("error parsing %s: %w", format, err)
	}
	raw := k.Raw()

	s := &Settings{}
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   s,
		Metadata: &md,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			numberToAmountHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return nil, nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, nil, err
	}
	sort.Strings(md.Unused)
	return s, md.Unused, nil
}
