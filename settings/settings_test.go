package settings

import (
	"math/big"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const settingsJSON = `{
  "bridge": {
    "multiTokenMediatorGnosisChain": "0xf6A78083ca3e2a662D6dd1703c939c8aCE2e268d"
  },
  "virtualCowToken": {
    "gnoPrice": "150000000000000000",
    "nativeTokenPrice": "0.15",
    "usdcPrice": 15
  },
  "teamController": {
    "expectedAddress": "0x0000000000000000000000000000000000000000"
  },
  "multisend": "0xA238CBeb142c10Ef7Ad8442C6D1f9E89e07e7761",
  "bridgedTokenDeployer": "0x1111111111111111111111111111111111111111"
}`

const settingsYAML = `
bridge:
  multiTokenMediatorGnosisChain: "0xf6A78083ca3e2a662D6dd1703c939c8aCE2e268d"
virtualCowToken:
  gnoPrice: 150000000000000000
  nativeTokenPrice: "0.15"
`

func TestLoadJSON(t *testing.T) {
	s, unused, err := Load([]byte(settingsJSON), FormatJSON)
	require.NoError(t, err)
	require.Equal(t, []string{"multisend"}, unused)

	mediator, ok := s.Address(KeyMultiTokenMediatorGnosisChain)
	require.True(t, ok)
	require.Equal(t, common.HexToAddress("0xf6A78083ca3e2a662D6dd1703c939c8aCE2e268d"), mediator)

	price := new(big.Int).SetUint64(150000000000000000)
	gno, ok := s.Amount(KeyGnoPrice)
	require.True(t, ok)
	require.Equal(t, price.String(), gno.String())
	native, ok := s.Amount(KeyNativeTokenPrice)
	require.True(t, ok)
	require.Equal(t, price.String(), native.String())
	usdc, ok := s.Amount(KeyUsdcPrice)
	require.True(t, ok)
	require.Equal(t, "15", usdc.String())

	team, ok := s.Address(KeyTeamController)
	require.True(t, ok)
	require.Equal(t, common.Address{}, team)

	_, ok = s.Lookup(KeyCowDao)
	require.False(t, ok)
	_, ok = s.Lookup("nope")
	require.False(t, ok)

	deployed, ok := s.Address(KeyBridgedTokenDeployer)
	require.True(t, ok)
	require.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), deployed)
}

func TestLoadYAMLMatchesJSON(t *testing.T) {
	fromYAML, _, err := Load([]byte(settingsYAML), FormatYAML)
	require.NoError(t, err)
	fromJSON, _, err := Load([]byte(settingsJSON), FormatJSON)
	require.NoError(t, err)

	for _, key := range []string{KeyMultiTokenMediatorGnosisChain, KeyGnoPrice, KeyNativeTokenPrice} {
		a, ok := fromYAML.Lookup(key)
		require.True(t, ok, key)
		b, ok := fromJSON.Lookup(key)
		require.True(t, ok, key)
		require.Equal(t, b, a, key)
	}
	_, ok := fromYAML.Lookup(KeyBridgedTokenDeployer)
	require.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yml")
	require.NoError(t, os.WriteFile(path, []byte(settingsYAML), 0o600))
	s, _, err := LoadFile(path)
	require.NoError(t, err)
	_, ok := s.Amount(KeyGnoPrice)
	require.True(t, ok)

	_, _, err = LoadFile(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, _, err := Load([]byte(`{"bridge": {"multiTokenMediatorGnosisChain": "0x1234"}}`), FormatJSON)
	require.Error(t, err)

	_, _, err = Load([]byte(`{"virtualCowToken": {"gnoPrice": "-1"}}`), FormatJSON)
	require.ErrorContains(t, err, ErrInvalidAmount.Error())

	_, _, err = Load([]byte(`{"virtualCowToken": {"gnoPrice": "0.0000000000000000001"}}`), FormatJSON)
	require.ErrorContains(t, err, ErrInvalidAmount.Error())

	_, _, err = Load([]byte(`{`), FormatJSON)
	require.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"0", "0"},
		{"42", "42"},
		{"0x2a", "42"},
		{"1", "1"},
		{"1.0", "1000000000000000000"},
		{"0.15", "150000000000000000"},
		{" 7 ", "7"},
	}
	for _, tt := range tests {
		v, err := ParseAmount(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.expected, v.String(), tt.in)
	}

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	for _, in := range []string{"", "abc", "-3", "+3", "1e18", "0x", "0x" + tooBig.Text(16), tooBig.String()} {
		_, err := ParseAmount(in)
		require.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestSchema(t *testing.T) {
	schema, err := Schema()
	require.NoError(t, err)
	require.Contains(t, string(schema), "multiTokenMediatorGnosisChain")
	require.Contains(t, string(schema), "^0x[0-9a-fA-F]{40}$")
	require.Contains(t, string(schema), "nativeTokenPrice")
}

func TestKeys(t *testing.T) {
	keys := Keys()
	require.Contains(t, keys, KeyGnoPrice)
	require.IsIncreasing(t, keys)
}

func TestLoadNumericAmountsKeepDigits(t *testing.T) {
	jsonDoc := `{"virtualCowToken": {"gnoPrice": 123456789012345678901, "nativeTokenPrice": 150000000000000001}}`
	yamlDoc := "virtualCowToken:\n  gnoPrice: 123456789012345678901\n  nativeTokenPrice: 150000000000000001\n"

	for format, doc := range map[Format]string{FormatJSON: jsonDoc, FormatYAML: yamlDoc} {
		s, _, err := Load([]byte(doc), format)
		require.NoError(t, err, format)
		gno, ok := s.Amount(KeyGnoPrice)
		require.True(t, ok, format)
		require.Equal(t, "123456789012345678901", gno.String(), format)
		native, ok := s.Amount(KeyNativeTokenPrice)
		require.True(t, ok, format)
		require.Equal(t, "150000000000000001", native.String(), format)
	}
}

func TestLoadNumberAndStringSameUnits(t *testing.T) {
	tests := []struct {
		json     string
		yaml     string
		expected string
	}{
		{`1`, `1`, "1"},
		{`"1"`, `"1"`, "1"},
		{`1.0`, `1.0`, "1000000000000000000"},
		{`"1.0"`, `"1.0"`, "1000000000000000000"},
		{`1.5`, `1.5`, "1500000000000000000"},
		{`"1.5"`, `"1.5"`, "1500000000000000000"},
		{`0.15`, `0.15`, "150000000000000000"},
	}
	for _, tt := range tests {
		s, _, err := Load([]byte(`{"virtualCowToken": {"gnoPrice": `+tt.json+`}}`), FormatJSON)
		require.NoError(t, err, tt.json)
		v, ok := s.Amount(KeyGnoPrice)
		require.True(t, ok, tt.json)
		require.Equal(t, tt.expected, v.String(), tt.json)

		s, _, err = Load([]byte("virtualCowToken:\n  gnoPrice: "+tt.yaml+"\n"), FormatYAML)
		require.NoError(t, err, tt.yaml)
		v, ok = s.Amount(KeyGnoPrice)
		require.True(t, ok, tt.yaml)
		require.Equal(t, tt.expected, v.String(), tt.yaml)
	}

	// exponent notation has no unambiguous unit
	_, _, err := Load([]byte(`{"virtualCowToken": {"gnoPrice": 1e18}}`), FormatJSON)
	require.ErrorContains(t, err, ErrInvalidAmount.Error())
	_, _, err = Load([]byte("virtualCowToken:\n  gnoPrice: 1e18\n"), FormatYAML)
	require.ErrorContains(t, err, ErrInvalidAmount.Error())
}

func TestLoadYAMLUnquotedAddress(t *testing.T) {
	s, _, err := Load([]byte("bridge:\n  multiTokenMediatorGnosisChain: 0xf6A78083ca3e2a662D6dd1703c939c8aCE2e268d\n"), FormatYAML)
	require.NoError(t, err)
	mediator, ok := s.Address(KeyMultiTokenMediatorGnosisChain)
	require.True(t, ok)
	require.Equal(t, common.HexToAddress("0xf6A78083ca3e2a662D6dd1703c939c8aCE2e268d"), mediator)
}

func TestLoadRejectsMalformedDocuments(t *testing.T) {
	_, _, err := Load([]byte(`{"virtualCowToken": {}} {}`), FormatJSON)
	require.Error(t, err)
	_, _, err = Load([]byte("virtualCowToken:\n  gnoPrice: 1\n  gnoPrice: 2\n"), FormatYAML)
	require.Error(t, err)
	_, _, err = Load([]byte("- 1\n- 2\n"), FormatYAML)
	require.ErrorContains(t, err, "must be a mapping")
}

func TestNumberHookRejectsFloats(t *testing.T) {
	hook := numberToAmountHookFunc()
	amountType := reflect.TypeOf(Amount{})
	_, err := hook(reflect.TypeOf(float64(0)), amountType, 1.5e17)
	require.ErrorIs(t, err, ErrInvalidAmount)

	v, err := hook(reflect.TypeOf(int64(0)), amountType, int64(15))
	require.NoError(t, err)
	require.Equal(t, "15", v)
}
