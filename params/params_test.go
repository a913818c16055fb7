package params

import (
	"math/big"
	"testing"

	"github.com/0xPolygon/claimdeployer/settings"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var (
	testRoot     = common.HexToHash("0x4c4a8b1e0e6f8c66fd2b32da3a4b4ff1c8e7b9b2e0e8e2a8e2c1f0d3b4a59687")
	testMediator = common.HexToAddress("0xf6A78083ca3e2a662D6dd1703c939c8aCE2e268d")
	testTeam     = common.HexToAddress("0x2222222222222222222222222222222222222222")
	price        = big.NewInt(150000000000000000)
)

var bigIntComparer = cmp.Comparer(func(a, b *big.Int) bool { return a.Cmp(b) == 0 })

func testSettings(t *testing.T) *settings.Settings {
	t.Helper()
	s, _, err := settings.Load([]byte(`{
		"bridge": {"multiTokenMediatorGnosisChain": "0xf6A78083ca3e2a662D6dd1703c939c8aCE2e268d"},
		"virtualCowToken": {"gnoPrice": "150000000000000000", "nativeTokenPrice": "0.15"},
		"teamController": {"expectedAddress": "0x2222222222222222222222222222222222222222"}
	}`), settings.FormatJSON)
	require.NoError(t, err)
	return s
}

func TestDeriveBridgedTokenDeployer(t *testing.T) {
	r := NewDefaultRegistry()
	set, err := r.Derive(BridgedTokenDeployer, testSettings(t), testRoot)
	require.NoError(t, err)

	expected := ParameterSet{
		{Name: "merkleRoot", Type: TypeBytes32, Value: testRoot},
		{Name: "foreignToken", Type: TypeAddress, Value: common.Address{}},
		{Name: "nativeTokenPrice", Type: TypeUint256, Value: price},
		{Name: "multiTokenMediator", Type: TypeAddress, Value: testMediator},
		{Name: "communityFundsTarget", Type: TypeAddress, Value: common.Address{}},
		{Name: "gnoToken", Type: TypeAddress, Value: common.Address{}},
		{Name: "gnoPrice", Type: TypeUint256, Value: price},
		{Name: "wrappedNativeToken", Type: TypeAddress, Value: common.Address{}},
	}
	if diff := cmp.Diff(expected, set, bigIntComparer); diff != "" {
		t.Errorf("unexpected parameters (-want +got):\n%s", diff)
	}
}

func TestDeriveVirtualToken(t *testing.T) {
	r := NewDefaultRegistry()
	set, err := r.Derive(CowProtocolVirtualToken, testSettings(t), testRoot)
	require.NoError(t, err)
	require.Equal(t, []string{
		"merkleRoot", "cowToken", "communityFundsTarget", "investorFundsTarget", "usdcToken", "usdcPrice",
		"gnoToken", "gnoPrice", "wrappedNativeToken", "nativeTokenPrice", "teamController",
	}, set.Names())

	cow, ok := set.Get("cowToken")
	require.True(t, ok)
	require.Equal(t, CowTokenAddress, cow.Value)
	usdc, ok := set.Get("usdcPrice")
	require.True(t, ok)
	require.Equal(t, 0, usdc.Value.(*big.Int).Sign())
	team, ok := set.Get("teamController")
	require.True(t, ok)
	require.Equal(t, testTeam, team.Value)
}

func TestDeriveMissingParameter(t *testing.T) {
	r := NewDefaultRegistry()

	_, err := r.Derive(BridgedTokenDeployer, &settings.Settings{}, testRoot)
	require.ErrorIs(t, err, ErrMissingParameter)
	require.Contains(t, err.Error(), settings.KeyNativeTokenPrice)

	_, err = r.Derive(BridgedTokenDeployer, nil, testRoot)
	require.ErrorIs(t, err, ErrMissingParameter)

	// placeholder zero address for the team controller
	s := testSettings(t)
	zero := common.Address{}
	s.TeamController.ExpectedAddress = &zero
	_, err = r.Derive(CowProtocolVirtualToken, s, testRoot)
	require.ErrorIs(t, err, ErrMissingParameter)
	require.Contains(t, err.Error(), "teamController")
}

func TestDeriveUnknownIdentity(t *testing.T) {
	_, err := NewDefaultRegistry().Derive("Nope", testSettings(t), testRoot)
	require.ErrorIs(t, err, ErrUnknownIdentity)
}

func TestPackDeterministic(t *testing.T) {
	r := NewDefaultRegistry()
	schema, err := r.Schema(BridgedTokenDeployer)
	require.NoError(t, err)

	first, err := r.Derive(BridgedTokenDeployer, testSettings(t), testRoot)
	require.NoError(t, err)
	second, err := r.Derive(BridgedTokenDeployer, testSettings(t), testRoot)
	require.NoError(t, err)

	a, err := schema.Pack(first)
	require.NoError(t, err)
	b, err := schema.Pack(second)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 32*len(schema.Fields))
	require.Equal(t, testRoot.Bytes(), a[:32])
	require.Equal(t, common.LeftPadBytes(testMediator.Bytes(), 32), a[3*32:4*32])

	otherRoot, err := r.Derive(BridgedTokenDeployer, testSettings(t), common.Hash{1})
	require.NoError(t, err)
	c, err := schema.Pack(otherRoot)
	require.NoError(t, err)
	require.NotEqual(t, a, c)

	_, err = schema.Pack(first[:3])
	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	r := NewDefaultRegistry()
	require.Equal(t, []Identity{BridgedTokenDeployer, CowProtocolVirtualToken}, r.Identities())

	err := r.Register(Schema{Identity: BridgedTokenDeployer, Version: 2})
	require.ErrorIs(t, err, ErrDuplicateIdentity)

	err = r.Register(Schema{Identity: "Bad", Fields: []Field{{Name: "x", Type: "uint8", Source: SourceZero}}})
	require.Error(t, err)

	err = r.Register(Schema{Identity: "Bad", Fields: []Field{{Name: "x", Type: TypeAddress, Source: SourceSettings}}})
	require.Error(t, err)

	err = r.Register(Schema{Identity: "Minimal", Version: 1, Fields: []Field{
		{Name: "root", Type: TypeBytes32, Source: SourceRoot, Getter: "merkleRoot"},
	}})
	require.NoError(t, err)
	schema, err := r.Schema("Minimal")
	require.NoError(t, err)
	require.Equal(t, "merkleRoot", schema.Fields[0].GetterName())

	set, err := schema.Derive(nil, testRoot)
	require.NoError(t, err)
	require.Equal(t, []interface{}{[32]byte(testRoot)}, set.Args())
}
