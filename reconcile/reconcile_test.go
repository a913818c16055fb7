package reconcile

import (
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/0xPolygon/claimdeployer/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

var (
	root     = common.HexToHash("0xABCDEF0000000000000000000000000000000000000000000000000000000001")
	mediator = common.HexToAddress("0xf6A78083ca3e2a662D6dd1703c939c8aCE2e268d")
	deployed = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

func expectedSet() params.ParameterSet {
	return params.ParameterSet{
		{Name: "merkleRoot", Type: params.TypeBytes32, Value: root},
		{Name: "multiTokenMediator", Type: params.TypeAddress, Value: mediator},
		{Name: "gnoPrice", Type: params.TypeUint256, Value: big.NewInt(150000000000000000)},
		{Name: "foreignToken", Type: params.TypeAddress, Value: common.Address{}},
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		typ      params.ParamType
		in       interface{}
		expected string
	}{
		{params.TypeUint256, "150000000000000000", "150000000000000000"},
		{params.TypeUint256, "0x214e8348c4f0000", "150000000000000000"},
		{params.TypeUint256, big.NewInt(7), "7"},
		{params.TypeUint256, uint256.NewInt(7), "7"},
		{params.TypeUint256, 7, "7"},
		{params.TypeUint256, uint64(7), "7"},
		{params.TypeUint256, float64(7), "7"},
		{params.TypeUint256, 1e20, "100000000000000000000"},
		{params.TypeUint256, 1.5e17, "150000000000000000"},
		{params.TypeUint256, "007", "7"},
		{params.TypeAddress, mediator, strings.ToLower(mediator.Hex())},
		{params.TypeAddress, "0x" + strings.ToUpper("f6A78083ca3e2a662D6dd1703c939c8aCE2e268d"), strings.ToLower(mediator.Hex())},
		{params.TypeAddress, [20]byte(mediator), strings.ToLower(mediator.Hex())},
		{params.TypeBytes32, root, strings.ToLower(root.Hex())},
		{params.TypeBytes32, root.Bytes(), strings.ToLower(root.Hex())},
		{params.TypeBytes32, [32]byte(root), strings.ToLower(root.Hex())},
		{params.TypeBytes32, root.Hex(), strings.ToLower(root.Hex())},
	}
	for _, tt := range tests {
		got, err := Canonical(tt.typ, tt.in)
		require.NoError(t, err, "%s %v", tt.typ, tt.in)
		require.Equal(t, tt.expected, got)
	}

	for _, bad := range []struct {
		typ params.ParamType
		in  interface{}
	}{
		{params.TypeUint256, "-1"},
		{params.TypeUint256, "one"},
		{params.TypeUint256, -1},
		{params.TypeUint256, 1.5},
		{params.TypeUint256, math.NaN()},
		{params.TypeUint256, math.Inf(1)},
		{params.TypeUint256, 1e80},
		{params.TypeAddress, "f6A78083ca3e2a662D6dd1703c939c8aCE2e268d"},
		{params.TypeAddress, "0x1234"},
		{params.TypeAddress, root},
		{params.TypeBytes32, mediator},
		{params.TypeBytes32, "0xzz"},
		{"bool", true},
	} {
		_, err := Canonical(bad.typ, bad.in)
		require.Error(t, err, "%s %v", bad.typ, bad.in)
	}
}

func TestReconcileSelf(t *testing.T) {
	report := Reconcile(params.BridgedTokenDeployer, deployed, expectedSet(), expectedSet())
	require.True(t, report.OK())
	require.NoError(t, report.Err())
}

func TestReconcileLooselyTypedObserved(t *testing.T) {
	observed := params.ParameterSet{
		// observed order does not matter
		{Name: "foreignToken", Value: "0x0000000000000000000000000000000000000000"},
		{Name: "gnoPrice", Value: "150000000000000000"},
		{Name: "multiTokenMediator", Value: strings.ToLower(mediator.Hex())},
		{Name: "merkleRoot", Value: [32]byte(root)},
	}
	require.NoError(t, Check(params.BridgedTokenDeployer, deployed, expectedSet(), observed))
}

func TestReconcileSingleAlteredField(t *testing.T) {
	for i := range expectedSet() {
		observed := expectedSet()
		switch v := observed[i].Value.(type) {
		case common.Hash:
			v[31] ^= 0x01
			observed[i].Value = v
		case common.Address:
			v[19] ^= 0x01
			observed[i].Value = v
		case *big.Int:
			observed[i].Value = new(big.Int).Add(v, big.NewInt(1))
		}

		report := Reconcile(params.BridgedTokenDeployer, deployed, expectedSet(), observed)
		require.False(t, report.OK())
		require.Equal(t, observed[i].Name, report.Mismatch.Field)

		err := report.Err()
		require.ErrorIs(t, err, ErrParameterMismatch)
		var mismatchErr *MismatchError
		require.ErrorAs(t, err, &mismatchErr)
		require.Equal(t, observed[i].Name, mismatchErr.Field)
		require.Equal(t, deployed, mismatchErr.Address)
		require.NotEqual(t, mismatchErr.Expected, mismatchErr.Observed)
	}
}

func TestReconcileFirstMismatchWins(t *testing.T) {
	observed := expectedSet()
	observed[1].Value = common.HexToAddress("0x3")
	observed[2].Value = big.NewInt(1)
	report := Reconcile(params.BridgedTokenDeployer, deployed, expectedSet(), observed)
	require.Equal(t, "multiTokenMediator", report.Mismatch.Field)
}

func TestReconcileMissingAndInvalid(t *testing.T) {
	observed := expectedSet()[1:]
	report := Reconcile(params.BridgedTokenDeployer, deployed, expectedSet(), observed)
	require.Equal(t, "merkleRoot", report.Mismatch.Field)
	require.Equal(t, "<missing>", report.Mismatch.Observed)

	observed = expectedSet()
	observed[2].Value = "not a number"
	report = Reconcile(params.BridgedTokenDeployer, deployed, expectedSet(), observed)
	require.Equal(t, "gnoPrice", report.Mismatch.Field)
	require.Contains(t, report.Mismatch.Observed, "invalid")
}
