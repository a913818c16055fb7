package recordledger

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/0xPolygon/claimdeployer/db"
	"github.com/0xPolygon/claimdeployer/log"
	"github.com/0xPolygon/claimdeployer/params"
	"github.com/0xPolygon/claimdeployer/reconcile"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

var deployer = common.HexToAddress("0x9999999999999999999999999999999999999999")

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := New(Config{
		DBPath:   filepath.Join(t.TempDir(), "ledger.sqlite"),
		Deployer: deployer,
	}, log.WithFields("module", "recordledger"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, l.Close()) })
	return l
}

func minimalSchema() *params.Schema {
	return &params.Schema{
		Identity: "Minimal",
		Version:  3,
		Fields: []params.Field{
			{Name: "merkleRoot", Type: params.TypeBytes32, Source: params.SourceRoot},
			{Name: "owner", Type: params.TypeAddress, Source: params.SourceZero},
			{Name: "price", Type: params.TypeUint256, Source: params.SourceZero},
		},
	}
}

func minimalSet() params.ParameterSet {
	return params.ParameterSet{
		{Name: "merkleRoot", Type: params.TypeBytes32, Value: common.HexToHash("0xabc")},
		{Name: "owner", Type: params.TypeAddress, Value: common.HexToAddress("0xF6A78083ca3e2a662D6dd1703c939c8aCE2e268d")},
		{Name: "price", Type: params.TypeUint256, Value: big.NewInt(42)},
	}
}

func TestConstructAndRead(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	schema := minimalSchema()

	first, err := l.Construct(ctx, schema, minimalSet())
	require.NoError(t, err)
	require.Equal(t, crypto.CreateAddress(deployer, 0), first)
	second, err := l.Construct(ctx, schema, minimalSet())
	require.NoError(t, err)
	require.Equal(t, crypto.CreateAddress(deployer, 1), second)

	observed, err := l.ReadConstructorState(ctx, schema, first)
	require.NoError(t, err)
	require.Equal(t, []string{"merkleRoot", "owner", "price"}, observed.Names())
	price, ok := observed.Get("price")
	require.True(t, ok)
	require.Equal(t, "42", price.Value)
	require.NoError(t, reconcile.Check(schema.Identity, first, minimalSet(), observed))

	d, err := l.GetDeployment(ctx, second)
	require.NoError(t, err)
	require.Equal(t, uint64(1), d.Nonce)
	require.Equal(t, uint(3), d.SchemaVersion)
	require.Equal(t, deployer, d.Deployer)

	all, err := l.Deployments(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, d.ArgsHash, all[0].ArgsHash)
}

func TestReadUnknownAddress(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.ReadConstructorState(context.Background(), minimalSchema(), common.HexToAddress("0x1"))
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestReadOtherIdentity(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)
	addr, err := l.Construct(ctx, minimalSchema(), minimalSet())
	require.NoError(t, err)

	other := minimalSchema()
	other.Identity = "Other"
	_, err = l.ReadConstructorState(ctx, other, addr)
	require.ErrorIs(t, err, ErrIdentityMismatch)
}

func TestConstructRejectsWrongSet(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Construct(context.Background(), minimalSchema(), minimalSet()[:2])
	require.Error(t, err)

	all, err := l.Deployments(context.Background())
	require.NoError(t, err)
	require.Empty(t, all)
}
