package claims

import (
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const (
	accountA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1"
	accountB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb2"
	accountC = "0x00000000000000000000000000000000000000c3"
)

func TestLoadCanonicalOrder(t *testing.T) {
	records := []Record{
		{Account: accountB, Amount: "50"},
		{Account: accountA, Amount: "100", Type: "Investor"},
		{Account: accountC, Amount: "7", Type: "2"},
	}
	table, err := Load(records)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	got := table.Claims()
	require.Equal(t, common.HexToAddress(accountC), got[0].Account)
	require.Equal(t, UserOption, got[0].Type)
	require.Equal(t, common.HexToAddress(accountA), got[1].Account)
	require.Equal(t, Investor, got[1].Type)
	require.Equal(t, big.NewInt(100), got[1].Amount)
	require.Equal(t, common.HexToAddress(accountB), got[2].Account)
	require.Equal(t, Airdrop, got[2].Type)

	i, ok := table.Find(common.HexToAddress(accountB))
	require.True(t, ok)
	require.Equal(t, 2, i)
	_, ok = table.Find(common.Address{})
	require.False(t, ok)
}

func TestLoadShuffleInvariant(t *testing.T) {
	records := make([]Record, 0, 20)
	for i := 1; i <= 20; i++ {
		addr := common.BigToAddress(big.NewInt(int64(i * 7919)))
		records = append(records, Record{Account: addr.Hex(), Amount: big.NewInt(int64(i)).String()})
	}
	expected, err := Load(records)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(42))
	for n := 0; n < 5; n++ {
		r.Shuffle(len(records), func(i, j int) { records[i], records[j] = records[j], records[i] })
		table, err := Load(records)
		require.NoError(t, err)
		require.Equal(t, expected.Claims(), table.Claims())
	}
}

func TestLoadDuplicateAccount(t *testing.T) {
	_, err := Load([]Record{
		{Account: accountA, Amount: "1"},
		{Account: strings.ToUpper(accountA[2:]), Amount: "2"},
	})
	require.ErrorIs(t, err, ErrDuplicateAccount)
	require.Contains(t, err.Error(), "row 2")
}

func TestLoadMalformed(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 256).String()
	tests := []struct {
		name   string
		record Record
	}{
		{"non numeric amount", Record{Account: accountA, Amount: "ten"}},
		{"negative amount", Record{Account: accountA, Amount: "-1"}},
		{"empty amount", Record{Account: accountA, Amount: ""}},
		{"overflowing amount", Record{Account: accountA, Amount: tooBig}},
		{"hex amount", Record{Account: accountA, Amount: "0x10"}},
		{"bad address", Record{Account: "0x1234", Amount: "1"}},
		{"unknown type", Record{Account: accountA, Amount: "1", Type: "Whale"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]Record{{Account: accountB, Amount: "1"}, tt.record})
			require.ErrorIs(t, err, ErrMalformedClaim)
			require.Contains(t, err.Error(), "row 2")
		})
	}

	_, err := Load(nil)
	require.ErrorIs(t, err, ErrMalformedClaim)
}

func TestParseCSV(t *testing.T) {
	input := "account,amount,type\n" +
		accountB + ",50,\n" +
		accountA + ",100,Team\n"
	table, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	require.Equal(t, Team, table.At(0).Type)

	// the type column is optional
	table, err = ParseCSV(strings.NewReader("account,amount\n" + accountA + ",100\n"))
	require.NoError(t, err)
	require.Equal(t, Airdrop, table.At(0).Type)

	_, err = ParseCSV(strings.NewReader("account,amount\n" + accountA + ",1e18\n"))
	require.ErrorIs(t, err, ErrMalformedClaim)
}

func TestClaimsReturnsCopy(t *testing.T) {
	table, err := Load([]Record{{Account: accountA, Amount: "100"}})
	require.NoError(t, err)
	c := table.Claims()
	c[0].Amount.SetInt64(1)
	require.Equal(t, big.NewInt(100), table.At(0).Amount)
}
