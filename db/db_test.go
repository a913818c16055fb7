package db

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/0xPolygon/claimdeployer/db/types"
	"github.com/0xPolygon/claimdeployer/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/russross/meddler"
	"github.com/stretchr/testify/require"
)

const testMigration = `
-- +migrate Down
DROP TABLE IF EXISTS /*dbprefix*/item;

-- +migrate Up
CREATE TABLE /*dbprefix*/item (
	address VARCHAR PRIMARY KEY,
	hash    VARCHAR NOT NULL
);
`

type item struct {
	Address common.Address `meddler:"address,address"`
	Hash    common.Hash    `meddler:"hash,hash"`
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sqlite")
	migrations := []types.Migration{{ID: "0001", SQL: testMigration, Prefix: "test_"}}
	require.NoError(t, RunMigrations(path, migrations))
	database, err := NewSQLiteDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestMemorySourceRequiresMarker(t *testing.T) {
	_, err := memorySource([]types.Migration{{ID: "0001", SQL: "CREATE TABLE a (b INTEGER);"}})
	require.ErrorContains(t, err, "0001")
}

func TestMeddlersAndUniqueViolation(t *testing.T) {
	database := newTestDB(t)
	in := &item{
		Address: common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"),
		Hash:    common.HexToHash("0x01"),
	}
	require.NoError(t, meddler.Insert(database, "test_item", in))

	out := &item{}
	require.NoError(t, meddler.QueryRow(database, out, `SELECT * FROM test_item WHERE address = $1;`, in.Address.Hex()))
	require.Equal(t, in, out)

	err := meddler.Insert(database, "test_item", in)
	require.Error(t, err)
	require.True(t, IsUniqueViolation(err))
	require.False(t, IsUniqueViolation(errors.New("other")))

	err = meddler.QueryRow(database, out, `SELECT * FROM test_item WHERE address = $1;`, common.Address{}.Hex())
	require.ErrorIs(t, ReturnErrNotFound(err), ErrNotFound)
}

func TestTxCallbacks(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	committed, rolledBack := false, false
	tx, err := NewTx(ctx, database)
	require.NoError(t, err)
	tx.AddCommitCallback(func() { committed = true })
	tx.AddRollbackCallback(func() { rolledBack = true })
	require.NoError(t, meddler.Insert(tx, "test_item", &item{Address: common.HexToAddress("0x01")}))
	require.NoError(t, tx.Commit())
	require.True(t, committed)
	require.False(t, rolledBack)

	insertFails := func() (err error) {
		tx, err := NewTx(ctx, database)
		if err != nil {
			return err
		}
		tx.AddRollbackCallback(func() { rolledBack = true })
		defer tx.RollbackIfErr(log.GetDefaultLogger(), &err)
		return meddler.Insert(tx, "test_item", &item{Address: common.HexToAddress("0x01")})
	}
	require.Error(t, insertFails())
	require.True(t, rolledBack)
}

func TestNewSQLiteDBCreatesFolderAndPragmas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.sqlite")
	database, err := NewSQLiteDB(path)
	require.NoError(t, err)
	defer database.Close()

	var journalMode string
	require.NoError(t, database.QueryRow("PRAGMA journal_mode;").Scan(&journalMode))
	require.Equal(t, "wal", journalMode)

	var foreignKeys int
	require.NoError(t, database.QueryRow("PRAGMA foreign_keys;").Scan(&foreignKeys))
	require.Equal(t, 1, foreignKeys)

	require.ErrorIs(t, ReturnErrNotFound(database.QueryRow("SELECT 1 WHERE 1 = 0;").Scan(new(int))), ErrNotFound)
}
