package recordledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/0xPolygon/claimdeployer/db"
	"github.com/0xPolygon/claimdeployer/log"
	"github.com/0xPolygon/claimdeployer/params"
	"github.com/0xPolygon/claimdeployer/recordledger/migrations"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/russross/meddler"
)

var ErrIdentityMismatch = errors.New("contract identity mismatch")

// Deployment is a contract recorded by the ledger
type Deployment struct {
	Address       common.Address `meddler:"address,address"`
	Identity      string         `meddler:"identity"`
	SchemaVersion uint           `meddler:"schema_version"`
	Deployer      common.Address `meddler:"deployer,address"`
	Nonce         uint64         `meddler:"nonce"`
	ArgsHash      common.Hash    `meddler:"args_hash,hash"`
	CreatedAt     int64          `meddler:"created_at"`
}

type deploymentParam struct {
	Address  common.Address `meddler:"address,address"`
	Position int            `meddler:"position"`
	Name     string         `meddler:"name"`
	Type     string         `meddler:"type"`
	Value    string         `meddler:"value"`
}

// Ledger records deployments in a sqlite database instead of a chain. Addresses
// are the ones a chain would give to contracts created by the deployer, the
// nonce being the number of contracts it already created.
type Ledger struct {
	db       *sql.DB
	deployer common.Address
	logger   *log.Logger
}

// New opens (and migrates) the database at cfg.DBPath
func New(cfg Config, logger *log.Logger) (*Ledger, error) {
	database, err := db.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := migrations.RunMigrations(logger, database); err != nil {
		database.Close()
		return nil, err
	}
	return &Ledger{
		db:       database,
		deployer: cfg.Deployer,
		logger:   logger,
	}, nil
}

// Close closes the database
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Construct records a deployment of the schema with the given parameters
func (l *Ledger) Construct(
	ctx context.Context, schema *params.Schema, set params.ParameterSet,
) (addr common.Address, err error) {
	packed, err := schema.Pack(set)
	if err != nil {
		return common.Address{}, err
	}

	tx, err := db.NewTx(ctx, l.db)
	if err != nil {
		return common.Address{}, err
	}
	defer tx.RollbackIfErr(l.logger, &err)

	var nonce uint64
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM deployment WHERE deployer = $1;`, l.deployer.Hex(),
	).Scan(&nonce); err != nil {
		return common.Address{}, err
	}

	d := &Deployment{
		Address:       crypto.CreateAddress(l.deployer, nonce),
		Identity:      string(schema.Identity),
		SchemaVersion: schema.Version,
		Deployer:      l.deployer,
		Nonce:         nonce,
		ArgsHash:      crypto.Keccak256Hash(packed),
		CreatedAt:     time.Now().UTC().Unix(),
	}
	if err = meddler.Insert(tx, "deployment", d); err != nil {
		if db.IsUniqueViolation(err) {
			err = fmt.Errorf("address %s already recorded: %w", d.Address.Hex(), err)
		}
		return common.Address{}, err
	}
	for i, p := range set {
		row := &deploymentParam{
			Address:  d.Address,
			Position: i,
			Name:     p.Name,
			Type:     string(p.Type),
			Value:    params.FormatValue(p.Value),
		}
		if err = meddler.Insert(tx, "deployment_param", row); err != nil {
			return common.Address{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return common.Address{}, err
	}
	l.logger.Debugf("recorded %s at %s (nonce %d)", schema.Identity, d.Address.Hex(), nonce)
	return d.Address, nil
}

// ReadConstructorState returns the recorded parameters of the contract at addr.
// Values are returned as stored, in text form.
func (l *Ledger) ReadConstructorState(
	ctx context.Context, schema *params.Schema, addr common.Address,
) (params.ParameterSet, error) {
	d, err := l.GetDeployment(ctx, addr)
	if err != nil {
		return nil, err
	}
	if d.Identity != string(schema.Identity) {
		return nil, fmt.Errorf("%w: %s is a %s, not a %s", ErrIdentityMismatch, addr.Hex(), d.Identity, schema.Identity)
	}

	var rows []*deploymentParam
	if err := meddler.QueryAll(l.db, &rows,
		`SELECT * FROM deployment_param WHERE address = $1 ORDER BY position ASC;`, addr.Hex(),
	); err != nil {
		return nil, err
	}
	set := make(params.ParameterSet, len(rows))
	for i, r := range rows {
		set[i] = params.Param{Name: r.Name, Type: params.ParamType(r.Type), Value: r.Value}
	}
	return set, nil
}

// GetDeployment returns the deployment recorded at addr, db.ErrNotFound if none
func (l *Ledger) GetDeployment(ctx context.Context, addr common.Address) (*Deployment, error) {
	d := &Deployment{}
	err := meddler.QueryRow(l.db, d, `SELECT * FROM deployment WHERE address = $1;`, addr.Hex())
	if err != nil {
		return nil, fmt.Errorf("deployment at %s: %w", addr.Hex(), db.ReturnErrNotFound(err))
	}
	return d, nil
}

// Deployments returns every recorded deployment by nonce
func (l *Ledger) Deployments(ctx context.Context) ([]*Deployment, error) {
	var deployments []*Deployment
	err := meddler.QueryAll(l.db, &deployments, `SELECT * FROM deployment ORDER BY deployer, nonce;`)
	return deployments, db.ReturnErrNotFound(err)
}
