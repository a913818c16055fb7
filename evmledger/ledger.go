package evmledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"time"

	"github.com/0xPolygon/claimdeployer/log"
	"github.com/0xPolygon/claimdeployer/params"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/lmittmann/w3"
)

const defaultWaitDeployedTimeout = 5 * time.Minute

var (
	ErrNoSigner = errors.New("no deployer key configured")
	ErrNoCode   = errors.New("no contract code at address")
)

// EthClienter is the part of the RPC client the ledger uses
type EthClienter interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// Ledger deploys contracts on an EVM chain and reads their parameters through
// their public getters
type Ledger struct {
	client      EthClienter
	auth        *bind.TransactOpts
	artifacts   *Artifacts
	waitTimeout time.Duration
	logger      *log.Logger
}

// New dials cfg.URL and loads the deployer key
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Ledger, error) {
	client, err := ethclient.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to %s: %w", cfg.URL, err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting chain id from %s: %w", cfg.URL, err)
	}
	if cfg.ChainID != 0 && chainID.Uint64() != cfg.ChainID {
		return nil, fmt.Errorf("endpoint %s is on chain %s, expected %d", cfg.URL, chainID, cfg.ChainID)
	}
	var auth *bind.TransactOpts
	key, err := newKeyFromKeystore(cfg.PrivateKey.Path, cfg.PrivateKey.Password, logger)
	if err != nil {
		return nil, err
	}
	if key != nil {
		auth, err = bind.NewKeyedTransactorWithChainID(key, chainID)
		if err != nil {
			return nil, err
		}
		logger.Infof("using deployer %s", auth.From.Hex())
	}
	return NewWithClient(client, auth, NewArtifacts(cfg.ArtifactsDir), cfg.WaitDeployedTimeout.Duration, logger), nil
}

// NewWithClient returns a ledger over an existing client. auth can be nil for a read only ledger.
func NewWithClient(
	client EthClienter, auth *bind.TransactOpts, artifacts *Artifacts, waitTimeout time.Duration, logger *log.Logger,
) *Ledger {
	if waitTimeout <= 0 {
		waitTimeout = defaultWaitDeployedTimeout
	}
	return &Ledger{
		client:      client,
		auth:        auth,
		artifacts:   artifacts,
		waitTimeout: waitTimeout,
		logger:      logger,
	}
}

// newKeyFromKeystore decrypts the keystore file, nil when no keystore is configured
func newKeyFromKeystore(path, password string, logger *log.Logger) (*ecdsa.PrivateKey, error) {
	if path == "" && password == "" {
		return nil, nil
	}
	keystoreEncrypted, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	logger.Infof("decrypting key from: %v", path)
	key, err := keystore.DecryptKey(keystoreEncrypted, password)
	if err != nil {
		return nil, fmt.Errorf("error decrypting key from %s: %w", path, err)
	}
	return key.PrivateKey, nil
}

// Construct deploys the artifact of the schema identity and waits for it to be mined
func (l *Ledger) Construct(ctx context.Context, schema *params.Schema, set params.ParameterSet) (common.Address, error) {
	if l.auth == nil {
		return common.Address{}, ErrNoSigner
	}
	artifact, err := l.artifacts.Get(schema.Identity)
	if err != nil {
		return common.Address{}, err
	}
	if err := artifact.CheckConstructor(schema); err != nil {
		return common.Address{}, err
	}

	opts := *l.auth
	opts.Context = ctx
	addr, tx, _, err := bind.DeployContract(&opts, artifact.ABI, artifact.Bytecode, l.client, set.Args()...)
	if err != nil {
		return common.Address{}, err
	}
	l.logger.Infof("sent deployment of %s, tx: %s, expected address: %s", schema.Identity, tx.Hash().Hex(), addr.Hex())

	waitCtx, cancel := context.WithTimeout(ctx, l.waitTimeout)
	defer cancel()
	deployed, err := bind.WaitDeployed(waitCtx, l.client, tx)
	if err != nil {
		return common.Address{}, fmt.Errorf("waiting for tx %s: %w", tx.Hash().Hex(), err)
	}
	return deployed, nil
}

// ReadConstructorState calls the getter of every schema field on the contract at addr
func (l *Ledger) ReadConstructorState(
	ctx context.Context, schema *params.Schema, addr common.Address,
) (params.ParameterSet, error) {
	code, err := l.client.CodeAt(ctx, addr, nil)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCode, addr.Hex())
	}

	set := make(params.ParameterSet, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		value, err := l.callGetter(ctx, addr, f)
		if err != nil {
			return nil, fmt.Errorf("reading %s of %s: %w", f.GetterName(), addr.Hex(), err)
		}
		set = append(set, params.Param{Name: f.Name, Type: f.Type, Value: value})
	}
	return set, nil
}

func (l *Ledger) callGetter(ctx context.Context, addr common.Address, f params.Field) (interface{}, error) {
	fn, err := w3.NewFunc(f.GetterName()+"()", string(f.Type))
	if err != nil {
		return nil, err
	}
	input, err := fn.EncodeArgs()
	if err != nil {
		return nil, err
	}
	output, err := l.client.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: input}, nil)
	if err != nil {
		return nil, err
	}

	switch f.Type {
	case params.TypeAddress:
		var v common.Address
		err = fn.DecodeReturns(output, &v)
		return v, err
	case params.TypeUint256:
		var v *big.Int
		err = fn.DecodeReturns(output, &v)
		return v, err
	case params.TypeBytes32:
		var v [32]byte
		err = fn.DecodeReturns(output, &v)
		return v, err
	}
	return nil, fmt.Errorf("unsupported getter type %q", f.Type)
}
