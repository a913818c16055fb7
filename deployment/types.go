package deployment

import (
	"context"
	"errors"

	"github.com/0xPolygon/claimdeployer/params"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrMissingDeploymentRecord = errors.New("missing deployment record")
	ErrDeploymentFailed        = errors.New("deployment failed")
)

// Ledger is where contracts are constructed and their immutable parameters read back
type Ledger interface {
	// Construct deploys a contract of the schema with the given constructor parameters
	Construct(ctx context.Context, schema *params.Schema, set params.ParameterSet) (common.Address, error)
	// ReadConstructorState reads the constructor parameters of the contract at addr
	ReadConstructorState(ctx context.Context, schema *params.Schema, addr common.Address) (params.ParameterSet, error)
}

// ContractHandle points to a deployed contract
type ContractHandle struct {
	Identity params.Identity
	Address  common.Address
}
