package evmledger

import (
	"github.com/0xPolygon/claimdeployer/config/types"
)

// Config is the configuration of the EVM ledger
type Config struct {
	// URL is the RPC endpoint of the chain
	URL string `mapstructure:"URL"`
	// ChainID of the chain, checked against the endpoint when not zero
	ChainID uint64 `mapstructure:"ChainID"`
	// PrivateKey is the keystore of the deployer. It can be left empty when only verifying.
	PrivateKey types.KeystoreFileConfig `mapstructure:"PrivateKey"`
	// ArtifactsDir holds one build artifact (abi and bytecode) per contract identity, named <Identity>.json
	ArtifactsDir string `mapstructure:"ArtifactsDir"`
	// WaitDeployedTimeout is how long to wait for the deployment to be mined
	WaitDeployedTimeout types.Duration `mapstructure:"WaitDeployedTimeout"`
}
