package recordledger

import "github.com/ethereum/go-ethereum/common"

// Config is the configuration of the record ledger
type Config struct {
	// DBPath is the path of the sqlite database
	DBPath string `mapstructure:"DBPath"`
	// Deployer is the account the contract addresses are derived from
	Deployer common.Address `mapstructure:"Deployer"`
}
