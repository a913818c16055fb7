package common

// Module names used on the logs of every component
const (
	// PIPELINE name to identify the pipeline running a whole deployment or verification
	PIPELINE = "pipeline"
	// ORCHESTRATOR name to identify the component deploying and verifying contracts
	ORCHESTRATOR = "orchestrator"
	// EXPORT name to identify the claims export
	EXPORT = "export"
	// RECORD_LEDGER name to identify the sqlite ledger
	RECORD_LEDGER = "recordledger" //nolint:stylecheck
	// EVM_LEDGER name to identify the chain ledger
	EVM_LEDGER = "evmledger" //nolint:stylecheck
)
