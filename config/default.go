package config

// DefaultVars are not part of the config, they are the vars used
// to avoid repetition in config-files
const DefaultVars = `
PathRWData = "/tmp/claimdeployer"
L1URL = "http://localhost:8545"
`

// DefaultValues is the default configuration
const DefaultValues = `
# Log configuration
[Log]
  # Environment is "production" or "development"
  Environment = "development"
  # Level is the log level
  Level = "info"
  # Outputs are the outputs where the logs will be written
  Outputs = ["stderr"]

[Deployment]
  # Identity is the contract to deploy: "BridgedTokenDeployer" or "CowProtocolVirtualToken"
  Identity = "CowProtocolVirtualToken"

[Export]
  # OutputDir receives addresses.json, claims.json, mapping.json and the chunks folder
  OutputDir = "{{PathRWData}}/output"
  # MaxClaimsPerShard is the maximum number of claims per chunk file
  MaxClaimsPerShard = 500

[Ledger]
  # Kind is "evm" to deploy on chain or "record" to only record the deployments
  Kind = "record"

  [Ledger.Record]
    DBPath = "{{PathRWData}}/deployments.sqlite"
    Deployer = "0x0000000000000000000000000000000000000000"

  [Ledger.EVM]
    URL = "{{L1URL}}"
    # ChainID is checked against the endpoint when not 0
    ChainID = 0
    ArtifactsDir = "{{PathRWData}}/artifacts"
    WaitDeployedTimeout = "5m"
    PrivateKey = {Path = "", Password = ""}
`
