package export

// Config is the configuration of the claims export
type Config struct {
	// OutputDir is the folder where addresses.json, claims.json and the claim chunks are written
	OutputDir string `mapstructure:"OutputDir"`
	// MaxClaimsPerShard is the maximum number of claims of a chunk file
	MaxClaimsPerShard int `mapstructure:"MaxClaimsPerShard"`
}
