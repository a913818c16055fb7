package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xPolygon/claimdeployer/evmledger"
	"github.com/0xPolygon/claimdeployer/export"
	"github.com/0xPolygon/claimdeployer/log"
	"github.com/0xPolygon/claimdeployer/params"
	"github.com/0xPolygon/claimdeployer/recordledger"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

const (
	// FlagCfg is the flag for cfg.
	FlagCfg = "cfg"
	// FlagClaims is the flag for the claims csv file
	FlagClaims = "claims"
	// FlagSettings is the flag for the settings file
	FlagSettings = "settings"
	// FlagVerify is the flag to verify the recorded deployment instead of deploying
	FlagVerify = "verify"
	// FlagIdentity is the flag for the contract identity
	FlagIdentity = "identity"
	// FlagOutputDir is the flag for the export folder
	FlagOutputDir = "output"
	// FlagSaveConfigPath is the flag to save the final configuration file
	FlagSaveConfigPath = "save-config-path"

	EnvVarPrefix       = "CLAIMDEPLOYER"
	ConfigType         = "toml"
	SaveConfigFileName = "claimdeployer_config.toml"

	// LedgerKindEVM deploys on a chain through an RPC endpoint
	LedgerKindEVM = "evm"
	// LedgerKindRecord records the deployments on a sqlite database without touching any chain
	LedgerKindRecord = "record"

	DefaultCreationFilePermissions = os.FileMode(0600)

	redacted = "<redacted>"
)

/*
Config represents the configuration of claimdeployer
The file is [TOML format]

[TOML format]: https://en.wikipedia.org/wiki/TOML
*/
type Config struct {
	// Configure Log level for all the services, allow also to store the logs in a file
	Log log.Config
	// Deployment selects what is deployed
	Deployment DeploymentConfig
	// Export is where the claims with their proofs are written
	Export export.Config
	// Ledger is where contracts are constructed and read back
	Ledger LedgerConfig
}

// DeploymentConfig selects the contract identity to deploy or verify
type DeploymentConfig struct {
	// Identity of the contract, one of the registered schemas
	Identity params.Identity `mapstructure:"Identity"`
}

// LedgerConfig selects and configures the ledger
type LedgerConfig struct {
	// Kind is "evm" or "record"
	Kind string `mapstructure:"Kind" jsonschema:"enum=evm,enum=record"`
	// Record is used when Kind is "record"
	Record recordledger.Config `mapstructure:"Record"`
	// EVM is used when Kind is "evm"
	EVM evmledger.Config `mapstructure:"EVM"`
}

// Validate checks the values that can not be defaulted
func (c *Config) Validate() error {
	switch c.Ledger.Kind {
	case LedgerKindEVM:
		if c.Ledger.EVM.URL == "" {
			return fmt.Errorf("missing Ledger.EVM.URL, required by the %s ledger", LedgerKindEVM)
		}
	case LedgerKindRecord:
		if c.Ledger.Record.DBPath == "" {
			return fmt.Errorf("missing Ledger.Record.DBPath, required by the %s ledger", LedgerKindRecord)
		}
	default:
		return fmt.Errorf("unknown ledger kind %q, expected %s or %s", c.Ledger.Kind, LedgerKindEVM, LedgerKindRecord)
	}
	if c.Deployment.Identity == "" {
		return fmt.Errorf("missing Deployment.Identity")
	}
	return nil
}

// Load loads the configuration of the files given by the cfg flag, the defaults
// are used when no file is given
func Load(ctx *cli.Context) (*Config, error) {
	configFilePath := ctx.StringSlice(FlagCfg)
	filesData, err := readFiles(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading files:  Err:%w", err)
	}
	saveConfigPath := ctx.String(FlagSaveConfigPath)
	return LoadFile(filesData, saveConfigPath)
}

func readFiles(files []string) ([]FileData, error) {
	result := make([]FileData, 0, len(files))
	for _, file := range files {
		fileContent, err := readFileToString(file)
		if err != nil {
			return nil, fmt.Errorf("error reading file content: %s. Err:%w", file, err)
		}
		fileExtension := getFileExtension(file)
		if fileExtension != ConfigType {
			fileContent, err = convertFileToToml(fileContent, fileExtension)
			if err != nil {
				return nil, fmt.Errorf("error converting file: %s from %s to TOML. Err:%w", file, fileExtension, err)
			}
		}
		result = append(result, FileData{Name: file, Content: fileContent})
	}
	return result, nil
}

func getFileExtension(fileName string) string {
	return fileName[strings.LastIndex(fileName, ".")+1:]
}

// LoadFile renders the defaults merged with files and decodes the result
func LoadFile(files []FileData, saveConfigPath string) (*Config, error) {
	fileData := make([]FileData, 0, len(files)+2) //nolint:mnd
	fileData = append(fileData, FileData{Name: "default_vars", Content: DefaultVars})
	fileData = append(fileData, FileData{Name: "default_values", Content: DefaultValues})
	fileData = append(fileData, files...)

	merger := NewConfigRender(fileData, EnvVarPrefix)

	renderedCfg, err := merger.Render()
	if err != nil {
		return nil, err
	}
	if saveConfigPath != "" {
		fullPath := filepath.Join(saveConfigPath, SaveConfigFileName)
		err = os.WriteFile(fullPath, []byte(renderedCfg), DefaultCreationFilePermissions)
		if err != nil {
			err = fmt.Errorf("error writing config file: %s. Err: %w", fullPath, err)
			log.Error(err)
			return nil, err
		}
	}
	return LoadFileFromString(renderedCfg, ConfigType)
}

// LoadFileFromString decodes an already rendered configuration
func LoadFileFromString(configFileData string, configType string) (*Config, error) {
	cfg := &Config{}
	if err := loadString(cfg, configFileData, configType, true, EnvVarPrefix); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadString(cfg *Config, configData string, configType string, allowEnvVars bool, envPrefix string) error {
	v := viper.New()
	v.SetConfigType(configType)
	if allowEnvVars {
		replacer := strings.NewReplacer(".", "_")
		v.SetEnvKeyReplacer(replacer)
		v.SetEnvPrefix(envPrefix)
		v.AutomaticEnv()
	}
	err := v.ReadConfig(bytes.NewBuffer([]byte(configData)))
	if err != nil {
		return err
	}
	var md mapstructure.Metadata
	decodeHooks := []viper.DecoderConfigOption{
		// this allows arrays to be decoded from env var separated by ",", example: MY_VAR="value1,value2,value3"
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(), mapstructure.StringToSliceHookFunc(","))),
		func(dc *mapstructure.DecoderConfig) { dc.Metadata = &md },
	}

	err = v.Unmarshal(cfg, decodeHooks...)
	if err != nil {
		return err
	}
	for _, field := range md.Unused {
		log.Debugf("field %s in config file is not used", field)
	}
	return nil
}

// SaveConfigToString renders cfg as TOML with the keystore password hidden
func SaveConfigToString(cfg Config) (string, error) {
	if cfg.Ledger.EVM.PrivateKey.Password != "" {
		cfg.Ledger.EVM.PrivateKey.Password = redacted
	}
	b, err := toml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
