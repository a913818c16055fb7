package main

import (
	"errors"
	"os"

	claimdeployer "github.com/0xPolygon/claimdeployer"
	"github.com/0xPolygon/claimdeployer/config"
	"github.com/0xPolygon/claimdeployer/log"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

const appName = "claimdeployer"

var (
	configFileFlag = cli.StringSliceFlag{
		Name:     config.FlagCfg,
		Aliases:  []string{"c"},
		Usage:    "Configuration file(s), merged over the defaults",
		Required: false,
	}
	saveConfigFlag = cli.StringFlag{
		Name:     config.FlagSaveConfigPath,
		Aliases:  []string{"s"},
		Usage:    "Save final configuration into to the indicated path (name: " + config.SaveConfigFileName + ")",
		Required: false,
	}
	claimsFlag = cli.StringFlag{
		Name:     config.FlagClaims,
		Usage:    "CSV `FILE` with the account,amount[,type] claims",
		Required: true,
	}
	settingsFlag = cli.StringFlag{
		Name:     config.FlagSettings,
		Usage:    "Deployment settings `FILE` (json or yaml)",
		Required: true,
	}
	verifyFlag = cli.BoolFlag{
		Name:     config.FlagVerify,
		Usage:    "Verify the deployment recorded in the settings instead of deploying",
		Required: false,
	}
	identityFlag = cli.StringFlag{
		Name:     config.FlagIdentity,
		Aliases:  []string{"i"},
		Usage:    "Contract identity, overrides Deployment.Identity",
		Required: false,
	}
	outputFlag = cli.StringFlag{
		Name:     config.FlagOutputDir,
		Aliases:  []string{"o"},
		Usage:    "Export folder, overrides Export.OutputDir",
		Required: false,
	}
	defaultsFlag = cli.BoolFlag{
		Name:     "defaults",
		Usage:    "Print the default configuration templates instead of the loaded configuration",
		Required: false,
	}
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("error loading .env file: %v", err)
	}

	app := cli.NewApp()
	app.Name = appName
	app.Usage = "Commit user claims into a merkle root and deploy or verify the contracts using it"
	app.Version = claimdeployer.Version
	app.Commands = []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{},
			Usage:   "Application version and build",
			Action:  versionCmd,
		},
		{
			Name:    "run",
			Aliases: []string{},
			Usage:   "Deploy, or verify with --verify, the contract committing to the claims",
			Action:  start,
			Flags: []cli.Flag{
				&configFileFlag,
				&saveConfigFlag,
				&claimsFlag,
				&settingsFlag,
				&verifyFlag,
				&identityFlag,
				&outputFlag,
			},
		},
		{
			Name:    "settings-schema",
			Aliases: []string{},
			Usage:   "Print the JSON schema of the settings file",
			Action:  settingsSchemaCmd,
		},
		{
			Name:    "config",
			Aliases: []string{},
			Usage:   "Print the configuration that run would use",
			Action:  configCmd,
			Flags:   []cli.Flag{&configFileFlag, &defaultsFlag},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}
