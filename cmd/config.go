package main

import (
	"os"
	"strings"

	"github.com/0xPolygon/claimdeployer/config"
	"github.com/0xPolygon/claimdeployer/settings"
	"github.com/urfave/cli/v2"
)

func configCmd(cliCtx *cli.Context) error {
	if cliCtx.Bool("defaults") {
		defaultConfig := strings.Builder{}
		defaultConfig.WriteString(config.DefaultVars)
		defaultConfig.WriteString(config.DefaultValues)
		_, err := os.Stdout.WriteString(defaultConfig.String())
		return err
	}

	c, err := config.Load(cliCtx)
	if err != nil {
		return err
	}
	out, err := config.SaveConfigToString(*c)
	if err != nil {
		return err
	}
	_, err = os.Stdout.WriteString(out)
	return err
}

func settingsSchemaCmd(*cli.Context) error {
	schema, err := settings.Schema()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(schema, '\n'))
	return err
}
