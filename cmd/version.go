package main

import (
	"os"

	claimdeployer "github.com/0xPolygon/claimdeployer"
	"github.com/urfave/cli/v2"
)

func versionCmd(*cli.Context) error {
	claimdeployer.PrintVersion(os.Stdout)
	return nil
}
