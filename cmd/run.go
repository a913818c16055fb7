package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	claimdeployer "github.com/0xPolygon/claimdeployer"
	cdcommon "github.com/0xPolygon/claimdeployer/common"
	"github.com/0xPolygon/claimdeployer/config"
	"github.com/0xPolygon/claimdeployer/deployment"
	"github.com/0xPolygon/claimdeployer/evmledger"
	"github.com/0xPolygon/claimdeployer/export"
	"github.com/0xPolygon/claimdeployer/log"
	"github.com/0xPolygon/claimdeployer/params"
	"github.com/0xPolygon/claimdeployer/recordledger"
	"github.com/urfave/cli/v2"
)

func start(cliCtx *cli.Context) error {
	c, err := config.Load(cliCtx)
	if err != nil {
		return err
	}
	if id := cliCtx.String(config.FlagIdentity); id != "" {
		c.Deployment.Identity = params.Identity(id)
	}
	if dir := cliCtx.String(config.FlagOutputDir); dir != "" {
		c.Export.OutputDir = dir
	}
	if err := c.Validate(); err != nil {
		return err
	}

	log.Init(c.Log)

	if c.Log.Environment == log.EnvironmentDevelopment {
		claimdeployer.PrintVersion(os.Stdout)
		log.Info("Starting application")
	} else if c.Log.Environment == log.EnvironmentProduction {
		logVersion()
	}

	ctx, cancel := signal.NotifyContext(cliCtx.Context, os.Interrupt)
	defer cancel()

	ledger, closeLedger, err := newLedger(ctx, c.Ledger)
	if err != nil {
		return err
	}
	defer closeLedger()

	registry := params.NewDefaultRegistry()
	orchestrator := deployment.NewOrchestrator(registry, ledger, log.WithFields("module", cdcommon.ORCHESTRATOR))
	exporter, err := export.New(c.Export, log.WithFields("module", cdcommon.EXPORT))
	if err != nil {
		return err
	}
	pipeline := deployment.NewPipeline(registry, orchestrator, exporter, log.WithFields("module", cdcommon.PIPELINE))

	result, err := pipeline.Run(ctx, deployment.Input{
		ClaimsPath:   cliCtx.String(config.FlagClaims),
		SettingsPath: cliCtx.String(config.FlagSettings),
		Identity:     c.Deployment.Identity,
		Verify:       cliCtx.Bool(config.FlagVerify),
	})
	if err != nil {
		return err
	}
	log.Infow("done",
		"identity", result.Handle.Identity,
		"address", result.Handle.Address.Hex(),
		"merkleRoot", result.Commitment.Root.Hex(),
		"claims", len(result.Commitment.Claims),
		"output", c.Export.OutputDir,
	)
	return nil
}

func newLedger(ctx context.Context, c config.LedgerConfig) (deployment.Ledger, func(), error) {
	switch c.Kind {
	case config.LedgerKindRecord:
		ledger, err := recordledger.New(c.Record, log.WithFields("module", cdcommon.RECORD_LEDGER))
		if err != nil {
			return nil, nil, err
		}
		return ledger, func() {
			if err := ledger.Close(); err != nil {
				log.Errorf("error closing record ledger: %v", err)
			}
		}, nil
	case config.LedgerKindEVM:
		ledger, err := evmledger.New(ctx, c.EVM, log.WithFields("module", cdcommon.EVM_LEDGER))
		if err != nil {
			return nil, nil, err
		}
		return ledger, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown ledger kind %q", c.Kind)
	}
}

func logVersion() {
	log.Infow("Starting application", claimdeployer.GetVersion().Fields()...)
}
